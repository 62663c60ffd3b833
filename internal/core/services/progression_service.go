package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// ProgressionService owns the completion state machines of habits, tasks
// and milestones, and goal threshold crossing. Every transition and its
// ledger rows are written in one unit of work.
type ProgressionService struct {
	uow    domain.UnitOfWork
	ledger *LedgerService
}

func NewProgressionService(uow domain.UnitOfWork, ledger *LedgerService) *ProgressionService {
	return &ProgressionService{
		uow:    uow,
		ledger: ledger,
	}
}

// transition runs fn in a unit of work and, once committed, hands the
// collected effects to the ledger's post-commit hook.
func (s *ProgressionService) transition(ctx context.Context, uc domain.UserContext, fn func(ctx context.Context, repos domain.Repositories, fx *domain.Effects) error) error {
	if err := uc.Validate(); err != nil {
		return err
	}

	var fx domain.Effects
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		fx = fx[:0]
		return fn(ctx, repos, &fx)
	})
	if err != nil {
		return err
	}

	s.ledger.committed(ctx, uc, fx)
	return nil
}

func (s *ProgressionService) award(ctx context.Context, repos domain.Repositories, uc domain.UserContext, res *domain.CompletionResult, fx *domain.Effects, in domain.AwardInput) error {
	tx, level, err := s.ledger.appendAward(ctx, repos, uc, in, fx)
	if err != nil {
		return err
	}
	res.Transactions = append(res.Transactions, tx)
	res.XPDelta += tx.Amount
	res.Level = level
	return nil
}

func findCompletion(ctx context.Context, repos domain.Repositories, userID, habitID string, date time.Time) (*domain.HabitCompletion, error) {
	return repos.Completions.FindByHabitDate(ctx, userID, habitID, date)
}

func (s *ProgressionService) refreshLevel(ctx context.Context, repos domain.Repositories, uc domain.UserContext, res *domain.CompletionResult) error {
	total, err := repos.Ledger.SumByUser(ctx, uc.UserID)
	if err != nil {
		return fmt.Errorf("ledger: read total: %w", err)
	}
	res.Level = s.ledger.LevelFor(total)
	return nil
}

// CompleteHabit marks the habit done for date (the user's today when zero),
// awards its reward and advances a linked accumulative goal by one.
func (s *ProgressionService) CompleteHabit(ctx context.Context, uc domain.UserContext, habitID string, date time.Time) (*domain.CompletionResult, error) {
	if date.IsZero() {
		date = uc.Today()
	}
	date = domain.DateOnly(date)
	now := uc.Clock()

	res := &domain.CompletionResult{Kind: domain.KindHabit, EntityID: habitID}

	err := s.transition(ctx, uc, func(ctx context.Context, repos domain.Repositories, fx *domain.Effects) error {
		*res = domain.CompletionResult{Kind: domain.KindHabit, EntityID: habitID}

		habit, err := getOwned(ctx, repos.Habits, habitID, uc.UserID, domain.ErrHabitNotFound)
		if err != nil {
			return err
		}
		if habit.ArchivedAt != nil {
			return domain.ErrHabitArchived
		}

		record, err := findCompletion(ctx, repos, uc.UserID, habit.ID, date)
		if err != nil {
			return err
		}

		isNew := record == nil
		if isNew {
			record = domain.NewHabitCompletion(habit.ID, uc.UserID, date, now)
		}

		xp := domain.CompletionXP(habit.XPReward, false)
		if err := record.Complete(xp, now); err != nil {
			return err
		}

		if isNew {
			err = repos.Completions.Create(ctx, record)
		} else {
			err = repos.Completions.Update(ctx, record)
		}
		if err != nil {
			return err
		}

		if err := s.award(ctx, repos, uc, res, fx, domain.AwardInput{
			Amount:     xp,
			SourceType: domain.SourceHabit,
			SourceID:   habit.ID,
			Note:       "Completed habit: " + habit.Title,
		}); err != nil {
			return err
		}
		fx.Add(uc, domain.EffectHabitCompleted, domain.SourceHabit, habit.ID, xp)

		if habit.GoalID != nil {
			if err := s.advanceLinkedGoal(ctx, repos, uc, *habit.GoalID, res, fx); err != nil {
				return err
			}
		}

		res.Completed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// advanceLinkedGoal adds one unit to the habit's goal. Goals that are
// missing, foreign, not accumulative or no longer active are skipped: the
// habit completion itself stands.
func (s *ProgressionService) advanceLinkedGoal(ctx context.Context, repos domain.Repositories, uc domain.UserContext, goalID string, res *domain.CompletionResult, fx *domain.Effects) error {
	goal, err := getOwned(ctx, repos.Goals, goalID, uc.UserID, domain.ErrGoalNotFound)
	if errors.Is(err, domain.ErrGoalNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if goal.GoalType != domain.GoalAccumulative || goal.EnsureActive() != nil {
		return nil
	}

	return s.applyGoalDelta(ctx, repos, uc, goal, 1, res, fx)
}

func (s *ProgressionService) applyGoalDelta(ctx context.Context, repos domain.Repositories, uc domain.UserContext, goal *domain.Goal, delta int64, res *domain.CompletionResult, fx *domain.Effects) error {
	progress, err := goal.ApplyDelta(delta, uc.Clock())
	if err != nil {
		return err
	}
	if err := repos.Goals.Update(ctx, goal); err != nil {
		return err
	}

	res.Goal = &progress
	return s.awardGoalProgress(ctx, repos, uc, goal, progress, res, fx)
}

// awardGoalProgress writes the single goal award of a progress operation:
// XPOnComplete on the crossing (always recorded), otherwise the progress
// reward when there is one.
func (s *ProgressionService) awardGoalProgress(ctx context.Context, repos domain.Repositories, uc domain.UserContext, goal *domain.Goal, progress domain.GoalProgress, res *domain.CompletionResult, fx *domain.Effects) error {
	if progress.Completed {
		if err := s.award(ctx, repos, uc, res, fx, domain.AwardInput{
			Amount:     progress.XPAward,
			SourceType: domain.SourceGoal,
			SourceID:   goal.ID,
			Note:       "Completed goal: " + goal.Title,
		}); err != nil {
			return err
		}
		fx.Add(uc, domain.EffectGoalCompleted, domain.SourceGoal, goal.ID, progress.XPAward)
		return nil
	}

	if progress.XPAward > 0 {
		if err := s.award(ctx, repos, uc, res, fx, domain.AwardInput{
			Amount:     progress.XPAward,
			SourceType: domain.SourceGoal,
			SourceID:   goal.ID,
			Note:       "Progress on goal: " + goal.Title,
		}); err != nil {
			return err
		}
	}
	fx.Add(uc, domain.EffectGoalProgressed, domain.SourceGoal, goal.ID, progress.XPAward)
	return nil
}

// UncompleteHabit reverts a completed day: the record is deleted, the
// penalty is twice the XP that completion earned and a linked goal
// regresses by one.
func (s *ProgressionService) UncompleteHabit(ctx context.Context, uc domain.UserContext, habitID string, date time.Time) (*domain.CompletionResult, error) {
	if date.IsZero() {
		date = uc.Today()
	}
	date = domain.DateOnly(date)

	res := &domain.CompletionResult{Kind: domain.KindHabit, EntityID: habitID}

	err := s.transition(ctx, uc, func(ctx context.Context, repos domain.Repositories, fx *domain.Effects) error {
		*res = domain.CompletionResult{Kind: domain.KindHabit, EntityID: habitID}

		habit, err := getOwned(ctx, repos.Habits, habitID, uc.UserID, domain.ErrHabitNotFound)
		if err != nil {
			return err
		}

		record, err := findCompletion(ctx, repos, uc.UserID, habit.ID, date)
		if err != nil {
			return err
		}
		if record == nil || !record.Completed {
			return domain.ErrNotCompleted
		}

		if err := repos.Completions.Delete(ctx, record.ID); err != nil {
			return err
		}

		penalty := domain.UncompletePenalty(record.XPEarned)
		if err := s.award(ctx, repos, uc, res, fx, domain.AwardInput{
			Amount:     penalty,
			SourceType: domain.SourceHabit,
			SourceID:   habit.ID,
			Note:       "Undid habit: " + habit.Title,
		}); err != nil {
			return err
		}
		fx.Add(uc, domain.EffectHabitUncompleted, domain.SourceHabit, habit.ID, penalty)

		if habit.GoalID != nil {
			goal, err := getOwned(ctx, repos.Goals, *habit.GoalID, uc.UserID, domain.ErrGoalNotFound)
			switch {
			case errors.Is(err, domain.ErrGoalNotFound):
			case err != nil:
				return err
			case goal.Regress(uc.Clock()):
				if err := repos.Goals.Update(ctx, goal); err != nil {
					return err
				}
				res.Goal = &domain.GoalProgress{
					GoalID:       goal.ID,
					NewPercent:   goal.Percent(),
					CurrentValue: goal.CurrentValue,
				}
			}
		}

		res.Completed = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CompleteTask is the terminal task transition. Overdue tasks earn half
// their reward.
func (s *ProgressionService) CompleteTask(ctx context.Context, uc domain.UserContext, taskID string) (*domain.CompletionResult, error) {
	res := &domain.CompletionResult{Kind: domain.KindTask, EntityID: taskID}

	err := s.transition(ctx, uc, func(ctx context.Context, repos domain.Repositories, fx *domain.Effects) error {
		*res = domain.CompletionResult{Kind: domain.KindTask, EntityID: taskID}

		task, err := getOwned(ctx, repos.Tasks, taskID, uc.UserID, domain.ErrTaskNotFound)
		if err != nil {
			return err
		}

		xp, err := task.Complete(uc.Clock(), uc.Loc())
		if err != nil {
			return err
		}
		if err := repos.Tasks.Update(ctx, task); err != nil {
			return err
		}

		if err := s.award(ctx, repos, uc, res, fx, domain.AwardInput{
			Amount:     xp,
			SourceType: domain.SourceTask,
			SourceID:   task.ID,
			Note:       "Completed task: " + task.Title,
		}); err != nil {
			return err
		}
		fx.Add(uc, domain.EffectTaskCompleted, domain.SourceTask, task.ID, xp)

		res.Completed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UncompleteTask always fails for an existing task: tasks have no reverse
// edge.
func (s *ProgressionService) UncompleteTask(ctx context.Context, uc domain.UserContext, taskID string) error {
	if err := uc.Validate(); err != nil {
		return err
	}
	if _, err := getOwned(ctx, s.uow.Repos().Tasks, taskID, uc.UserID, domain.ErrTaskNotFound); err != nil {
		return err
	}
	return domain.ErrIrreversibleCompletion
}

// CompleteMilestone awards the milestone and recomputes its checklist goal;
// crossing 100% completes the goal in the same unit of work.
func (s *ProgressionService) CompleteMilestone(ctx context.Context, uc domain.UserContext, milestoneID string) (*domain.CompletionResult, error) {
	res := &domain.CompletionResult{Kind: domain.KindMilestone, EntityID: milestoneID}
	now := uc.Clock()

	err := s.transition(ctx, uc, func(ctx context.Context, repos domain.Repositories, fx *domain.Effects) error {
		*res = domain.CompletionResult{Kind: domain.KindMilestone, EntityID: milestoneID}

		milestone, err := getOwned(ctx, repos.Milestones, milestoneID, uc.UserID, domain.ErrMilestoneNotFound)
		if err != nil {
			return err
		}

		goal, err := getOwned(ctx, repos.Goals, milestone.GoalID, uc.UserID, domain.ErrGoalNotFound)
		if err != nil {
			return err
		}
		if err := goal.EnsureActive(); err != nil {
			return err
		}

		xp, err := milestone.Complete(now)
		if err != nil {
			return err
		}
		if err := repos.Milestones.Update(ctx, milestone); err != nil {
			return err
		}

		siblings, err := repos.Milestones.Filter(ctx, uc.UserID, func(m *domain.Milestone) bool {
			return m.GoalID == goal.ID
		})
		if err != nil {
			return err
		}
		done, total := domain.ChecklistTally(siblings)

		progress, err := goal.ApplyChecklist(done, total, now)
		if err != nil {
			return err
		}
		if err := repos.Goals.Update(ctx, goal); err != nil {
			return err
		}
		res.Goal = &progress

		if err := s.award(ctx, repos, uc, res, fx, domain.AwardInput{
			Amount:     xp,
			SourceType: domain.SourceMilestone,
			SourceID:   milestone.ID,
			Note:       "Completed milestone: " + milestone.Title,
		}); err != nil {
			return err
		}
		fx.Add(uc, domain.EffectMilestoneComplete, domain.SourceMilestone, milestone.ID, xp)

		if progress.Completed {
			if err := s.awardGoalProgress(ctx, repos, uc, goal, progress, res, fx); err != nil {
				return err
			}
		}

		res.Completed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UncompleteMilestone always fails for an existing milestone.
func (s *ProgressionService) UncompleteMilestone(ctx context.Context, uc domain.UserContext, milestoneID string) error {
	if err := uc.Validate(); err != nil {
		return err
	}
	if _, err := getOwned(ctx, s.uow.Repos().Milestones, milestoneID, uc.UserID, domain.ErrMilestoneNotFound); err != nil {
		return err
	}
	return domain.ErrIrreversibleCompletion
}

// ProgressGoal applies delta to an accumulative goal. A completed goal
// rejects any further progress.
func (s *ProgressionService) ProgressGoal(ctx context.Context, uc domain.UserContext, goalID string, delta int64) (*domain.CompletionResult, error) {
	res := &domain.CompletionResult{Kind: domain.KindGoal, EntityID: goalID}

	err := s.transition(ctx, uc, func(ctx context.Context, repos domain.Repositories, fx *domain.Effects) error {
		*res = domain.CompletionResult{Kind: domain.KindGoal, EntityID: goalID}

		goal, err := getOwned(ctx, repos.Goals, goalID, uc.UserID, domain.ErrGoalNotFound)
		if err != nil {
			return err
		}

		if err := s.applyGoalDelta(ctx, repos, uc, goal, delta, res, fx); err != nil {
			return err
		}

		res.Completed = goal.Status == domain.GoalCompleted
		if len(res.Transactions) == 0 {
			return s.refreshLevel(ctx, repos, uc, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
