package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type GoalService struct {
	uow domain.UnitOfWork
}

func NewGoalService(uow domain.UnitOfWork) *GoalService {
	return &GoalService{uow: uow}
}

type CreateGoalInput struct {
	UserID        string
	Title         string
	GoalType      domain.GoalType
	TargetValue   int64
	Unit          string
	XPOnComplete  *int64
	XPPerProgress int64
}

type AddMilestoneInput struct {
	UserID   string
	GoalID   string
	Title    string
	XPReward *int64
}

// GoalDetail is a goal with its milestones.
type GoalDetail struct {
	*domain.Goal
	Percent    float64             `json:"percent"`
	Milestones []*domain.Milestone `json:"milestones,omitempty"`
}

func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	reward := int64(domain.DefaultGoalReward)
	if input.XPOnComplete != nil {
		reward = *input.XPOnComplete
	}

	goal, err := domain.NewGoal(input.UserID, domain.GoalFields{
		Title:         input.Title,
		GoalType:      input.GoalType,
		TargetValue:   input.TargetValue,
		Unit:          input.Unit,
		XPOnComplete:  reward,
		XPPerProgress: input.XPPerProgress,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.uow.Repos().Goals.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) List(ctx context.Context, userID string, status domain.GoalStatus) ([]*domain.Goal, error) {
	if status == "" {
		return s.uow.Repos().Goals.List(ctx, userID)
	}
	return s.uow.Repos().Goals.Filter(ctx, userID, func(g *domain.Goal) bool {
		return g.Status == status
	})
}

func (s *GoalService) Get(ctx context.Context, id, userID string) (*GoalDetail, error) {
	repos := s.uow.Repos()

	goal, err := getOwned(ctx, repos.Goals, id, userID, domain.ErrGoalNotFound)
	if err != nil {
		return nil, err
	}

	detail := &GoalDetail{Goal: goal, Percent: goal.Percent()}
	if goal.GoalType == domain.GoalChecklist {
		detail.Milestones, err = repos.Milestones.Filter(ctx, userID, func(m *domain.Milestone) bool {
			return m.GoalID == goal.ID
		})
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func (s *GoalService) Archive(ctx context.Context, id, userID string) (*domain.Goal, error) {
	return s.mutate(ctx, id, userID, (*domain.Goal).Archive)
}

func (s *GoalService) Restore(ctx context.Context, id, userID string) (*domain.Goal, error) {
	return s.mutate(ctx, id, userID, (*domain.Goal).Restore)
}

func (s *GoalService) mutate(ctx context.Context, id, userID string, fn func(*domain.Goal, time.Time) error) (*domain.Goal, error) {
	repos := s.uow.Repos()

	goal, err := getOwned(ctx, repos.Goals, id, userID, domain.ErrGoalNotFound)
	if err != nil {
		return nil, err
	}
	if err := fn(goal, time.Now()); err != nil {
		return nil, err
	}
	if err := repos.Goals.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// AddMilestone attaches a milestone to an active checklist goal, growing
// the checklist in the same unit of work.
func (s *GoalService) AddMilestone(ctx context.Context, input AddMilestoneInput) (*domain.Milestone, error) {
	reward := int64(domain.DefaultMilestoneReward)
	if input.XPReward != nil {
		reward = *input.XPReward
	}

	var milestone *domain.Milestone
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		goal, err := getOwned(ctx, repos.Goals, input.GoalID, input.UserID, domain.ErrGoalNotFound)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := goal.AddMilestoneSlot(now); err != nil {
			return err
		}

		milestone, err = domain.NewMilestone(input.UserID, goal.ID, input.Title, reward, now)
		if err != nil {
			return err
		}

		if err := repos.Milestones.Create(ctx, milestone); err != nil {
			return err
		}
		return repos.Goals.Update(ctx, goal)
	})
	if err != nil {
		return nil, err
	}
	return milestone, nil
}
