package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type HabitService struct {
	uow domain.UnitOfWork
}

func NewHabitService(uow domain.UnitOfWork) *HabitService {
	return &HabitService{
		uow: uow,
	}
}

type CreateHabitInput struct {
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	XPReward    *int64
	GoalID      string
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	XPReward    *int64
	GoalID      *string
	Version     int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	reward := int64(domain.DefaultHabitReward)
	if input.XPReward != nil {
		reward = *input.XPReward
	}

	habit, err := domain.NewHabit(input.UserID, domain.HabitFields{
		Title:       input.Title,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		XPReward:    reward,
		GoalID:      input.GoalID,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	repos := s.uow.Repos()
	if habit.GoalID != nil {
		if _, err := getOwned(ctx, repos.Goals, *habit.GoalID, input.UserID, domain.ErrGoalNotFound); err != nil {
			return nil, err
		}
	}

	if err := repos.Habits.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.uow.Repos().Habits.List(ctx, userID)
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return getOwned(ctx, s.uow.Repos().Habits, id, userID, domain.ErrHabitNotFound)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	repos := s.uow.Repos()

	habit, err := getOwned(ctx, repos.Habits, input.ID, input.UserID, domain.ErrHabitNotFound)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrVersionConflict, input.Version, habit.Version)
	}

	reward := habit.XPReward
	if input.XPReward != nil {
		reward = *input.XPReward
	}

	goalID := ""
	if habit.GoalID != nil {
		goalID = *habit.GoalID
	}
	if input.GoalID != nil {
		goalID = *input.GoalID
		if goalID != "" {
			if _, err := getOwned(ctx, repos.Goals, goalID, input.UserID, domain.ErrGoalNotFound); err != nil {
				return nil, err
			}
		}
	}

	err = habit.Update(domain.HabitFields{
		Title:       mergeString(input.Title, habit.Title),
		Description: mergeString(input.Description, habit.Description),
		Color:       mergeString(input.Color, habit.Color),
		Icon:        mergeString(input.Icon, habit.Icon),
		XPReward:    reward,
		GoalID:      goalID,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	if err := repos.Habits.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return s.mutate(ctx, id, userID, func(h *domain.Habit, now time.Time) { h.Archive(now) })
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return s.mutate(ctx, id, userID, func(h *domain.Habit, now time.Time) { h.Restore(now) })
}

func (s *HabitService) mutate(ctx context.Context, id, userID string, fn func(*domain.Habit, time.Time)) (*domain.Habit, error) {
	repos := s.uow.Repos()

	habit, err := getOwned(ctx, repos.Habits, id, userID, domain.ErrHabitNotFound)
	if err != nil {
		return nil, err
	}

	fn(habit, time.Now())
	if err := repos.Habits.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	repos := s.uow.Repos()

	habit, err := getOwned(ctx, repos.Habits, id, userID, domain.ErrHabitNotFound)
	if err != nil {
		return err
	}

	return repos.Habits.Delete(ctx, habit.ID)
}

// Completions lists the completion records of a habit within [from, to].
func (s *HabitService) Completions(ctx context.Context, habitID, userID string, from, to time.Time) ([]*domain.HabitCompletion, error) {
	repos := s.uow.Repos()

	if _, err := getOwned(ctx, repos.Habits, habitID, userID, domain.ErrHabitNotFound); err != nil {
		return nil, err
	}

	from, to = domain.DateOnly(from), domain.DateOnly(to)
	return repos.Completions.Filter(ctx, userID, func(c *domain.HabitCompletion) bool {
		return c.HabitID == habitID && !c.Date.Before(from) && !c.Date.After(to)
	})
}
