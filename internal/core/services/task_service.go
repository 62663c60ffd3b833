package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type TaskService struct {
	uow domain.UnitOfWork
}

func NewTaskService(uow domain.UnitOfWork) *TaskService {
	return &TaskService{uow: uow}
}

type CreateTaskInput struct {
	UserID   string
	Title    string
	Notes    string
	XPReward *int64
	DueDate  *time.Time
}

func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	reward := int64(domain.DefaultTaskReward)
	if input.XPReward != nil {
		reward = *input.XPReward
	}

	task, err := domain.NewTask(input.UserID, domain.TaskFields{
		Title:    input.Title,
		Notes:    input.Notes,
		XPReward: reward,
		DueDate:  input.DueDate,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.uow.Repos().Tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the user's tasks; pending limits the result to open ones.
func (s *TaskService) List(ctx context.Context, userID string, pending bool) ([]*domain.Task, error) {
	if !pending {
		return s.uow.Repos().Tasks.List(ctx, userID)
	}
	return s.uow.Repos().Tasks.Filter(ctx, userID, func(t *domain.Task) bool {
		return !t.Completed
	})
}

func (s *TaskService) GetByID(ctx context.Context, id, userID string) (*domain.Task, error) {
	return getOwned(ctx, s.uow.Repos().Tasks, id, userID, domain.ErrTaskNotFound)
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	task, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.uow.Repos().Tasks.Delete(ctx, task.ID)
}
