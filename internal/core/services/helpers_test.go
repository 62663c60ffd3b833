package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

func ptr[T any](v T) *T {
	return &v
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func userCtx(userID string) domain.UserContext {
	return domain.NewUserContext(userID, testNow)
}

type recordingPublisher struct {
	mu      sync.Mutex
	effects []domain.Effect
}

func (p *recordingPublisher) Publish(effects ...domain.Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effects = append(p.effects, effects...)
}

func (p *recordingPublisher) kinds() []domain.EffectKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EffectKind, len(p.effects))
	for i, e := range p.effects {
		out[i] = e.Kind
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effects = nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(effects ...domain.Effect) {
	m.Called(effects)
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(effects ...domain.Effect) {
	panic("speaker unplugged")
}

// failingLedger accepts reads and refuses every append.
type failingLedger struct{}

func (failingLedger) Append(ctx context.Context, tx *domain.XPTransaction) error {
	return errors.New("ledger unavailable")
}

func (failingLedger) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.XPTransaction, error) {
	return nil, nil
}

func (failingLedger) SumByUser(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

// brokenLedgerUoW runs transitions on the real store with a ledger that
// fails on append.
type brokenLedgerUoW struct {
	*repository.MemoryStore
}

func (u brokenLedgerUoW) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return u.MemoryStore.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		repos.Ledger = failingLedger{}
		return fn(ctx, repos)
	})
}

type fixture struct {
	store       *repository.MemoryStore
	publisher   *recordingPublisher
	ledger      *services.LedgerService
	progression *services.ProgressionService
	habits      *services.HabitService
	tasks       *services.TaskService
	goals       *services.GoalService
	finance     *services.FinanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	publisher := &recordingPublisher{}
	logger, _ := test.NewNullLogger()

	ledger, err := services.NewLedgerService(store, services.LedgerConfig{
		Publisher: publisher,
		Logger:    logger,
	})
	require.NoError(t, err)

	return &fixture{
		store:       store,
		publisher:   publisher,
		ledger:      ledger,
		progression: services.NewProgressionService(store, ledger),
		habits:      services.NewHabitService(store),
		tasks:       services.NewTaskService(store),
		goals:       services.NewGoalService(store),
		finance:     services.NewFinanceService(store, publisher, logger),
	}
}

func (f *fixture) total(t *testing.T, userID string) int64 {
	t.Helper()
	total, err := f.ledger.Total(context.Background(), userCtx(userID))
	require.NoError(t, err)
	return total
}

func (f *fixture) history(t *testing.T, userID string) []*domain.XPTransaction {
	t.Helper()
	txs, err := f.ledger.History(context.Background(), userCtx(userID), time.Time{}, time.Time{})
	require.NoError(t, err)
	return txs
}

func (f *fixture) habit(t *testing.T, userID string, reward int64, goalID string) *domain.Habit {
	t.Helper()
	h, err := f.habits.Create(context.Background(), services.CreateHabitInput{
		UserID:   userID,
		Title:    "Meditate",
		XPReward: ptr(reward),
		GoalID:   goalID,
	})
	require.NoError(t, err)
	return h
}
