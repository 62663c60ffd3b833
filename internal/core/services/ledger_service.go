package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type LedgerService struct {
	uow       domain.UnitOfWork
	tiers     []domain.LevelTier
	cache     domain.TotalCache
	publisher domain.EffectPublisher
	log       *logrus.Logger
}

type LedgerConfig struct {
	Tiers     []domain.LevelTier
	Cache     domain.TotalCache
	Publisher domain.EffectPublisher
	Logger    *logrus.Logger
}

func NewLedgerService(uow domain.UnitOfWork, cfg LedgerConfig) (*LedgerService, error) {
	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = domain.DefaultTiers()
	}
	if err := domain.ValidateTiers(tiers); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &LedgerService{
		uow:       uow,
		tiers:     tiers,
		cache:     cfg.Cache,
		publisher: cfg.Publisher,
		log:       log,
	}, nil
}

func (s *LedgerService) Tiers() []domain.LevelTier {
	out := make([]domain.LevelTier, len(s.tiers))
	copy(out, s.tiers)
	return out
}

func (s *LedgerService) LevelFor(total int64) domain.LevelInfo {
	return domain.ResolveLevel(total, s.tiers)
}

// Award appends a single transaction in its own unit of work.
func (s *LedgerService) Award(ctx context.Context, uc domain.UserContext, in domain.AwardInput) (*domain.XPTransaction, domain.LevelInfo, error) {
	if err := uc.Validate(); err != nil {
		return nil, domain.LevelInfo{}, err
	}

	var (
		tx    *domain.XPTransaction
		level domain.LevelInfo
		fx    domain.Effects
	)

	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		tx, level, err = s.appendAward(ctx, repos, uc, in, &fx)
		return err
	})
	if err != nil {
		return nil, domain.LevelInfo{}, err
	}

	s.committed(ctx, uc, fx)
	return tx, level, nil
}

// appendAward writes one ledger row inside the caller's unit of work and
// records the xp and level effects.
func (s *LedgerService) appendAward(ctx context.Context, repos domain.Repositories, uc domain.UserContext, in domain.AwardInput, fx *domain.Effects) (*domain.XPTransaction, domain.LevelInfo, error) {
	tx, err := domain.NewXPTransaction(uc.UserID, in, uc.Clock())
	if err != nil {
		return nil, domain.LevelInfo{}, err
	}

	before, err := repos.Ledger.SumByUser(ctx, uc.UserID)
	if err != nil {
		return nil, domain.LevelInfo{}, fmt.Errorf("ledger: read total: %w", err)
	}

	if err := repos.Ledger.Append(ctx, tx); err != nil {
		return nil, domain.LevelInfo{}, fmt.Errorf("ledger: append: %w", err)
	}

	prev := s.LevelFor(before)
	next := s.LevelFor(before + tx.Amount)

	fx.Add(uc, domain.EffectXPAwarded, in.SourceType, in.SourceID, tx.Amount)
	if prev.Index != next.Index {
		*fx = append(*fx, domain.Effect{
			Kind:       domain.EffectLevelChanged,
			UserID:     uc.UserID,
			SourceType: in.SourceType,
			SourceID:   in.SourceID,
			Amount:     tx.Amount,
			LevelIndex: next.Index,
			SFX:        uc.SFXEnabled,
			At:         uc.Clock().UTC(),
		})
	}

	return tx, next, nil
}

// committed runs after a unit of work succeeds: the cached total is
// dropped and effects go to the publisher. Nothing here can fail the
// transition.
func (s *LedgerService) committed(ctx context.Context, uc domain.UserContext, fx domain.Effects) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, uc.UserID)
	}
	publishCommitted(s.log, s.publisher, uc.UserID, fx)
}

func (s *LedgerService) Total(ctx context.Context, uc domain.UserContext) (int64, error) {
	if err := uc.Validate(); err != nil {
		return 0, err
	}

	if s.cache != nil {
		if total, ok := s.cache.Get(ctx, uc.UserID); ok {
			return total, nil
		}
	}

	total, err := s.uow.Repos().Ledger.SumByUser(ctx, uc.UserID)
	if err != nil {
		return 0, fmt.Errorf("ledger: read total: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, uc.UserID, total)
	}
	return total, nil
}

func (s *LedgerService) Level(ctx context.Context, uc domain.UserContext) (domain.LevelInfo, error) {
	total, err := s.Total(ctx, uc)
	if err != nil {
		return domain.LevelInfo{}, err
	}
	return s.LevelFor(total), nil
}

func (s *LedgerService) History(ctx context.Context, uc domain.UserContext, from, to time.Time) ([]*domain.XPTransaction, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	return s.uow.Repos().Ledger.ListByUser(ctx, uc.UserID, from, to)
}

// Summary buckets ledger rows per calendar day of the requested range.
func (s *LedgerService) Summary(ctx context.Context, input domain.StatsInput) (*domain.XPSummary, error) {
	loc := input.Location
	if loc == nil {
		loc = time.UTC
	}

	startDate := domain.DateOnly(input.StartDate.In(loc))
	endDate := domain.DateOnly(input.EndDate.In(loc))

	from := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, loc)
	to := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, int(time.Second-1), loc)

	txs, err := s.uow.Repos().Ledger.ListByUser(ctx, input.UserID, from, to)
	if err != nil {
		return nil, err
	}

	type bucket struct{ gained, lost int64 }
	perDay := make(map[string]*bucket)

	summary := &domain.XPSummary{
		StartDate: startDate.Format(domain.DateLayout),
		EndDate:   endDate.Format(domain.DateLayout),
		BySource:  make(map[domain.SourceType]int64),
	}

	for _, tx := range txs {
		key := tx.CreatedAt.In(loc).Format(domain.DateLayout)
		b, ok := perDay[key]
		if !ok {
			b = &bucket{}
			perDay[key] = b
		}

		if tx.Amount >= 0 {
			b.gained += tx.Amount
			summary.Gained += tx.Amount
		} else {
			b.lost += -tx.Amount
			summary.Lost += -tx.Amount
		}
		summary.BySource[tx.SourceType] += tx.Amount
	}

	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		key := day.Format(domain.DateLayout)
		entry := domain.DailyXP{Date: key}
		if b, ok := perDay[key]; ok {
			entry.Gained = b.gained
			entry.Lost = b.lost
			entry.Net = b.gained - b.lost
		}
		summary.Days = append(summary.Days, entry)
	}

	summary.Net = summary.Gained - summary.Lost
	return summary, nil
}
