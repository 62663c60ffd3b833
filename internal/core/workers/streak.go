package workers

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// StreakUpdater recomputes a habit's streaks whenever one of its days is
// completed or reverted.
type StreakUpdater struct {
	uow domain.UnitOfWork
	log *logrus.Logger
	now func() time.Time
}

func NewStreakUpdater(uow domain.UnitOfWork, log *logrus.Logger) *StreakUpdater {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StreakUpdater{
		uow: uow,
		log: log,
		now: time.Now,
	}
}

func (s *StreakUpdater) Handle(ctx context.Context, effect domain.Effect) error {
	if effect.Kind != domain.EffectHabitCompleted && effect.Kind != domain.EffectHabitUncompleted {
		return nil
	}

	err := s.recompute(ctx, effect.UserID, effect.SourceID)
	if errors.Is(err, domain.ErrVersionConflict) {
		err = s.recompute(ctx, effect.UserID, effect.SourceID)
	}
	return err
}

func (s *StreakUpdater) recompute(ctx context.Context, userID, habitID string) error {
	repos := s.uow.Repos()

	habit, err := repos.Habits.GetByID(ctx, habitID)
	if err != nil {
		return err
	}

	completions, err := repos.Completions.Filter(ctx, userID, func(c *domain.HabitCompletion) bool {
		return c.HabitID == habitID && c.Completed
	})
	if err != nil {
		return err
	}

	current, longest := calculateStreaks(completions, s.now())

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return nil
	}

	habit.UpdateStreak(current, longest, s.now())
	if err := repos.Habits.Update(ctx, habit); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"habit_id": habitID,
		"current":  current,
		"longest":  longest,
	}).Debug("streak updated")
	return nil
}

// calculateStreaks returns the current run ending today or yesterday and
// the longest run ever, counting each calendar day once.
func calculateStreaks(completions []*domain.HabitCompletion, now time.Time) (int, int) {
	if len(completions) == 0 {
		return 0, 0
	}

	uniqueDays := make(map[time.Time]bool)
	var sortedDates []time.Time

	for _, c := range completions {
		day := domain.DateOnly(c.Date)
		if !uniqueDays[day] {
			uniqueDays[day] = true
			sortedDates = append(sortedDates, day)
		}
	}

	sort.Slice(sortedDates, func(i, j int) bool {
		return sortedDates[i].After(sortedDates[j])
	})

	consecutive := func(later, earlier time.Time) bool {
		return earlier.AddDate(0, 0, 1).Equal(later)
	}

	currentStreak := 0
	today := domain.DateOnly(now.UTC())
	lastEntryDate := sortedDates[0]

	if !lastEntryDate.Before(today.AddDate(0, 0, -1)) {
		currentStreak = 1
		for i := 0; i < len(sortedDates)-1; i++ {
			if !consecutive(sortedDates[i], sortedDates[i+1]) {
				break
			}
			currentStreak++
		}
	}

	longestStreak := 0
	tempStreak := 1

	for i := 0; i < len(sortedDates)-1; i++ {
		if consecutive(sortedDates[i], sortedDates[i+1]) {
			tempStreak++
			continue
		}
		if tempStreak > longestStreak {
			longestStreak = tempStreak
		}
		tempStreak = 1
	}
	if tempStreak > longestStreak {
		longestStreak = tempStreak
	}

	return currentStreak, longestStreak
}
