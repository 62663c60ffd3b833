package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrHabitTitleTooLong = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong  = errors.New("habit description is too long (max 500 chars)")
	ErrInvalidColor      = errors.New("invalid color format (must be #RRGGBB)")
	ErrHabitArchived     = errors.New("cannot update an archived habit")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultIcon        = "default_icon"
	DefaultHabitReward = 10
	MaxTitleLen        = 100
	MaxDescLen         = 500
)

type Habit struct {
	RecordMeta
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description,omitempty" db:"description"`
	Color         string     `json:"color" db:"color"`
	Icon          string     `json:"icon" db:"icon"`
	XPReward      int64      `json:"xp_reward" db:"xp_reward"`
	GoalID        *string    `json:"goal_id,omitempty" db:"goal_id"`
	CurrentStreak int        `json:"current_streak" db:"current_streak"`
	LongestStreak int        `json:"longest_streak" db:"longest_streak"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty" db:"archived_at"`
}

type HabitFields struct {
	Title       string
	Description string
	Color       string
	Icon        string
	XPReward    int64
	GoalID      string
}

func validateHabitFields(f HabitFields) (HabitFields, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return f, ErrTitleEmpty
	}
	if len(f.Title) > MaxTitleLen {
		return f, ErrHabitTitleTooLong
	}

	f.Description = strings.TrimSpace(f.Description)
	if len(f.Description) > MaxDescLen {
		return f, ErrHabitDescTooLong
	}

	if f.Color != "" && !colorRegex.MatchString(f.Color) {
		return f, ErrInvalidColor
	}
	if err := ValidateXPReward(f.XPReward); err != nil {
		return f, err
	}
	if f.Icon == "" {
		f.Icon = DefaultIcon
	}
	f.GoalID = strings.TrimSpace(f.GoalID)
	return f, nil
}

func NewHabit(userID string, f HabitFields, now time.Time) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserContext
	}

	f, err := validateHabitFields(f)
	if err != nil {
		return nil, err
	}

	h := &Habit{RecordMeta: newRecordMeta(userID, now)}
	h.apply(f)
	return h, nil
}

func (h *Habit) Update(f HabitFields, now time.Time) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	f, err := validateHabitFields(f)
	if err != nil {
		return err
	}

	h.apply(f)
	h.touch(now)
	return nil
}

func (h *Habit) apply(f HabitFields) {
	h.Title = f.Title
	h.Description = f.Description
	h.Color = f.Color
	h.Icon = f.Icon
	h.XPReward = f.XPReward
	h.GoalID = nil
	if f.GoalID != "" {
		goalID := f.GoalID
		h.GoalID = &goalID
	}
}

func (h *Habit) Archive(now time.Time) {
	if h.ArchivedAt != nil {
		return
	}

	now = now.UTC()
	h.ArchivedAt = &now
	h.touch(now)
}

func (h *Habit) Restore(now time.Time) {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.touch(now)
}

func (h *Habit) UpdateStreak(current, longest int, now time.Time) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.touch(now)
}
