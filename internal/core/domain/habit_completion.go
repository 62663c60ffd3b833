package domain

import (
	"errors"
	"strings"
	"time"
)

// HabitCompletion is the completion record of a habit for one calendar day.
// At most one exists per (habit, date).
type HabitCompletion struct {
	RecordMeta
	HabitID   string    `json:"habit_id" db:"habit_id"`
	Date      time.Time `json:"date" db:"completion_date"`
	Completed bool      `json:"completed" db:"completed"`
	XPEarned  int64     `json:"xp_earned" db:"xp_earned"`
}

func NewHabitCompletion(habitID, userID string, date time.Time, now time.Time) *HabitCompletion {
	return &HabitCompletion{
		RecordMeta: newRecordMeta(userID, now),
		HabitID:    habitID,
		Date:       DateOnly(date),
	}
}

func (c *HabitCompletion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return ErrInvalidUserContext
	}
	if c.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Complete is the idempotent-once edge: a completed record cannot be
// completed again.
func (c *HabitCompletion) Complete(xp int64, now time.Time) error {
	if c.Completed {
		return ErrAlreadyCompleted
	}
	c.Completed = true
	c.XPEarned = xp
	c.touch(now)
	return nil
}

// SameDay reports whether the record belongs to habitID on date.
func (c *HabitCompletion) SameDay(habitID string, date time.Time) bool {
	return c.HabitID == habitID && c.Date.Equal(DateOnly(date))
}
