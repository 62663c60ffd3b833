package domain

import (
	"strings"
	"time"
)

const DefaultTaskReward = 15

// Task carries its own completion record: one per task, terminal once set.
type Task struct {
	RecordMeta
	Title       string     `json:"title" db:"title"`
	Notes       string     `json:"notes,omitempty" db:"notes"`
	XPReward    int64      `json:"xp_reward" db:"xp_reward"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	XPEarned    int64      `json:"xp_earned" db:"xp_earned"`
}

type TaskFields struct {
	Title    string
	Notes    string
	XPReward int64
	DueDate  *time.Time
}

func NewTask(userID string, f TaskFields, now time.Time) (*Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserContext
	}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}
	if len(title) > MaxTitleLen {
		return nil, ErrTitleTooLong
	}
	if err := ValidateXPReward(f.XPReward); err != nil {
		return nil, err
	}

	t := &Task{
		RecordMeta: newRecordMeta(userID, now),
		Title:      title,
		Notes:      strings.TrimSpace(f.Notes),
		XPReward:   f.XPReward,
	}
	if f.DueDate != nil {
		due := DateOnly(*f.DueDate)
		t.DueDate = &due
	}
	return t, nil
}

// IsOverdue reports whether completing at now, seen from loc, happens after
// the end of the due day.
func (t *Task) IsOverdue(now time.Time, loc *time.Location) bool {
	if t.DueDate == nil {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	today := DateOnly(now.In(loc))
	return today.After(*t.DueDate)
}

// Complete applies the terminal transition and returns the XP to award.
func (t *Task) Complete(now time.Time, loc *time.Location) (int64, error) {
	if t.Completed {
		return 0, ErrAlreadyCompleted
	}

	xp := CompletionXP(t.XPReward, t.IsOverdue(now, loc))

	now = now.UTC()
	t.Completed = true
	t.CompletedAt = &now
	t.XPEarned = xp
	t.touch(now)
	return xp, nil
}
