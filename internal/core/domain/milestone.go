package domain

import (
	"strings"
	"time"
)

const DefaultMilestoneReward = 20

// Milestone belongs to exactly one checklist goal, referenced by GoalID.
type Milestone struct {
	RecordMeta
	GoalID      string     `json:"goal_id" db:"goal_id"`
	Title       string     `json:"title" db:"title"`
	XPReward    int64      `json:"xp_reward" db:"xp_reward"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

func NewMilestone(userID, goalID, title string, xpReward int64, now time.Time) (*Milestone, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserContext
	}
	if strings.TrimSpace(goalID) == "" {
		return nil, ErrGoalNotFound
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleEmpty
	}
	if len(title) > MaxTitleLen {
		return nil, ErrTitleTooLong
	}
	if err := ValidateXPReward(xpReward); err != nil {
		return nil, err
	}

	return &Milestone{
		RecordMeta: newRecordMeta(userID, now),
		GoalID:     goalID,
		Title:      title,
		XPReward:   xpReward,
	}, nil
}

func (m *Milestone) Complete(now time.Time) (int64, error) {
	if m.Completed {
		return 0, ErrAlreadyCompleted
	}

	now = now.UTC()
	m.Completed = true
	m.CompletedAt = &now
	m.touch(now)
	return m.XPReward, nil
}

// ChecklistTally counts completed milestones.
func ChecklistTally(milestones []*Milestone) (done, total int64) {
	for _, m := range milestones {
		total++
		if m.Completed {
			done++
		}
	}
	return done, total
}
