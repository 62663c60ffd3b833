package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceHabit     SourceType = "habit"
	SourceTask      SourceType = "task"
	SourceGoal      SourceType = "goal"
	SourceMilestone SourceType = "milestone"
	SourceCheckin   SourceType = "checkin"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceHabit, SourceTask, SourceGoal, SourceMilestone, SourceCheckin:
		return true
	}
	return false
}

// XPTransaction is one immutable row of the append-only XP ledger.
type XPTransaction struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	Amount     int64      `json:"amount" db:"amount"`
	SourceType SourceType `json:"source_type" db:"source_type"`
	SourceID   string     `json:"source_id" db:"source_id"`
	Note       string     `json:"note" db:"note"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type AwardInput struct {
	Amount     int64
	SourceType SourceType
	SourceID   string
	Note       string
}

// NewXPTransaction builds a ledger row. A zero amount is valid and still
// recorded: callers rely on the audit trail.
func NewXPTransaction(userID string, in AwardInput, now time.Time) (*XPTransaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserContext
	}
	if !in.SourceType.Valid() {
		return nil, ErrInvalidSourceType
	}

	return &XPTransaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Amount:     in.Amount,
		SourceType: in.SourceType,
		SourceID:   in.SourceID,
		Note:       strings.TrimSpace(in.Note),
		CreatedAt:  now.UTC(),
	}, nil
}

// SumXP folds a slice of transactions into a total.
func SumXP(txs []*XPTransaction) int64 {
	var total int64
	for _, tx := range txs {
		total += tx.Amount
	}
	return total
}
