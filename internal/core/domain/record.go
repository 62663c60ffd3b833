package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordMeta carries the identity, ownership and sync columns shared by
// every mutable record. Version is the optimistic lock.
type RecordMeta struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func newRecordMeta(userID string, now time.Time) RecordMeta {
	now = now.UTC()
	return RecordMeta{
		ID:        uuid.NewString(),
		UserID:    userID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *RecordMeta) Meta() *RecordMeta { return m }

func (m *RecordMeta) touch(now time.Time) {
	m.UpdatedAt = now.UTC()
}

// OwnedBy reports whether the record belongs to userID.
func (m *RecordMeta) OwnedBy(userID string) bool {
	return m.UserID != "" && m.UserID == userID
}
