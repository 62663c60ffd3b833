package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates valid habit with defaults AND Sync fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", domain.HabitFields{Title: "Drink Water", XPReward: 10}, time.Now())

		require.NoError(t, err)
		assert.Equal(t, "Drink Water", h.Title)
		assert.Equal(t, "u1", h.UserID)
		assert.NotEmpty(t, h.ID)
		assert.Equal(t, domain.DefaultIcon, h.Icon)
		assert.Nil(t, h.GoalID)

		assert.Equal(t, 1, h.Version, "New habits MUST start at Version 1 for Optimistic Locking")
		assert.Nil(t, h.DeletedAt, "New habits MUST NOT be marked as deleted")
		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	t.Run("Success: Links a goal", func(t *testing.T) {
		h, err := domain.NewHabit("u1", domain.HabitFields{Title: "Read", GoalID: " g1 "}, time.Now())
		require.NoError(t, err)
		require.NotNil(t, h.GoalID)
		assert.Equal(t, "g1", *h.GoalID)
	})

	t.Run("Error: Invalid UserID", func(t *testing.T) {
		_, err := domain.NewHabit("", domain.HabitFields{Title: "Title"}, time.Now())
		assert.Equal(t, domain.ErrInvalidUserContext, err)
	})
}

func TestHabit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		fields  domain.HabitFields
		wantErr error
	}{
		{name: "Empty title", fields: domain.HabitFields{Title: "  "}, wantErr: domain.ErrTitleEmpty},
		{name: "Title too long", fields: domain.HabitFields{Title: strings.Repeat("a", 101)}, wantErr: domain.ErrHabitTitleTooLong},
		{name: "Description too long", fields: domain.HabitFields{Title: "ok", Description: strings.Repeat("a", 501)}, wantErr: domain.ErrHabitDescTooLong},
		{name: "Invalid color", fields: domain.HabitFields{Title: "ok", Color: "red"}, wantErr: domain.ErrInvalidColor},
		{name: "Negative reward", fields: domain.HabitFields{Title: "ok", XPReward: -5}, wantErr: domain.ErrInvalidXPReward},
		{name: "Reward above the cap", fields: domain.HabitFields{Title: "ok", XPReward: 1<<62 + 1}, wantErr: domain.ErrInvalidXPReward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewHabit("u1", tt.fields, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	h, err := domain.NewHabit("u1", domain.HabitFields{Title: "ok", Color: "#FFF"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "#FFF", h.Color)
}

func TestHabit_ArchiveLifecycle(t *testing.T) {
	now := time.Now()
	h, err := domain.NewHabit("u1", domain.HabitFields{Title: "Stretch"}, now)
	require.NoError(t, err)

	h.Archive(now)
	require.NotNil(t, h.ArchivedAt)

	err = h.Update(domain.HabitFields{Title: "Stretch more"}, now)
	assert.ErrorIs(t, err, domain.ErrHabitArchived)
	assert.Equal(t, "Stretch", h.Title)

	h.Restore(now)
	assert.Nil(t, h.ArchivedAt)
	require.NoError(t, h.Update(domain.HabitFields{Title: "Stretch more", XPReward: 12}, now))
	assert.Equal(t, int64(12), h.XPReward)

	err = h.Update(domain.HabitFields{Title: "Stretch more", XPReward: domain.MaxXPReward + 1}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidXPReward)
	assert.Equal(t, int64(12), h.XPReward)
}
