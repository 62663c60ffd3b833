package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("Success: Should normalize the email and default to UTC", func(t *testing.T) {
		user, err := NewUser("u-1", "  Ada@Example.COM ")
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, DefaultTimezone, user.Timezone)
		assert.True(t, user.SFXEnabled)
		assert.Equal(t, time.UTC, user.Location())
	})

	t.Run("Fail: Should reject a malformed email", func(t *testing.T) {
		_, err := NewUser("u-1", "not-an-email")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestUser_SetTimezone(t *testing.T) {
	user, err := NewUser("u-1", "ada@example.com")
	require.NoError(t, err)

	require.NoError(t, user.SetTimezone("Asia/Tokyo"))
	assert.Equal(t, "Asia/Tokyo", user.Location().String())

	assert.ErrorIs(t, user.SetTimezone("Mars/Olympus"), ErrInvalidTimezone)
	assert.Equal(t, "Asia/Tokyo", user.Timezone)

	require.NoError(t, user.SetTimezone(""))
	assert.Equal(t, DefaultTimezone, user.Timezone)
}

func TestUser_Location_FallsBackOnBadName(t *testing.T) {
	user := &User{Timezone: "Nowhere/Special"}
	assert.Equal(t, time.UTC, user.Location())
}

func TestUser_Password(t *testing.T) {
	user, err := NewUser("u-1", "ada@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, user.SetPassword("short"), ErrPasswordTooShort)

	require.NoError(t, user.SetPassword("correct-horse"))
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.NoError(t, user.CheckPassword("correct-horse"))
	assert.Error(t, user.CheckPassword("wrong-horse"))
}
