package domain

import (
	"strings"
	"time"
)

// UserContext is the explicit session passed into every core operation.
type UserContext struct {
	UserID     string
	Now        time.Time
	Location   *time.Location
	SFXEnabled bool
}

func NewUserContext(userID string, now time.Time) UserContext {
	return UserContext{
		UserID:     userID,
		Now:        now,
		Location:   time.UTC,
		SFXEnabled: true,
	}
}

func (u UserContext) Validate() error {
	if strings.TrimSpace(u.UserID) == "" {
		return ErrInvalidUserContext
	}
	return nil
}

// Clock returns Now, falling back to the wall clock for zero values.
func (u UserContext) Clock() time.Time {
	if u.Now.IsZero() {
		return time.Now().UTC()
	}
	return u.Now
}

func (u UserContext) Loc() *time.Location {
	if u.Location == nil {
		return time.UTC
	}
	return u.Location
}

// Today is the user's current calendar day as a UTC midnight.
func (u UserContext) Today() time.Time {
	return DateOnly(u.Clock().In(u.Loc()))
}
