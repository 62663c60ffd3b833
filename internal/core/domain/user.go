package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrInvalidTimezone    = errors.New("unknown timezone")
)

const (
	DefaultTimezone   = "UTC"
	minPasswordLength = 8
	passwordCost      = 12
)

// User owns every record in the engine. Timezone drives day boundaries for
// completions and XP history; SFXEnabled gates sound cues.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Timezone     string    `json:"timezone" db:"timezone"`
	SFXEnabled   bool      `json:"sfx_enabled" db:"sfx_enabled"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func NewUser(id, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	return &User{
		ID:         id,
		Email:      email,
		Timezone:   DefaultTimezone,
		SFXEnabled: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetTimezone accepts any IANA name; empty resets to UTC.
func (u *User) SetTimezone(name string) error {
	if name == "" {
		name = DefaultTimezone
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ErrInvalidTimezone
	}
	u.Timezone = name
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) SetPassword(plain string) error {
	if utf8.RuneCountInString(plain) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) CheckPassword(plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain))
}

// Location resolves the user's timezone, defaulting to UTC.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	if loc, err := time.LoadLocation(u.Timezone); err == nil {
		return loc
	}
	return time.UTC
}
