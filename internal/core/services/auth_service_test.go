package services

import (
	"context"
	"testing"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("Success: Should register a valid user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{
			Email:    "test_success@kanso.app",
			Password: "StrongPassword123!",
		}

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.Register(ctx, input)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, input.Email, user.Email)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should return error for invalid email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{Email: "not-an-email", Password: "pass"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return error for short password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{Email: "valid@email.com", Password: "short"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should propagate repository error (Duplicate Email)", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{Email: "duplicate@email.com", Password: "StrongPassword123!"}

		mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.Nil(t, user)

		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_RegisterTimezone(t *testing.T) {
	t.Parallel()

	t.Run("Success: Should store a known timezone", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.Register(ctx, RegisterInput{
			Email:    "rome@kanso.app",
			Password: "StrongPassword123!",
			Timezone: "Europe/Rome",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Europe/Rome", user.Timezone)
		assert.Equal(t, "Europe/Rome", user.Location().String())
	})

	t.Run("Fail: Should reject an unknown timezone", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)

		user, err := service.Register(context.Background(), RegisterInput{
			Email:    "nowhere@kanso.app",
			Password: "StrongPassword123!",
			Timezone: "Mars/Olympus",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidTimezone)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	stored, err := domain.NewUser("user-1", "login@kanso.app")
	if err != nil {
		t.Fatal(err)
	}
	if err := stored.SetPassword("CorrectHorse42"); err != nil {
		t.Fatal(err)
	}

	t.Run("Success: Should return the user for valid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(stored, nil)

		user, err := service.Login(context.Background(), LoginInput{Email: "login@kanso.app", Password: "CorrectHorse42"})

		assert.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should hide a wrong password behind invalid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(stored, nil)

		user, err := service.Login(context.Background(), LoginInput{Email: "login@kanso.app", Password: "wrong-password"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Nil(t, user)
	})

	t.Run("Fail: Should hide an unknown email behind invalid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, "ghost@kanso.app").Return(nil, domain.ErrUserNotFound)

		user, err := service.Login(context.Background(), LoginInput{Email: "ghost@kanso.app", Password: "whatever123"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Nil(t, user)
	})
}
