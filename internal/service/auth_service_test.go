package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"elektora/internal/auth"
	apperrors "elektora/internal/errors"
	"elektora/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) HasRole(ctx context.Context, role string) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func hashPassword(t *testing.T, password string) *string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	hash := string(hashed)
	return &hash
}

func TestAuthService_Register(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")

	t.Run("creates a USER-role account", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "jane@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		user, err := svc.Register(context.Background(), "jane@example.com", "password123", "Jane")

		assert.NoError(t, err)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, "Jane", user.Name)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.NotNil(t, user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("password123")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("email already registered", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "jane@example.com").
			Return(&model.User{Email: "jane@example.com"}, nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, err := svc.Register(context.Background(), "jane@example.com", "password123", "Jane")

		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique index violation at insert", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "jane@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, err := svc.Register(context.Background(), "jane@example.com", "password123", "Jane")

		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New()

	t.Run("valid credentials yield both tokens", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "jane@example.com").Return(&model.User{
			ID:           userID,
			Email:        "jane@example.com",
			PasswordHash: hashPassword(t, "password123"),
			Role:         model.RoleUser,
		}, nil)
		mockStore.On("StoreRefreshToken", mock.Anything, mock.AnythingOfType("string"), userID, "jane@example.com", auth.RefreshTokenExpiry).Return(nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		accessToken, refreshToken, user, err := svc.Login(context.Background(), "jane@example.com", "password123")

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.Equal(t, userID, user.ID)

		claims, err := jwtService.ValidateToken(accessToken)
		assert.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, model.RoleUser, claims.Role)

		mockRepo.AssertExpectations(t)
		mockStore.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "jane@example.com").Return(&model.User{
			ID:           userID,
			Email:        "jane@example.com",
			PasswordHash: hashPassword(t, "password123"),
		}, nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, _, _, err := svc.Login(context.Background(), "jane@example.com", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like bad credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("account without a password cannot log in", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "oauth@example.com").Return(&model.User{
			ID:    userID,
			Email: "oauth@example.com",
		}, nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, _, _, err := svc.Login(context.Background(), "oauth@example.com", "anything")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockStore.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New()

	issueRefreshToken := func(t *testing.T) (tokenID, token string) {
		t.Helper()
		tokenID, token, err := jwtService.GenerateRefreshToken(userID, "jane@example.com")
		assert.NoError(t, err)
		return tokenID, token
	}

	t.Run("new access token carries the current role from the store", func(t *testing.T) {
		tokenID, refreshToken := issueRefreshToken(t)

		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("GetRefreshToken", mock.Anything, tokenID).Return(userID, "jane@example.com", nil)
		// Promoted to admin after the refresh token was issued.
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:    userID,
			Email: "jane@example.com",
			Role:  model.RoleAdmin,
		}, nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		accessToken, err := svc.RefreshToken(context.Background(), refreshToken)

		assert.NoError(t, err)
		claims, err := jwtService.ValidateToken(accessToken)
		assert.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
		mockRepo.AssertExpectations(t)
		mockStore.AssertExpectations(t)
	})

	t.Run("token unknown to the store", func(t *testing.T) {
		tokenID, refreshToken := issueRefreshToken(t)

		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("GetRefreshToken", mock.Anything, tokenID).
			Return(uuid.Nil, "", errors.New("refresh token not found"))

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, err := svc.RefreshToken(context.Background(), refreshToken)

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("stored record does not match the token claims", func(t *testing.T) {
		tokenID, refreshToken := issueRefreshToken(t)

		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.New(), "jane@example.com", nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, err := svc.RefreshToken(context.Background(), refreshToken)

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("garbage token string", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, err := svc.RefreshToken(context.Background(), "not-a-jwt")

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		otherService := auth.NewJWTService("other-secret")
		_, refreshToken, err := otherService.GenerateRefreshToken(userID, "jane@example.com")
		assert.NoError(t, err)

		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		_, err = svc.RefreshToken(context.Background(), refreshToken)

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New()

	t.Run("removes the stored refresh token", func(t *testing.T) {
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(userID, "jane@example.com")
		assert.NoError(t, err)

		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		assert.NoError(t, svc.Logout(context.Background(), refreshToken))
		mockStore.AssertExpectations(t)
	})

	t.Run("invalid token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)

		svc := NewAuthService(mockRepo, jwtService, mockStore)
		err := svc.Logout(context.Background(), "not-a-jwt")

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		mockStore.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, mock.Anything)
	})
}
