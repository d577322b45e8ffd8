package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ledgerbook/ledgerbook-api/internal/config"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

// Mock UserRepository (using embedding to avoid implementing all methods)
type mockUserRepository struct {
	repository.UserRepository
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockCreate      func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.mockFindByEmail != nil {
		return m.mockFindByEmail(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, user)
	}
	return nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 24,
	}
}

func activeTestUser(t *testing.T) *models.User {
	hashed, err := HashPassword("correct-horse")
	assert.NoError(t, err)
	companyID := uint(7)
	return &models.User{
		ID:                1,
		CompanyID:         &companyID,
		Email:             "owner@example.com",
		EncryptedPassword: hashed,
		Role:              "admin",
		Status:            models.StatusActive,
	}
}

func TestLoginSuccessIssuesSignedToken(t *testing.T) {
	user := activeTestUser(t)
	userRepo := &mockUserRepository{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewAuthService(userRepo, testAuthConfig())

	result, err := svc.Login(context.Background(), "owner@example.com", "correct-horse")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "owner@example.com", result.User.Email)

	token, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(1), claims["user_id"])
	assert.Equal(t, float64(7), claims["company_id"])
	assert.Equal(t, "admin", claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeTestUser(t)
	userRepo := &mockUserRepository{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewAuthService(userRepo, testAuthConfig())

	_, err := svc.Login(context.Background(), "owner@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeTestUser(t)
	user.Status = "suspended"
	userRepo := &mockUserRepository{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewAuthService(userRepo, testAuthConfig())

	_, err := svc.Login(context.Background(), "owner@example.com", "correct-horse")
	assert.EqualError(t, err, "account inactive or suspended")
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *models.User
	userRepo := &mockUserRepository{
		mockCreate: func(ctx context.Context, user *models.User) error {
			created = user
			return nil
		},
	}
	svc := NewAuthService(userRepo, testAuthConfig())

	err := svc.Register(context.Background(), &models.User{Email: "new@example.com"}, "long-enough-pass")

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.NotEqual(t, "long-enough-pass", created.EncryptedPassword)
	assert.True(t, VerifyPassword("long-enough-pass", created.EncryptedPassword))
}

func TestRegisterRejectsShortPasswordAndDuplicates(t *testing.T) {
	svc := NewAuthService(&mockUserRepository{}, testAuthConfig())
	err := svc.Register(context.Background(), &models.User{}, "short")
	assert.Error(t, err)

	userRepo := &mockUserRepository{
		mockCreate: func(ctx context.Context, user *models.User) error {
			return repository.ErrDuplicateKey
		},
	}
	svc = NewAuthService(userRepo, testAuthConfig())
	err = svc.Register(context.Background(), &models.User{}, "long-enough-pass")
	assert.ErrorIs(t, err, ErrDuplicate)
}
