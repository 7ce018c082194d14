package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"inventory/internal/apperrors"
	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = models.NewID()
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByFederatedID(ctx context.Context, federatedID string) (*models.User, error) {
	args := m.Called(ctx, federatedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newAuthService(repo repositories.UserRepository) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, time.Hour, logger.Discard())
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	mockRepo.On("GetByEmail", ctx, "ann@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Name == "Ann" && u.Email == "ann@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) == nil
	})).Return(nil).Once()

	result, err := authService.Register(ctx, models.RegisterInput{Name: " Ann ", Email: " ann@example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "Ann", result.User.Name)
	assert.Equal(t, models.RoleUser, result.User.Role)
	assert.Equal(t, result.User.ID, parseClaims(t, result.Token)["user_id"])
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("GetByEmail", ctx, "ann@example.com").Return(&models.User{ID: models.NewID()}, nil).Once()
	_, err = authService.Register(ctx, models.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.Conflict(""))
	assert.Equal(t, "User already exists with this email", apperrors.MessageOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	_, err := authService.Register(context.Background(), models.RegisterInput{Name: "Ann", Email: "not-an-email", Password: "123"})
	assert.ErrorIs(t, err, apperrors.Validation("", nil))
	assert.Contains(t, apperrors.MessageOf(err), "Password must be at least 6 characters")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           models.NewID(),
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}

	// Successful login
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	result, err := authService.Login(ctx, models.LoginInput{Email: user.Email, Password: "password123"})
	require.NoError(t, err)
	claims := parseClaims(t, result.Token)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Public(), result.User)

	// Wrong password
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, err = authService.Login(ctx, models.LoginInput{Email: user.Email, Password: "wrongpassword"})
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))
	assert.Equal(t, "Invalid email or password", apperrors.MessageOf(err))

	// Unknown email gets the same answer
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repositories.ErrNotFound).Once()
	_, err = authService.Login(ctx, models.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))
	assert.Equal(t, "Invalid email or password", apperrors.MessageOf(err))

	// Federated-only account cannot log in with a password
	mockRepo.On("GetByEmail", ctx, "fed@example.com").Return(&models.User{ID: models.NewID(), Email: "fed@example.com"}, nil).Once()
	_, err = authService.Login(ctx, models.LoginInput{Email: "fed@example.com", Password: ""})
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))

	// Store failure is not reported as bad credentials
	mockRepo.On("GetByEmail", ctx, "down@example.com").Return(nil, errors.New("connection reset")).Once()
	_, err = authService.Login(ctx, models.LoginInput{Email: "down@example.com", Password: "password123"})
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginWithPaddedEmail(t *testing.T) {
	ctx := context.Background()
	authService := newAuthService(repositories.NewMockUserRepository())

	registered, err := authService.Register(ctx, models.RegisterInput{Name: "Ann", Email: " ann@example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", registered.User.Email)

	result, err := authService.Login(ctx, models.LoginInput{Email: " ann@example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)

	// The password is compared as sent.
	_, err = authService.Login(ctx, models.LoginInput{Email: "ann@example.com", Password: " secret1 "})
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))
}

func TestAuthService_LoginFederated(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockUserRepository()
	authService := newAuthService(repo)

	// Existing password account with the same email gets linked.
	registered, err := authService.Register(ctx, models.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	linked, created, err := authService.LoginFederated(ctx, models.FederatedInput{
		FederatedID: "fed-1",
		Email:       "ann@example.com",
		Avatar:      "https://example.com/a.png",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, registered.User.ID, linked.User.ID)
	assert.Equal(t, "https://example.com/a.png", linked.User.Avatar)

	stored, err := repo.GetByID(ctx, registered.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FederatedID)
	assert.Equal(t, "fed-1", *stored.FederatedID)
	assert.True(t, stored.HasPassword())

	// Second sign-in finds the linked account first.
	again, created, err := authService.LoginFederated(ctx, models.FederatedInput{FederatedID: "fed-1", Email: "other@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, registered.User.ID, again.User.ID)

	// Unknown identity and email creates a new account.
	fresh, created, err := authService.LoginFederated(ctx, models.FederatedInput{FederatedID: "fed-2", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, registered.User.ID, fresh.User.ID)
	assert.Equal(t, "bob", fresh.User.Name)

	// Federated-only accounts cannot use password login.
	_, err = authService.Login(ctx, models.LoginInput{Email: "bob@example.com", Password: "anything"})
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))

	_, _, err = authService.LoginFederated(ctx, models.FederatedInput{Email: "bob@example.com"})
	assert.ErrorIs(t, err, apperrors.Validation("", nil))
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockUserRepository()
	authService := newAuthService(repo)

	result, err := authService.Register(ctx, models.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := authService.CurrentUser(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)

	_, err = authService.CurrentUser(ctx, "")
	assert.Equal(t, "Access token required", apperrors.MessageOf(err))

	_, err = authService.CurrentUser(ctx, "invalid.token.string")
	assert.Equal(t, "Invalid or expired token", apperrors.MessageOf(err))

	orphan, err := authService.GenerateToken(models.NewID())
	require.NoError(t, err)
	_, err = authService.CurrentUser(ctx, orphan)
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))
	assert.Equal(t, "Invalid token - user not found", apperrors.MessageOf(err))
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository))

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(), // Expires in 1 hour
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])

	// Wrong secret
	forged, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(forged)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(), // Expired 1 hour ago
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Token lifetime follows the configured TTL
	generated, err := authService.GenerateToken("user-123")
	require.NoError(t, err)
	claims, err = authService.ValidateToken(generated)
	require.NoError(t, err)
	exp := int64(claims["exp"].(float64))
	iat := int64(claims["iat"].(float64))
	assert.Equal(t, int64(time.Hour/time.Second), exp-iat)
}
