package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"inventory/internal/apperrors"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/validation"
)

const invalidCredentials = "Invalid email or password"

// dummyHash is compared against when the email is unknown so a failed login
// costs the same whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("inventory-timing-equaliser"), bcrypt.DefaultCost)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	log        *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, log *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
		log:        log,
	}
}

// Register creates a password account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	in.Normalize()
	if err := validation.Register(in); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.Conflict("User already exists with this email")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to look up email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperrors.Conflict("User already exists with this email")
		}
		return nil, apperrors.Internal("failed to register user", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error) {
	in.Normalize()
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to look up email", err)
	}

	hash := dummyHash
	if user != nil && user.HasPassword() {
		hash = []byte(user.PasswordHash)
	}
	// Always compare, even for unknown emails.
	cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(in.Password))
	if user == nil || !user.HasPassword() || cmpErr != nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	s.log.Info("user logged in", "user_id", user.ID)
	return s.issue(user)
}

// LoginFederated signs in with a federated identity. The lookup order is fixed:
// an account already linked to federatedId, then an account with the same
// email (which gets linked), then a new account. created is false only when
// the identity was already linked.
func (s *AuthService) LoginFederated(ctx context.Context, in models.FederatedInput) (result *models.AuthResult, created bool, err error) {
	in.Normalize()
	if err := validation.Federated(in); err != nil {
		return nil, false, apperrors.Validation(err.Error(), err)
	}

	user, err := s.userRepo.GetByFederatedID(ctx, in.FederatedID)
	switch {
	case err == nil:
		result, err := s.issue(user)
		return result, false, err
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, apperrors.Internal("failed to look up federated id", err)
	}

	federatedID := in.FederatedID
	user, err = s.userRepo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		user.FederatedID = &federatedID
		if in.Avatar != "" {
			user.AvatarURL = in.Avatar
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, false, apperrors.Conflict("Federated identity is already linked to another account")
			}
			return nil, false, apperrors.Internal("failed to link federated id", err)
		}
		s.log.Info("federated identity linked", "user_id", user.ID)
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{
			Name:        displayName(in),
			Email:       in.Email,
			FederatedID: &federatedID,
			AvatarURL:   in.Avatar,
			Role:        models.RoleUser,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, false, apperrors.Conflict("User already exists with this email")
			}
			return nil, false, apperrors.Internal("failed to create federated user", err)
		}
		s.log.Info("federated user created", "user_id", user.ID)
	default:
		return nil, false, apperrors.Internal("failed to look up email", err)
	}

	result, err = s.issue(user)
	return result, true, err
}

// CurrentUser resolves a bearer token to its owner.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, apperrors.Unauthorized("Access token required")
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	userID, _ := claims["user_id"].(string)
	if !models.IsValidID(userID) {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid token - user not found")
		}
		return nil, apperrors.Internal("failed to load token owner", err)
	}
	return user, nil
}

// GenerateToken signs a token for userID valid for the configured duration.
func (s *AuthService) GenerateToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":     now.Unix(),                   // Issued at time
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) issue(user *models.User) (*models.AuthResult, error) {
	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token", err)
	}
	return &models.AuthResult{Token: token, User: user.Public()}, nil
}

func displayName(in models.FederatedInput) string {
	if in.Name != "" {
		return in.Name
	}
	for i, r := range in.Email {
		if r == '@' {
			return in.Email[:i]
		}
	}
	return in.Email
}
