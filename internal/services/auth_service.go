package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"siteforge/internal/models"
	"siteforge/internal/repository"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// TokenClaims are the application claims carried in every issued JWT.
// TenantID is the canonical string form of the tenant's registry id (or the
// subdomain on dedicated tenant servers); authorization compares these
// string forms directly.
type TokenClaims struct {
	UserID   string
	TenantID string
	Role     string
}

// IssueToken signs an HS256 token with the application claims.
func IssueToken(secret string, claims TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   claims.UserID,
		"tenant_id": claims.TenantID,
		"role":      claims.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token, returning its claims.
func VerifyToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	claims := &TokenClaims{}
	if v, ok := mapClaims["user_id"].(string); ok {
		claims.UserID = v
	}
	if v, ok := mapClaims["tenant_id"].(string); ok {
		claims.TenantID = v
	}
	if v, ok := mapClaims["role"].(string); ok {
		claims.Role = v
	}
	return claims, nil
}

// AuthService authenticates central platform users.
type AuthService struct {
	users    *repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(users *repository.UserRepository, secret string) *AuthService {
	return &AuthService{
		users:    users,
		secret:   secret,
		tokenTTL: DefaultTokenTTL,
	}
}

// AuthResult is returned on a successful login or registration.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login validates credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tenantID := ""
	if user.TenantID != nil {
		tenantID = user.TenantID.String()
	}
	token, err := IssueToken(s.secret, TokenClaims{
		UserID:   user.ID.String(),
		TenantID: tenantID,
		Role:     user.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Register creates a central user account and issues a token.
func (s *AuthService) Register(ctx context.Context, email, name, password, role string, tenantID *uuid.UUID) (*AuthResult, error) {
	if len(password) < 8 {
		return nil, NewValidationError("password", "must be at least 8 characters")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("user", "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if role == "" {
		role = models.RoleOwner
	}
	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		TenantID:     tenantID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	tenantIDStr := ""
	if tenantID != nil {
		tenantIDStr = tenantID.String()
	}
	token, err := IssueToken(s.secret, TokenClaims{
		UserID:   user.ID.String(),
		TenantID: tenantIDStr,
		Role:     user.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}
