package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"siteforge/internal/models"
	"siteforge/internal/repository"
)

// TenantAuthService authenticates users of one generated tenant site against
// that tenant's own users collection. On a dedicated tenant server the
// content store is backed by a fixed resolver, so lookups can never leave
// the tenant's database.
type TenantAuthService struct {
	store     repository.ContentStore
	subdomain string
	secret    string
	tokenTTL  time.Duration
}

// NewTenantAuthService creates the per-tenant auth service.
func NewTenantAuthService(store repository.ContentStore, subdomain, secret string) *TenantAuthService {
	return &TenantAuthService{
		store:     store,
		subdomain: subdomain,
		secret:    secret,
		tokenTTL:  DefaultTokenTTL,
	}
}

// TenantAuthResult is returned on successful tenant-site login/registration.
type TenantAuthResult struct {
	Token string             `json:"token"`
	User  *models.TenantUser `json:"user"`
}

// Login validates tenant-site credentials and issues a token scoped to the
// tenant subdomain.
func (s *TenantAuthService) Login(ctx context.Context, email, password string) (*TenantAuthResult, error) {
	var user models.TenantUser
	err := s.store.GetByFilter(ctx, s.subdomain, models.CollectionUsers, bson.M{"email": email}, &user)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := IssueToken(s.secret, TokenClaims{
		UserID:   user.ID.Hex(),
		TenantID: s.subdomain,
		Role:     user.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &TenantAuthResult{Token: token, User: &user}, nil
}

// Register creates an account in the tenant's users collection.
func (s *TenantAuthService) Register(ctx context.Context, email, name, password string) (*TenantAuthResult, error) {
	if len(password) < 8 {
		return nil, NewValidationError("password", "must be at least 8 characters")
	}

	var existing models.TenantUser
	err := s.store.GetByFilter(ctx, s.subdomain, models.CollectionUsers, bson.M{"email": email}, &existing)
	if err == nil {
		return nil, NewConflictError("user", "email already registered")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.TenantUser{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleEditor,
		IsActive:     true,
	}
	user.Stamp(time.Now().UTC(), true)

	id, err := s.store.Create(ctx, s.subdomain, models.CollectionUsers, &user)
	if err != nil {
		return nil, err
	}
	user.SetID(id)

	token, err := IssueToken(s.secret, TokenClaims{
		UserID:   user.ID.Hex(),
		TenantID: s.subdomain,
		Role:     user.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &TenantAuthResult{Token: token, User: &user}, nil
}
