package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"siteforge/internal/models"
)

// MockTenantRegistry is a mock implementation of TenantRegistry.
type MockTenantRegistry struct {
	mock.Mock
}

func (m *MockTenantRegistry) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRegistry) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if tenant := args.Get(0); tenant != nil {
		return tenant.(*models.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTenantRegistry) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if tenant := args.Get(0); tenant != nil {
		return tenant.(*models.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTenantRegistry) List(ctx context.Context, status string, page, pageSize int) ([]models.Tenant, int64, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]models.Tenant), args.Get(1).(int64), args.Error(2)
}

func (m *MockTenantRegistry) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRegistry) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	args := m.Called(ctx, subdomain)
	return args.Bool(0), args.Error(1)
}

func TestValidateSubdomain(t *testing.T) {
	valid := []string{"acme", "my-shop", "shop42", "a1b", strings.Repeat("a", 50)}
	for _, s := range valid {
		assert.NoError(t, validateSubdomain(s), "subdomain %q", s)
	}

	invalid := []string{
		"",
		"ab",
		strings.Repeat("a", 51),
		"Has-Caps",
		"under_score",
		"-leading",
		"trailing-",
		"dot.ted",
		"spa ce",
	}
	for _, s := range invalid {
		err := validateSubdomain(s)
		assert.Error(t, err, "subdomain %q", s)
		_, ok := IsValidationError(err)
		assert.True(t, ok, "subdomain %q", s)
	}
}

func TestValidateSubdomain_Reserved(t *testing.T) {
	for _, s := range []string{"www", "api", "admin", "app", "mail", "status"} {
		err := validateSubdomain(s)
		assert.Error(t, err, "subdomain %q", s)
	}

	// The fallback tenant subdomain is registrable: otherwise shared-mode
	// requests without an explicit tenant would address a database no
	// tenant can ever own.
	assert.NoError(t, validateSubdomain("default"))
}

func TestRegister_DuplicateSubdomainConflict(t *testing.T) {
	registry := new(MockTenantRegistry)
	registry.On("ExistsBySubdomain", mock.Anything, "acme").Return(true, nil)

	svc := NewTenantService(registry, nil, nil, nil, nil, nil)
	_, err := svc.Register(context.Background(), &RegisterTenantRequest{
		Name:      "Acme Corp",
		Subdomain: "acme",
	})

	require.Error(t, err)
	_, ok := IsConflictError(err)
	assert.True(t, ok)
	registry.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_CreatesTenant(t *testing.T) {
	registry := new(MockTenantRegistry)
	registry.On("ExistsBySubdomain", mock.Anything, "acme").Return(false, nil)
	registry.On("Create", mock.Anything, mock.AnythingOfType("*models.Tenant")).Return(nil)

	svc := NewTenantService(registry, nil, nil, nil, nil, nil)
	resp, err := svc.Register(context.Background(), &RegisterTenantRequest{
		Name:      "Acme Corp",
		Subdomain: "acme",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme", resp.Tenant.Subdomain)
	assert.Equal(t, "tenant_acme", resp.Tenant.DatabaseName)
	assert.Equal(t, models.TenantStatusActive, resp.Tenant.Status)
	assert.Nil(t, resp.Site)
	registry.AssertExpectations(t)
}

func TestRegister_ValidationBeforeRepository(t *testing.T) {
	// Validation failures must surface before any repository access.
	svc := NewTenantService(nil, nil, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), &RegisterTenantRequest{Name: "A", Subdomain: "acme"})
	_, ok := IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.Register(context.Background(), &RegisterTenantRequest{Name: "Acme Corp", Subdomain: "Bad_Slug"})
	_, ok = IsValidationError(err)
	assert.True(t, ok)
}
