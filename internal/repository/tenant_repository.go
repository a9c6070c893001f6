package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"siteforge/internal/models"
)

// ErrTenantNotFound is returned when a tenant does not exist in the registry.
var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepository handles tenant registry operations.
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{
		db: db,
	}
}

// Create persists a new tenant record.
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	if tenant.Settings == nil {
		tenant.Settings = models.DefaultTenantSettings()
	}

	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by its registry id.
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

// GetBySubdomain retrieves a tenant by its subdomain slug.
func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "subdomain = ?", subdomain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by subdomain: %w", err)
	}
	return &tenant, nil
}

// List retrieves tenants, optionally filtered by status, with pagination.
func (r *TenantRepository) List(ctx context.Context, status string, page, pageSize int) ([]models.Tenant, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&models.Tenant{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	var tenants []models.Tenant
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&tenants).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, total, nil
}

// Update persists changes to a tenant record. The subdomain is immutable;
// callers must not modify it.
func (r *TenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	if err := r.db.WithContext(ctx).Save(tenant).Error; err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return nil
}

// Delete removes a tenant from the registry. The tenant database and any
// generated site directory are left behind for manual cleanup.
func (r *TenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Tenant{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete tenant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// ExistsBySubdomain reports whether a subdomain is already registered.
func (r *TenantRepository) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("subdomain = ?", subdomain).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subdomain: %w", err)
	}
	return count > 0, nil
}
