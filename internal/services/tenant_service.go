package services

import (
	"context"
	"errors"
	"log"
	"regexp"

	"github.com/google/uuid"

	"siteforge/internal/generator"
	"siteforge/internal/metrics"
	"siteforge/internal/models"
	tenantdb "siteforge/internal/mongo"
	natsClient "siteforge/internal/nats"
	"siteforge/internal/redis"
	"siteforge/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// reservedSubdomains can never be claimed by a tenant. The fallback tenant
// subdomain stays registrable so shared-mode requests without an explicit
// tenant land in a database a real tenant owns.
var reservedSubdomains = map[string]bool{
	"www":    true,
	"api":    true,
	"admin":  true,
	"app":    true,
	"mail":   true,
	"status": true,
}

// TenantRegistry is the registry persistence surface the service depends on.
// *repository.TenantRepository is the production implementation.
type TenantRegistry interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	List(ctx context.Context, status string, page, pageSize int) ([]models.Tenant, int64, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error)
}

// TenantService handles tenant registration and lifecycle.
//
// Redis and NATS are optional: a nil cache or event client disables caching
// or event publishing without affecting correctness.
type TenantService struct {
	repo      TenantRegistry
	cache     *redis.Client
	events    *natsClient.Client
	generator *generator.Service
	resolver  *tenantdb.RegistryResolver
	metrics   *metrics.Metrics
}

// NewTenantService creates a new tenant service.
func NewTenantService(
	repo TenantRegistry,
	cache *redis.Client,
	events *natsClient.Client,
	gen *generator.Service,
	resolver *tenantdb.RegistryResolver,
	m *metrics.Metrics,
) *TenantService {
	return &TenantService{
		repo:      repo,
		cache:     cache,
		events:    events,
		generator: gen,
		resolver:  resolver,
		metrics:   m,
	}
}

// RegisterTenantRequest carries the inputs for tenant registration.
type RegisterTenantRequest struct {
	Name         string
	Subdomain    string
	GenerateSite bool
}

// RegisterTenantResponse is the registration result. Site is nil when no
// site generation was requested.
type RegisterTenantResponse struct {
	Tenant *models.Tenant    `json:"tenant"`
	Site   *generator.Result `json:"site,omitempty"`
}

// Register validates and creates a tenant, optionally generating its site.
func (s *TenantService) Register(ctx context.Context, req *RegisterTenantRequest) (*RegisterTenantResponse, error) {
	if len(req.Name) < 2 {
		return nil, NewValidationError("name", "must be at least 2 characters")
	}
	if err := validateSubdomain(req.Subdomain); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsBySubdomain(ctx, req.Subdomain)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("tenant", "subdomain already registered")
	}

	tenant := &models.Tenant{
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		DatabaseName: tenantdb.DatabaseName(req.Subdomain),
		Status:       models.TenantStatusActive,
		Settings:     models.DefaultTenantSettings(),
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	log.Printf("Registered tenant %s (subdomain=%s database=%s)", tenant.ID, tenant.Subdomain, tenant.DatabaseName)

	s.cacheTenant(ctx, tenant)
	s.publishLifecycle(natsClient.EventTenantCreated, tenant)

	resp := &RegisterTenantResponse{Tenant: tenant}
	if req.GenerateSite {
		site, err := s.GenerateSite(ctx, tenant.ID)
		if err != nil {
			// The registry entry stands; generation can be retried.
			log.Printf("Warning: site generation for %s failed: %v", tenant.Subdomain, err)
			return resp, err
		}
		resp.Site = site
	}
	return resp, nil
}

// GetByID loads a tenant from the registry.
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySubdomain loads a tenant, consulting the cache first.
func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	if s.cache != nil {
		if tenant, err := s.cache.GetTenant(ctx, subdomain); err == nil && tenant != nil {
			return tenant, nil
		}
	}

	tenant, err := s.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	s.cacheTenant(ctx, tenant)
	return tenant, nil
}

// List pages through registry records.
func (s *TenantService) List(ctx context.Context, status string, page, pageSize int) ([]models.Tenant, int64, error) {
	return s.repo.List(ctx, status, page, pageSize)
}

// UpdateSettings merges new settings into the tenant record.
func (s *TenantService) UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]interface{}) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tenant.Settings == nil {
		tenant.Settings = models.DefaultTenantSettings()
	}
	for k, v := range settings {
		tenant.Settings[k] = v
	}
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	s.invalidateTenant(ctx, tenant.Subdomain)
	s.publishLifecycle(natsClient.EventTenantUpdated, tenant)
	return tenant, nil
}

// UpdateStatus transitions a tenant between active and inactive.
func (s *TenantService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Tenant, error) {
	if status != models.TenantStatusActive && status != models.TenantStatusInactive {
		return nil, NewValidationError("status", "must be active or inactive")
	}

	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tenant.Status = status
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	s.invalidateTenant(ctx, tenant.Subdomain)
	s.publishLifecycle(natsClient.EventTenantUpdated, tenant)
	return tenant, nil
}

// Delete removes the registry entry and drops cached handles. The tenant
// database and generated site directory are intentionally left on disk for
// manual cleanup.
func (s *TenantService) Delete(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateTenant(ctx, tenant.Subdomain)
	if s.resolver != nil {
		s.resolver.Forget(tenant.Subdomain)
	}
	s.publishLifecycle(natsClient.EventTenantDeleted, tenant)
	log.Printf("Deleted tenant %s (subdomain=%s); database and site dir retained", tenant.ID, tenant.Subdomain)
	return nil
}

// GenerateSite materializes (or regenerates) the tenant's site on disk.
// Port assignment is a pure function of the subdomain, so regeneration
// always lands on the same ports.
func (s *TenantService) GenerateSite(ctx context.Context, id uuid.UUID) (*generator.Result, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, NewValidationError("status", "cannot generate a site for an inactive tenant")
	}

	result, err := s.generator.Generate(ctx, generator.Tenant{
		Subdomain:    tenant.Subdomain,
		Name:         tenant.Name,
		DatabaseName: tenant.DatabaseName,
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SiteGenerated()
	}

	if s.events != nil {
		if err := s.events.PublishSiteGenerated(&natsClient.SiteGeneratedEvent{
			TenantID:     tenant.ID.String(),
			Subdomain:    tenant.Subdomain,
			SiteDir:      result.SiteDir,
			BackendPort:  result.BackendPort,
			FrontendPort: result.FrontendPort,
		}); err != nil {
			log.Printf("Warning: failed to publish site_generated event: %v", err)
		}
	}
	return result, nil
}

func (s *TenantService) cacheTenant(ctx context.Context, tenant *models.Tenant) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheTenant(ctx, tenant); err != nil {
		log.Printf("Warning: failed to cache tenant %s: %v", tenant.Subdomain, err)
	}
}

func (s *TenantService) invalidateTenant(ctx context.Context, subdomain string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTenant(ctx, subdomain); err != nil {
		log.Printf("Warning: failed to invalidate tenant cache %s: %v", subdomain, err)
	}
}

func (s *TenantService) publishLifecycle(eventType string, tenant *models.Tenant) {
	if s.events == nil {
		return
	}
	err := s.events.PublishTenantEvent(&natsClient.TenantEvent{
		EventType:    eventType,
		TenantID:     tenant.ID.String(),
		Name:         tenant.Name,
		Subdomain:    tenant.Subdomain,
		DatabaseName: tenant.DatabaseName,
		Status:       tenant.Status,
	})
	if err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}

// validateSubdomain enforces the slug rules a subdomain must satisfy.
func validateSubdomain(subdomain string) error {
	if len(subdomain) < 3 || len(subdomain) > 50 {
		return NewValidationError("subdomain", "must be between 3 and 50 characters")
	}
	if !slugPattern.MatchString(subdomain) {
		return NewValidationError("subdomain", "must contain only lowercase letters, numbers and hyphens")
	}
	if reservedSubdomains[subdomain] {
		return NewValidationError("subdomain", "is reserved")
	}
	return nil
}

var _ TenantRegistry = (*repository.TenantRepository)(nil)

// ErrTenantNotFound re-exported for handler convenience.
var ErrTenantNotFound = repository.ErrTenantNotFound

// IsNotFound reports whether err is a registry not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrTenantNotFound) || errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrUserNotFound)
}
