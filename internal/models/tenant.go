package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Tenant statuses
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// User roles. Admins may act across tenants; owners and editors are scoped
// to their own tenant.
const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleEditor = "editor"
)

// Tenant is a registry record for one isolated customer site.
// The subdomain is immutable after creation: database name and port
// assignment both derive from it.
type Tenant struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name         string            `json:"name" gorm:"not null" validate:"required,min=2,max=255"`
	Subdomain    string            `json:"subdomain" gorm:"unique;not null;size:50" validate:"required"`
	DatabaseName string            `json:"database_name" gorm:"unique;not null;size:63"`
	Status       string            `json:"status" gorm:"default:'active';index" validate:"oneof=active inactive"`
	Settings     datatypes.JSONMap `json:"settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the tenant may serve traffic.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// DefaultTenantSettings returns the settings a new tenant starts with.
func DefaultTenantSettings() datatypes.JSONMap {
	return datatypes.JSONMap{
		"max_users": 5,
		"features":  []string{"pages", "testimonials", "team", "products"},
	}
}

// User is a central platform account. TenantID is nil for platform admins.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email        string     `json:"email" gorm:"unique;not null;size:255"`
	Name         string     `json:"name" gorm:"size:255"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"default:'owner';size:20" validate:"oneof=admin owner editor"`
	TenantID     *uuid.UUID `json:"tenant_id" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
