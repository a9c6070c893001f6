package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTenantServer_Defaults(t *testing.T) {
	cfg := NewTenantServer()

	assert.Equal(t, "3020", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "development", cfg.Mode)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestNewTenantServer_FromEnv(t *testing.T) {
	t.Setenv("PORT", "3066")
	t.Setenv("TENANT_DATABASE", "tenant_acme")
	t.Setenv("TENANT_SUBDOMAIN", "acme")
	t.Setenv("TENANT_NAME", "Acme Corp")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3086, http://localhost:3000,")

	cfg := NewTenantServer()

	assert.Equal(t, "3066", cfg.Port)
	assert.Equal(t, "tenant_acme", cfg.DatabaseName)
	assert.Equal(t, "acme", cfg.Subdomain)
	assert.Equal(t, "Acme Corp", cfg.TenantName)
	assert.Equal(t, []string{"http://localhost:3086", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestNewTenantServer_DatabaseNameFallback(t *testing.T) {
	t.Setenv("DATABASE_NAME", "tenant_legacy")

	cfg := NewTenantServer()
	assert.Equal(t, "tenant_legacy", cfg.DatabaseName)
}

func TestNewTenantServer_TenantDatabaseWins(t *testing.T) {
	t.Setenv("TENANT_DATABASE", "tenant_acme")
	t.Setenv("DATABASE_NAME", "tenant_legacy")

	cfg := NewTenantServer()
	assert.Equal(t, "tenant_acme", cfg.DatabaseName)
}
