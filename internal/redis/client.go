package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"siteforge/internal/config"
	"siteforge/internal/models"
)

// Key prefixes
const (
	TenantKeyPrefix = "tenant:subdomain:"
)

// TenantCacheTTL bounds how stale a cached registry record can get.
const TenantCacheTTL = 10 * time.Minute

// Client wraps the Redis client with tenant cache methods.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection to Redis.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CacheTenant stores a registry record keyed by subdomain.
func (c *Client) CacheTenant(ctx context.Context, tenant *models.Tenant) error {
	data, err := json.Marshal(tenant)
	if err != nil {
		return fmt.Errorf("failed to marshal tenant: %w", err)
	}
	return c.rdb.Set(ctx, TenantKeyPrefix+tenant.Subdomain, data, TenantCacheTTL).Err()
}

// GetTenant retrieves a cached registry record. A cache miss returns
// (nil, nil).
func (c *Client) GetTenant(ctx context.Context, subdomain string) (*models.Tenant, error) {
	data, err := c.rdb.Get(ctx, TenantKeyPrefix+subdomain).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached tenant: %w", err)
	}

	var tenant models.Tenant
	if err := json.Unmarshal(data, &tenant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached tenant: %w", err)
	}
	return &tenant, nil
}

// InvalidateTenant drops the cached record after an update or delete.
func (c *Client) InvalidateTenant(ctx context.Context, subdomain string) error {
	return c.rdb.Del(ctx, TenantKeyPrefix+subdomain).Err()
}
