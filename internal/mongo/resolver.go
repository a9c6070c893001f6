package mongo

import (
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotConnected is returned when a resolver is used before its underlying
// connection was established. Resolving must fail loudly rather than hand
// out a nil database handle.
var ErrNotConnected = errors.New("mongo: connection not initialized")

// DatabaseName canonicalizes a tenant identifier (subdomain or explicit
// database name) to the tenant's database name.
func DatabaseName(identifier string) string {
	if identifier == "" {
		return ""
	}
	if strings.HasPrefix(identifier, "tenant_") {
		return identifier
	}
	return "tenant_" + identifier
}

// Resolver returns the isolated database for a tenant identifier.
//
// Two deployment shapes implement it: FixedResolver for dedicated per-tenant
// processes and RegistryResolver for the shared multi-tenant process.
type Resolver interface {
	Database(identifier string) (*mongo.Database, error)
}

// FixedResolver serves dedicated-process deployments. The database is fixed
// at process start from the environment; the request-level tenant identifier
// is ignored entirely, so a request can never cross into another tenant's
// database.
type FixedResolver struct {
	db *mongo.Database
}

// NewFixedResolver creates a resolver pinned to one database.
func NewFixedResolver(db *mongo.Database) *FixedResolver {
	return &FixedResolver{db: db}
}

// Database returns the pinned database regardless of identifier.
func (r *FixedResolver) Database(string) (*mongo.Database, error) {
	if r == nil || r.db == nil {
		return nil, ErrNotConnected
	}
	return r.db, nil
}

// RegistryResolver serves the shared-process deployment. One logical
// database handle is opened lazily per distinct database name and cached for
// the life of the process. An empty identifier resolves to the configured
// fallback tenant.
type RegistryResolver struct {
	client   *Client
	fallback string

	mu  sync.RWMutex
	dbs map[string]*mongo.Database
}

// NewRegistryResolver creates a resolver over the shared client.
func NewRegistryResolver(client *Client, fallback string) *RegistryResolver {
	return &RegistryResolver{
		client:   client,
		fallback: fallback,
		dbs:      make(map[string]*mongo.Database),
	}
}

// Database resolves a tenant identifier to its cached database handle.
func (r *RegistryResolver) Database(identifier string) (*mongo.Database, error) {
	if r == nil || r.client == nil {
		return nil, ErrNotConnected
	}
	if identifier == "" {
		identifier = r.fallback
	}
	name := DatabaseName(identifier)

	r.mu.RLock()
	db, ok := r.dbs[name]
	r.mu.RUnlock()
	if ok {
		return db, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if db, ok := r.dbs[name]; ok {
		return db, nil
	}
	db = r.client.Database(name)
	r.dbs[name] = db
	return db, nil
}

// Forget drops the cached handle for a tenant, e.g. after tenant deletion.
func (r *RegistryResolver) Forget(identifier string) {
	name := DatabaseName(identifier)
	r.mu.Lock()
	delete(r.dbs, name)
	r.mu.Unlock()
}
