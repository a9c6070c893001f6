package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testClient wraps a driver client that is never actually used against a
// server. Database handles are pure values, so no mongod is needed here.
func testClient(t *testing.T) *Client {
	t.Helper()
	cli, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:27017"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Disconnect(context.Background()) })
	return &Client{cli: cli}
}

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "tenant_acme", DatabaseName("acme"))
	assert.Equal(t, "tenant_acme", DatabaseName("tenant_acme"))
	assert.Equal(t, "", DatabaseName(""))
}

func TestFixedResolver_IgnoresIdentifier(t *testing.T) {
	client := testClient(t)
	resolver := NewFixedResolver(client.Database("tenant_acme"))

	for _, identifier := range []string{"", "acme", "someone-else", "tenant_other"} {
		db, err := resolver.Database(identifier)
		require.NoError(t, err)
		assert.Equal(t, "tenant_acme", db.Name(), "identifier %q", identifier)
	}
}

func TestFixedResolver_NotConnected(t *testing.T) {
	resolver := NewFixedResolver(nil)
	_, err := resolver.Database("acme")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRegistryResolver_ResolvesAndCaches(t *testing.T) {
	resolver := NewRegistryResolver(testClient(t), "default")

	db, err := resolver.Database("acme")
	require.NoError(t, err)
	assert.Equal(t, "tenant_acme", db.Name())

	again, err := resolver.Database("acme")
	require.NoError(t, err)
	assert.Same(t, db, again)

	// Subdomain and explicit database name land on the same handle
	byName, err := resolver.Database("tenant_acme")
	require.NoError(t, err)
	assert.Same(t, db, byName)
}

func TestRegistryResolver_FallbackTenant(t *testing.T) {
	resolver := NewRegistryResolver(testClient(t), "default")

	db, err := resolver.Database("")
	require.NoError(t, err)
	assert.Equal(t, "tenant_default", db.Name())
}

func TestRegistryResolver_Forget(t *testing.T) {
	resolver := NewRegistryResolver(testClient(t), "default")

	db, err := resolver.Database("acme")
	require.NoError(t, err)

	resolver.Forget("acme")

	fresh, err := resolver.Database("acme")
	require.NoError(t, err)
	assert.NotSame(t, db, fresh)
	assert.Equal(t, "tenant_acme", fresh.Name())
}

func TestRegistryResolver_NotConnected(t *testing.T) {
	resolver := NewRegistryResolver(nil, "default")
	_, err := resolver.Database("acme")
	assert.ErrorIs(t, err, ErrNotConnected)
}
