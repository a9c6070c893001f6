package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"siteforge/internal/config"
)

// Client wraps the MongoDB client that backs all per-tenant databases.
type Client struct {
	cli *mongo.Client
}

// NewClient connects to MongoDB and verifies the connection.
func NewClient(cfg config.MongoConfig) (*Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{cli: cli}, nil
}

// Database returns a handle to the named database.
func (c *Client) Database(name string) *mongo.Database {
	return c.cli.Database(name)
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.cli.Disconnect(ctx)
}
