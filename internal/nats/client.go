package nats

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types
const (
	EventTenantCreated = "tenant.created"
	EventTenantUpdated = "tenant.updated"
	EventTenantDeleted = "tenant.deleted"
	EventSiteGenerated = "tenant.site_generated"
)

// TenantEvent is published on every tenant lifecycle transition. Consumers
// (routing, billing, monitoring) key off Subdomain and the derived ports.
type TenantEvent struct {
	EventType    string    `json:"event_type"`
	TenantID     string    `json:"tenant_id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain"`
	DatabaseName string    `json:"database_name"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

// SiteGeneratedEvent is published after a site was materialized on disk.
type SiteGeneratedEvent struct {
	EventType    string    `json:"event_type"`
	TenantID     string    `json:"tenant_id"`
	Subdomain    string    `json:"subdomain"`
	SiteDir      string    `json:"site_dir"`
	BackendPort  int       `json:"backend_port"`
	FrontendPort int       `json:"frontend_port"`
	Timestamp    time.Time `json:"timestamp"`
}

// Client wraps the NATS connection
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Config holds NATS connection configuration
type Config struct {
	URL string
}

// DefaultConfig returns the default NATS configuration
func DefaultConfig() *Config {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}
	return &Config{
		URL: url,
	}
}

// NewClient creates a new NATS client
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	log.Printf("[NATS] Connecting to %s", cfg.URL)

	opts := []nats.Option{
		nats.Name("siteforge-platform"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("[NATS] Disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Connection closed")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// Ensure the tenant events stream exists. LimitsPolicy so multiple
	// consumers can read the same events.
	_, err = js.AddStream(&nats.StreamConfig{
		Name:        "TENANT_EVENTS",
		Description: "Stream for tenant lifecycle and site generation events",
		Subjects:    []string{"tenant.>"},
		Storage:     nats.FileStorage,
		Retention:   nats.LimitsPolicy,
		MaxAge:      24 * time.Hour * 7,
		MaxMsgs:     100000,
		Discard:     nats.DiscardOld,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		log.Printf("[NATS] Warning: Could not create stream (may already exist): %v", err)
	}

	return &Client{conn: conn, js: js}, nil
}

// IsConnected reports whether the underlying connection is up.
func (c *Client) IsConnected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// PublishTenantEvent publishes a lifecycle event on its event-type subject.
func (c *Client) PublishTenantEvent(event *TenantEvent) error {
	event.Timestamp = time.Now().UTC()
	return c.publish(event.EventType, event)
}

// PublishSiteGenerated publishes a site generation event.
func (c *Client) PublishSiteGenerated(event *SiteGeneratedEvent) error {
	event.EventType = EventSiteGenerated
	event.Timestamp = time.Now().UTC()
	return c.publish(EventSiteGenerated, event)
}

func (c *Client) publish(subject string, v interface{}) error {
	if !c.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := c.js.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	log.Printf("[NATS] Published %s", subject)
	return nil
}
