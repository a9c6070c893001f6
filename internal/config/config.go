package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the platform server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	NATS      NATSConfig
	App       AppConfig
	Generator GeneratorConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds the central registry (PostgreSQL) configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// MongoConfig holds the per-tenant content store configuration.
type MongoConfig struct {
	URI         string
	MaxPoolSize int
}

// RedisConfig holds Redis configuration for the tenant lookup cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds event bus configuration.
type NATSConfig struct {
	URL string
}

// AppConfig holds application configuration.
type AppConfig struct {
	Environment    string
	LogLevel       string
	JWTSecret      string
	FallbackTenant string
}

// GeneratorConfig holds site generation configuration.
type GeneratorConfig struct {
	SitesRoot           string
	BackendTemplateDir  string
	FrontendTemplateDir string
	Mode                string
	DevOrigin           string
}

// New creates a new configuration instance from the environment.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
			Port: getEnvWithDefault("SERVER_PORT", "8086"),
		},
		Database: DatabaseConfig{
			Host:     getEnvWithDefault("DB_HOST", "localhost"),
			Port:     getEnvWithDefault("DB_PORT", "5432"),
			User:     getEnvWithDefault("DB_USER", "postgres"),
			Password: getEnvWithDefault("DB_PASSWORD", "postgres"),
			Name:     getEnvWithDefault("DB_NAME", "siteforge"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:         getEnvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			MaxPoolSize: getEnvAsIntWithDefault("MONGODB_MAX_POOL_SIZE", 20),
		},
		Redis: RedisConfig{
			Host:     getEnvWithDefault("REDIS_HOST", "localhost"),
			Port:     getEnvWithDefault("REDIS_PORT", "6379"),
			Password: getEnvWithDefault("REDIS_PASSWORD", ""),
			DB:       getEnvAsIntWithDefault("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnvWithDefault("NATS_URL", "nats://localhost:4222"),
		},
		App: AppConfig{
			Environment:    getEnvWithDefault("APP_ENV", "development"),
			LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
			JWTSecret:      getEnvWithDefault("JWT_SECRET", "siteforge-dev-secret"),
			FallbackTenant: getEnvWithDefault("FALLBACK_TENANT", "default"),
		},
		Generator: GeneratorConfig{
			SitesRoot:           getEnvWithDefault("SITES_ROOT", "sites"),
			BackendTemplateDir:  getEnvWithDefault("BACKEND_TEMPLATE_DIR", "templates/backend"),
			FrontendTemplateDir: getEnvWithDefault("FRONTEND_TEMPLATE_DIR", "templates/frontend"),
			Mode:                getEnvWithDefault("GENERATOR_MODE", "development"),
			DevOrigin:           getEnvWithDefault("GENERATOR_DEV_ORIGIN", "http://localhost:3000"),
		},
	}
}

// TenantServerConfig is the configuration of one dedicated per-tenant server
// process. Everything comes from the env file the site generator wrote. The
// database name is fixed here at process start and is never derived from
// request input.
type TenantServerConfig struct {
	Port           string
	MongoURI       string
	DatabaseName   string
	Subdomain      string
	TenantName     string
	JWTSecret      string
	AllowedOrigins []string
	Mode           string
}

// NewTenantServer loads the dedicated-process configuration.
func NewTenantServer() *TenantServerConfig {
	database := os.Getenv("TENANT_DATABASE")
	if database == "" {
		database = os.Getenv("DATABASE_NAME")
	}

	var origins []string
	for _, o := range strings.Split(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &TenantServerConfig{
		Port:           getEnvWithDefault("PORT", "3020"),
		MongoURI:       getEnvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName:   database,
		Subdomain:      os.Getenv("TENANT_SUBDOMAIN"),
		TenantName:     os.Getenv("TENANT_NAME"),
		JWTSecret:      getEnvWithDefault("JWT_SECRET", "siteforge-dev-secret"),
		AllowedOrigins: origins,
		Mode:           getEnvWithDefault("MODE", "development"),
	}
}

// getEnvWithDefault gets environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault gets environment variable as integer with default fallback
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
