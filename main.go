package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"siteforge/internal/background"
	"siteforge/internal/config"
	"siteforge/internal/generator"
	"siteforge/internal/handlers"
	"siteforge/internal/metrics"
	"siteforge/internal/middleware"
	"siteforge/internal/models"
	tenantdb "siteforge/internal/mongo"
	natsClient "siteforge/internal/nats"
	"siteforge/internal/redis"
	"siteforge/internal/repository"
	"siteforge/internal/services"
)

func main() {
	// Load configuration
	cfg := config.New()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize the registry database
	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize registry database: %v", err)
	}
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate registry database: %v", err)
	}

	// Initialize the content store connection (required: the shared
	// server serves tenant CRUD routes directly)
	mongoClient, err := tenantdb.NewClient(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	resolver := tenantdb.NewRegistryResolver(mongoClient, cfg.App.FallbackTenant)

	// Initialize Redis connection (optional cache)
	var redisClient *redis.Client
	redisClient, err = redis.NewClient(cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Tenant lookups will hit PostgreSQL directly (no caching)")
		redisClient = nil
	} else {
		log.Println("Connected to Redis successfully")
	}

	// Initialize NATS connection for event publishing (optional)
	var nc *natsClient.Client
	nc, err = natsClient.NewClient(&natsClient.Config{URL: cfg.NATS.URL})
	if err != nil {
		log.Printf("Warning: Failed to connect to NATS: %v", err)
		log.Println("Event publishing will be disabled")
		nc = nil
	} else {
		log.Println("Connected to NATS successfully")
		defer nc.Close()
	}

	// Initialize metrics
	metricsCollector := metrics.New("siteforge-platform")

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(resolver)

	// Initialize services
	siteGenerator := generator.NewService(generator.Config{
		SitesRoot:           cfg.Generator.SitesRoot,
		BackendTemplateDir:  cfg.Generator.BackendTemplateDir,
		FrontendTemplateDir: cfg.Generator.FrontendTemplateDir,
		MongoURI:            cfg.Mongo.URI,
		Mode:                cfg.Generator.Mode,
		DevOrigin:           cfg.Generator.DevOrigin,
	})
	tenantSvc := services.NewTenantService(tenantRepo, redisClient, nc, siteGenerator, resolver, metricsCollector)
	authSvc := services.NewAuthService(userRepo, cfg.App.JWTSecret)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, mongoClient, nc)
	tenantHandler := handlers.NewTenantHandler(tenantSvc)
	authHandler := handlers.NewAuthHandler(authSvc)

	// Start background reconciliation
	bgRunner := background.NewRunner(tenantRepo, redisClient, cfg.Generator.SitesRoot, 5*time.Minute)
	bgRunner.Start()

	// Setup router
	router := setupRouter(cfg, logger, metricsCollector, healthHandler, tenantHandler, authHandler, contentRepo)

	// Setup server
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting siteforge-platform on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	bgRunner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}
	if err := mongoClient.Close(ctx); err != nil {
		log.Printf("Error closing MongoDB connection: %v", err)
	}

	log.Println("Server exited")
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	metricsCollector *metrics.Metrics,
	healthHandler *handlers.HealthHandler,
	tenantHandler *handlers.TenantHandler,
	authHandler *handlers.AuthHandler,
	contentRepo *repository.ContentRepository,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000", // Platform dashboard (local)
		"http://localhost:3001", // Onboarding app (local)
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true

	// Global middleware
	router.Use(cors.New(corsConfig))
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(metricsCollector.Middleware())

	// Metrics endpoint (Prometheus scraping)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	auth := middleware.JWTAuth(cfg.App.JWTSecret)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/register", authHandler.Register)
		}

		tenants := v1.Group("/tenants")
		{
			// Public tenant signup
			tenants.POST("", tenantHandler.Register)

			protected := tenants.Group("", auth)
			{
				protected.GET("", tenantHandler.List)

				// Per-tenant routes: caller must belong to the tenant
				// (or be a platform admin)
				byID := protected.Group("/:id", middleware.RequireTenantAccess())
				{
					byID.GET("", tenantHandler.Get)
					byID.PATCH("/settings", tenantHandler.UpdateSettings)
					byID.PATCH("/status", tenantHandler.UpdateStatus)
					byID.DELETE("", tenantHandler.Delete)
					byID.POST("/generate-site", tenantHandler.GenerateSite)
				}
			}
		}
	}

	// Shared-mode content routes: tenant selected by ?tenant= query param,
	// falling back to the configured default tenant
	mountContentRoutes(router.Group("/api"), contentRepo, auth)

	return router
}

// mountContentRoutes registers the CRUD surface shared by both deployment
// shapes.
func mountContentRoutes(api *gin.RouterGroup, store repository.ContentStore, auth gin.HandlerFunc) {
	handlers.NewContentHandler[models.Page](store, models.CollectionPages).Mount(api.Group("/pages"), auth)
	handlers.NewContentHandler[models.Settings](store, models.CollectionSettings).Mount(api.Group("/settings"), auth)
	handlers.NewContentHandler[models.Client](store, models.CollectionClients).Mount(api.Group("/clients"), auth)
	handlers.NewContentHandler[models.Product](store, models.CollectionProducts).Mount(api.Group("/products"), auth)
	handlers.NewContentHandler[models.TeamMember](store, models.CollectionTeamMembers).Mount(api.Group("/team-members"), auth)
	handlers.NewContentHandler[models.Certificate](store, models.CollectionCertificates).Mount(api.Group("/certificates"), auth)
	handlers.NewContentHandler[models.Testimonial](store, models.CollectionTestimonials).Mount(api.Group("/testimonials"), auth)
	handlers.NewContentHandler[models.Contact](store, models.CollectionContacts).Mount(api.Group("/contacts"), auth)
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func autoMigrate(db *gorm.DB) error {
	log.Println("Starting registry migration...")

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		log.Printf("Warning: Failed to create uuid-ossp extension: %v", err)
	}

	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
	)
}
