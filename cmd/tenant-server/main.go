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

	"siteforge/internal/config"
	"siteforge/internal/handlers"
	"siteforge/internal/middleware"
	"siteforge/internal/models"
	tenantdb "siteforge/internal/mongo"
	"siteforge/internal/repository"
	"siteforge/internal/services"
)

// tenant-server is the dedicated per-tenant CRUD process. One instance
// serves exactly one tenant database, fixed at startup from the env file
// the site generator wrote. It never reads a tenant identifier from
// request input.
func main() {
	cfg := config.NewTenantServer()
	if cfg.DatabaseName == "" {
		log.Fatal("TENANT_DATABASE (or DATABASE_NAME) must be set")
	}

	mongoClient, err := tenantdb.NewClient(config.MongoConfig{URI: cfg.MongoURI, MaxPoolSize: 20})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := mongoClient.Database(tenantdb.DatabaseName(cfg.DatabaseName))
	resolver := tenantdb.NewFixedResolver(database)
	contentRepo := repository.NewContentRepository(resolver)

	authSvc := services.NewTenantAuthService(contentRepo, cfg.Subdomain, cfg.JWTSecret)
	authHandler := handlers.NewTenantAuthHandler(authSvc)
	healthHandler := handlers.NewTenantHealthHandler(cfg.TenantName, database.Name())

	router := setupRouter(cfg, contentRepo, authHandler, healthHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting tenant server for %q (database %s) on port %s", cfg.TenantName, database.Name(), cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down tenant server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := mongoClient.Close(ctx); err != nil {
		log.Printf("Error closing MongoDB connection: %v", err)
	}

	log.Println("Tenant server exited")
}

func setupRouter(
	cfg *config.TenantServerConfig,
	contentRepo *repository.ContentRepository,
	authHandler *handlers.TenantAuthHandler,
	healthHandler *handlers.TenantHealthHandler,
) *gin.Engine {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler.Health)

	auth := middleware.JWTAuth(cfg.JWTSecret)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/register", authHandler.Register)
		}

		handlers.NewContentHandler[models.Page](contentRepo, models.CollectionPages).Mount(api.Group("/pages"), auth)
		handlers.NewContentHandler[models.Settings](contentRepo, models.CollectionSettings).Mount(api.Group("/settings"), auth)
		handlers.NewContentHandler[models.Client](contentRepo, models.CollectionClients).Mount(api.Group("/clients"), auth)
		handlers.NewContentHandler[models.Product](contentRepo, models.CollectionProducts).Mount(api.Group("/products"), auth)
		handlers.NewContentHandler[models.TeamMember](contentRepo, models.CollectionTeamMembers).Mount(api.Group("/team-members"), auth)
		handlers.NewContentHandler[models.Certificate](contentRepo, models.CollectionCertificates).Mount(api.Group("/certificates"), auth)
		handlers.NewContentHandler[models.Testimonial](contentRepo, models.CollectionTestimonials).Mount(api.Group("/testimonials"), auth)
		handlers.NewContentHandler[models.Contact](contentRepo, models.CollectionContacts).Mount(api.Group("/contacts"), auth)
	}

	return router
}
