// @title PulseCheck Backend API
// @version 1.0
// @description Multi-tenant survey platform API - organizations publish questionnaires, collect responses, and generate statistical reports

// @contact.name PulseCheck Support
// @contact.email support@pulsecheck.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

// Package main is the entry point for the PulseCheck Backend API server.
package main

import (
	"context"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/auth"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/config"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/database"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/handlers"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/middleware"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/services"

	// Swagger docs
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/pulsecheck-tools/pulsecheck_backend/docs"
)

// Build-time variables (set via ldflags)
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	ctx := context.Background()
	dbCfg := database.Config{
		URI:                    cfg.DatabaseURI,
		Database:               cfg.DatabaseName,
		MaxPoolSize:            100,
		MinPoolSize:            10,
		MaxConnIdleTime:        30 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 10 * time.Second,
	}

	dbClient, err := database.NewClient(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize JWT service early (before defer) to avoid exitAfterDefer issue
	jwtCfg := auth.JWTConfig{
		PrivateKeyPath:    cfg.JWTPrivateKeyPath,
		PublicKeyPath:     cfg.JWTPublicKeyPath,
		AccessTokenExpiry: cfg.AccessTokenExpiry,
		Issuer:            cfg.JWTIssuer,
	}

	jwtService, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		if closeErr := dbClient.Close(ctx); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
		}
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	defer func() {
		if closeErr := dbClient.Close(ctx); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
		}
	}()

	// Ensure indexes
	log.Println("Creating database indexes...")
	indexManager := database.NewIndexManager(dbClient.Database())
	if indexErr := indexManager.CreateAllIndexes(ctx); indexErr != nil {
		log.Printf("Warning: Failed to create indexes: %v", indexErr)
	}

	// Seed shared report templates
	log.Println("Seeding shared report templates...")
	seeder := database.NewSeeder(dbClient.Database())
	if seedErr := seeder.SeedAll(ctx); seedErr != nil {
		log.Printf("Warning: Failed to seed data: %v", seedErr)
	}

	// Initialize repositories
	organizationRepo := repository.NewOrganizationRepository(dbClient)
	questionnaireRepo := repository.NewQuestionnaireRepository(dbClient)
	versionRepo := repository.NewVersionRepository(dbClient)
	responseRepo := repository.NewResponseRepository(dbClient)
	templateRepo := repository.NewReportTemplateRepository(dbClient)
	reportRepo := repository.NewReportRepository(dbClient)

	// Initialize services
	questionnaireService := services.NewQuestionnaireService(
		questionnaireRepo,
		versionRepo,
		responseRepo,
	)

	aggregationService := services.NewAggregationService(
		questionnaireRepo,
		versionRepo,
		responseRepo,
		customAggregators(),
	)

	reportService := services.NewReportService(
		reportRepo,
		templateRepo,
		questionnaireRepo,
		responseRepo,
		aggregationService,
	)

	analyticsService := services.NewAnalyticsService(
		questionnaireRepo,
		versionRepo,
		responseRepo,
	)

	exportService := services.NewExportService(analyticsService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(dbClient, Version)
	organizationHandler := handlers.NewOrganizationHandler(organizationRepo)
	questionnaireHandler := handlers.NewQuestionnaireHandler(questionnaireService)
	templateHandler := handlers.NewTemplateHandler(templateRepo)
	reportHandler := handlers.NewReportHandler(reportService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, exportService)

	// Create Gin router
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecureHeaders())

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router.Use(rateLimiter.RateLimit())

	// Register health routes (not under /api/v1)
	healthHandler.RegisterRoutes(router)

	// Register Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create API v1 group
	apiV1 := router.Group("/api/v1")

	// Create auth middleware
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Deck rendering is the most expensive request; it gets a tighter limit
	exportLimiter := middleware.NewRateLimiter(cfg.ExportRateLimitRequests, cfg.ExportRateLimitWindow)

	// Register routes
	organizationHandler.RegisterRoutes(apiV1, authMiddleware)
	questionnaireHandler.RegisterRoutes(apiV1, authMiddleware)
	templateHandler.RegisterRoutes(apiV1, authMiddleware)
	reportHandler.RegisterRoutes(apiV1, authMiddleware)
	analyticsHandler.RegisterRoutes(apiV1, authMiddleware, exportLimiter.RateLimit())

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting PulseCheck Backend API server v%s on port %s", Version, cfg.ServerPort)
		log.Printf("Build: %s | Commit: %s | Branch: %s", BuildTime, GitCommit, GitBranch)
		log.Printf("Environment: %s", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown complete")
}

// customAggregators returns the runtime-registered aggregators. Registered
// names take precedence over a mapping's aggregation_type.
func customAggregators() map[string]services.CustomAggregator {
	return map[string]services.CustomAggregator{
		// flower_score maps a scale dimension onto 0..100 and penalizes
		// high variance, the scoring used by the garden-themed dashboard
		"flower_score": func(ctx services.AggregationContext) (models.DimensionData, error) {
			numbers := make([]float64, 0, len(ctx.Values))
			for _, v := range ctx.Values {
				if n, ok := models.NumericValue(v.Value); ok {
					numbers = append(numbers, n)
				}
			}

			norm := services.Normalize([]float64{services.Average(numbers)}, ctx.Scale)
			score := norm[0] * 100
			score = math.Max(0, score-services.StandardDeviation(numbers)*5)

			return models.DimensionData{
				Value:     math.Round(score*100) / 100,
				Responses: len(numbers),
			}, nil
		},
	}
}
