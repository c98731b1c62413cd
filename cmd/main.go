package main

import (
	"context"
	"fmt"
	"os"

	"github.com/TeamMacLean/komondor-api-sub000/internal/config"
	"github.com/TeamMacLean/komondor-api-sub000/internal/db"
	"github.com/TeamMacLean/komondor-api-sub000/internal/handlers"
	"github.com/TeamMacLean/komondor-api-sub000/internal/jobs"
	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/mail"
	"github.com/TeamMacLean/komondor-api-sub000/internal/middleware"
	"github.com/TeamMacLean/komondor-api-sub000/internal/observability"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/server"
	"github.com/TeamMacLean/komondor-api-sub000/internal/services"
	"github.com/TeamMacLean/komondor-api-sub000/internal/storage"
	"github.com/TeamMacLean/komondor-api-sub000/internal/utils"
)

const serviceName = "komondor-api"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	// Tracing
	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, log, observability.TracingConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "", log),
	})
	if shutdownTracing != nil {
		defer shutdownTracing(ctx)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	groupRepo := repos.NewGroupRepo(thePG, log)
	projectRepo := repos.NewProjectRepo(thePG, log)
	sampleRepo := repos.NewSampleRepo(thePG, log)
	runRepo := repos.NewRunRepo(thePG, log)
	readRepo := repos.NewReadRepo(thePG, log)
	fileRepo := repos.NewFileRepo(thePG, log)
	additionalFileRepo := repos.NewAdditionalFileRepo(thePG, log)

	// Datastore
	datastore := storage.NewDatastore(log, cfg, fileRepo)

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	groupService := services.NewGroupService(thePG, log, groupRepo)
	projectService := services.NewProjectService(thePG, log, groupRepo, projectRepo)
	sampleService := services.NewSampleService(thePG, log, projectRepo, sampleRepo)
	runService := services.NewRunService(thePG, log, sampleRepo, runRepo, readRepo)
	ingestionService := services.NewIngestionService(thePG, log, cfg, runRepo, readRepo, additionalFileRepo, datastore)
	verificationService := services.NewVerificationService(thePG, log, cfg, runRepo, readRepo)

	// Mail
	mailCfg := mail.ConfigFromEnv(log)
	mailClient, err := mail.New(log, mailCfg)
	if err != nil {
		log.Warn("Mail client disabled", "error", err)
		mailClient = nil
	}

	// Background jobs
	log.Info("Starting background jobs from main...")
	background := jobs.NewBackground(log, cfg, verificationService, mailClient, mailCfg.NotifyAddress)
	background.Initialize(ctx)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	hierarchyHandler := handlers.NewHierarchyHandler(groupService, projectService, sampleService)
	runHandler := handlers.NewRunHandler(log, runService, ingestionService, verificationService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	srv := server.NewServer(server.RouterConfig{
		ServiceName:      serviceName,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		HierarchyHandler: hierarchyHandler,
		RunHandler:       runHandler,
	})

	log.Info("Server listening", "addr", cfg.HTTPAddr)
	if err := srv.Run(cfg.HTTPAddr); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
