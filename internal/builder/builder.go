package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/somnihealth/intake-backend/internal/api"
	intakeapi "github.com/somnihealth/intake-backend/internal/api/intake"
	"github.com/somnihealth/intake-backend/internal/config"
	"github.com/somnihealth/intake-backend/internal/integration/classifier"
	"github.com/somnihealth/intake-backend/internal/integration/llm"
	"github.com/somnihealth/intake-backend/internal/pkg/formatter"
	"github.com/somnihealth/intake-backend/internal/pkg/logger"
	"github.com/somnihealth/intake-backend/internal/pkg/validator"
	"github.com/somnihealth/intake-backend/internal/repository"
	"github.com/somnihealth/intake-backend/internal/usecase/intake"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	log.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	// Initialize repositories
	sessionRepo := repository.NewCachedSessionRepository(
		repository.NewSessionPostgres(db),
		cfg.SessionCacheTTL,
		cfg.SessionCacheCleanup,
	)
	messageRepo := repository.NewMessagePostgres(db)
	log.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var llmConnector intake.LLMConnector
	var classifierConnector intake.ClassifierConnector

	if cfg.EnableMocks {
		log.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(log)
		classifierConnector = classifier.NewMockConnector(log)
	} else {
		log.Info("Using real connectors for external services")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, log)
		classifierConnector = classifier.NewConnector(cfg.ClassifierConnectorCfg, log)
	}

	// Initialize validators
	v := validator.NewValidator()
	log.Info("Validators initialized")

	// Initialize use cases
	intakeUC := intake.NewUsecase(
		sessionRepo,
		messageRepo,
		v,
		llmConnector,
		classifierConnector,
		cfg.Prompts,
		log,
	)
	log.Info("Use cases initialized")

	// Setup API handlers
	intakeHandler := intakeapi.NewHandler(intakeUC, v, formatter.NewFactory())
	log.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(intakeHandler, log)
	log.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: log,
	}, nil
}
