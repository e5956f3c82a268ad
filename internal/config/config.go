package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/somnihealth/intake-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Startup connect retry
	DBConnectRetry pkgRetry.RetryConfig `envPrefix:"DB_CONNECT_RETRY_"`

	// External service configurations
	LLMConnectorCfg        LLMConnectorConfig        `envPrefix:"LLM_"`
	ClassifierConnectorCfg ClassifierConnectorConfig `envPrefix:"CLASSIFIER_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Session cache configuration
	SessionCacheTTL     time.Duration `env:"SESSION_CACHE_TTL" envDefault:"30m"`
	SessionCacheCleanup time.Duration `env:"SESSION_CACHE_CLEANUP" envDefault:"10m"`

	// Intake prompt texts (loaded from JSON file)
	Prompts IntakePrompts

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	ExtractTurnEndpoint    string `env:"EXTRACT_TURN_ENDPOINT,notEmpty"`
	GenerateReportEndpoint string `env:"GENERATE_REPORT_ENDPOINT,notEmpty"`
}

type ClassifierConnectorConfig struct {
	HTTPClientConfig
	ClassifyEndpoint string `env:"CLASSIFY_ENDPOINT,notEmpty"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// IntakePrompts holds the fixed user-facing texts of the intake dialogue.
type IntakePrompts struct {
	Greeting         string `json:"greeting"`
	FallbackApology  string `json:"fallback_apology"`
	NoPredictionNote string `json:"no_prediction_note"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadIntakePrompts(cfg); err != nil {
		return nil, fmt.Errorf("load intake prompts: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	if cfg.SessionCacheTTL < time.Minute {
		return fmt.Errorf("SESSION_CACHE_TTL must be at least 1m, got %s", cfg.SessionCacheTTL)
	}

	return nil
}

var defaultIntakePrompts = IntakePrompts{
	Greeting: "Hello! I'm your sleep-health assistant. Tell me a bit about " +
		"yourself and your sleep habits, and I'll put together a report for you.",
	FallbackApology:  "Sorry, I had trouble understanding that. Could you say it again?",
	NoPredictionNote: "No prediction available for this record.",
}

const promptsFile = "intake_prompts.json"

func loadIntakePrompts(cfg *Config) error {
	path := filepath.Join("internal", "config", promptsFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: intake prompts file not found at %s, using default texts\n", path)
		cfg.Prompts = defaultIntakePrompts
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read intake prompts file: %w", err)
	}

	var prompts IntakePrompts
	if err := json.Unmarshal(data, &prompts); err != nil {
		return fmt.Errorf("parse intake prompts JSON: %w", err)
	}

	// Fall back per field so a partial file still works
	if prompts.Greeting == "" {
		prompts.Greeting = defaultIntakePrompts.Greeting
	}
	if prompts.FallbackApology == "" {
		prompts.FallbackApology = defaultIntakePrompts.FallbackApology
	}
	if prompts.NoPredictionNote == "" {
		prompts.NoPredictionNote = defaultIntakePrompts.NoPredictionNote
	}

	cfg.Prompts = prompts
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
