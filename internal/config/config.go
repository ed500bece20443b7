package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	Workflow WorkflowConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// WorkflowConfig tunes the document status engine.
type WorkflowConfig struct {
	BatchChunkSize         int
	MaxInFlight            int
	JobQueueCapacity       int
	RenderWorkers          int
	WorkingHoursRule       bool
	WorkingHoursStart      int
	WorkingHoursEnd        int
	RetentionSweepInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbMinConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "paie"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: dbMaxConns,
		MinConns: dbMinConns,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./data/documents"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/documents"),
	}

	// SMTP configuration; an empty host disables outgoing mail
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "paie@example.ma"),
		FromName: getEnv("SMTP_FROM_NAME", "Service Paie"),
	}

	// Workflow configuration
	batchChunkSize, err := strconv.Atoi(getEnv("WORKFLOW_BATCH_CHUNK_SIZE", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_BATCH_CHUNK_SIZE: %w", err)
	}
	maxInFlight, err := strconv.Atoi(getEnv("WORKFLOW_MAX_IN_FLIGHT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_MAX_IN_FLIGHT: %w", err)
	}
	queueCapacity, err := strconv.Atoi(getEnv("WORKFLOW_JOB_QUEUE_CAPACITY", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_JOB_QUEUE_CAPACITY: %w", err)
	}
	renderWorkers, err := strconv.Atoi(getEnv("WORKFLOW_RENDER_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_RENDER_WORKERS: %w", err)
	}
	workingHoursStart, err := strconv.Atoi(getEnv("WORKFLOW_WORKING_HOURS_START", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_WORKING_HOURS_START: %w", err)
	}
	workingHoursEnd, err := strconv.Atoi(getEnv("WORKFLOW_WORKING_HOURS_END", "18"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_WORKING_HOURS_END: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("WORKFLOW_RETENTION_SWEEP_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_RETENTION_SWEEP_INTERVAL: %w", err)
	}

	config.Workflow = WorkflowConfig{
		BatchChunkSize:         batchChunkSize,
		MaxInFlight:            maxInFlight,
		JobQueueCapacity:       queueCapacity,
		RenderWorkers:          renderWorkers,
		WorkingHoursRule:       getEnv("WORKFLOW_WORKING_HOURS_RULE", "false") == "true",
		WorkingHoursStart:      workingHoursStart,
		WorkingHoursEnd:        workingHoursEnd,
		RetentionSweepInterval: sweepInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	if c.Workflow.WorkingHoursStart < 0 || c.Workflow.WorkingHoursEnd > 24 ||
		c.Workflow.WorkingHoursStart >= c.Workflow.WorkingHoursEnd {
		return fmt.Errorf("invalid working hours window: %d-%d", c.Workflow.WorkingHoursStart, c.Workflow.WorkingHoursEnd)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
