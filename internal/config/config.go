// Package config defines all configuration structures for the commerce-batch
// service. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	Acks            string        `mapstructure:"acks"` // "none" | "one" | "all"
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// BatchConfig holds batch execution engine tunables. The engine copies these
// at construction; changing them afterwards has no effect on a running
// processor.
type BatchConfig struct {
	// MaxBatchSize is the hard cap on operations per request.
	MaxBatchSize int `mapstructure:"max_batch_size"`
	// MaxConcurrency is the global permit count shared by all batches.
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// OperationTimeout bounds a single operation.
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	// BatchTimeout bounds the wall-clock time of a whole batch.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	// EnableRetry turns on per-operation retry with exponential backoff.
	EnableRetry bool `mapstructure:"enable_retry"`
	// MaxRetries is the number of additional attempts per operation.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryDelay is the initial backoff before the first retry.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// StatusRetention is how long terminal batch statuses stay queryable.
	StatusRetention time.Duration `mapstructure:"status_retention"`
	// CleanupInterval is how often the registry is swept for old entries.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// MultitenancyConfig holds multi-tenancy isolation parameters.
type MultitenancyConfig struct {
	TenantHeader    string `mapstructure:"tenant_header"`
	RequireTenant   bool   `mapstructure:"require_tenant"`
	DefaultTenantID string `mapstructure:"default_tenant_id"`
}

// Config is the root configuration structure for the service.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Batch        BatchConfig        `mapstructure:"batch"`
	Log          LogConfig          `mapstructure:"log"`
	Multitenancy MultitenancyConfig `mapstructure:"multitenancy"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("config: database.max_open_conns must be ≥ 1, got %d", c.Database.MaxOpenConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	// Batch
	if c.Batch.MaxBatchSize < 1 {
		return fmt.Errorf("config: batch.max_batch_size must be ≥ 1, got %d", c.Batch.MaxBatchSize)
	}
	if c.Batch.MaxConcurrency < 1 {
		return fmt.Errorf("config: batch.max_concurrency must be ≥ 1, got %d", c.Batch.MaxConcurrency)
	}
	if c.Batch.OperationTimeout <= 0 {
		return fmt.Errorf("config: batch.operation_timeout must be positive, got %s", c.Batch.OperationTimeout)
	}
	if c.Batch.BatchTimeout < c.Batch.OperationTimeout {
		return fmt.Errorf("config: batch.batch_timeout %s must not be shorter than batch.operation_timeout %s",
			c.Batch.BatchTimeout, c.Batch.OperationTimeout)
	}
	if c.Batch.EnableRetry && c.Batch.MaxRetries < 1 {
		return fmt.Errorf("config: batch.max_retries must be ≥ 1 when retry is enabled, got %d", c.Batch.MaxRetries)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
