package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBName          = "commerce"
	DefaultDBMaxOpenConns  = 25
	DefaultDBMaxIdleConns  = 10
	DefaultConnMaxLifetime = 30 * time.Minute

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "commerce:"
	DefaultRedisTTL       = 15 * time.Minute

	DefaultKafkaBroker = "localhost:9092"

	DefaultMaxBatchSize     = 1000
	DefaultMaxConcurrency   = 10
	DefaultOperationTimeout = 30 * time.Second
	DefaultBatchTimeout     = 5 * time.Minute
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = 500 * time.Millisecond
	DefaultStatusRetention  = 1 * time.Hour
	DefaultCleanupInterval  = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultTenantHeader = "X-Tenant-ID"
)

// ApplyDefaults fills every zero-value field in cfg with the service
// default. Fields already set by the caller are left unchanged so explicit
// configuration always wins. It must run after unmarshalling and before
// Validate so optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Submit is synchronous; the write timeout must outlive a full batch.
		cfg.Server.WriteTimeout = DefaultBatchTimeout + 30*time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultConnMaxLifetime
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = "one"
	}

	// Batch
	if cfg.Batch.MaxBatchSize == 0 {
		cfg.Batch.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Batch.MaxConcurrency == 0 {
		cfg.Batch.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.Batch.OperationTimeout == 0 {
		cfg.Batch.OperationTimeout = DefaultOperationTimeout
	}
	if cfg.Batch.BatchTimeout == 0 {
		cfg.Batch.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.Batch.MaxRetries == 0 {
		cfg.Batch.MaxRetries = DefaultMaxRetries
	}
	if cfg.Batch.RetryDelay == 0 {
		cfg.Batch.RetryDelay = DefaultRetryDelay
	}
	if cfg.Batch.StatusRetention == 0 {
		cfg.Batch.StatusRetention = DefaultStatusRetention
	}
	if cfg.Batch.CleanupInterval == 0 {
		cfg.Batch.CleanupInterval = DefaultCleanupInterval
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// Multitenancy
	if cfg.Multitenancy.TenantHeader == "" {
		cfg.Multitenancy.TenantHeader = DefaultTenantHeader
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
