package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultTopN            = 10
	DefaultConversationGap = time.Hour
	DefaultServerAddr      = ":8080"
	DefaultMaxUploadBytes  = 32 << 20
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultStoreCapacity   = 256
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultWebhookTimeout  = 10 * time.Second
)

// Environment variable names.
const (
	EnvLogLevel   = "CHATLENS_LOG_LEVEL"
	EnvServerAddr = "CHATLENS_SERVER_ADDR"
	EnvStorePath  = "CHATLENS_STORE_PATH"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			TopN:            DefaultTopN,
			ConversationGap: DefaultConversationGap,
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Store: StoreConfig{
			Backend:  StoreMemory,
			Capacity: DefaultStoreCapacity,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if addr := os.Getenv(EnvServerAddr); addr != "" {
		c.Server.Addr = addr
	}
	// A store path implies the persistent backend
	if path := os.Getenv(EnvStorePath); path != "" {
		c.Store.Path = path
		c.Store.Backend = StoreSQLite
	}
}
