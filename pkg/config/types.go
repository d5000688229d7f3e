// Package config provides configuration loading and validation for chatlens.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	Parser   ParserConfig    `yaml:"parser" toml:"parser"`
	Analysis AnalysisConfig  `yaml:"analysis" toml:"analysis"`
	Server   ServerConfig    `yaml:"server" toml:"server"`
	Store    StoreConfig     `yaml:"store" toml:"store"`
	Logging  LoggingConfig   `yaml:"logging" toml:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" toml:"webhooks,omitempty"`
}

// ParserConfig tunes how exports are read.
type ParserConfig struct {
	// Dialects restricts matching to the named dialects. Empty means all,
	// in the built-in priority order.
	Dialects []string `yaml:"dialects,omitempty" toml:"dialects,omitempty"`

	// Notices are extra notice phrases filtered on top of the defaults.
	Notices []string `yaml:"notices,omitempty" toml:"notices,omitempty"`
}

// AnalysisConfig tunes the aggregation engines.
type AnalysisConfig struct {
	// TopN is how many entries ranked lists keep.
	TopN int `yaml:"top_n" toml:"top_n"`

	// ConversationGap is the silence after which a new conversation starts.
	ConversationGap time.Duration `yaml:"conversation_gap" toml:"conversation_gap"`

	// Senders limits analysis to these participants. Empty means everyone.
	Senders []string `yaml:"senders,omitempty" toml:"senders,omitempty"`
}

// ServerConfig configures the HTTP upload layer.
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// StoreBackend selects where analysis results are kept.
type StoreBackend string

const (
	// StoreMemory keeps results in a bounded in-process LRU cache.
	StoreMemory StoreBackend = "memory"
	// StoreSQLite persists results in a SQLite database file.
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig configures the result store used by the server.
type StoreConfig struct {
	Backend StoreBackend `yaml:"backend" toml:"backend"`

	// Path is the database file for the sqlite backend.
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`

	// Capacity bounds the number of results the memory backend keeps.
	Capacity int `yaml:"capacity" toml:"capacity"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text, json
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnSuccess fires only when an analysis produced a report (default).
	WebhookTriggerOnSuccess WebhookTrigger = "on_success"
	// WebhookTriggerAlways fires after every analysis, failed ones included.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url" toml:"url"`

	// Token is an optional bearer token for authentication.
	// ${VAR} and $VAR are expanded from the environment.
	Token string `yaml:"token,omitempty" toml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_success" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty" toml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}
