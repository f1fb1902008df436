package config

import (
	"context"
	"time"
)

// ListenerConfig holds the network settings for the HTTP listener.
type ListenerConfig struct {
	Port              int
	ReadHeaderTimeout time.Duration
}

type contextKey struct{}

// WithContext returns a new context carrying the given Config.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}

// Config holds all configuration for the FAQ service.
type Config struct {
	// Database
	DBURL  string
	DBName string

	// Collection names. The service treats these as opaque identifiers.
	ConversationsCollection string
	FAQsCollection          string

	// Datastore backend type
	DatastoreType string // "mongo"

	// Run datastore migrations on startup.
	DatastoreMigrateAtStart bool

	// DB pool
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Server
	Listener    ListenerConfig
	CORSEnabled bool
	CORSOrigins string

	// ManagementAccessLog enables HTTP access logging for management endpoints
	// (/health, /ready, /metrics). Disabled by default to suppress
	// high-frequency probe noise from the access log.
	ManagementAccessLog bool

	// Body size limit for JSON requests (bytes). Multipart uploads are
	// bounded separately by UploadMaxSize.
	MaxBodySize int64

	// Maximum accepted upload size (bytes). Uploads are fully buffered
	// in memory before decoding.
	UploadMaxSize int64

	// MetricsLabels is a comma-separated list of key=value pairs added as
	// constant labels to all Prometheus metrics. Values support ${VAR} expansion.
	MetricsLabels string

	// Graceful shutdown drain timeout (seconds)
	DrainTimeout int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBName:                  "ai_support",
		ConversationsCollection: "conversations",
		FAQsCollection:          "faqs",
		DatastoreType:           "mongo",
		DatastoreMigrateAtStart: true,
		DBMaxOpenConns:          25,
		DBMaxIdleConns:          5,
		Listener: ListenerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
		},
		MaxBodySize:   1 * 1024 * 1024,  // 1 MB
		UploadMaxSize: 10 * 1024 * 1024, // 10 MB
		DrainTimeout:  30,
	}
}
