package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address (default: "localhost:8080").
	Addr string

	// SessionTTL is how long a session may stay idle (default: 15m).
	SessionTTL time.Duration

	// CleanupInterval is how often idle sessions are swept (default: 30s,
	// or SessionTTL/2 when shorter).
	CleanupInterval time.Duration

	// MaxSessions bounds concurrent sessions. 0 means unlimited.
	MaxSessions int

	// MaxSnapshotBytes bounds request bodies and WebSocket messages
	// (default: 16MB).
	MaxSnapshotBytes int64

	// Metrics enables the /metrics endpoint and check metrics.
	Metrics bool

	// Registry receives the server's metrics. Default: a new registry.
	Registry *prometheus.Registry

	// ReadBufferSize and WriteBufferSize size WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates WebSocket origins. nil accepts same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool

	Logger *slog.Logger
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Addr:             "localhost:8080",
		SessionTTL:       15 * time.Minute,
		CleanupInterval:  30 * time.Second,
		MaxSessions:      10000,
		MaxSnapshotBytes: 16 << 20,
		Metrics:          true,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.Addr == "" {
		out.Addr = def.Addr
	}
	if out.SessionTTL <= 0 {
		out.SessionTTL = def.SessionTTL
	}
	if out.CleanupInterval <= 0 {
		out.CleanupInterval = def.CleanupInterval
	}
	if out.CleanupInterval > out.SessionTTL/2 {
		out.CleanupInterval = max(out.SessionTTL/2, time.Millisecond)
	}
	if out.MaxSnapshotBytes <= 0 {
		out.MaxSnapshotBytes = def.MaxSnapshotBytes
	}
	if out.Registry == nil {
		out.Registry = prometheus.NewRegistry()
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
