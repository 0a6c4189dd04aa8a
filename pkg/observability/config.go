// Package observability wires OpenTelemetry tracing, metrics, and structured
// logging for the jsxtestid binaries.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// AppMode identifies which entry point emitted the telemetry.
type AppMode string

// Application modes.
const (
	ModeCLI   AppMode = "cli"
	ModeMCP   AppMode = "mcp"
	ModeWatch AppMode = "watch"
)

const (
	defaultServiceName        = "jsxtestid"
	defaultShutdownTimeoutSec = 5
)

// Config controls provider construction.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is the gRPC collector address. Empty disables export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// DebugTrace forces sampling of every trace.
	DebugTrace  bool
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool
	// LogWriter receives log output; nil means stderr.
	LogWriter io.Writer

	ShutdownTimeoutSec int
}

// DefaultConfig returns a CLI configuration with export disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		SampleRatio:        1.0,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLogLevel maps "debug", "info", "warn" or "error" to an slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", name, err)
	}

	return level, nil
}

func (cfg Config) shutdownTimeout() time.Duration {
	if cfg.ShutdownTimeoutSec <= 0 {
		return defaultShutdownTimeoutSec * time.Second
	}

	return time.Duration(cfg.ShutdownTimeoutSec) * time.Second
}

// ParseOTLPHeaders parses "key=value,key=value". Pairs without "=" are
// dropped; nil is returned when nothing remains.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}
