package config

import "time"

// Plugin defaults.
const (
	DefaultAttrName = "data-testid"
)

// Runner defaults.
const (
	// DefaultRunnerWorkers of zero means one worker per CPU.
	DefaultRunnerWorkers     = 0
	DefaultRunnerMaxFileSize = "2MB"
)

// DefaultRunnerExtensions returns the file extensions processed by default.
func DefaultRunnerExtensions() []string {
	return []string{".tsx", ".jsx"}
}

// Watch defaults.
const (
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
)
