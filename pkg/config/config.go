// Package config provides project configuration loading and validation for jsxtestid.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

// Sentinel validation errors.
var (
	ErrInvalidBoundaries  = errors.New("boundaries must be \"identity\" or \"name\"")
	ErrInvalidWorkers     = errors.New("runner workers must not be negative")
	ErrNoExtensions       = errors.New("runner extensions must not be empty")
	ErrInvalidMaxFileSize = errors.New("invalid runner max file size")
	ErrInvalidLogFormat   = errors.New("logging format must be \"text\" or \"json\"")
	ErrInvalidDebounce    = errors.New("watch debounce must be positive")
	ErrInvalidSampleRatio = errors.New("telemetry sample ratio must be within [0, 1]")
)

// Boundary matching modes.
const (
	BoundariesIdentity = "identity"
	BoundariesName     = "name"
)

// Config holds all configuration for jsxtestid.
type Config struct {
	Plugin    PluginConfig    `mapstructure:"plugin"`
	Rules     transform.Rules `mapstructure:"rules"`
	Runner    RunnerConfig    `mapstructure:"runner"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// PluginConfig mirrors the strict plugin configuration.
type PluginConfig struct {
	AttrName         string   `mapstructure:"attr_name"`
	IgnoreComponents []string `mapstructure:"ignore_components"`
	IgnoreFiles      []string `mapstructure:"ignore_files"`
}

// RunnerConfig holds batch-run configuration.
type RunnerConfig struct {
	Boundaries  string   `mapstructure:"boundaries"`
	MaxFileSize string   `mapstructure:"max_file_size"`
	Extensions  []string `mapstructure:"extensions"`
	Workers     int      `mapstructure:"workers"`
}

// WatchConfig holds watch-mode configuration.
type WatchConfig struct {
	MetricsAddr string        `mapstructure:"metrics_addr"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	Environment  string  `mapstructure:"environment"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables.
// With an empty configPath, .jsxtestid.yaml is searched in the working
// directory and $HOME; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".jsxtestid")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix("JSXTESTID")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Plugin defaults.
	viperCfg.SetDefault("plugin.attr_name", DefaultAttrName)
	viperCfg.SetDefault("plugin.ignore_components", []string{})
	viperCfg.SetDefault("plugin.ignore_files", []string{})

	// Rule defaults.
	rules := transform.DefaultRules()
	viperCfg.SetDefault("rules.boolean_attr", rules.BooleanAttr)
	viperCfg.SetDefault("rules.attr.from", rules.Attr.From)
	viperCfg.SetDefault("rules.attr.to", rules.Attr.To)
	viperCfg.SetDefault("rules.attr.value", rules.Attr.Value)
	viperCfg.SetDefault("rules.call.from", rules.Call.From)
	viperCfg.SetDefault("rules.call.to", rules.Call.To)
	viperCfg.SetDefault("rules.function.from", rules.Function.From)
	viperCfg.SetDefault("rules.function.to", rules.Function.To)

	// Runner defaults.
	viperCfg.SetDefault("runner.workers", DefaultRunnerWorkers)
	viperCfg.SetDefault("runner.extensions", DefaultRunnerExtensions())
	viperCfg.SetDefault("runner.boundaries", BoundariesIdentity)
	viperCfg.SetDefault("runner.max_file_size", DefaultRunnerMaxFileSize)

	// Watch defaults.
	viperCfg.SetDefault("watch.debounce", DefaultWatchDebounce)
	viperCfg.SetDefault("watch.metrics_addr", "")

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Runner.Boundaries != BoundariesIdentity && config.Runner.Boundaries != BoundariesName {
		return fmt.Errorf("%w: %q", ErrInvalidBoundaries, config.Runner.Boundaries)
	}

	if config.Runner.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Runner.Workers)
	}

	if len(config.Runner.Extensions) == 0 {
		return ErrNoExtensions
	}

	if _, err := config.MaxFileSizeBytes(); err != nil {
		return err
	}

	if config.Logging.Format != "text" && config.Logging.Format != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDebounce, config.Watch.Debounce)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}

// MaxFileSizeBytes parses runner.max_file_size ("1MB", "512 KiB"); zero means unlimited.
func (config *Config) MaxFileSizeBytes() (uint64, error) {
	if config.Runner.MaxFileSize == "" || config.Runner.MaxFileSize == "0" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(config.Runner.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, config.Runner.MaxFileSize, err)
	}

	return size, nil
}

// TransformConfig returns the plugin section as a transform configuration.
func (config *Config) TransformConfig() transform.Config {
	return transform.Config{
		AttrName:         config.Plugin.AttrName,
		IgnoreComponents: config.Plugin.IgnoreComponents,
		IgnoreFiles:      config.Plugin.IgnoreFiles,
	}
}

// PluginJSON serializes the plugin section in the strict wire form accepted
// by transform.ParseConfig.
func (config *Config) PluginJSON() ([]byte, error) {
	return config.TransformConfig().MarshalPlugin()
}

// TransformOptions returns the transform options implied by the configuration.
func (config *Config) TransformOptions() []transform.Option {
	opts := []transform.Option{transform.WithRules(config.Rules)}

	if config.Runner.Boundaries == BoundariesName {
		opts = append(opts, transform.WithNameMatchedBoundaries())
	}

	return opts
}
