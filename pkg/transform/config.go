package transform

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var configSchema []byte

// Config is the plugin configuration consumed by a Transformer.
type Config struct {
	AttrName         string   `json:"attrName"`
	IgnoreComponents []string `json:"ignoreComponents"`
	IgnoreFiles      []string `json:"ignoreFiles"`
}

// ConfigSchema returns the JSON schema that plugin configurations must satisfy.
func ConfigSchema() []byte {
	return slices.Clone(configSchema)
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(configSchema))
})

// ParseConfig validates raw against the configuration schema and decodes it.
// Missing fields, unknown fields and wrong value types all fail with a *ConfigError.
func ParseConfig(raw []byte) (Config, error) {
	problems, err := ValidateConfig(raw)
	if err != nil {
		return Config{}, err
	}

	if len(problems) > 0 {
		return Config{}, &ConfigError{Problems: problems}
	}

	var cfg Config

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	if decodeErr := dec.Decode(&cfg); decodeErr != nil {
		return Config{}, &ConfigError{Cause: decodeErr}
	}

	return cfg, nil
}

// ValidateConfig returns the schema violations found in raw, one per entry.
// An error is returned only when raw is not JSON at all.
func ValidateConfig(raw []byte) ([]string, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &ConfigError{Cause: err}
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return problems, nil
}

// MarshalPlugin encodes cfg in the wire form accepted by ParseConfig.
// Nil lists are written as empty arrays so the result always validates.
func (cfg Config) MarshalPlugin() ([]byte, error) {
	wire := Config{
		AttrName:         cfg.AttrName,
		IgnoreComponents: nonNil(cfg.IgnoreComponents),
		IgnoreFiles:      nonNil(cfg.IgnoreFiles),
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal plugin config: %w", err)
	}

	return data, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}

// skipsFile reports whether filename contains any ignoreFiles entry.
func (cfg Config) skipsFile(filename string) (string, bool) {
	for _, pattern := range cfg.IgnoreFiles {
		if strings.Contains(filename, pattern) {
			return pattern, true
		}
	}

	return "", false
}

func (cfg Config) ignoresComponent(name string) bool {
	return slices.Contains(cfg.IgnoreComponents, name)
}

// ErrInvalidConfig reports a configuration that failed schema validation or decoding.
var ErrInvalidConfig = errors.New("invalid plugin configuration")

// ConfigError describes every problem found in a plugin configuration.
type ConfigError struct {
	Problems []string
	Cause    error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder

	sb.WriteString(ErrInvalidConfig.Error())

	if len(e.Problems) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Problems, "; "))
	}

	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}

	return sb.String()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidConfig}
	}

	return []error{ErrInvalidConfig, e.Cause}
}
