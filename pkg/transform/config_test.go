package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := transform.ParseConfig([]byte(`{
		"attrName": "data-testid",
		"ignoreComponents": ["Foo"],
		"ignoreFiles": ["legacy/", ".stories."]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "data-testid", cfg.AttrName)
	assert.Equal(t, []string{"Foo"}, cfg.IgnoreComponents)
	assert.Equal(t, []string{"legacy/", ".stories."}, cfg.IgnoreFiles)
}

func TestParseConfigAcceptsEmptyAttrName(t *testing.T) {
	t.Parallel()

	cfg, err := transform.ParseConfig([]byte(`{"attrName": "", "ignoreComponents": [], "ignoreFiles": []}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.AttrName)
}

func TestParseConfigRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		problem string
	}{
		{
			name:    "missing field",
			raw:     `{"attrName": "data-testid", "ignoreComponents": []}`,
			problem: "ignoreFiles",
		},
		{
			name:    "unknown field",
			raw:     `{"attrName": "x", "ignoreComponents": [], "ignoreFiles": [], "extra": true}`,
			problem: "extra",
		},
		{
			name:    "wrong type",
			raw:     `{"attrName": 3, "ignoreComponents": [], "ignoreFiles": []}`,
			problem: "attrName",
		},
		{
			name:    "wrong item type",
			raw:     `{"attrName": "x", "ignoreComponents": [1], "ignoreFiles": []}`,
			problem: "ignoreComponents",
		},
		{
			name: "not json",
			raw:  `{"attrName": `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := transform.ParseConfig([]byte(tt.raw))
			require.ErrorIs(t, err, transform.ErrInvalidConfig)

			var cfgErr *transform.ConfigError
			require.ErrorAs(t, err, &cfgErr)

			if tt.problem != "" {
				assert.Contains(t, err.Error(), tt.problem)
			}
		})
	}
}

func TestMarshalPluginRoundTrips(t *testing.T) {
	t.Parallel()

	raw, err := transform.Config{AttrName: "data-qa"}.MarshalPlugin()
	require.NoError(t, err)
	assert.JSONEq(t, `{"attrName":"data-qa","ignoreComponents":[],"ignoreFiles":[]}`, string(raw))

	cfg, err := transform.ParseConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, "data-qa", cfg.AttrName)
}

func TestConfigSchemaIsCopy(t *testing.T) {
	t.Parallel()

	schema := transform.ConfigSchema()
	require.NotEmpty(t, schema)

	schema[0] = 'x'
	assert.Equal(t, byte('{'), transform.ConfigSchema()[0])
}
