package levenshtein_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/levenshtein"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "a", 1},
		{"a", "", 1},
		{"a", "a", 0},
		{"ab", "aaa", 2},
		{"kitten", "sitting", 3},
		{"sitting", "kitten", 3},
		{"Fön", "Föm", 1},
		{"insert", "inser", 1},
		{"JSXOpenin", "JSXOpening", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein.Distance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	candidates := []string{"JSXElement", "JSXOpening", "JSXClosing"}

	got, ok := levenshtein.Suggest("jsxopenin", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "JSXOpening", got)

	_, ok = levenshtein.Suggest("Identifier", candidates, 2)
	assert.False(t, ok)

	got, ok = levenshtein.Suggest("JSXClosing", candidates, 0)
	assert.True(t, ok)
	assert.Equal(t, "JSXClosing", got)
}
