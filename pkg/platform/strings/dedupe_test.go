package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims and drops empties",
			input:    []string{"  GRP_A ", "GRP_B", "", "   "},
			expected: []string{"GRP_A", "GRP_B"},
		},
		{
			name:     "keeps first occurrence order",
			input:    []string{"beta", "alpha", "beta", " alpha "},
			expected: []string{"beta", "alpha"},
		},
		{
			name:     "case sensitive",
			input:    []string{"Grp", "grp"},
			expected: []string{"Grp", "grp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
