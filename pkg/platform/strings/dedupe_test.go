package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
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
			name:     "single element",
			input:    []string{"BONK"},
			expected: []string{"BONK"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"WIF", "BONK", "WIF", "JUP", "BONK"},
			expected: []string{"WIF", "BONK", "JUP"},
		},
		{
			name:     "case sensitive",
			input:    []string{"BONK", "bonk", "Bonk"},
			expected: []string{"BONK", "bonk", "Bonk"},
		},
		{
			name:     "whitespace is significant",
			input:    []string{"A B", " A B", "A B"},
			expected: []string{"A B", " A B"},
		},
		{
			name:     "drops empty strings",
			input:    []string{"", "JUP", ""},
			expected: []string{"JUP"},
		},
		{
			name:     "all empty",
			input:    []string{"", ""},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dedupe(tt.input))
		})
	}
}
