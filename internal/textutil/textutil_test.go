package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"abcdef", 3, "abc"},
		{"abc", 10, "abc"},
		{"abc", 3, "abc"},
		{"abcdef", 0, "abcdef"},
		{"abcdef", -1, "abcdef"},
		{"مرحبا", 3, "مرح"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.text, tt.n), "Truncate(%q, %d)", tt.text, tt.n)
	}
}
