package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCooldown(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1d", 86400},
		{"1.5d", 129600},
		{"12h", 43200},
		{"90m", 5400},
		{" 45s ", 45},
		{"1h30m", 5400},
	}
	for _, tt := range tests {
		got, err := ParseCooldown(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "d", "abc", "-1h", "500ms", "0s"} {
		_, err := ParseCooldown(bad)
		assert.Error(t, err, bad)
	}

	for _, huge := range []string{"300000d", "1e300d", "infd", "nand", "3000000h"} {
		_, err := ParseCooldown(huge)
		require.Error(t, err, huge)
		assert.NotContains(t, err.Error(), "at least one second", huge)
	}
	_, err := ParseCooldown("300000d")
	assert.EqualError(t, err, `cooldown "300000d" is out of range`)
}
