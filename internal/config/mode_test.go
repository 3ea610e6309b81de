package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Mode
	}{
		{name: "development", input: "development", expected: ModeDevelopment},
		{name: "production", input: "production", expected: ModeProduction},
		{name: "empty defaults to production", input: "", expected: ModeProduction},
		{name: "staging is production", input: "staging", expected: ModeProduction},
		{name: "case sensitive", input: "Development", expected: ModeProduction},
		{name: "no trimming", input: " development", expected: ModeProduction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseMode(tt.input))
		})
	}
}

func TestNewOptions_development(t *testing.T) {
	opts := NewOptions(ModeDevelopment)

	require.Equal(t, ModeDevelopment, opts.Mode)
	require.Equal(t, "/", opts.PublicPath)
	require.False(t, opts.Minify)
	require.False(t, opts.HashOutputs)
	require.False(t, opts.DropConsole)
	require.True(t, opts.DevServer)
	require.True(t, opts.SourceMaps)
}

func TestNewOptions_production(t *testing.T) {
	opts := NewOptions(ParseMode("production"))

	require.Equal(t, ModeProduction, opts.Mode)
	require.Empty(t, opts.PublicPath)
	require.True(t, opts.Minify)
	require.True(t, opts.HashOutputs)
	require.True(t, opts.DropConsole)
	require.False(t, opts.DevServer)
	require.False(t, opts.SourceMaps)
}
