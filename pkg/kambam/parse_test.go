package kambam

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToRun(t *testing.T) {
	config, cmd, err := Parse(nil, io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &RunCommand{}, cmd)
	assert.Equal(t, "3001", config.ServerPort)
	assert.False(t, config.ReadOnly)
}

func TestParseFlagsAndCommand(t *testing.T) {
	config, cmd, err := Parse([]string{"-port", "8080", "-sqlite", "/tmp/test.db", "-read-only", "seed"}, io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &SeedCommand{}, cmd)
	assert.Equal(t, "8080", config.ServerPort)
	assert.Equal(t, "/tmp/test.db", config.SQLitePath)
	assert.True(t, config.ReadOnly)
}

func TestParseUnknownCommand(t *testing.T) {
	_, _, err := Parse([]string{"frobnicate"}, io.Discard)
	assert.Error(t, err)
}
