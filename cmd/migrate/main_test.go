package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cmd, _, err := parseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "up", cmd)

	cmd, _, err = parseArgs([]string{"down"})
	require.NoError(t, err)
	assert.Equal(t, "down", cmd)

	cmd, version, err := parseArgs([]string{"force", "1"})
	require.NoError(t, err)
	assert.Equal(t, "force", cmd)
	assert.Equal(t, 1, version)

	_, _, err = parseArgs([]string{"force"})
	assert.Error(t, err)
	_, _, err = parseArgs([]string{"force", "one"})
	assert.Error(t, err)
	_, _, err = parseArgs([]string{"sideways"})
	assert.Error(t, err)
}

func TestRunRequiresDatabaseURL(t *testing.T) {
	assert.EqualError(t, run(nil, ""), "DATABASE_URL is required")
}
