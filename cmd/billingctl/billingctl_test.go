package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDue(t *testing.T) {
	got, err := parseDue("2026-03-15T08:30:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)))

	got, err = parseDue("2026-03-15 20:00")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Hour())
	assert.Equal(t, time.Local, got.Location())

	_, err = parseDue("15/03/2026")
	assert.Error(t, err)

	before := time.Now().UTC()
	got, err = parseDue("")
	require.NoError(t, err)
	assert.False(t, got.Before(before))
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"schedule"},
		{"sweep"},
		{"relay-outbox"},
		{"invoice", "create"},
		{"notify", "whatsapp"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, "%v", path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
	assert.Contains(t, chargeTypes(), "RENT")
	assert.Contains(t, chargeTypes(), "OTHER")
}
