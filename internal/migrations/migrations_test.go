package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsHaveBothDirections(t *testing.T) {
	entries, err := FS.ReadDir(".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		data, err := FS.ReadFile(e.Name())
		require.NoError(t, err)
		body := string(data)
		assert.True(t, strings.Contains(body, "-- +goose Up"), e.Name())
		assert.True(t, strings.Contains(body, "-- +goose Down"), e.Name())
	}
}
