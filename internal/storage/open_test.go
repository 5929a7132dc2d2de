package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	path := filepath.Join(t.TempDir(), "store.json")
	s, err = Open(ctx, config.StorageConfig{Backend: config.BackendFile, Path: path})
	require.NoError(t, err)
	fs, ok := s.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, path, fs.Path())

	_, err = Open(ctx, config.StorageConfig{Backend: config.BackendFile})
	assert.Error(t, err)

	_, err = Open(ctx, config.StorageConfig{Backend: config.BackendPostgres})
	assert.Error(t, err)

	_, err = Open(ctx, config.StorageConfig{Backend: "dynamo"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
