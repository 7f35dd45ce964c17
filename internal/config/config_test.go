package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsEveryDefault(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	assert.Equal(t, "append-only-log", r.String(KeyStorageBackend))
	assert.Equal(t, "none", r.String(KeyEmbeddingProvider))
	assert.Equal(t, 256, r.Int(KeyEmbeddingDimensions))
	assert.Equal(t, 1.2, r.Float64(KeyBM25K1))
	assert.True(t, r.Bool(KeyHybridNormalise))
	assert.Equal(t, 5*time.Minute, r.Duration(KeyWorkerPoolIdleTime))
}

func TestNewReadsYAMLFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedding:\n  provider: local\n  dimensions: 64\n"), 0o644))

	r, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "local", r.String(KeyEmbeddingProvider))
	assert.Equal(t, 64, r.Int(KeyEmbeddingDimensions))
	// Untouched keys keep their defaults.
	assert.Equal(t, "append-only-log", r.String(KeyStorageBackend))
}

func TestEnvVarOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedding:\n  provider: local\n"), 0o644))

	t.Setenv("KGCORE_EMBEDDING_PROVIDER", "mock")
	r, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "mock", r.String(KeyEmbeddingProvider))
}

func TestSetOverridesInMemory(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	r.Set(KeyBackupDir, "/var/backups/kg")
	assert.Equal(t, "/var/backups/kg", r.String(KeyBackupDir))
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, IsKnownKey(KeyFuzzyThreshold))
	assert.False(t, IsKnownKey("not.a.real.key"))
}

func TestAllReturnsEveryDefaultedKey(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	all := r.All()
	for key := range defaults {
		_, ok := all[key]
		assert.True(t, ok, "missing key %s", key)
	}
}

func TestWriteExampleTOMLProducesReadableGroups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.toml")
	require.NoError(t, WriteExampleTOML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[storage]")
	assert.Contains(t, string(data), "[embedding]")
}
