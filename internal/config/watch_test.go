package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedding:\n  provider: local\n"), 0o644))

	r, err := New(path)
	require.NoError(t, err)

	reloaded := make(chan struct{}, 1)
	w, err := Watch(r, path, func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("embedding:\n  provider: mock\n"), 0o644))

	select {
	case <-reloaded:
		assert.Equal(t, "mock", r.String(KeyEmbeddingProvider))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
