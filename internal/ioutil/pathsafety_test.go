package ioutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWithinBaseAcceptsRelativePath(t *testing.T) {
	base := t.TempDir()
	got, err := ResolveWithinBase(base, "export.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "export.json"), got)
}

func TestResolveWithinBaseAcceptsNestedRelativePath(t *testing.T) {
	base := t.TempDir()
	got, err := ResolveWithinBase(base, filepath.Join("snapshots", "2026", "export.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "snapshots", "2026", "export.json"), got)
}

func TestResolveWithinBaseRejectsParentTraversal(t *testing.T) {
	base := t.TempDir()
	_, err := ResolveWithinBase(base, "../../etc/passwd")
	assert.Error(t, err)
}

func TestResolveWithinBaseRejectsAbsolutePathOutsideBase(t *testing.T) {
	base := t.TempDir()
	_, err := ResolveWithinBase(base, "/etc/passwd")
	assert.Error(t, err)
}

func TestResolveWithinBaseAcceptsAbsolutePathInsideBase(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "export.json")
	got, err := ResolveWithinBase(base, inside)
	require.NoError(t, err)
	assert.Equal(t, inside, got)
}
