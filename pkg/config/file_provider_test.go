package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileConfigProvider_Reload(t *testing.T) {
	path := writeFile(t, "oxy.yaml", "logging:\n  level: info\n")

	p, err := NewFileConfigProvider(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	updates := p.Subscribe()
	initial := <-updates
	assert.Equal(t, int64(1), initial.Generation)
	assert.Equal(t, "info", initial.Config.Logging.Level)
	assert.Equal(t, p.Path(), initial.Path)

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	select {
	case snap := <-updates:
		assert.GreaterOrEqual(t, snap.Generation, int64(2))
		assert.Equal(t, "debug", snap.Config.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
	assert.Equal(t, "debug", p.CurrentSnapshot().Config.Logging.Level)
}

func TestFileConfigProvider_InvalidReloadKeepsSnapshot(t *testing.T) {
	path := writeFile(t, "oxy.yaml", "logging:\n  level: warn\n")

	p, err := NewFileConfigProvider(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	reloads := make(chan error, 8)
	p.OnReload(func(err error) { reloads <- err })

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o600))
	select {
	case err := <-reloads:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	case <-time.After(5 * time.Second):
		t.Fatal("no reload attempt observed")
	}

	snap := p.CurrentSnapshot()
	assert.Equal(t, int64(1), snap.Generation)
	assert.Equal(t, "warn", snap.Config.Logging.Level)
}

func TestFileConfigProvider_InitialLoadFails(t *testing.T) {
	path := writeFile(t, "oxy.yaml", "logging:\n  level: loud\n")
	_, err := NewFileConfigProvider(path, nil)
	assert.Error(t, err)
}
