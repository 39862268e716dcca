package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "meshgrid.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadAppliesDefaultsThenOverridesFromFile(t *testing.T) {
	path := writeTemp(t, `
step = 2.5
levels = 5
err_tol = 0.02

[base]
x = 1.0
y = 2.0
z = 3.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.EqualValues(t, 2.5, cfg.Step)
	assert.Equal(t, 5, cfg.Levels)
	assert.EqualValues(t, float32(0.02), cfg.ErrTol)
	assert.EqualValues(t, 1.0, cfg.Base.X)
	// Fields absent from the file keep Default()'s values.
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.True(t, cfg.ContinuousLOD)
	assert.True(t, cfg.FrustumCull)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeTemp(t, "step = -1\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}

func TestValidateCatchesEachConstraint(t *testing.T) {
	base := Default()

	bad := base
	bad.Step = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Levels = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.ErrTol = -0.1
	assert.Error(t, bad.Validate())

	bad = base
	bad.WorkerCount = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.DefaultKappa = 0
	assert.Error(t, bad.Validate())
}

func TestWatcherReloadsOnFileWrite(t *testing.T) {
	path := writeTemp(t, "levels = 3\n")

	changes := make(chan Config, 4)
	w, err := NewWatcher(path, func(c Config) { changes <- c })
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 3, w.Current().Levels)

	require.NoError(t, os.WriteFile(path, []byte("levels = 6\n"), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, 6, cfg.Levels)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher to observe the file write")
	}
	assert.Equal(t, 6, w.Current().Levels)
}
