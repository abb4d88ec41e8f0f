package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yamlconfig "github.com/kodflow/resctld/internal/infrastructure/persistence/config/yaml"
)

func TestAgentLoader_LoadMergesOntoDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scratch_device: sdb\n"), 0o600))

	l := yamlconfig.NewAgentLoader()
	cfg, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sdb", cfg.ScratchDevice)
	assert.Equal(t, "/var/lib/resctld/cmd.json", cfg.Paths.Cmd, "unspecified fields keep DefaultAgentConfig's values")
}

func TestAgentLoader_ReloadWithoutLoadFails(t *testing.T) {
	t.Parallel()

	l := yamlconfig.NewAgentLoader()
	_, err := l.Reload()
	assert.ErrorIs(t, err, yamlconfig.ErrNoConfigurationLoaded)
}

func TestAgentLoader_ReloadRereadsLastPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scratch_device: sda\n"), 0o600))

	l := yamlconfig.NewAgentLoader()
	_, err := l.Load(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("scratch_device: nvme0n1\n"), 0o600))
	cfg, err := l.Reload()
	require.NoError(t, err)
	assert.Equal(t, "nvme0n1", cfg.ScratchDevice)
}

func TestSweepLoader_LoadMergesOntoDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: sdb\n"), 0o600))

	l := yamlconfig.NewSweepLoader()
	cfg, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sdb", cfg.Device)
	assert.Equal(t, "/var/lib/resctld/cmd.json", cfg.Agent.Cmd, "unspecified fields keep DefaultSweepConfig's values")
}

func TestAgentLoader_LoadMissingFileFails(t *testing.T) {
	t.Parallel()

	l := yamlconfig.NewAgentLoader()
	_, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
