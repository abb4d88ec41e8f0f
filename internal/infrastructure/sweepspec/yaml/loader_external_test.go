package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/domain/qos"
	yamlspec "github.com/kodflow/resctld/internal/infrastructure/sweepspec/yaml"
)

func TestLoader_Parse_AppliesDefaults(t *testing.T) {
	t.Parallel()

	l := yamlspec.New()
	spec, err := l.Parse([]byte("vrate_min: 0.1\n"))
	require.NoError(t, err)

	assert.Equal(t, qos.VrateFloor, spec.VrateMin, "vrate_min below the floor is clamped up")
	assert.Equal(t, qos.DefaultVrateIntvs, spec.VrateIntvs)
	assert.Equal(t, "99", spec.IsolPct)
	assert.Equal(t, 0.1, spec.IsolThr)
}

func TestLoader_Parse_ExplicitOverridesSkipIntervalDefault(t *testing.T) {
	t.Parallel()

	l := yamlspec.New()
	spec, err := l.Parse([]byte("explicit:\n  - min: 1.0\n    max: 2.0\n"))
	require.NoError(t, err)

	assert.Zero(t, spec.VrateIntvs, "explicit points skip vrate-range planning entirely")
	assert.Len(t, spec.Explicit, 1)
}

func TestLoader_Load_ThenReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vrate_intvs: 7\n"), 0o644))

	l := yamlspec.New()
	spec, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, spec.VrateIntvs)

	reloaded, err := l.Reload()
	require.NoError(t, err)
	assert.Equal(t, spec, reloaded)
}

func TestLoader_Reload_WithoutLoadFails(t *testing.T) {
	t.Parallel()

	l := yamlspec.New()
	_, err := l.Reload()
	assert.ErrorIs(t, err, yamlspec.ErrNoSpecLoaded)
}
