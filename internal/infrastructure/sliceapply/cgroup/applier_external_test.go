package cgroup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/domain/sliceknobs"
	"github.com/kodflow/resctld/internal/infrastructure/sliceapply/cgroup"
)

func newFixture(t *testing.T, slice sliceknobs.Slice) (*cgroup.Applier, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, string(slice))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cpu.weight"), []byte("100\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.low"), []byte("0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "io.weight"), []byte("default 100\n"), 0o644))
	return cgroup.New(root), dir
}

func TestApplier_Apply_WritesKnobs(t *testing.T) {
	t.Parallel()

	a, dir := newFixture(t, sliceknobs.Work)
	knobs := sliceknobs.SliceKnobs{
		sliceknobs.Work: {CPUWeight: 200, MemoryLow: 1024, IOWeight: 50},
	}
	require.NoError(t, a.Apply(knobs, 1))

	data, err := os.ReadFile(filepath.Join(dir, "cpu.weight"))
	require.NoError(t, err)
	assert.Equal(t, "200", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "io.weight"))
	require.NoError(t, err)
	assert.Equal(t, "default 50", string(data))
}

func TestApplier_Apply_SkipsDisabledSlice(t *testing.T) {
	t.Parallel()

	a, dir := newFixture(t, sliceknobs.Work)
	knobs := sliceknobs.SliceKnobs{
		sliceknobs.Work: {CPUWeight: 200, DisableSeq: 10},
	}
	require.NoError(t, a.Apply(knobs, 10))

	data, err := os.ReadFile(filepath.Join(dir, "cpu.weight"))
	require.NoError(t, err)
	assert.Equal(t, "100\n", string(data), "disabled slice must not be touched")
}

func TestApplier_Verify_DetectsDrift(t *testing.T) {
	t.Parallel()

	a, _ := newFixture(t, sliceknobs.Work)
	knobs := sliceknobs.SliceKnobs{
		sliceknobs.Work: {CPUWeight: 999, IOWeight: 100},
	}
	ok, err := a.Verify(knobs, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplier_Verify_MatchesAppliedKnobs(t *testing.T) {
	t.Parallel()

	a, _ := newFixture(t, sliceknobs.Work)
	knobs := sliceknobs.SliceKnobs{
		sliceknobs.Work: {CPUWeight: 100, MemoryLow: 0, IOWeight: 100},
	}
	ok, err := a.Verify(knobs, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
