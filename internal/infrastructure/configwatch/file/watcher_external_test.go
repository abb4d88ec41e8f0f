package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/domain/benchknobs"
	"github.com/kodflow/resctld/internal/infrastructure/configwatch/file"
)

func newPaths(t *testing.T) file.Paths {
	t.Helper()
	dir := t.TempDir()
	return file.Paths{
		Cmd:      filepath.Join(dir, "cmd.json"),
		Ack:      filepath.Join(dir, "cmd_ack.json"),
		Bench:    filepath.Join(dir, "bench.json"),
		Slice:    filepath.Join(dir, "slice.json"),
		OOMD:     filepath.Join(dir, "oomd.json"),
		SideDefs: filepath.Join(dir, "side_def.json"),
	}
}

func TestWatcher_Load_MissingFilesYieldZeroValues(t *testing.T) {
	t.Parallel()

	w := file.New(newPaths(t))
	snap, err := w.Load()
	require.NoError(t, err)
	assert.Zero(t, snap.Cmd.CmdSeq)
	assert.Empty(t, snap.SideDefs)
}

func TestWatcher_Poll_DetectsChange(t *testing.T) {
	t.Parallel()

	paths := newPaths(t)
	w := file.New(paths)
	_, err := w.Load()
	require.NoError(t, err)

	_, changed, err := w.Poll()
	require.NoError(t, err)
	assert.False(t, changed.Any(), "no file touched yet")

	require.NoError(t, w.WriteBench(benchknobs.BenchKnobs{HashdSeq: 3}))

	snap, changed, err := w.Poll()
	require.NoError(t, err)
	assert.True(t, changed.Bench)
	assert.Equal(t, uint64(3), snap.Bench.HashdSeq)
}

func TestWatcher_WriteAck(t *testing.T) {
	t.Parallel()

	paths := newPaths(t)
	w := file.New(paths)
	require.NoError(t, w.WriteAck(7))

	data, err := os.ReadFile(paths.Ack)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cmd_seq":7`)
}
