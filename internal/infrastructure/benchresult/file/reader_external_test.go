package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/infrastructure/benchresult/file"
)

func TestReader_ReadHashd_ParsesArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "hashd-bench.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mem_size":1073741824,"mem_profile":512}`), 0o644))

	r := file.New(path, filepath.Join(dir, "iocost-bench.json"))
	hashd, err := r.ReadHashd()
	require.NoError(t, err)
	assert.Equal(t, int64(1073741824), hashd.MemSize)
	assert.Equal(t, uint64(512), hashd.MemProfile)
}

func TestReader_ReadIOCost_ParsesArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "iocost-bench.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":{"ctrl":"scratch","rbps":1000},"qos":{"enable":1}}`), 0o644))

	r := file.New(filepath.Join(dir, "hashd-bench.json"), path)
	iocost, err := r.ReadIOCost()
	require.NoError(t, err)
	assert.Equal(t, "scratch", iocost.Model.CtrlName)
	assert.Equal(t, 1, iocost.QoS.Enable)
}

func TestReader_ReadHashd_MissingFileErrors(t *testing.T) {
	t.Parallel()

	r := file.New(filepath.Join(t.TempDir(), "missing.json"), "")
	_, err := r.ReadHashd()
	assert.Error(t, err)
}
