package protection_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/infrastructure/sweepbench/protection"
)

func TestBench_Run_ConvergedReturnsFinalSize(t *testing.T) {
	t.Parallel()

	resultPath := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(resultPath, []byte(`{"converged":true,"final_size":4096}`), 0o644))

	b := protection.New("/bin/true", resultPath)
	res, err := b.Run(context.Background(), 1024, 8192, "99", 0.1)
	require.NoError(t, err)
	require.NotNil(t, res.FinalSize)
	assert.Equal(t, int64(4096), *res.FinalSize)
}

func TestBench_Run_NonConvergentReturnsNilSize(t *testing.T) {
	t.Parallel()

	resultPath := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(resultPath, []byte(`{"converged":false}`), 0o644))

	b := protection.New("/bin/true", resultPath)
	res, err := b.Run(context.Background(), 1024, 8192, "99", 0.1)
	require.NoError(t, err)
	assert.Nil(t, res.FinalSize)
}

func TestBench_Run_CommandFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	b := protection.New("/bin/false", filepath.Join(t.TempDir(), "result.json"))
	res, err := b.Run(context.Background(), 1024, 8192, "99", 0.1)
	require.NoError(t, err)
	assert.Nil(t, res.FinalSize)
}
