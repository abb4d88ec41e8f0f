package latencyproc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/infrastructure/latencyproc"
)

func TestReader_Stream_ParsesJSONLines(t *testing.T) {
	t.Parallel()

	script := `echo '{"op":"read","seconds":0.001}'; echo '{"op":"write","seconds":0.002}'`
	specs := [2]latencyproc.Spec{
		{Cmd: "/bin/sh", Args: []string{"-c", script}},
		{Cmd: "/bin/sh", Args: []string{"-c", "true"}},
	}
	r := latencyproc.New(specs)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, err := r.Stream(ctx, 0)
	require.NoError(t, err)

	var got []string
	for s := range ch {
		got = append(got, s.Op)
	}
	assert.Equal(t, []string{"read", "write"}, got)
}

func TestReader_Stream_SameChannelOnRepeatedCalls(t *testing.T) {
	t.Parallel()

	specs := [2]latencyproc.Spec{{Cmd: "/bin/sh", Args: []string{"-c", "sleep 1"}}, {}}
	r := latencyproc.New(specs)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch1, err := r.Stream(ctx, 0)
	require.NoError(t, err)
	ch2, err := r.Stream(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, ch1, ch2)
}

func TestReader_Stream_OutOfRangeIndex(t *testing.T) {
	t.Parallel()

	r := latencyproc.New([2]latencyproc.Spec{})
	_, err := r.Stream(context.Background(), 5)
	assert.Error(t, err)
}
