package memhog_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/domain/process"
	"github.com/kodflow/resctld/internal/infrastructure/balloon/memhog"
)

// fakeExecutor records Start/Stop calls without spawning real processes.
type fakeExecutor struct {
	mu        sync.Mutex
	nextPID   int
	started   []process.Spec
	stopped   []int
	waitChans map[int]chan process.ExitResult
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{waitChans: make(map[int]chan process.ExitResult)}
}

func (f *fakeExecutor) Start(_ context.Context, spec process.Spec) (int, <-chan process.ExitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPID++
	pid := f.nextPID
	f.started = append(f.started, spec)
	ch := make(chan process.ExitResult, 1)
	f.waitChans[pid] = ch
	return pid, ch, nil
}

func (f *fakeExecutor) Stop(pid int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, pid)
	if ch, ok := f.waitChans[pid]; ok {
		ch <- process.ExitResult{Code: 0}
	}
	return nil
}

func (f *fakeExecutor) Signal(int, os.Signal) error { return nil }

func TestBalloon_Resize_StartsChildWithSizeFlag(t *testing.T) {
	t.Parallel()

	exec := newFakeExecutor()
	b := memhog.New(memhog.Spec{Cmd: "/usr/bin/memhog", SizeFlag: "--size"}, exec)

	require.NoError(t, b.Resize(1024))

	exec.mu.Lock()
	defer exec.mu.Unlock()
	require.Len(t, exec.started, 1)
	assert.Equal(t, []string{"--size", "1024"}, exec.started[0].Args)
}

func TestBalloon_Resize_SameSizeIsNoOp(t *testing.T) {
	t.Parallel()

	exec := newFakeExecutor()
	b := memhog.New(memhog.Spec{Cmd: "/usr/bin/memhog", SizeFlag: "--size"}, exec)

	require.NoError(t, b.Resize(1024))
	require.NoError(t, b.Resize(1024))

	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.Len(t, exec.started, 1, "resizing to the already-pinned size must not restart")
}

func TestBalloon_Resize_ZeroStops(t *testing.T) {
	t.Parallel()

	exec := newFakeExecutor()
	b := memhog.New(memhog.Spec{Cmd: "/usr/bin/memhog", SizeFlag: "--size"}, exec)

	require.NoError(t, b.Resize(1024))
	require.NoError(t, b.Resize(0))

	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.Len(t, exec.stopped, 1)
}
