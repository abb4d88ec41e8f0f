// Package unitd adapts process.Executor into the svchandle.Handle port:
// one directly-owned child process per managed unit, grounded on the
// teacher's application/lifecycle.Manager with the restart loop removed
// (the runner's own state machine decides when a unit should run).
package unitd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kodflow/resctld/internal/application/svchandle"
	"github.com/kodflow/resctld/internal/domain/process"
)

// defaultStopTimeout bounds Stop when the caller passes zero.
const defaultStopTimeout = 10 * time.Second

// Handle is the unitd adapter: one instance per managed unit name.
type Handle struct {
	name     string
	executor process.Executor

	mu       sync.RWMutex
	pid      int
	state    process.State
	exitCode int
	start    time.Time
	waitCh   <-chan process.ExitResult
	exists   bool
}

// Factory builds Handles sharing a single process.Executor.
type Factory struct {
	Executor process.Executor
}

// New implements svchandle.Factory.
func (f *Factory) New(name string) svchandle.Handle {
	return &Handle{name: name, executor: f.Executor, state: process.StateStopped}
}

// Start implements svchandle.Handle.
func (h *Handle) Start(ctx context.Context, spec svchandle.Spec) error {
	h.mu.Lock()
	if h.exists && h.state == process.StateRunning {
		h.mu.Unlock()
		return nil
	}
	h.state = process.StateStarting
	h.mu.Unlock()

	procSpec := process.NewSpec(process.SpecParams{
		Command: spec.Cmd,
		Args:    spec.Args,
		Dir:     spec.Dir,
		Env:     spec.Env,
	})

	pid, wait, err := h.executor.Start(ctx, procSpec)
	if err != nil {
		h.mu.Lock()
		h.state = process.StateFailed
		h.exists = true
		h.mu.Unlock()
		return fmt.Errorf("unitd: start %s: %w", h.name, err)
	}

	h.mu.Lock()
	h.pid = pid
	h.waitCh = wait
	h.start = time.Now()
	h.state = process.StateRunning
	h.exists = true
	h.mu.Unlock()

	go h.reap()
	return nil
}

// reap blocks on the exit channel and records the terminal state, so
// Status never has to block.
func (h *Handle) reap() {
	h.mu.RLock()
	wait := h.waitCh
	h.mu.RUnlock()
	if wait == nil {
		return
	}
	result := <-wait

	h.mu.Lock()
	h.exitCode = result.Code
	h.pid = 0
	if result.Code == 0 {
		h.state = process.StateStopped
	} else {
		h.state = process.StateFailed
	}
	h.mu.Unlock()
}

// Stop implements svchandle.Handle.
func (h *Handle) Stop(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}

	h.mu.RLock()
	pid := h.pid
	running := h.state == process.StateRunning
	h.mu.RUnlock()

	if !running || pid == 0 {
		return nil
	}

	if err := h.executor.Stop(pid, timeout); err != nil {
		return fmt.Errorf("unitd: stop %s: %w", h.name, err)
	}

	h.mu.Lock()
	h.state = process.StateStopped
	h.pid = 0
	h.mu.Unlock()
	return nil
}

// Status implements svchandle.Handle.
func (h *Handle) Status() svchandle.Status {
	h.mu.RLock()
	defer h.mu.RUnlock()

	uptime := time.Duration(0)
	if h.state == process.StateRunning {
		uptime = time.Since(h.start)
	}
	return svchandle.Status{
		Name:     h.name,
		Exists:   h.exists,
		State:    h.state,
		PID:      h.pid,
		ExitCode: h.exitCode,
		Uptime:   uptime,
	}
}
