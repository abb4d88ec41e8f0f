// Package memhog adapts application/balloon.Balloon onto a directly
// owned memory-pinning child process, grounded on the teacher's
// infrastructure/svchandle/unitd.Handle (process.Executor ownership,
// start/stop bookkeeping under one mutex) narrowed to the single-child,
// restart-to-resize shape a memory balloon needs (GLOSSARY "Balloon").
package memhog

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kodflow/resctld/internal/domain/process"
)

const defaultStopTimeout = 5 * time.Second

// Spec is the balloon sub-process: a fixed binary that pins
// SizeFlag-many bytes of memory for as long as it runs (e.g. the
// original benchmark's memory-balloon helper).
type Spec struct {
	Cmd string
	// SizeFlag is the CLI flag name the balloon binary expects its byte
	// count on, e.g. "--size".
	SizeFlag string
	Cgroup   string
}

// Balloon implements application/balloon.Balloon by restarting its
// child process with a new --size whenever Resize is called with a
// different value than currently pinned.
type Balloon struct {
	spec     Spec
	executor process.Executor

	mu      sync.Mutex
	pid     int
	bytes   int64
	running bool
	waitCh  <-chan process.ExitResult
}

// New builds a Balloon for spec, launched via executor.
func New(spec Spec, executor process.Executor) *Balloon {
	return &Balloon{spec: spec, executor: executor}
}

// Resize implements application/balloon.Balloon.
func (b *Balloon) Resize(bytes int64) error {
	if bytes == 0 {
		return b.Stop()
	}

	b.mu.Lock()
	if b.running && b.bytes == bytes {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	if err := b.stopLocked(); err != nil {
		return fmt.Errorf("memhog: stop previous instance: %w", err)
	}

	spec := process.NewSpec(process.SpecParams{
		Command: b.spec.Cmd,
		Args:    []string{b.spec.SizeFlag, strconv.FormatInt(bytes, 10)},
	})

	pid, wait, err := b.executor.Start(context.Background(), spec)
	if err != nil {
		return fmt.Errorf("memhog: start: %w", err)
	}

	b.mu.Lock()
	b.pid = pid
	b.bytes = bytes
	b.running = true
	b.waitCh = wait
	b.mu.Unlock()

	go b.reap(wait)
	return nil
}

// reap clears running state once the child exits on its own (e.g. OOM
// killed), so a subsequent Resize does not try to Stop a dead PID.
func (b *Balloon) reap(wait <-chan process.ExitResult) {
	<-wait
	b.mu.Lock()
	b.running = false
	b.pid = 0
	b.mu.Unlock()
}

// Stop implements application/balloon.Balloon.
func (b *Balloon) Stop() error {
	return b.stopLocked()
}

func (b *Balloon) stopLocked() error {
	b.mu.Lock()
	pid := b.pid
	running := b.running
	b.mu.Unlock()

	if !running || pid == 0 {
		return nil
	}

	if err := b.executor.Stop(pid, defaultStopTimeout); err != nil {
		return fmt.Errorf("memhog: stop: %w", err)
	}

	b.mu.Lock()
	b.running = false
	b.pid = 0
	b.bytes = 0
	b.mu.Unlock()
	return nil
}
