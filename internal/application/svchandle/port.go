// Package svchandle defines the port through which the runner starts,
// stops, and observes the managed units (the reference-app instances,
// sideloads, sysloads, oomd, sideloader, and benchmark sub-processes)
// grounded on the teacher's process/lifecycle manager (spec.md §4.2,
// component C2 "Service handle").
package svchandle

import (
	"context"
	"time"

	"github.com/kodflow/resctld/internal/domain/process"
)

// Status mirrors a unit's observed lifecycle state for one reconcile
// pass, independent of the process package's richer Status (svchandle
// never restarts on its own; the runner state machine decides that).
type Status struct {
	Name     string
	Exists   bool
	State    process.State
	PID      int
	ExitCode int
	Uptime   time.Duration
}

// Running reports whether the unit is currently executing.
func (s Status) Running() bool { return s.Exists && s.State == process.StateRunning }

// Exited reports whether the unit ran and has since terminated.
func (s Status) Exited() bool {
	return s.Exists && (s.State == process.StateStopped || s.State == process.StateFailed)
}

// Spec describes how to launch one unit.
type Spec struct {
	Name string
	Cmd  string
	Args []string
	Dir  string
	Env  map[string]string
	// Cgroup is the slice-relative cgroup path the unit should be placed
	// under once started (e.g. "workload.slice/hashd-0").
	Cgroup string
}

// Handle is the port the runner uses to own a single named unit. An
// implementation wraps process.Executor with enough bookkeeping to
// answer Status without blocking on the child.
type Handle interface {
	// Start launches the unit if it is not already running. Starting an
	// already-running unit is a no-op.
	Start(ctx context.Context, spec Spec) error
	// Stop terminates the unit, waiting up to timeout for a graceful exit.
	Stop(timeout time.Duration) error
	// Status returns the unit's last-known lifecycle state.
	Status() Status
}

// Factory creates a fresh Handle for a named unit. The runner holds one
// Handle per managed unit and discards it once the unit is permanently
// retired (e.g. a sideload removed from cmd.json).
type Factory interface {
	New(name string) Handle
}
