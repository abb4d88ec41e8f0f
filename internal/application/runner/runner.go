// Package runner implements the single-owner reconciler state machine
// that drives the agent's control plane, grounded on the teacher's
// application/supervisor.Supervisor (mutex-guarded map of managers,
// cooperative monitor loop) narrowed to the four-state machine spec.md
// §4.7 describes (component C7 "Runner state machine").
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kodflow/resctld/internal/application/balloon"
	"github.com/kodflow/resctld/internal/application/benchresult"
	"github.com/kodflow/resctld/internal/application/configwatch"
	"github.com/kodflow/resctld/internal/application/kernelctl"
	"github.com/kodflow/resctld/internal/application/sampler"
	"github.com/kodflow/resctld/internal/application/sliceapply"
	"github.com/kodflow/resctld/internal/application/svchandle"
	"github.com/kodflow/resctld/internal/domain/benchknobs"
	"github.com/kodflow/resctld/internal/domain/command"
	domlog "github.com/kodflow/resctld/internal/domain/logging"
	"github.com/kodflow/resctld/internal/domain/runstate"
	"github.com/kodflow/resctld/internal/domain/shared"
	"github.com/kodflow/resctld/internal/domain/sliceknobs"
)

// Config holds the fixed, non-reloadable knobs a Runner is constructed
// with (paths and timers come from the process' own config file, not
// from cmd.json).
type Config struct {
	// ForceRunning lets an operator skip two preconditions: that
	// iocost-bench has completed at least once before hashd-bench starts,
	// and that hashd-bench has completed at least once before Running
	// (spec.md §9, first Open Question: "document behaviour, do not
	// silently change").
	ForceRunning bool
	// DefaultSwappiness is used when cmd.json carries no override.
	DefaultSwappiness uint32
	// ScratchDevice is the block device slice.json's io_weight and the
	// iocost model/QoS apply to, e.g. "sda".
	ScratchDevice string
	// IOScheduler is the scheduler name asserted on ScratchDevice.
	IOScheduler string
	// HashdCmd is the reference-app binary path.
	HashdCmd string
	// ReconcileInterval is the inter-iteration sleep (spec.md §4.7 step 5).
	ReconcileInterval time.Duration
	// VerifyInterval bounds how often slice-health and IO scheduler are
	// re-asserted absent an explicit verify request (spec.md §4.7 step 6).
	VerifyInterval time.Duration
}

// DefaultConfig returns the timers spec.md §4.7 names literally.
func DefaultConfig() Config {
	return Config{
		DefaultSwappiness: 60,
		ReconcileInterval: 100 * time.Millisecond,
		VerifyInterval:    10 * time.Second,
	}
}

// Deps are the runner's external collaborators, every one a port
// defined in a sibling application package (spec.md §2: C1-C3 plus the
// kernel/slice/balloon/bench-artifact adapters C7 drives directly).
type Deps struct {
	Config      configwatch.Watcher
	Workloads   svchandle.Factory
	Bench       svchandle.Factory
	OOMD        svchandle.Handle
	Sideloader  svchandle.Handle
	Kernel      kernelctl.Kernel
	Slices      sliceapply.Applier
	Balloon     balloon.Balloon
	BenchResult benchresult.Reader
	Sampler     sampler.Sampler
	Logger      domlog.Logger
	Clock       shared.Nower
	// StartReporter is invoked exactly once, lazily, on the runner's
	// first reconcile iteration (spec.md §4.7 step 4). Nil is allowed in
	// tests that don't care about the reporter thread.
	StartReporter func()
}

// Runner is the single owner of the control-plane state; every mutable
// field below is read and written only while mu is held, matching the
// teacher's Supervisor mutex discipline and spec.md §5's "single coarse
// mutex over the runner data".
type Runner struct {
	mu sync.Mutex

	cfg  Config
	deps Deps

	state    runstate.State
	cmd      command.Command
	bench    benchknobs.BenchKnobs
	slice    sliceknobs.SliceKnobs
	oomd     configwatch.OOMDConfig
	sideDefs map[string]configwatch.SideDef

	instanceSeq   uint64
	cmdPending    bool
	verifyPending bool
	idleWarned    bool

	hashdBench  svchandle.Handle
	iocostBench svchandle.Handle
	hashd       [2]svchandle.Handle
	sysloads    map[string]svchandle.Handle
	sideloads   map[string]svchandle.Handle

	lastVerify     time.Time
	reporterOnce   sync.Once
	exiting        bool
}

// New constructs a Runner in the Idle state with no units owned yet.
// instanceSeq identifies this agent lifetime (GLOSSARY "Instance
// sequence"), used to evaluate slice.json's DisableSeq fields.
func New(cfg Config, deps Deps, instanceSeq uint64) *Runner {
	if deps.Clock == nil {
		deps.Clock = shared.DefaultClock
	}
	return &Runner{
		cfg:         cfg,
		deps:        deps,
		state:       runstate.Idle,
		instanceSeq: instanceSeq,
		sysloads:    make(map[string]svchandle.Handle),
		sideloads:   make(map[string]svchandle.Handle),
	}
}

// Run executes the reconcile loop until ctx is cancelled or Stop is
// called. It returns an error only when the initial config load fails.
// Every error raised inside an iteration (apply_cmd, including
// applyWorkloads failures, check_completions, maybe_reload) is logged as
// a warning and the loop continues; no error category ends the loop.
func (r *Runner) Run(ctx context.Context) error {
	snap, err := r.deps.Config.Load()
	if err != nil {
		return fmt.Errorf("runner: initial config load: %w", err)
	}
	r.mu.Lock()
	r.cmd, r.bench, r.slice = snap.Cmd, snap.Bench, snap.Slice
	r.oomd, r.sideDefs = snap.OOMD, snap.SideDefs
	r.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		r.mu.Lock()
		if r.exiting {
			r.mu.Unlock()
			return nil
		}
		if err := r.applyCmdLoop(ctx); err != nil {
			r.logWarn("reconcile", "apply_cmd failed", err)
		}
		if err := r.checkCompletions(ctx); err != nil {
			r.logWarn("reconcile", "check_completions failed", err)
		}
		r.mu.Unlock()

		r.reporterOnce.Do(func() {
			if r.deps.StartReporter != nil {
				r.deps.StartReporter()
			}
		})

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.cfg.ReconcileInterval):
		}

		r.mu.Lock()
		r.maybeVerify()
		if err := r.maybeReload(); err != nil {
			r.logWarn("reconcile", "maybe_reload failed", err)
		}
		r.mu.Unlock()
	}
}

// Stop requests the reconciler exit at the start of its next iteration,
// mirroring spec.md §5's cooperative "program exiting" flag rather than
// a forced cancellation (Run's ctx handles the forced case).
func (r *Runner) Stop() {
	r.mu.Lock()
	r.exiting = true
	r.mu.Unlock()
}

// State returns the runner's current top-level state, safe to call
// concurrently (used by the reporter thread to build base_report).
func (r *Runner) State() runstate.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Snapshot returns copies of the runner's mutable command/bench/slice
// state for a reporter building one tick's base_report (spec.md §4.6:
// "collect states and reports from C2, C7 sub-components" under a
// short lock). units is keyed by unit name ("hashd-0", "hashd-1",
// sysload/sideload names, plus "hashd-bench"/"iocost-bench" while one
// is active).
func (r *Runner) Snapshot() (runstate.State, command.Command, benchknobs.BenchKnobs, map[string]svchandle.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	units := make(map[string]svchandle.Status, 3+len(r.sysloads)+len(r.sideloads))
	for i, h := range r.hashd {
		if h != nil {
			units[fmt.Sprintf("hashd-%d", i)] = h.Status()
		}
	}
	for name, h := range r.sysloads {
		units[name] = h.Status()
	}
	for name, h := range r.sideloads {
		units[name] = h.Status()
	}
	if r.hashdBench != nil {
		units["hashd-bench"] = r.hashdBench.Status()
	}
	if r.iocostBench != nil {
		units["iocost-bench"] = r.iocostBench.Status()
	}
	return r.state, r.cmd, r.bench, units
}

// SysloadNames and SideloadNames let a reporter distinguish which
// Snapshot unit keys are sysloads vs sideloads vs the fixed hashd/bench
// slots, without re-deriving that from name prefixes.
func (r *Runner) SysloadNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.sysloads))
	for name := range r.sysloads {
		names = append(names, name)
	}
	return names
}

func (r *Runner) SideloadNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.sideloads))
	for name := range r.sideloads {
		names = append(names, name)
	}
	return names
}

func (r *Runner) logWarn(eventType, msg string, err error) {
	if r.deps.Logger == nil {
		return
	}
	meta := map[string]any{}
	if err != nil {
		meta["error"] = err.Error()
	}
	r.deps.Logger.Warn("runner", eventType, msg, meta)
}

func (r *Runner) logInfo(eventType, msg string, meta map[string]any) {
	if r.deps.Logger == nil {
		return
	}
	r.deps.Logger.Info("runner", eventType, msg, meta)
}
