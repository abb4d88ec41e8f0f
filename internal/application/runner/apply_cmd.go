package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/kodflow/resctld/internal/application/svchandle"
	"github.com/kodflow/resctld/internal/domain/runstate"
)

// applyCmdLoop implements spec.md §4.7 step 1: while cmd_pending or the
// runner is Idle, repeatedly call applyCmd until it asks to stop
// repeating or fails. The ack is written before any action begins
// (spec.md §5 ordering guarantee: "ack is written before any action
// taken in response to that command is started").
func (r *Runner) applyCmdLoop(ctx context.Context) error {
	if !r.cmdPending && r.state != runstate.Idle {
		return nil
	}
	if err := r.deps.Config.WriteAck(r.cmd.CmdSeq); err != nil {
		r.logWarn("cmd_ack", "writing cmd_ack.json failed", err)
	}
	for {
		repeat, err := r.applyCmd(ctx)
		if err != nil {
			return err
		}
		if !repeat {
			break
		}
	}
	r.cmdPending = false
	return nil
}

// applyCmd dispatches to the branch for the runner's current state
// (spec.md §4.7 step 1 sub-bullets).
func (r *Runner) applyCmd(ctx context.Context) (repeat bool, err error) {
	switch r.state {
	case runstate.Idle:
		return r.applyCmdIdle(ctx)
	case runstate.Running:
		return r.applyCmdRunning(ctx)
	case runstate.BenchHashd:
		return r.applyCmdBenchmarking(ctx, r.cmd.BenchHashdSeq > r.bench.HashdSeq)
	case runstate.BenchIoCost:
		return r.applyCmdBenchmarking(ctx, r.cmd.BenchIocostSeq > r.bench.IocostSeq)
	default:
		return false, nil
	}
}

func (r *Runner) applyCmdIdle(ctx context.Context) (bool, error) {
	if r.cmd.NeedsIocostBench(r.bench.IocostSeq) {
		spec := svchandle.Spec{Name: "iocost-bench", Cmd: r.cfg.HashdCmd, Args: []string{"--iocost-bench"}, Cgroup: "workload.slice/iocost-bench"}
		h := r.deps.Bench.New(spec.Name)
		if err := h.Start(ctx, spec); err != nil {
			return false, fmt.Errorf("starting iocost-bench: %w", err)
		}
		r.iocostBench = h
		r.state = runstate.BenchIoCost
		r.idleWarned = false
		return true, nil
	}

	if r.cmd.NeedsHashdBench(r.bench.HashdSeq) {
		if r.bench.IocostSeq == 0 && !r.cfg.ForceRunning {
			r.warnIdleOnce("hashd-bench requested but iocost-bench has never completed")
			return false, nil
		}
		if err := r.deps.Balloon.Resize(r.cmd.BenchHashdBalloonSize); err != nil {
			return false, fmt.Errorf("sizing balloon for hashd-bench: %w", err)
		}
		if r.deps.OOMD != nil {
			if err := r.deps.OOMD.Stop(stopTimeout); err != nil {
				r.logWarn("oomd", "stopping oomd before hashd-bench failed", err)
			}
		}
		spec := svchandle.Spec{
			Name:   "hashd-bench",
			Cmd:    r.cfg.HashdCmd,
			Args:   append([]string{"--hashd-bench"}, r.cmd.BenchHashdArgs...),
			Cgroup: "workload.slice/hashd-bench",
		}
		h := r.deps.Bench.New(spec.Name)
		if err := h.Start(ctx, spec); err != nil {
			return false, fmt.Errorf("starting hashd-bench: %w", err)
		}
		r.hashdBench = h
		r.state = runstate.BenchHashd
		r.idleWarned = false
		return true, nil
	}

	if r.bench.HashdSeq > 0 || r.cfg.ForceRunning {
		r.state = runstate.Running
		r.idleWarned = false
		return true, nil
	}

	r.warnIdleOnce("no benchmark has completed and no force-running override is set")
	return false, nil
}

// warnIdleOnce logs msg at most once per Idle sojourn, clearing on any
// state transition out of Idle (spec.md §4.7: "log a one-shot warning
// and stay Idle").
func (r *Runner) warnIdleOnce(msg string) {
	if r.idleWarned {
		return
	}
	r.idleWarned = true
	r.logWarn("idle", msg, nil)
}

func (r *Runner) applyCmdRunning(ctx context.Context) (bool, error) {
	if r.cmd.NeedsIocostBench(r.bench.IocostSeq) || r.cmd.NeedsHashdBench(r.bench.HashdSeq) {
		r.becomeIdle(stopTimeout)
		return true, nil
	}
	if err := r.applyWorkloads(ctx); err != nil {
		return false, fmt.Errorf("applying workloads: %w", err)
	}
	return false, nil
}

// applyCmdBenchmarking handles both BenchHashd and BenchIoCost: if the
// triggering request sequence no longer exceeds completion, the user
// cancelled it underneath the runner (spec.md §4.7: "user cancelled").
func (r *Runner) applyCmdBenchmarking(_ context.Context, stillRequested bool) (bool, error) {
	if !stillRequested {
		r.becomeIdle(stopTimeout)
		return true, nil
	}
	return false, nil
}

// becomeIdle tears down both benchmark handles, the reference-app set,
// and the side runner, then returns to Idle (spec.md §4.7 "become_idle").
func (r *Runner) becomeIdle(timeout time.Duration) {
	if r.hashdBench != nil {
		if err := r.hashdBench.Stop(timeout); err != nil {
			r.logWarn("hashd_bench", "stop failed during become_idle", err)
		}
		r.hashdBench = nil
	}
	if r.iocostBench != nil {
		if err := r.iocostBench.Stop(timeout); err != nil {
			r.logWarn("iocost_bench", "stop failed during become_idle", err)
		}
		r.iocostBench = nil
	}
	for i, h := range r.hashd {
		if h == nil {
			continue
		}
		if err := h.Stop(timeout); err != nil {
			r.logWarn("hashd", fmt.Sprintf("stop failed for hashd-%d during become_idle", i), err)
		}
		r.hashd[i] = nil
	}
	r.stopSideRunner(timeout)
	r.state = runstate.Idle
}

// stopSideRunner stops and discards every sysload/sideload handle
// (GLOSSARY "Sideload / sysload"); spec.md §5 calls out that this
// cleanup must not hold the runner mutex for long, so callers running
// it from Running→Idle transitions accept the brief stall here and the
// reconciler drops the lock immediately afterward (spec.md §4.7 step 3).
func (r *Runner) stopSideRunner(timeout time.Duration) {
	for name, h := range r.sysloads {
		if err := h.Stop(timeout); err != nil {
			r.logWarn("sysload", "stop failed: "+name, err)
		}
		delete(r.sysloads, name)
	}
	for name, h := range r.sideloads {
		if err := h.Stop(timeout); err != nil {
			r.logWarn("sideload", "stop failed: "+name, err)
		}
		delete(r.sideloads, name)
	}
}
