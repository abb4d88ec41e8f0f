package runner

import (
	"context"
	"fmt"

	"github.com/kodflow/resctld/internal/application/svchandle"
	"github.com/kodflow/resctld/internal/domain/runstate"
	"github.com/kodflow/resctld/internal/domain/sliceknobs"
)

// maybeReload implements spec.md §4.7 step 7: reload every config file
// (skipped while a benchmark is running so a reload can't perturb it),
// then re-apply iocost/slice/oomd/sideloader as needed. Swappiness and
// zswap are asserted unconditionally on every call, per spec.md §4.7:
// "Swappiness and zswap are applied at every reconcile."
func (r *Runner) maybeReload() error {
	if err := r.applyKernelTunables(); err != nil {
		r.logWarn("kernel", "applying swappiness/zswap failed", err)
	}

	if r.state == runstate.BenchHashd || r.state == runstate.BenchIoCost {
		return nil
	}

	snap, changed, err := r.deps.Config.Poll()
	if err != nil {
		return fmt.Errorf("polling config files: %w", err)
	}
	if !changed.Any() {
		return nil
	}

	r.cmd = snap.Cmd
	if changed.Bench {
		r.bench = snap.Bench
	}
	if changed.Slice {
		r.slice = snap.Slice
	}
	if changed.OOMD {
		r.oomd = snap.OOMD
	}
	if changed.SideDefs {
		r.sideDefs = snap.SideDefs
	}

	if changed.Bench || changed.Slice {
		if err := r.applyIOCostAndSlice(); err != nil {
			r.logWarn("reload", "re-applying iocost/slice knobs failed", err)
		}
	}
	if (changed.Bench || changed.OOMD) && r.oomd.SvcEnable {
		if err := r.applyOOMD(); err != nil {
			r.logWarn("reload", "applying oomd failed", err)
		}
	}
	if err := r.applySideloader(); err != nil {
		r.logWarn("reload", "applying sideloader enable/disable failed", err)
	}

	r.cmdPending = true
	r.verifyPending = true
	return nil
}

// applyIOCostAndSlice re-asserts bench.json's iocost model/QoS and
// slice.json's per-slice cgroup knobs onto the live kernel state.
func (r *Runner) applyIOCostAndSlice() error {
	if err := r.deps.Kernel.ApplyIOCost(r.cfg.ScratchDevice, r.bench.IOCost.Model, r.bench.IOCost.QoS); err != nil {
		return fmt.Errorf("applying iocost model/qos: %w", err)
	}
	if err := r.deps.Slices.Apply(r.slice, r.instanceSeq); err != nil {
		return fmt.Errorf("applying slice knobs: %w", err)
	}
	return nil
}

// applyOOMD starts or stops the oomd unit to match oomd.json's enable
// bit (spec.md §4.7 step 7: "if bench or oomd changed and OOMD
// enforcement is on, apply OOMD").
func (r *Runner) applyOOMD() error {
	if r.deps.OOMD == nil {
		return nil
	}
	if !r.oomd.SvcEnable {
		return r.deps.OOMD.Stop(stopTimeout)
	}
	return r.deps.OOMD.Start(context.Background(), svchandle.Spec{Name: "oomd"})
}

// applySideloader enables the sideloader only once every resctl
// controller (CPU/mem/IO) is confirmed enabled, and disables it
// otherwise (spec.md §4.7 step 7: "handle sideloader enable/disable
// based on whether all controllers are enabled").
func (r *Runner) applySideloader() error {
	if r.deps.Sideloader == nil {
		return nil
	}
	allEnabled := !r.slice[sliceknobs.Root].Disabled(r.instanceSeq)
	if allEnabled {
		return r.deps.Sideloader.Start(context.Background(), svchandle.Spec{Name: "sideloader"})
	}
	return r.deps.Sideloader.Stop(stopTimeout)
}

// applyKernelTunables caps the requested swappiness at 200 (spec.md
// §4.7: "capped at 200 for swappiness"; a target below 60 still applies
// but warns) and mirrors zswap's enable bit if cmd.json overrides it.
func (r *Runner) applyKernelTunables() error {
	target := r.cfg.DefaultSwappiness
	if r.cmd.Swappiness != nil {
		target = *r.cmd.Swappiness
	}
	if target > 200 {
		target = 200
	}
	if target < 60 {
		r.logWarn("swappiness", fmt.Sprintf("target swappiness %d is below 60", target), nil)
	}
	current, err := r.deps.Kernel.Swappiness()
	if err != nil {
		return fmt.Errorf("reading swappiness: %w", err)
	}
	if current != target {
		if err := r.deps.Kernel.SetSwappiness(target); err != nil {
			return fmt.Errorf("writing swappiness: %w", err)
		}
	}

	if r.cmd.ZswapEnabled == nil {
		return nil
	}
	enabled, err := r.deps.Kernel.ZswapEnabled()
	if err != nil {
		return fmt.Errorf("reading zswap enabled: %w", err)
	}
	if enabled != *r.cmd.ZswapEnabled {
		if err := r.deps.Kernel.SetZswapEnabled(*r.cmd.ZswapEnabled); err != nil {
			return fmt.Errorf("writing zswap enabled: %w", err)
		}
	}
	return nil
}

// maybeVerify implements spec.md §4.7 step 6: periodically (every
// VerifyInterval, or sooner if verifyPending) re-assert slice health
// and the scratch device's IO scheduler.
func (r *Runner) maybeVerify() {
	now := r.deps.Clock.Now()
	if !r.verifyPending && now.Sub(r.lastVerify) < r.cfg.VerifyInterval {
		return
	}
	r.lastVerify = now
	r.verifyPending = false

	ok, err := r.deps.Slices.Verify(r.slice, r.instanceSeq)
	if err != nil {
		r.logWarn("verify", "slice verify failed", err)
	} else if !ok {
		if err := r.deps.Slices.Apply(r.slice, r.instanceSeq); err != nil {
			r.logWarn("verify", "re-applying slice knobs after verify mismatch failed", err)
		}
	}
	if err := r.deps.Kernel.SetIOScheduler(r.cfg.ScratchDevice, r.cfg.IOScheduler); err != nil {
		r.logWarn("verify", "re-asserting io scheduler failed", err)
	}
}
