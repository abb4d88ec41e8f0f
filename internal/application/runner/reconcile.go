package runner

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kodflow/resctld/internal/application/configwatch"
	"github.com/kodflow/resctld/internal/application/svchandle"
	"github.com/kodflow/resctld/internal/domain/command"
	"github.com/kodflow/resctld/internal/domain/runstate"
)

// stopTimeout bounds how long becomeIdle and side-runner cleanup wait
// for a unit to exit gracefully before the underlying handle escalates
// to a kill (spec.md §5: "Benchmark child processes are killed on drop
// with a wait; failure to wait is never masked").
const stopTimeout = 5 * time.Second

// checkCompletions implements spec.md §4.7 step 2: for the active
// benchmark, refresh its status; on Exited, read back its artifact and
// fold it into bench.json; any other terminal state aborts the
// benchmark.
func (r *Runner) checkCompletions(ctx context.Context) error {
	if r.hashdBench != nil {
		return r.checkHashdBench()
	}
	if r.iocostBench != nil {
		return r.checkIOCostBench()
	}
	return nil
}

func (r *Runner) checkHashdBench() error {
	st := r.hashdBench.Status()
	switch {
	case st.Exited():
		hashd, err := r.deps.BenchResult.ReadHashd()
		if err != nil {
			r.logWarn("hashd_bench", "reading hashd-bench artifact failed", err)
			r.becomeIdle(stopTimeout)
			return nil
		}
		r.bench.HashdSeq = r.cmd.BenchHashdSeq
		r.bench.Hashd = hashd
		if err := r.deps.Config.WriteBench(r.bench); err != nil {
			return fmt.Errorf("persisting bench.json after hashd-bench: %w", err)
		}
		r.hashdBench = nil
		r.state = runstate.Idle
	case !st.Running():
		r.logWarn("hashd_bench", fmt.Sprintf("hashd-bench in terminal state %s, aborting", st.State), nil)
		r.becomeIdle(stopTimeout)
	}
	return nil
}

func (r *Runner) checkIOCostBench() error {
	st := r.iocostBench.Status()
	switch {
	case st.Exited():
		iocost, err := r.deps.BenchResult.ReadIOCost()
		if err != nil {
			r.logWarn("iocost_bench", "reading iocost-bench artifact failed", err)
			r.becomeIdle(stopTimeout)
			return nil
		}
		r.bench.IocostSeq = r.cmd.BenchIocostSeq
		r.bench.IOCost = iocost
		if err := r.deps.Config.WriteBench(r.bench); err != nil {
			return fmt.Errorf("persisting bench.json after iocost-bench: %w", err)
		}
		r.iocostBench = nil
		r.state = runstate.Idle
	case !st.Running():
		r.logWarn("iocost_bench", fmt.Sprintf("iocost-bench in terminal state %s, aborting", st.State), nil)
		r.becomeIdle(stopTimeout)
	}
	return nil
}

// applyWorkloads asserts the reference-app instances, sysloads,
// sideloads, and balloon size for the Running state (spec.md §4.7
// "Running": "apply workloads... and side/sysloads, and set balloon to
// total_memory * balloon_ratio").
func (r *Runner) applyWorkloads(ctx context.Context) error {
	for i := range r.hashd {
		spec := svchandle.Spec{
			Name:   "hashd-" + strconv.Itoa(i),
			Cmd:    r.cfg.HashdCmd,
			Args:   hashdArgs(r.cmd.Hashd[i]),
			Cgroup: "workload.slice/hashd-" + strconv.Itoa(i),
		}
		if r.hashd[i] == nil {
			r.hashd[i] = r.deps.Workloads.New(spec.Name)
		}
		if err := r.hashd[i].Start(ctx, spec); err != nil {
			return fmt.Errorf("starting hashd-%d: %w", i, err)
		}
	}

	if err := r.reconcileSideRunner(ctx, "sys.slice", r.cmd.Sysloads, r.sysloads); err != nil {
		return err
	}
	if err := r.reconcileSideRunner(ctx, "side.slice", r.cmd.Sideloads, r.sideloads); err != nil {
		return err
	}

	usage, err := r.deps.Sampler.SampleSystem()
	if err != nil {
		return fmt.Errorf("sampling system memory for balloon sizing: %w", err)
	}
	target := int64(float64(usage.MemTotal) * r.cmd.BalloonRatio)
	if err := r.deps.Balloon.Resize(target); err != nil {
		return fmt.Errorf("resizing balloon: %w", err)
	}
	return nil
}

// reconcileSideRunner starts handles for any name in want not yet in
// have, and stops+removes handles in have no longer named in want
// (GLOSSARY "Sideload / sysload").
func (r *Runner) reconcileSideRunner(ctx context.Context, slice string, want map[string]string, have map[string]svchandle.Handle) error {
	for name := range have {
		if _, ok := want[name]; !ok {
			if err := have[name].Stop(stopTimeout); err != nil {
				r.logWarn("side_runner", "stop failed for removed "+name, err)
			}
			delete(have, name)
		}
	}
	for name, defID := range want {
		if _, ok := have[name]; ok {
			continue
		}
		spec := svchandle.Spec{Name: name, Cgroup: slice + "/" + name}
		def, err := r.lookupSideDef(defID)
		if err != nil {
			return fmt.Errorf("looking up definition %q for %s: %w", defID, name, err)
		}
		spec.Cmd, spec.Args, spec.Env = def.Cmd, def.Args, def.Env
		h := r.deps.Workloads.New(name)
		if err := h.Start(ctx, spec); err != nil {
			return fmt.Errorf("starting %s: %w", name, err)
		}
		have[name] = h
	}
	return nil
}

func (r *Runner) lookupSideDef(id string) (configwatch.SideDef, error) {
	def, ok := r.sideDefs[id]
	if !ok {
		return configwatch.SideDef{}, fmt.Errorf("side_def.json has no definition %q", id)
	}
	return def, nil
}

// hashdArgs encodes one reference-app instance's requested parameters
// as CLI flags, the wire format spec.md §9 calls "one-way file writes"
// extended to the child's own argv.
func hashdArgs(p command.HashdParams) []string {
	return []string{
		"--load", strconv.FormatFloat(p.Load, 'f', -1, 64),
		"--mem-ratio", strconv.FormatFloat(p.MemRatio, 'f', -1, 64),
		"--log-bps", strconv.FormatUint(p.LogBps, 10),
	}
}
