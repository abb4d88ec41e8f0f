// Package reporter implements the C6 "Reporter thread" cooperative
// select loop (spec.md §4.6): drives C3 (usage sampler) and C5
// (latency reader) on a timer, folds their output into a base_report,
// and hands it to the C4 aggregators for averaging and persistence.
//
// Grounded on the teacher's internal/process.Process.monitor()
// goroutine pattern for the background-select shape, narrowed to the
// single-purpose tick/select loop spec.md §4.6 describes.
package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/kodflow/resctld/internal/application/kernelctl"
	"github.com/kodflow/resctld/internal/application/latency"
	"github.com/kodflow/resctld/internal/application/reportstore"
	"github.com/kodflow/resctld/internal/application/runner"
	"github.com/kodflow/resctld/internal/application/sampler"
	"github.com/kodflow/resctld/internal/application/svchandle"
	domlog "github.com/kodflow/resctld/internal/domain/logging"
	"github.com/kodflow/resctld/internal/domain/report"
	"github.com/kodflow/resctld/internal/domain/runstate"
	"github.com/kodflow/resctld/internal/domain/shared"
)

// Config holds the cgroup paths the reporter samples every tick.
type Config struct {
	RootCgroup string
	WorkCgroup string
	SysCgroup  string
	// HashdCgroups are the per-instance paths under WorkCgroup, e.g.
	// "workload.slice/hashd-0".
	HashdCgroups [2]string
}

// Deps are the reporter's collaborators: the runner it reads state
// from, the fixed oomd/sideloader handles, and the sampling/latency/
// persistence ports.
type Deps struct {
	Runner     *runner.Runner
	OOMD       svchandle.Handle
	Sideloader svchandle.Handle
	Kernel     kernelctl.Kernel
	Sampler    sampler.Sampler
	Latency    latency.Reader
	Second     *reportstore.Aggregator
	Minute     *reportstore.Aggregator
	Logger     domlog.Logger
	Clock      shared.Nower
}

// Thread is the single reporter goroutine's state: one IO latency
// histogram per op (the report schema carries one IOLat/IOLatCum pair
// keyed by op, pooled across both reference-app instances) and the
// running tick sequence.
type Thread struct {
	cfg  Config
	deps Deps
	hist map[string]*latency.Histogram
	seq  uint64
}

// latencyOps are the op tags a Sample carries, matching
// report.IOLatency's fixed field set.
var latencyOps = []string{"read", "write", "discard", "flush"}

// New returns a Thread ready to Run.
func New(cfg Config, deps Deps) *Thread {
	if deps.Clock == nil {
		deps.Clock = shared.DefaultClock
	}
	hist := make(map[string]*latency.Histogram, len(latencyOps))
	for _, op := range latencyOps {
		hist[op] = latency.NewHistogram()
	}
	return &Thread{cfg: cfg, deps: deps, hist: hist}
}

// indexedSample tags a latency.Sample with which hashd instance
// produced it, for the fan-in merge below.
type indexedSample struct {
	idx    int
	sample latency.Sample
}

// Run drives the cooperative select loop until ctx is cancelled
// (spec.md §4.6). Samples arriving on either instance's latency stream
// are folded into the shared histogram as they arrive; every 500ms
// past each second boundary, a base_report is built and handed to both
// aggregators.
//
// The spec's separate "(a) per-second channel" and "(b) cumulative
// channel" collapse into one merged sample channel here: Histogram.Add
// already updates both the per-tick and cumulative buckets on every
// sample (see application/latency), so there is no second kick to
// debounce.
func (t *Thread) Run(ctx context.Context) error {
	var streams [2]<-chan latency.Sample
	for idx := range streams {
		if t.cfg.HashdCgroups[idx] == "" {
			continue
		}
		ch, err := t.deps.Latency.Stream(ctx, idx)
		if err != nil {
			t.logWarn("latency", fmt.Sprintf("opening latency stream for hashd-%d failed", idx), err)
			continue
		}
		streams[idx] = ch
	}
	merged := mergeLatency(ctx, streams)

	timer := time.NewTimer(t.untilNextTick())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case s, ok := <-merged:
			if !ok {
				merged = nil
				continue
			}
			if h, ok := t.hist[s.sample.Op]; ok {
				h.Add(s.sample.Seconds)
			}

		case <-timer.C:
			now := t.deps.Clock.Now()
			base, err := t.buildBaseReport(now)
			if err != nil {
				t.logWarn("reporter", "building base report failed", err)
			} else {
				if err := t.deps.Second.Tick(base, now.Unix()); err != nil {
					t.logWarn("reporter", "second aggregator tick failed", err)
				}
				if err := t.deps.Minute.Tick(base, now.Unix()); err != nil {
					t.logWarn("reporter", "minute aggregator tick failed", err)
				}
			}
			timer.Reset(t.untilNextTick())
		}
	}
}

// untilNextTick returns the delay until the next second boundary plus
// the 500ms offset spec.md §4.6 names ("sleep_till = next_second_
// boundary + 500 ms").
func (t *Thread) untilNextTick() time.Duration {
	now := t.deps.Clock.Now()
	next := now.Truncate(time.Second).Add(time.Second + 500*time.Millisecond)
	return next.Sub(now)
}

// buildBaseReport gathers one tick's worth of state from the runner
// (under its own short lock), the fixed oomd/sideloader handles, the
// kernel port, and the usage sampler (spec.md §4.6 "(d)": "build a
// base_report under a short lock of the runner").
func (t *Thread) buildBaseReport(now time.Time) (report.Report, error) {
	state, cmd, bench, units := t.deps.Runner.Snapshot()
	t.seq++
	rep := report.New(t.seq, state)

	// spec.md is silent on a dedicated per-controller enable bit; the
	// runner only tracks one disable_seq per slice (sliceknobs.Knob), so
	// all three controllers track the same on/off as the top-level
	// state: every controller the agent asserts is live exactly while
	// the runner is outside Idle.
	enabled := state != runstate.Idle
	rep.Resctl = report.ResctlEnabled{CPU: enabled, Mem: enabled, IO: enabled}

	rep.BenchHashd = benchStatus(units["hashd-bench"], bench.HashdSeq, cmd.BenchHashdSeq)
	rep.BenchIOCost = benchStatus(units["iocost-bench"], bench.IocostSeq, cmd.BenchIocostSeq)

	if t.deps.OOMD != nil {
		rep.OOMD.Svc = toSvcStatus(t.deps.OOMD.Status())
	}
	if t.deps.Sideloader != nil {
		rep.Sideloader.Svc = toSvcStatus(t.deps.Sideloader.Status())
	}

	for i := range rep.Hashd {
		name := fmt.Sprintf("hashd-%d", i)
		rep.Hashd[i].Svc = toSvcStatus(units[name])
		rep.Hashd[i].Load = cmd.Hashd[i].Load
	}

	for _, name := range t.deps.Runner.SysloadNames() {
		rep.Sysloads[name] = toSvcStatus(units[name])
	}
	for _, name := range t.deps.Runner.SideloadNames() {
		rep.Sideloads[name] = toSvcStatus(units[name])
	}

	rep.IOCost.Model = bench.IOCost.Model
	rep.IOCost.QoS = bench.IOCost.QoS

	if t.deps.Kernel != nil {
		if sw, err := t.deps.Kernel.Swappiness(); err == nil {
			rep.Swappiness = sw
		}
		if zs, err := t.deps.Kernel.ZswapEnabled(); err == nil {
			rep.ZswapEnabled = zs
		}
	}

	rep.IOLat = report.IOLatency{
		Read:    t.hist["read"].ConsumeTick(),
		Write:   t.hist["write"].ConsumeTick(),
		Discard: t.hist["discard"].ConsumeTick(),
		Flush:   t.hist["flush"].ConsumeTick(),
	}
	rep.IOLatCum = report.IOLatency{
		Read:    t.hist["read"].Cumulative(),
		Write:   t.hist["write"].Cumulative(),
		Discard: t.hist["discard"].Cumulative(),
		Flush:   t.hist["flush"].Cumulative(),
	}

	t.sampleUsages(&rep)
	if t.deps.Sampler != nil {
		if vm, err := t.deps.Sampler.SampleVMStat(); err == nil {
			rep.VMStat = vm
		}
	}

	return rep, nil
}

// sampleUsages fills rep.Usages for the Root/Work/Sys slices and each
// active hashd instance's cgroup (spec.md §4.4 step 4: "inject
// per-slice mem_stat/io_stat for the Root/Work/Sys slices").
func (t *Thread) sampleUsages(rep *report.Report) {
	if t.deps.Sampler == nil {
		return
	}
	paths := map[string]string{
		"root":     t.cfg.RootCgroup,
		"workload": t.cfg.WorkCgroup,
		"sys":      t.cfg.SysCgroup,
	}
	for i, cg := range t.cfg.HashdCgroups {
		if cg != "" {
			paths[fmt.Sprintf("hashd-%d", i)] = cg
		}
	}
	for name, path := range paths {
		if path == "" {
			continue
		}
		u, err := t.deps.Sampler.SampleSlice(path)
		if err != nil {
			t.logWarn("sampler", "sampling slice "+name+" failed", err)
			continue
		}
		rep.Usages[name] = u
	}
}

func benchStatus(st svchandle.Status, benchSeq, cmdSeq uint64) report.BenchStatus {
	phase := "idle"
	if cmdSeq > benchSeq {
		phase = "running"
	}
	progress := 0.0
	if phase == "running" && st.Exists {
		progress = 0.5
	}
	return report.BenchStatus{Svc: toSvcStatus(st), Phase: phase, Progress: progress}
}

func toSvcStatus(st svchandle.Status) report.SvcStatus {
	return report.SvcStatus{
		Name:   st.Name,
		Exists: st.Exists,
		State:  st.State.String(),
		Pid:    st.PID,
	}
}

// mergeLatency fans both hashd instances' sample channels into one.
func mergeLatency(ctx context.Context, streams [2]<-chan latency.Sample) <-chan indexedSample {
	out := make(chan indexedSample)
	active := 0
	for idx, ch := range streams {
		if ch == nil {
			continue
		}
		active++
		go func(idx int, ch <-chan latency.Sample) {
			for {
				select {
				case s, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- indexedSample{idx: idx, sample: s}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(idx, ch)
	}
	if active == 0 {
		close(out)
	}
	return out
}

func (t *Thread) logWarn(eventType, msg string, err error) {
	if t.deps.Logger == nil {
		return
	}
	t.deps.Logger.Warn("reporter", eventType, msg, map[string]any{"error": err.Error()})
}
