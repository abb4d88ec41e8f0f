// Package bootstrap wires both binaries' dependency graphs, grounded
// on the teacher's internal/bootstrap package: a //go:build wireinject
// injector documents the graph for `go generate`, and this file plays
// the role of the teacher's checked-in wire_gen.go, a hand-authored
// sequence of constructor calls in dependency order (SPEC_FULL.md §6
// "[DOMAIN STACK] Dependency injection").
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kodflow/resctld/internal/application/reporter"
	"github.com/kodflow/resctld/internal/application/reportstore"
	"github.com/kodflow/resctld/internal/application/runner"
	domconfig "github.com/kodflow/resctld/internal/domain/config"
	domlog "github.com/kodflow/resctld/internal/domain/logging"
	balloonadapter "github.com/kodflow/resctld/internal/infrastructure/balloon/memhog"
	benchresultfile "github.com/kodflow/resctld/internal/infrastructure/benchresult/file"
	configwatchfile "github.com/kodflow/resctld/internal/infrastructure/configwatch/file"
	sysfskernel "github.com/kodflow/resctld/internal/infrastructure/kernelctl/sysfs"
	"github.com/kodflow/resctld/internal/infrastructure/latencyproc"
	daemonlogging "github.com/kodflow/resctld/internal/infrastructure/logging/daemon"
	yamlconfig "github.com/kodflow/resctld/internal/infrastructure/persistence/config/yaml"
	processexecutor "github.com/kodflow/resctld/internal/infrastructure/process/executor"
	reportstorefile "github.com/kodflow/resctld/internal/infrastructure/reportstore/file"
	cgroupsampler "github.com/kodflow/resctld/internal/infrastructure/resources/cgroup"
	sliceapplycgroup "github.com/kodflow/resctld/internal/infrastructure/sliceapply/cgroup"
	unitd "github.com/kodflow/resctld/internal/infrastructure/svchandle/unitd"
)

// Agent is the fully-wired cmd/resctld dependency graph: the runner
// state machine (C7) plus the reporter thread (C6) it lazily starts on
// its first reconcile iteration (spec.md §4.7 step 4).
type Agent struct {
	Runner   *runner.Runner
	Reporter *reporter.Thread
	Logger   domlog.Logger
	Config   domconfig.AgentConfig
}

// BuildAgent loads configPath and constructs every C1-C7 port/adapter
// pair the runner and reporter need, mirroring the teacher's
// wire_gen.go constructor ordering: config/logging first, then the
// leaf infrastructure adapters, then the two application-layer
// orchestrators that close over them. ctx is the process lifetime
// context the lazily-started reporter thread runs under (spec.md §4.7
// step 4 "Lazily start the reporter thread on first iteration"); it is
// the same ctx the caller later passes to Agent.Runner.Run.
func BuildAgent(ctx context.Context, configPath string) (*Agent, error) {
	cfg, err := yamlconfig.NewAgentLoader().Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: loading agent config: %w", err)
	}

	logger, err := daemonlogging.BuildLogger(cfg.Logging, cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: building logger: %w", err)
	}

	watcher := configwatchfile.New(configwatchfile.Paths{
		Cmd: cfg.Paths.Cmd, Ack: cfg.Paths.Ack, Bench: cfg.Paths.Bench,
		Slice: cfg.Paths.Slice, OOMD: cfg.Paths.OOMD, SideDefs: cfg.Paths.SideDefs,
	})

	exec := processexecutor.New()
	workloadFactory := &unitd.Factory{Executor: exec}
	benchFactory := &unitd.Factory{Executor: exec}
	oomd := (&unitd.Factory{Executor: exec}).New(cfg.OOMDUnit)
	sideloader := (&unitd.Factory{Executor: exec}).New(cfg.SideloaderUnit)

	kernel := sysfskernel.New()
	slices := sliceapplycgroup.New(cfg.Cgroups.Root)

	balloonUnit := balloonadapter.New(balloonadapter.Spec{
		Cmd:      cfg.BalloonCmd,
		SizeFlag: cfg.BalloonSizeFlag,
		Cgroup:   "workload.slice/balloon",
	}, exec)

	benchReader := benchresultfile.New(cfg.HashdBenchResult, cfg.IOCostBenchResult)

	devMajor, devMinor, err := sysfskernel.DevMajorMinor(cfg.ScratchDevice)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: resolving scratch device %s: %w", cfg.ScratchDevice, err)
	}
	usageSampler := cgroupsampler.NewSampler(devMajor, devMinor, logger)

	defaults := runner.DefaultConfig()
	runnerCfg := runner.Config{
		ForceRunning:      cfg.ForceRunning,
		DefaultSwappiness: cfg.DefaultSwappiness,
		ScratchDevice:     cfg.ScratchDevice,
		IOScheduler:       cfg.IOScheduler,
		HashdCmd:          cfg.HashdCmd,
		ReconcileInterval: durationOr(cfg.ReconcileInterval, defaults.ReconcileInterval),
		VerifyInterval:    durationOr(cfg.VerifyInterval, defaults.VerifyInterval),
	}

	instanceSeq := cfg.InstanceSeq
	if instanceSeq == 0 {
		instanceSeq = uint64(time.Now().Unix())
	}

	latencySpecs := [2]latencyproc.Spec{
		{Cmd: cfg.Latency[0].Cmd, Args: cfg.Latency[0].Args},
		{Cmd: cfg.Latency[1].Cmd, Args: cfg.Latency[1].Args},
	}
	latencyReader := latencyproc.New(latencySpecs)

	store := reportstorefile.New(
		cfg.Retention.ReportDir,
		1, cfg.Retention.SecondRingRetention,
		60, cfg.Retention.MinuteRingRetention,
		cfg.Retention.SecondRetentionSecs,
	)
	second := reportstore.NewAggregator(1, reportstore.CadenceSecond, store)
	minute := reportstore.NewAggregator(60, reportstore.CadenceMinute, store)

	// rt and rn are mutually referential (the reporter thread needs a
	// *runner.Runner to read state off of, the runner needs a niladic
	// StartReporter callback to lazily start the reporter on its first
	// reconcile iteration, spec.md §4.7 step 4). Declare rt first and
	// close over it by reference; the closure only runs once Run is
	// called, well after rt is assigned below.
	var rt *reporter.Thread
	rn := runner.New(runnerCfg, runner.Deps{
		Config:      watcher,
		Workloads:   workloadFactory,
		Bench:       benchFactory,
		OOMD:        oomd,
		Sideloader:  sideloader,
		Kernel:      kernel,
		Slices:      slices,
		Balloon:     balloonUnit,
		BenchResult: benchReader,
		Sampler:     usageSampler,
		Logger:      logger,
		StartReporter: func() {
			go func() {
				if err := rt.Run(ctx); err != nil {
					logger.Error("", "reporter", "reporter thread exited with error", map[string]any{"error": err.Error()})
				}
			}()
		},
	}, instanceSeq)

	rt = reporter.New(reporter.Config{
		RootCgroup:   cfg.Cgroups.Root,
		WorkCgroup:   cfg.Cgroups.Work,
		SysCgroup:    cfg.Cgroups.Sys,
		HashdCgroups: cfg.Cgroups.HashdCgroups,
	}, reporter.Deps{
		Runner:     rn,
		OOMD:       oomd,
		Sideloader: sideloader,
		Kernel:     kernel,
		Sampler:    usageSampler,
		Latency:    latencyReader,
		Second:     second,
		Minute:     minute,
		Logger:     logger,
	})

	return &Agent{Runner: rn, Reporter: rt, Logger: logger, Config: cfg}, nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}
