package bootstrap

import (
	"fmt"

	"github.com/kodflow/resctld/internal/application/configwatch"
	"github.com/kodflow/resctld/internal/application/sweep"
	domconfig "github.com/kodflow/resctld/internal/domain/config"
	domlog "github.com/kodflow/resctld/internal/domain/logging"
	"github.com/kodflow/resctld/internal/domain/qos"
	configwatchfile "github.com/kodflow/resctld/internal/infrastructure/configwatch/file"
	sysfskernel "github.com/kodflow/resctld/internal/infrastructure/kernelctl/sysfs"
	daemonlogging "github.com/kodflow/resctld/internal/infrastructure/logging/daemon"
	yamlconfig "github.com/kodflow/resctld/internal/infrastructure/persistence/config/yaml"
	boltdb "github.com/kodflow/resctld/internal/infrastructure/persistence/storage/boltdb"
	sweepbenchprotection "github.com/kodflow/resctld/internal/infrastructure/sweepbench/protection"
	sweepbenchstorage "github.com/kodflow/resctld/internal/infrastructure/sweepbench/storage"
	sweepconfigwatcher "github.com/kodflow/resctld/internal/infrastructure/sweepconfig/watcher"
	sweepspecyaml "github.com/kodflow/resctld/internal/infrastructure/sweepspec/yaml"
	sweepstudyring "github.com/kodflow/resctld/internal/infrastructure/sweepstudy/ring"
)

// Sweep is the fully-wired cmd/resctl-bench dependency graph: the
// sweep driver (C8) plus the shared configwatch.Watcher a caller reads
// the running agent's current bench.json off of to derive the base
// model/QoS/memory profile Driver.Run needs (spec.md §4.8 "Input":
// "the agent's currently-applied model/QoS as the base point").
type Sweep struct {
	Driver  *sweep.Driver
	Watcher configwatch.Watcher
	Job     qos.JobSpec
	Logger  domlog.Logger
	Config  domconfig.SweepConfig
}

// BuildSweep loads configPath and constructs the C8 sweep driver and
// its sub-benchmark/study/persistence collaborators, mirroring
// BuildAgent's constructor ordering (SPEC_FULL.md §6 "[DOMAIN STACK]
// Dependency injection"). jobSpecPath overrides cfg's own JobSpecPath
// when non-empty, letting an operator point one sweep config at
// several job specs without editing it.
func BuildSweep(configPath, jobSpecPath string) (*Sweep, error) {
	cfg, err := yamlconfig.NewSweepLoader().Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: loading sweep config: %w", err)
	}

	logger, err := daemonlogging.BuildLogger(cfg.Logging, cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: building logger: %w", err)
	}

	specPath := jobSpecPath
	if specPath == "" {
		specPath = cfg.JobSpecPath
	}
	job, err := sweepspecyaml.New().Load(specPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: loading job spec: %w", err)
	}

	watcher := configwatchfile.New(configwatchfile.Paths{
		Cmd: cfg.Agent.Cmd, Ack: cfg.Agent.Ack, Bench: cfg.Agent.Bench,
		Slice: cfg.Agent.Slice, OOMD: cfg.Agent.OOMD, SideDefs: cfg.Agent.SideDefs,
	})
	agentConfig := sweepconfigwatcher.New(watcher)

	kernel := sysfskernel.New()

	storageBench := sweepbenchstorage.New(cfg.StorageBenchCmd, cfg.StorageResultPath)
	protectionBench := sweepbenchprotection.New(cfg.ProtectionBenchCmd, cfg.ProtectionResultPath)

	// studyRetentionSecs widens DiskStudier's disk scan window around
	// the requested study period (spec.md §4.8 "Studies"); it only
	// needs to comfortably exceed the longest single sweep point's
	// run duration, not the agent's own long-term report retention.
	const studyRetentionSecs = 3600
	study := sweepstudyring.NewDiskStudier(cfg.ReportDir, 1, studyRetentionSecs)

	store, err := boltdb.New(cfg.BoltPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: opening sweep snapshot db: %w", err)
	}

	driver := sweep.New(sweep.Deps{
		Config:     agentConfig,
		Storage:    storageBench,
		Protection: protectionBench,
		Study:      study,
		Store:      store,
		Kernel:     kernel,
		Logger:     logger,
	}, cfg.Device)

	return &Sweep{Driver: driver, Watcher: watcher, Job: job, Logger: logger, Config: cfg}, nil
}
