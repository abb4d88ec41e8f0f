package config

// SweepConfig is the QoS sweep driver's own bootstrap configuration
// (spec.md §4.8, component C8): which running agent's control files to
// drive, which sub-benchmark binaries to invoke, and where to persist
// crash-resilient incremental runs.
type SweepConfig struct {
	// JobSpecPath points at the YAML job spec (spec.md §4.8 "Input"),
	// loaded separately via infrastructure/sweepspec/yaml.
	JobSpecPath string `yaml:"job_spec"`

	// Agent is the running agent's own control-file paths; the sweep
	// driver shares a configwatch.Watcher over these with the agent
	// (spec.md §4.8 step 1: "push a composed QoS into bench.json").
	Agent Paths `yaml:"agent_paths"`
	// ReportDir is the agent's report directory, read back for studies
	// (spec.md §4.8 "Studies").
	ReportDir string `yaml:"report_dir"`

	// Device is the scratch block device the composed QoS targets and
	// ApplyIOCost/ReadIOCostQoS validate against.
	Device string `yaml:"device"`

	// StorageBenchCmd/StorageResultPath and ProtectionBenchCmd/
	// ProtectionResultPath locate the two sub-benchmark binaries and
	// their JSON result artifacts (spec.md §4.8 steps 2-4).
	StorageBenchCmd      string `yaml:"storage_bench_cmd"`
	StorageResultPath    string `yaml:"storage_result_path"`
	ProtectionBenchCmd   string `yaml:"protection_bench_cmd"`
	ProtectionResultPath string `yaml:"protection_result_path"`

	// BoltPath is the crash-resilient incremental-run snapshot database
	// (spec.md §4.8 "Dedup and caching", SPEC_FULL.md's "Crash-resilient
	// sweep snapshots" DOMAIN STACK entry).
	BoltPath string `yaml:"bolt_path"`

	// MemProfile is parsed but read nowhere: resctl-bench takes the
	// memory profile its dedup matching keys on from the agent's
	// bench.json (Hashd.MemProfile).
	MemProfile uint64 `yaml:"mem_profile"`

	// LogDir is the base directory file/json log writers resolve
	// relative paths against.
	LogDir  string        `yaml:"log_dir"`
	Logging DaemonLogging `yaml:"logging"`
}

// DefaultSweepConfig mirrors DefaultAgentConfig's paths so a sweep run
// against a locally-running resctld needs only device and job-spec
// overrides.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Agent: Paths{
			Cmd:      "/var/lib/resctld/cmd.json",
			Ack:      "/var/lib/resctld/cmd_ack.json",
			Bench:    "/var/lib/resctld/bench.json",
			Slice:    "/var/lib/resctld/slice.json",
			OOMD:     "/var/lib/resctld/oomd.json",
			SideDefs: "/var/lib/resctld/side_def.json",
		},
		ReportDir:            "/var/lib/resctld/report.d",
		StorageResultPath:    "/var/lib/resctl-bench/storage-result.json",
		ProtectionResultPath: "/var/lib/resctl-bench/protection-result.json",
		BoltPath:             "/var/lib/resctl-bench/sweep.db",
		LogDir:               "/var/log/resctl-bench",
		Logging:              DefaultDaemonLogging(),
	}
}
