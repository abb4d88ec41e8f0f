package config

import "time"

// Paths is the set of on-disk control/state file locations cmd/resctld
// watches and writes (spec.md §6 "File system layout").
type Paths struct {
	Cmd      string `yaml:"cmd"`
	Ack      string `yaml:"ack"`
	Bench    string `yaml:"bench"`
	Slice    string `yaml:"slice"`
	OOMD     string `yaml:"oomd"`
	SideDefs string `yaml:"side_defs"`
}

// Cgroups is the fixed set of cgroup paths the usage sampler and slice
// applier operate on (spec.md §2 GLOSSARY "Slice").
type Cgroups struct {
	Root         string    `yaml:"root"`
	Work         string    `yaml:"work"`
	Sys          string    `yaml:"sys"`
	HashdCgroups [2]string `yaml:"hashd"`
}

// LatencySpec describes how to launch one reference-app instance's
// latency-sampling child process (GLOSSARY "Latency reader", spec.md
// §4.5).
type LatencySpec struct {
	Cmd  string   `yaml:"cmd"`
	Args []string `yaml:"args"`
}

// Retention bounds how long on-disk report buckets and in-memory ring
// history are kept, in seconds (spec.md §3 "Report", §6 "rep_retention").
type Retention struct {
	ReportDir            string `yaml:"report_dir"`
	SecondRetentionSecs  int64  `yaml:"second_retention_secs"`
	MinuteRetentionSecs  int64  `yaml:"minute_retention_secs"`
	SecondRingRetention  int64  `yaml:"second_ring_retention_secs"`
	MinuteRingRetention  int64  `yaml:"minute_ring_retention_secs"`
}

// AgentConfig is the agent's own bootstrap configuration, loaded once
// at startup from a YAML file distinct from the JSON control files in
// Paths (spec.md §6, [AMBIENT] "Configuration" in SPEC_FULL.md §6).
type AgentConfig struct {
	Paths     Paths     `yaml:"paths"`
	Cgroups   Cgroups   `yaml:"cgroups"`
	Retention Retention `yaml:"retention"`

	// ScratchDevice is the block device (e.g. "sda") slice.json's
	// io_weight and the iocost model/QoS apply to.
	ScratchDevice string `yaml:"scratch_device"`
	// IOScheduler is the scheduler name asserted on ScratchDevice.
	IOScheduler string `yaml:"io_scheduler"`

	// HashdCmd is the reference-app binary path, launched once per
	// instance under WorkCgroup.
	HashdCmd string `yaml:"hashd_cmd"`
	// BalloonCmd is the memory-pinning sub-process binary (GLOSSARY
	// "Balloon").
	BalloonCmd     string `yaml:"balloon_cmd"`
	BalloonSizeFlag string `yaml:"balloon_size_flag"`

	// HashdBenchCmd/IOCostBenchCmd are parsed but read nowhere: the
	// runner launches both transient benchmark services as HashdCmd with
	// --hashd-bench or --iocost-bench.
	HashdBenchCmd      string `yaml:"hashd_bench_cmd"`
	IOCostBenchCmd     string `yaml:"iocost_bench_cmd"`
	HashdBenchResult   string `yaml:"hashd_bench_result"`
	IOCostBenchResult  string `yaml:"iocost_bench_result"`

	// OOMDUnit and SideloaderUnit name the two fixed external units the
	// runner starts/stops directly (GLOSSARY "OOMD").
	OOMDUnit       string `yaml:"oomd_unit"`
	SideloaderUnit string `yaml:"sideloader_unit"`

	// Latency is the two reference-app instances' latency-sampler specs.
	Latency [2]LatencySpec `yaml:"latency"`

	// ForceRunning lets an operator skip the "iocost-bench must have run
	// at least once" precondition before hashd-bench and the "hashd-bench
	// must have run at least once" precondition before Running (spec.md
	// §9, first Open Question).
	ForceRunning bool `yaml:"force_running"`
	// DefaultSwappiness is used when cmd.json carries no override.
	DefaultSwappiness uint32 `yaml:"default_swappiness"`

	// ReconcileInterval and VerifyInterval mirror the runner's fixed
	// timers (spec.md §4.7 steps 5-6); zero means "use the runner's
	// compiled-in default".
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	VerifyInterval    time.Duration `yaml:"verify_interval"`

	// InstanceSeq seeds the runner's instance sequence (GLOSSARY
	// "Instance sequence"). Zero means "derive from the current time",
	// matching the original agent's boot-time instant.
	InstanceSeq uint64 `yaml:"instance_seq"`

	// LogDir is the base directory file/json log writers resolve
	// relative paths against (infrastructure/logging/daemon.BuildLogger).
	LogDir string `yaml:"log_dir"`

	Logging DaemonLogging `yaml:"logging"`
}

// DefaultAgentConfig returns the paths and timers spec.md names
// literally, rooted at /var/lib/resctld, suitable as a starting point
// for an operator's own YAML override.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Paths: Paths{
			Cmd:      "/var/lib/resctld/cmd.json",
			Ack:      "/var/lib/resctld/cmd_ack.json",
			Bench:    "/var/lib/resctld/bench.json",
			Slice:    "/var/lib/resctld/slice.json",
			OOMD:     "/var/lib/resctld/oomd.json",
			SideDefs: "/var/lib/resctld/side_def.json",
		},
		Cgroups: Cgroups{
			Root:         "/sys/fs/cgroup",
			Work:         "/sys/fs/cgroup/workload.slice",
			Sys:          "/sys/fs/cgroup/sys.slice",
			HashdCgroups: [2]string{"workload.slice/hashd-0", "workload.slice/hashd-1"},
		},
		Retention: Retention{
			ReportDir:           "/var/lib/resctld/report.d",
			SecondRetentionSecs: 3 * 24 * 3600,
			MinuteRetentionSecs: 30 * 24 * 3600,
			SecondRingRetention: 3600,
			MinuteRingRetention: 24 * 3600,
		},
		IOScheduler:        "mq-deadline",
		HashdBenchResult:   "/var/lib/resctld/hashd-bench.json",
		IOCostBenchResult:  "/var/lib/resctld/iocost-bench.json",
		OOMDUnit:           "oomd.service",
		SideloaderUnit:     "sideloader.service",
		BalloonSizeFlag:    "--size",
		DefaultSwappiness:  60,
		LogDir:             "/var/log/resctld",
		Logging:            DefaultDaemonLogging(),
	}
}
