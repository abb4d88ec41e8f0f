// Package command provides the domain types for the externally-mutated
// command file (cmd.json) and its acknowledgement mirror (cmd_ack.json).
package command

// HashdParams holds the per-instance reference-app parameters an external
// writer can request (spec.md §3, "per-instance hashd[0..=1] params").
type HashdParams struct {
	// Load is the target RPS load factor in [0, 1].
	Load float64 `json:"load"`
	// MemRatio scales the working-set size relative to the calibrated memory size.
	MemRatio float64 `json:"mem_ratio"`
	// LogBps caps the log-write bandwidth in bytes/sec (0 disables log writing).
	LogBps uint64 `json:"log_bps"`
}

// Sideloader holds the sideloader isolation knobs.
type Sideloader struct {
	// CPUHeadroom is the fraction of CPU reserved away from sideloads.
	CPUHeadroom float64 `json:"cpu_headroom"`
}

// Command is the full content of cmd.json.
//
// Invariant (spec.md §3): cmd.*_seq > bench.*_seq means "start this
// benchmark"; equality means "stable".
type Command struct {
	// CmdSeq is the monotonically increasing command sequence number.
	CmdSeq uint64 `json:"cmd_seq"`
	// BenchHashdSeq is the requested hashd-bench sequence.
	BenchHashdSeq uint64 `json:"bench_hashd_seq"`
	// BenchIocostSeq is the requested iocost-bench sequence.
	BenchIocostSeq uint64 `json:"bench_iocost_seq"`
	// BenchHashdBalloonSize is the balloon size to apply while the hashd bench runs.
	BenchHashdBalloonSize int64 `json:"bench_hashd_balloon_size"`
	// BenchHashdArgs are extra CLI arguments forwarded to the hashd-bench sub-process.
	BenchHashdArgs []string `json:"bench_hashd_args"`
	// Hashd holds params for the two reference-app instances.
	Hashd [2]HashdParams `json:"hashd"`
	// Sysloads maps a sysload name to a side_def.json definition ID.
	Sysloads map[string]string `json:"sysloads"`
	// Sideloads maps a sideload name to a side_def.json definition ID.
	Sideloads map[string]string `json:"sideloads"`
	// Sideloader holds sideloader isolation knobs.
	Sideloader Sideloader `json:"sideloader"`
	// BalloonRatio is the fraction of total memory the balloon should pin while Running.
	BalloonRatio float64 `json:"balloon_ratio"`
	// Swappiness optionally overrides /proc/sys/vm/swappiness.
	Swappiness *uint32 `json:"swappiness,omitempty"`
	// ZswapEnabled optionally overrides the zswap module's enabled parameter.
	ZswapEnabled *bool `json:"zswap_enabled,omitempty"`
}

// Ack is the content of cmd_ack.json: a one-field mirror of the last
// command sequence the runner has started acting on.
type Ack struct {
	// CmdSeq is acknowledged: written before any action for it begins.
	CmdSeq uint64 `json:"cmd_seq"`
}

// NeedsIocostBench reports whether cmd requests an iocost-bench run
// beyond what bench already completed.
func (c *Command) NeedsIocostBench(benchIocostSeq uint64) bool {
	return c.BenchIocostSeq > benchIocostSeq
}

// NeedsHashdBench reports whether cmd requests a hashd-bench run beyond
// what bench already completed.
func (c *Command) NeedsHashdBench(benchHashdSeq uint64) bool {
	return c.BenchHashdSeq > benchHashdSeq
}
