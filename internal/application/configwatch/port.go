// Package configwatch defines the port the runner uses to read and
// reload the externally-mutated control files (cmd.json, bench.json,
// slice.json, oomd.json, side_def.json), grounded on the teacher's
// application/config.Loader (spec.md §4.1, component C1 "Config
// watcher").
package configwatch

import (
	"github.com/kodflow/resctld/internal/domain/benchknobs"
	"github.com/kodflow/resctld/internal/domain/command"
	"github.com/kodflow/resctld/internal/domain/sliceknobs"
)

// SideDef is one named sideload/sysload definition from side_def.json
// (GLOSSARY: "Sideload / sysload").
type SideDef struct {
	Cmd    string            `json:"cmd"`
	Args   []string          `json:"args"`
	Env    map[string]string `json:"env"`
	Frozen bool              `json:"frozen_expected"`
}

// OOMDConfig mirrors oomd.json: enable flags and the thresholds the
// runner hands to the oomd unit.
type OOMDConfig struct {
	SvcEnable     bool `json:"svc_enable"`
	WorkMemPressure bool `json:"workload_mem_pressure"`
	WorkSenpai    bool `json:"workload_senpai"`
	SysSenpai     bool `json:"sys_senpai"`
}

// Snapshot is the full, coherently-read state of every watched file at
// one instant.
type Snapshot struct {
	Cmd      command.Command
	Bench    benchknobs.BenchKnobs
	Slice    sliceknobs.SliceKnobs
	OOMD     OOMDConfig
	SideDefs map[string]SideDef
}

// Watcher is the port a reconcile loop polls once per iteration. An
// implementation detects per-file mtime+size changes and only
// re-parses what changed (spec.md §4.1 "Reload policy").
type Watcher interface {
	// Load reads the current on-disk state unconditionally, used once at
	// startup.
	Load() (Snapshot, error)

	// Poll re-reads any watched file that changed since the last
	// Load/Poll call. changed reports, per file, whether it was
	// re-parsed this call.
	Poll() (snap Snapshot, changed Changed, err error)

	// WriteAck persists cmd_ack.json, mirroring the given sequence.
	WriteAck(cmdSeq uint64) error

	// WriteBench persists bench.json atomically.
	WriteBench(benchknobs.BenchKnobs) error

	// WriteSlice persists slice.json atomically.
	WriteSlice(sliceknobs.SliceKnobs) error
}

// Changed reports which watched files were re-parsed by the most
// recent Poll call.
type Changed struct {
	Cmd      bool
	Bench    bool
	Slice    bool
	OOMD     bool
	SideDefs bool
}

// Any reports whether anything changed.
func (c Changed) Any() bool {
	return c.Cmd || c.Bench || c.Slice || c.OOMD || c.SideDefs
}
