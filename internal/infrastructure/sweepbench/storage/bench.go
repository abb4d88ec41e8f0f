// Package storage adapts application/sweep.StorageBench onto the
// storage-isolation sub-benchmark binary, grounded on the teacher's
// process/executor "exec.CommandContext, wait for exit" idiom narrowed
// to a one-shot blocking run (spec.md §4.8 step 2-3), reading the
// sub-process's own JSON result artifact rather than streaming its
// output (unlike infrastructure/latencyproc, which streams).
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/kodflow/resctld/internal/application/sweep"
	"github.com/kodflow/resctld/internal/domain/qos"
)

// artifact is the storage-bench binary's own result file schema.
type artifact struct {
	MemSize          int64   `json:"mem_size"`
	MemShare         float64 `json:"mem_share"`
	MemUsage         float64 `json:"mem_usage"`
	MemOffloadFactor float64 `json:"mem_offload_factor"`
}

// Bench implements application/sweep.StorageBench by invoking Cmd once
// per Run and reading ResultPath afterward.
type Bench struct {
	Cmd        string
	ResultPath string
}

// New builds a Bench invoking cmd and reading its result from resultPath.
func New(cmd, resultPath string) *Bench {
	return &Bench{Cmd: cmd, ResultPath: resultPath}
}

// Run implements sweep.StorageBench.
func (b *Bench) Run(ctx context.Context, applied qos.Override) (sweep.StorageResult, error) {
	args := overrideArgs(applied)

	// #nosec G204 -- Cmd is trusted bootstrap/job-spec configuration, not user input
	cmd := exec.CommandContext(ctx, b.Cmd, args...)
	if err := cmd.Run(); err != nil {
		return sweep.StorageResult{}, fmt.Errorf("storage bench: %w", err)
	}

	data, err := os.ReadFile(b.ResultPath) // #nosec G304 -- path is trusted bootstrap config
	if err != nil {
		return sweep.StorageResult{}, fmt.Errorf("read storage bench result: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return sweep.StorageResult{}, fmt.Errorf("parse storage bench result: %w", err)
	}

	return sweep.StorageResult{
		MemSize:          a.MemSize,
		MemShare:         a.MemShare,
		MemUsage:         a.MemUsage,
		MemOffloadFactor: a.MemOffloadFactor,
	}, nil
}

// overrideArgs translates a planned QoS override into the storage-bench
// binary's own CLI flags.
func overrideArgs(ovr qos.Override) []string {
	if ovr.Off {
		return []string{"--qos-off"}
	}
	return []string{
		"--qos-min", strconv.FormatFloat(ovr.Min, 'f', -1, 64),
		"--qos-max", strconv.FormatFloat(ovr.Max, 'f', -1, 64),
		"--qos-rpct", strconv.FormatFloat(ovr.RPct, 'f', -1, 64),
		"--qos-wpct", strconv.FormatFloat(ovr.WPct, 'f', -1, 64),
	}
}
