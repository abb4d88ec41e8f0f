// Package sweep implements the QoS sweep driver (spec.md §4.8,
// component C8 "QoS sweep driver"): a nested benchmark orchestrator
// that plans a set of io.cost QoS points, executes each against the
// running agent, and studies the resulting reports. Grounded on the
// teacher's application/supervisor package for the "single driver
// coordinates several named sub-collaborators under one data owner"
// shape, narrowed to this package's sequential (non-concurrent) walk.
package sweep

import (
	"context"

	"github.com/kodflow/resctld/internal/application/kernelctl"
	domlog "github.com/kodflow/resctld/internal/domain/logging"
	"github.com/kodflow/resctld/internal/domain/qos"
)

// StorageResult is what the storage sub-benchmark reports back for one
// QoS point: the calibrated working-set size and the fraction of it
// the protection benchmark's size range is derived from (spec.md §4.8
// step 4: "storage.mem.share * 4/5").
type StorageResult struct {
	MemSize  int64
	MemShare float64
	// MemUsage is the storage run's actual resident memory usage, the
	// aMOF denominator (spec.md §4.8 "Studies": "aMOF metrics from the
	// protection's mem-hog-tune final size").
	MemUsage float64
	// MemOffloadFactor is the storage benchmark's configured base MOF,
	// against which AdjustedMOFDelta is measured (GLOSSARY "MOF / aMOF").
	MemOffloadFactor float64
}

// ProtectionResult is the protection sub-benchmark's outcome.
// FinalSize is nil when the run failed or did not converge (spec.md
// §4.8: "Protection failure is non-fatal (record is stored empty)").
type ProtectionResult struct {
	FinalSize *int64
}

// StorageBench runs the storage-isolation sub-benchmark for one
// composed QoS override (spec.md §4.8 step 2-3).
type StorageBench interface {
	Run(ctx context.Context, applied qos.Override) (StorageResult, error)
}

// ProtectionBench runs the mem-hog-tune protection sub-benchmark over
// the given size range (spec.md §4.8 step 4).
type ProtectionBench interface {
	Run(ctx context.Context, sizeMin, sizeMax int64, isolPct string, isolThr float64) (ProtectionResult, error)
}

// Studier computes the three statistical studies a completed run's
// report period feeds into: vrate mean/percentiles, read and write
// latency percentiles (spec.md §4.8 "Studies").
type Studier interface {
	Study(period qos.Period) (vrate, readLat, writeLat qos.Study, err error)
}

// AgentConfig is the slice of configwatch.Watcher the sweep driver
// needs: pushing a composed QoS into bench.json and nudging
// iocost_seq so the runner (C7) picks it up (spec.md §4.8 step 1).
type AgentConfig interface {
	NudgeIOCost(qos qos.Override) error
	CurrentIOCostSeq() (uint64, error)
}

// Store persists and retrieves qos.Record state across sweep
// invocations, including the crash-resilient incremental snapshot
// (spec.md §4.8 "Dedup and caching", "persist an incremental
// snapshot").
type Store interface {
	Load() (*qos.Record, error)
	SaveIncremental(rec qos.Record) error
	SaveFinal(rec qos.Record) error
}

// Deps are the sweep driver's collaborators.
type Deps struct {
	Config     AgentConfig
	Storage    StorageBench
	Protection ProtectionBench
	Study      Studier
	Store      Store
	Kernel     kernelctl.Kernel
	Logger     domlog.Logger
}
