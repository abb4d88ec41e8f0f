// Package sliceapply defines the port the runner uses to assert
// slice.json's per-slice cgroup knobs onto the live cgroup tree
// (spec.md §3 "Slice knobs", §4.7 step 7).
package sliceapply

import "github.com/kodflow/resctld/internal/domain/sliceknobs"

// Applier is the port the reconciler calls whenever slice.json changes
// or a periodic health-verify pass comes due.
type Applier interface {
	// Apply writes cpu.weight, memory.low, and io.weight for every slice
	// in knobs, skipping (and logging) any controller a slice disables
	// via DisableSeq against instanceSeq.
	Apply(knobs sliceknobs.SliceKnobs, instanceSeq uint64) error

	// Verify re-reads the live cgroup files and reports whether they
	// still match the last-applied knobs, used by the periodic
	// slice-health check (spec.md §4.7 step 6).
	Verify(knobs sliceknobs.SliceKnobs, instanceSeq uint64) (bool, error)
}
