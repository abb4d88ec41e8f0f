// Package qos provides the sweep-driver-level domain types for the QoS
// sweep job spec and its results (spec.md §3, "QoS override" and "QoS
// record-run"; §4.8 "QoS sweep driver").
package qos

import "github.com/kodflow/resctld/internal/domain/benchknobs"

// Override is one planned or explicit QoS override point (spec.md §3).
// Off short-circuits everything else: a record produced from an Off
// override carries no QoSApplied.
type Override struct {
	Off  bool `json:"off"`
	Skip bool `json:"skip"`

	Min float64 `json:"min"`
	Max float64 `json:"max"`

	RPct float64 `json:"rpct"`
	RLat uint64  `json:"rlat"`
	WPct float64 `json:"wpct"`
	WLat uint64  `json:"wlat"`

	// MinAdj, if non-zero, nudges Min relative to the base QoS instead of
	// replacing it outright.
	MinAdj float64 `json:"min_adj"`
}

// Equal reports whether two overrides are bit-equal in every recognized
// field (spec.md §3: "Two overrides equal iff every recognized field
// matches").
func (o Override) Equal(other Override) bool {
	return o == other
}

// Compose applies o on top of base, producing the QoS the runner should
// assert. Off and Skip never reach here; callers check those first.
func Compose(base benchknobs.QoS, o Override) benchknobs.QoS {
	out := base
	if o.Min != 0 {
		out.Min = o.Min
	}
	if o.MinAdj != 0 {
		out.Min += o.MinAdj
	}
	if o.Max != 0 {
		out.Max = o.Max
	}
	if o.RPct != 0 {
		out.RPct = o.RPct
	}
	if o.RLat != 0 {
		out.RLat = o.RLat
	}
	if o.WPct != 0 {
		out.WPct = o.WPct
	}
	if o.WLat != 0 {
		out.WLat = o.WLat
	}
	out.Enable = 1
	return out
}

// Period is the half-open report window [Start,End) a run's studies are
// computed over, as Unix seconds.
type Period struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Study is a percentile/mean summary computed over a Period (spec.md
// §4.8 "Studies"). Pcts is keyed by the StudyPercentiles strings
// ("00".."100"); the mean and standard deviation are the Mean and Stdev
// fields, not Pcts entries.
type Study struct {
	Mean  float64            `json:"mean"`
	Stdev float64            `json:"stdev"`
	Pcts  map[string]float64 `json:"pcts"`
}

// StudyPercentiles is the fixed set of percentile keys a Study reports,
// mirroring the original benchmark's VRATE_PCTS table.
var StudyPercentiles = []string{"00", "01", "10", "25", "50", "75", "90", "99", "100"}

// RecordRun is one executed (non-cached, non-skipped) planned point:
// the override applied, the QoS actually read back, the report period
// it ran over, and its derived studies.
type RecordRun struct {
	Period Period   `json:"period"`
	Ovr    Override `json:"ovr"`
	// QoSApplied is nil iff Ovr.Off.
	QoSApplied *benchknobs.QoS `json:"qos_applied,omitempty"`

	VRate    Study `json:"vrate"`
	ReadLat  Study `json:"read_lat"`
	WriteLat Study `json:"write_lat"`

	// AdjustedMemSize is the protection benchmark's mem-hog-tune final
	// stable size, when the protection run succeeded.
	AdjustedMemSize *int64 `json:"adjusted_mem_size,omitempty"`
	// AdjustedMOF is AdjustedMemSize / storage mem usage (aMOF).
	AdjustedMOF *float64 `json:"adjusted_mof,omitempty"`
	// AdjustedMOFDelta is storage's base mem-offload factor minus AdjustedMOF.
	AdjustedMOFDelta *float64 `json:"adjusted_mof_delta,omitempty"`

	// ProtectionFailed records a non-fatal protection-run failure
	// (spec.md §4.8: "Protection failure is non-fatal (record is stored
	// empty)").
	ProtectionFailed bool `json:"protection_failed"`
}

// Record is the full persisted state of one sweep invocation: the base
// model/QoS this sweep started from (for dedup matching against a
// future invocation), the finalized ordered runs, and (while the sweep
// is mid-flight) the incremental runs completed so far.
type Record struct {
	BaseModel   benchknobs.Model `json:"base_model"`
	BaseQoS     benchknobs.QoS   `json:"base_qos"`
	MemProfile  uint64           `json:"mem_profile"`
	DitherDist  *float64         `json:"dither_dist,omitempty"`

	// Runs holds one entry per Plan.Points, filled as the sweep proceeds
	// (incremental snapshots carry it partly filled); index i corresponds
	// to Plan.Points[i], with a nil entry where Points[i].Skip was set or
	// the point failed under AllowFail.
	Runs []*RecordRun `json:"runs"`

	// IncRuns accumulates completed runs while the sweep proceeds, so a
	// crash can resume without re-running already-validated points
	// (spec.md §4.8: "persist an incremental snapshot").
	IncRuns []RecordRun `json:"inc_runs,omitempty"`
}

// Matches reports whether a previous Record was produced from the same
// base model/QoS and memory profile as the candidate inputs, and is
// therefore eligible for dedup/resume against a new sweep (spec.md
// §4.8 "Dedup and caching").
func (r *Record) Matches(baseModel benchknobs.Model, baseQoS benchknobs.QoS, memProfile uint64) bool {
	if r == nil {
		return false
	}
	return r.BaseModel == baseModel && r.BaseQoS.Equal(baseQoS) && r.MemProfile == memProfile
}

// Plan is the ordered list of override points a sweep will walk,
// produced by the planning step (spec.md §4.8 "Planning").
type Plan struct {
	Points     []Override
	DitherDist *float64
}

// JobSpec is the parsed sweep job configuration (spec.md §4.8 "Input").
// A JobSpec with Explicit set skips vrate-range planning entirely and
// walks Explicit verbatim, mirroring the original benchmark's
// job-property parsing (grounded on original_source/resctl-bench/src/
// bench/iocost_qos.rs's IoCostQoSJob field set).
type JobSpec struct {
	VrateMin   float64 `yaml:"vrate_min"`
	VrateMax   float64 `yaml:"vrate_max"`
	VrateIntvs int     `yaml:"vrate_intvs"`

	Dither     bool     `yaml:"dither"`
	DitherDist *float64 `yaml:"dither_dist,omitempty"`

	IsolPct string  `yaml:"isol_pct"`
	IsolThr float64 `yaml:"isol_thr"`

	StorageLoops int  `yaml:"storage_loops"`
	Retries      int  `yaml:"retries"`
	AllowFail    bool `yaml:"allow_fail"`

	// Explicit, when non-empty, is walked as-is instead of a planned
	// vrate range (spec.md §4.8: "an ordered list of explicit QoS
	// overrides").
	Explicit []Override `yaml:"explicit,omitempty"`
}

// DefaultVrateIntvs is used when neither explicit overrides nor an
// interval count is given (spec.md §4.8 "Planning": "If no explicit
// overrides and no interval count given, default to 5").
const DefaultVrateIntvs = 5

// VrateFloor is the absolute lower bound planning enforces on vrate_min
// (spec.md §4.8: "Enforce absolute floor on vrate_min (1.0)").
const VrateFloor = 1.0
