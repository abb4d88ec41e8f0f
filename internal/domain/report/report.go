// Package report provides the domain types for report.json, the agent's
// per-tick status broadcast (spec.md §6, "Report schema").
package report

import (
	"time"

	"github.com/kodflow/resctld/internal/domain/benchknobs"
	"github.com/kodflow/resctld/internal/domain/runstate"
	"github.com/kodflow/resctld/internal/domain/usage"
)

// ResctlEnabled mirrors which controllers the runner currently asserts.
type ResctlEnabled struct {
	CPU bool `json:"cpu"`
	Mem bool `json:"mem"`
	IO  bool `json:"io"`
}

// OOMDStatus summarizes the oomd service as observed by the runner.
type OOMDStatus struct {
	Svc SvcStatus `json:"svc"`
}

// SideloaderStatus summarizes the sideloader service and its overrides.
type SideloaderStatus struct {
	Svc         SvcStatus `json:"svc"`
	Overrides   []string  `json:"overrides"`
	CPUHeadroom float64   `json:"cpu_headroom"`
}

// SvcStatus is the minimal status the agent tracks for a supervised unit.
type SvcStatus struct {
	Name    string `json:"name"`
	Exists  bool   `json:"exists"`
	State   string `json:"state"`
	Pid     int    `json:"pid,omitempty"`
	Status  string `json:"status,omitempty"`
}

// BenchStatus reports the progress of a running or last-finished benchmark.
type BenchStatus struct {
	Svc       SvcStatus `json:"svc"`
	Phase     string    `json:"phase"`
	Progress  float64   `json:"progress"`
}

// HashdReport is one reference-app instance's status for this tick.
type HashdReport struct {
	Svc           SvcStatus `json:"svc"`
	Phase         string    `json:"phase"`
	Load          float64   `json:"load"`
	LatPct99      float64   `json:"lat_pct99"`
	RPS           float64   `json:"rps"`
	Errors        uint64    `json:"errors"`
}

// Percentiles used as keys for latency histograms, matching the original
// agent's fixed percentile set.
var Percentiles = []string{"00", "16", "50", "84", "90", "99", "99.9", "99.99", "100"}

// IOLatency is a percentile histogram keyed by op then percentile string,
// e.g. Read["99"] is the 99th-percentile read latency in seconds.
type IOLatency struct {
	Read    map[string]float64 `json:"read"`
	Write   map[string]float64 `json:"write"`
	Discard map[string]float64 `json:"discard"`
	Flush   map[string]float64 `json:"flush"`
}

// NewIOLatency allocates an IOLatency with empty-but-non-nil maps.
func NewIOLatency() IOLatency {
	return IOLatency{
		Read:    make(map[string]float64),
		Write:   make(map[string]float64),
		Discard: make(map[string]float64),
		Flush:   make(map[string]float64),
	}
}

// IOCostSnapshot mirrors the iocost controller's currently-applied model
// and QoS, for diagnostic display.
type IOCostSnapshot struct {
	Model   benchknobs.Model `json:"model"`
	QoS     benchknobs.QoS   `json:"qos"`
	VRate   float64          `json:"vrate"`
}

// Report is the full content of one {report_d}/{unix_second}.json file.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
	State     runstate.State `json:"state"`

	Resctl     ResctlEnabled    `json:"resctl"`
	OOMD       OOMDStatus       `json:"oomd"`
	Sideloader SideloaderStatus `json:"sideloader"`

	BenchHashd  BenchStatus `json:"bench_hashd"`
	BenchIOCost BenchStatus `json:"bench_iocost"`

	Hashd [2]HashdReport `json:"hashd"`

	Sysloads  map[string]SvcStatus `json:"sysloads"`
	Sideloads map[string]SvcStatus `json:"sideloads"`

	IOLat    IOLatency `json:"iolat"`
	IOLatCum IOLatency `json:"iolat_cum"`

	IOCost IOCostSnapshot `json:"iocost"`

	Swappiness   uint32 `json:"swappiness"`
	ZswapEnabled bool   `json:"zswap_enabled"`

	Usages map[string]usage.Usage `json:"usages"`
	// VMStat mirrors selected /proc/vmstat keys, refreshed fresh every
	// aggregator tick (spec.md §4.4 step 4: "overwrite report.vmstat
	// from /proc/vmstat").
	VMStat map[string]uint64 `json:"vmstat"`
}

// New returns a Report with every map field allocated, ready for a
// reporter to fill in without nil-checking each one.
func New(seq uint64, state runstate.State) Report {
	return Report{
		Timestamp: time.Now().UTC(),
		Seq:       seq,
		State:     state,
		Sysloads:  make(map[string]SvcStatus),
		Sideloads: make(map[string]SvcStatus),
		IOLat:     NewIOLatency(),
		IOLatCum:  NewIOLatency(),
		Usages:    make(map[string]usage.Usage),
		VMStat:    make(map[string]uint64),
	}
}
