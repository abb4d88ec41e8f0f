// Package sampler defines the port the report thread uses to gather
// one tick's worth of per-slice cgroup and system-wide telemetry
// (spec.md §4.3, component C3 "Usage sampler").
package sampler

import "github.com/kodflow/resctld/internal/domain/usage"

// SystemUsage is the host-wide counters the sampler reads from /proc,
// independent of any single slice's cgroup accounting.
type SystemUsage struct {
	CPUTotal    float64 `json:"cpu_total"`
	LoadAvg1    float64 `json:"load_avg_1"`
	MemTotal    uint64  `json:"mem_total"`
	MemAvail    uint64  `json:"mem_avail"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
	DiskReadBytes  uint64 `json:"disk_read_bytes"`
	DiskWriteBytes uint64 `json:"disk_write_bytes"`
}

// Sampler is the port a reporter calls once per tick to gather the
// per-slice usage map plus the host-wide counters it folds into
// derived metrics (e.g. total memory, used for balloon sizing).
type Sampler interface {
	// SampleSlice reads one slice's cgroup v2 telemetry (spec.md §6
	// "Cgroup inputs"). A slice that does not yet have a cgroup (no
	// process placed under it) returns a zero Usage and no error.
	SampleSlice(cgroupPath string) (usage.Usage, error)

	// SampleSystem reads the host-wide /proc counters.
	SampleSystem() (SystemUsage, error)

	// SampleVMStat reads /proc/vmstat verbatim into a key/value map,
	// the report aggregator's per-tick vmstat refresh (spec.md §4.4 step
	// 4: "overwrite report.vmstat from /proc/vmstat").
	SampleVMStat() (map[string]uint64, error)
}
