// Package usage provides the domain types for per-slice resource
// consumption samples gathered from cgroup v2 and /proc (spec.md §3,
// "Usage record").
package usage

// Pressure holds a PSI "some"/"full" pair: each file's "total=" field,
// a cumulative stall count in microseconds, normalised to seconds
// (spec.md §6 "Cgroup inputs").
type Pressure struct {
	Some float64 `json:"some"`
	Full float64 `json:"full"`
}

// Usage is one slice's resource-consumption sample for one report tick.
type Usage struct {
	// CPUBusy is the fraction of wall-clock time the slice's CPUs were busy.
	CPUBusy float64 `json:"cpu_busy"`
	// CPUSys is the fraction of CPUBusy spent in kernel mode.
	CPUSys float64 `json:"cpu_sys"`
	// CPUPressure is cpu.pressure for the slice.
	CPUPressure Pressure `json:"cpu_pressure"`

	// MemBytes is memory.current.
	MemBytes uint64 `json:"mem_bytes"`
	// MemPressure is memory.pressure for the slice.
	MemPressure Pressure `json:"mem_pressure"`
	// SwapBytes is memory.swap.current.
	SwapBytes uint64 `json:"swap_bytes"`
	// SwapFree is the minimum of (memory.swap.max - memory.swap.current)
	// across the cgroup's ancestor chain up to (excluding) the cgroup
	// root (spec.md §4.3, open question on whether the root's own
	// swap.max should count — resolved in DESIGN.md by following the
	// original's literal root-excluding walk).
	SwapFree uint64 `json:"swap_free"`
	// MemStat mirrors selected memory.stat keys (e.g. "pgscan", "workingset_refault").
	MemStat map[string]uint64 `json:"mem_stat"`

	// IOReadBytes and IOWriteBytes are cumulative io.stat rbytes/wbytes.
	IOReadBytes  uint64 `json:"io_read_bytes"`
	IOWriteBytes uint64 `json:"io_write_bytes"`
	// IOCostUsage is io.stat's cost.usage (vtime consumed under iocost), in usec.
	IOCostUsage uint64 `json:"io_cost_usage"`
	// IOPressure is io.pressure for the slice.
	IOPressure Pressure `json:"io_pressure"`
	// IOStat mirrors the remaining io.stat keys, keyed "<device>.<field>".
	IOStat map[string]uint64 `json:"io_stat"`
}

// Clone returns a deep copy of u so samplers can recycle a scratch Usage
// across ticks without aliasing a value handed off to a report.
func (u Usage) Clone() Usage {
	out := u
	if u.MemStat != nil {
		out.MemStat = make(map[string]uint64, len(u.MemStat))
		for k, v := range u.MemStat {
			out.MemStat[k] = v
		}
	}
	if u.IOStat != nil {
		out.IOStat = make(map[string]uint64, len(u.IOStat))
		for k, v := range u.IOStat {
			out.IOStat[k] = v
		}
	}
	return out
}
