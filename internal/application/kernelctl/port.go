// Package kernelctl defines the port the runner uses to read and write
// the host-wide kernel knobs it asserts every reconcile pass: swap
// aggressiveness, zswap, and the scratch device's IO scheduler
// (spec.md §6 "Kernel knobs").
package kernelctl

import "github.com/kodflow/resctld/internal/domain/benchknobs"

// Kernel is the port a reconcile loop calls at the top of every
// iteration. Implementations read the current on-disk value before
// writing so the runner only writes when the value actually diverges.
type Kernel interface {
	// Swappiness reads /proc/sys/vm/swappiness.
	Swappiness() (uint32, error)
	// SetSwappiness writes /proc/sys/vm/swappiness. Callers are expected
	// to cap target at 200 themselves (spec.md §4.7).
	SetSwappiness(target uint32) error

	// ZswapEnabled reads /sys/module/zswap/parameters/enabled.
	ZswapEnabled() (bool, error)
	// SetZswapEnabled writes /sys/module/zswap/parameters/enabled as Y/N.
	SetZswapEnabled(enabled bool) error

	// SetIOScheduler writes /sys/block/{dev}/queue/scheduler, selecting
	// name among the schedulers the kernel advertises for dev.
	SetIOScheduler(dev string, name string) error

	// ApplyIOCost writes dev's io.cost.model and io.cost.qos files from
	// the composed model/QoS the runner or sweep driver wants asserted.
	ApplyIOCost(dev string, model benchknobs.Model, qos benchknobs.QoS) error
	// ReadIOCostQoS reads dev's currently-applied io.cost.qos, used to
	// validate that a composed QoS was faithfully accepted (spec.md
	// §4.8 "Validation").
	ReadIOCostQoS(dev string) (benchknobs.QoS, error)
}
