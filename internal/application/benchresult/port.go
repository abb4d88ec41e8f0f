// Package benchresult defines the port the runner uses to read back a
// finished benchmark sub-process's artifact file and fold it into
// bench.json (spec.md §4.7 step 2 "check_completions").
package benchresult

import "github.com/kodflow/resctld/internal/domain/benchknobs"

// Reader is the port the runner calls once a benchmark service has
// Exited. Implementations parse the sub-process's own output file;
// a benchmark that exited non-zero without producing an artifact
// returns an error, which the runner treats as a failed benchmark.
type Reader interface {
	// ReadHashd parses the hashd-bench artifact into the calibration
	// fields bench.json's hashd sub-object carries.
	ReadHashd() (benchknobs.Hashd, error)
	// ReadIOCost parses the iocost-bench artifact into a model and its
	// derived default QoS.
	ReadIOCost() (benchknobs.IOCost, error)
}
