// Package file adapts application/benchresult.Reader onto the
// benchmark sub-processes' own output artifact files, grounded on the
// teacher's atomic-write/read-back file adapters' "os.ReadFile +
// json.Unmarshal" idiom (spec.md §4.7 step 2 "check_completions").
package file

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kodflow/resctld/internal/domain/benchknobs"
)

// Reader implements application/benchresult.Reader over the two
// benchmark sub-processes' JSON artifact files.
type Reader struct {
	HashdPath  string
	IOCostPath string
}

// New builds a Reader for the given artifact paths.
func New(hashdPath, iocostPath string) *Reader {
	return &Reader{HashdPath: hashdPath, IOCostPath: iocostPath}
}

// ReadHashd implements benchresult.Reader.
func (r *Reader) ReadHashd() (benchknobs.Hashd, error) {
	var out benchknobs.Hashd
	data, err := os.ReadFile(r.HashdPath) // #nosec G304 -- path is trusted bootstrap config
	if err != nil {
		return out, fmt.Errorf("read hashd-bench artifact: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse hashd-bench artifact: %w", err)
	}
	return out, nil
}

// ReadIOCost implements benchresult.Reader.
func (r *Reader) ReadIOCost() (benchknobs.IOCost, error) {
	var out benchknobs.IOCost
	data, err := os.ReadFile(r.IOCostPath) // #nosec G304 -- path is trusted bootstrap config
	if err != nil {
		return out, fmt.Errorf("read iocost-bench artifact: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse iocost-bench artifact: %w", err)
	}
	return out, nil
}
