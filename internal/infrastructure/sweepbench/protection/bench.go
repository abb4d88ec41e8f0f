// Package protection adapts application/sweep.ProtectionBench onto the
// mem-hog-tune sub-benchmark binary, grounded the same way as
// infrastructure/sweepbench/storage: a one-shot exec.CommandContext
// run followed by reading the sub-process's own JSON result artifact
// (spec.md §4.8 step 4).
package protection

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/kodflow/resctld/internal/application/sweep"
)

// artifact is mem-hog-tune's own result file schema. Converged is
// false when the binary failed to find a stable size (spec.md §4.8:
// "Protection failure is non-fatal").
type artifact struct {
	Converged bool  `json:"converged"`
	FinalSize int64 `json:"final_size"`
}

// Bench implements application/sweep.ProtectionBench.
type Bench struct {
	Cmd        string
	ResultPath string
}

// New builds a Bench invoking cmd and reading its result from resultPath.
func New(cmd, resultPath string) *Bench {
	return &Bench{Cmd: cmd, ResultPath: resultPath}
}

// Run implements sweep.ProtectionBench. A command failure or a
// non-convergent result both report ProtectionResult{FinalSize: nil}
// rather than an error: the caller treats either as the non-fatal
// "protection_failed" case.
func (b *Bench) Run(ctx context.Context, sizeMin, sizeMax int64, isolPct string, isolThr float64) (sweep.ProtectionResult, error) {
	args := []string{
		"--size-min", strconv.FormatInt(sizeMin, 10),
		"--size-max", strconv.FormatInt(sizeMax, 10),
		"--isol-pct", isolPct,
		"--isol-thr", strconv.FormatFloat(isolThr, 'f', -1, 64),
	}

	// #nosec G204 -- Cmd is trusted bootstrap/job-spec configuration, not user input
	cmd := exec.CommandContext(ctx, b.Cmd, args...)
	if err := cmd.Run(); err != nil {
		return sweep.ProtectionResult{}, nil
	}

	data, err := os.ReadFile(b.ResultPath) // #nosec G304 -- path is trusted bootstrap config
	if err != nil {
		return sweep.ProtectionResult{}, fmt.Errorf("read protection bench result: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return sweep.ProtectionResult{}, fmt.Errorf("parse protection bench result: %w", err)
	}
	if !a.Converged {
		return sweep.ProtectionResult{}, nil
	}

	size := a.FinalSize
	return sweep.ProtectionResult{FinalSize: &size}, nil
}
