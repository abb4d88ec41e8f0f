package sweep

import (
	"math/rand"

	"github.com/kodflow/resctld/internal/domain/qos"
)

// Plan turns a JobSpec into an ordered walk of Overrides (spec.md §4.8
// "Planning"), grounded on original_source/resctl-bench/src/bench/
// iocost_qos.rs's IoCostQoSJob::parse click/dither arithmetic.
//
// prior is the matching previous Record, if any (nil otherwise); its
// DitherDist is reused when present so repeated sweeps against the
// same base model/QoS land on the same dithered points.
func Plan(job qos.JobSpec, prior *qos.Record) qos.Plan {
	if len(job.Explicit) > 0 {
		return qos.Plan{Points: job.Explicit}
	}

	intvs := job.VrateIntvs
	if intvs <= 0 {
		intvs = qos.DefaultVrateIntvs
	}

	vmin, vmax := job.VrateMin, job.VrateMax
	var click, ditherShift float64
	if vmin == 0 {
		click = vmax / float64(intvs)
		vmin = click
		ditherShift = -click / 2
	} else {
		click = (vmax - vmin) / float64(intvs-1)
	}

	var ditherDist *float64
	if job.Dither {
		switch {
		case job.DitherDist != nil:
			d := *job.DitherDist
			ditherDist = &d
		case prior != nil && prior.DitherDist != nil:
			d := *prior.DitherDist
			ditherDist = &d
		default:
			d := rand.Float64()*click - click/2 + ditherShift //nolint:gosec // planning jitter, not security-sensitive
			ditherDist = &d
		}
		vmin += *ditherDist
		vmax += *ditherDist
	}

	if vmin < qos.VrateFloor {
		vmin = qos.VrateFloor
	}

	points := make([]qos.Override, 0, intvs+1)
	// Always run one "off" point first: the baseline with no override
	// applied, matching the 6-run example in spec.md §8 scenario 5
	// (5 intervals produce 6 total runs: off + 5 vrate points).
	points = append(points, qos.Override{Off: true})

	for v := vmax; v > vmin-0.001; v -= click {
		points = append(points, qos.Override{Min: v, Max: v})
	}

	return qos.Plan{Points: points, DitherDist: ditherDist}
}
