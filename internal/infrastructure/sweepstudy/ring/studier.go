// Package ring adapts application/sweep.Studier onto a report.Ring,
// computing mean/stdev/percentile studies over the reports retained in
// a sweep run's report period (spec.md §4.8 "Studies"), grounded on the
// percentile-over-a-sorted-copy idiom used throughout the example
// corpus's benchmark harnesses and the domain report.Ring's own
// Selector/Accumulator/Aggregator capability set
// (internal/domain/report/ring.go).
package ring

import (
	"fmt"
	"math"
	"sort"

	"github.com/kodflow/resctld/internal/domain/qos"
	"github.com/kodflow/resctld/internal/domain/report"
)

// Studier implements application/sweep.Studier over Ring, a
// second-cadence report history (spec.md §4.8 refers to "report
// period", which is computed against the fine-grained ring so a study
// spanning a few seconds still has enough samples).
type Studier struct {
	Ring *report.Ring
}

// New builds a Studier reading from ring.
func New(ring *report.Ring) *Studier {
	return &Studier{Ring: ring}
}

// Study implements sweep.Studier.
func (s *Studier) Study(period qos.Period) (vrate, readLat, writeLat qos.Study, err error) {
	reports := s.Ring.Within(period.Start, period.End)
	if len(reports) == 0 {
		return qos.Study{}, qos.Study{}, qos.Study{}, fmt.Errorf("no reports in period [%d,%d)", period.Start, period.End)
	}

	vrateSamples := make([]float64, len(reports))
	readSamples := make([]float64, 0, len(reports))
	writeSamples := make([]float64, 0, len(reports))
	for i, rep := range reports {
		vrateSamples[i] = rep.IOCost.VRate
		if v, ok := rep.IOLatCum.Read["99"]; ok {
			readSamples = append(readSamples, v)
		}
		if v, ok := rep.IOLatCum.Write["99"]; ok {
			writeSamples = append(writeSamples, v)
		}
	}

	return studyOf(vrateSamples), studyOf(readSamples), studyOf(writeSamples), nil
}

// studyOf computes the mean, population stdev, and the fixed
// qos.StudyPercentiles set over samples via nearest-rank on a sorted
// copy.
func studyOf(samples []float64) qos.Study {
	if len(samples) == 0 {
		return qos.Study{Pcts: map[string]float64{}}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var sqDiffSum float64
	for _, v := range sorted {
		d := v - mean
		sqDiffSum += d * d
	}
	stdev := math.Sqrt(sqDiffSum / float64(len(sorted)))

	pcts := make(map[string]float64, len(qos.StudyPercentiles))
	for _, p := range qos.StudyPercentiles {
		pcts[p] = percentile(sorted, p)
	}

	return qos.Study{Mean: mean, Stdev: stdev, Pcts: pcts}
}

// percentile reads pct (a qos.StudyPercentiles entry, e.g. "00", "90",
// "100") off a pre-sorted slice via nearest-rank indexing.
func percentile(sorted []float64, pct string) float64 {
	var p float64
	if _, err := fmt.Sscanf(pct, "%f", &p); err != nil {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
