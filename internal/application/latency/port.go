// Package latency defines the port the runner uses to consume the
// reference application's asynchronously-streamed latency samples
// (spec.md §4.5, component C5 "Latency reader"). Unlike the other
// managed units, the reference app streams structured records over
// its own channel independent of the one-second report cadence.
package latency

import (
	"context"

	"github.com/kodflow/resctld/internal/domain/report"
)

// Sample is one line of the reference app's latency stream: an IO
// completion tagged with its op and latency in seconds.
type Sample struct {
	Op      string  // "read", "write", "discard", or "flush"
	Seconds float64
}

// Reader is the port a C5 consumer uses to receive an instance's
// latency stream and fold it into cumulative histograms.
type Reader interface {
	// Stream starts reading instance idx's latency stream and returns a
	// channel of samples. The channel closes when ctx is cancelled or
	// the underlying unit exits.
	Stream(ctx context.Context, idx int) (<-chan Sample, error)
}

// Histogram accumulates Samples into percentile buckets, producing the
// per-tick and cumulative IOLatency pair a report carries.
type Histogram struct {
	tick []float64
	cum  []float64
}

// NewHistogram returns an empty Histogram.
func NewHistogram() *Histogram { return &Histogram{} }

// Add folds one sample's latency into both the per-tick and cumulative
// buckets.
func (h *Histogram) Add(seconds float64) {
	h.tick = append(h.tick, seconds)
	h.cum = append(h.cum, seconds)
}

// ConsumeTick returns this tick's percentile histogram and resets the
// per-tick accumulator; the cumulative accumulator is untouched.
func (h *Histogram) ConsumeTick() map[string]float64 {
	out := percentiles(h.tick)
	h.tick = h.tick[:0]
	return out
}

// Cumulative returns the percentile histogram over every sample seen
// since the reference app instance started.
func (h *Histogram) Cumulative() map[string]float64 {
	return percentiles(h.cum)
}

func percentiles(samples []float64) map[string]float64 {
	out := make(map[string]float64, len(report.Percentiles))
	if len(samples) == 0 {
		for _, p := range report.Percentiles {
			out[p] = 0
		}
		return out
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	insertionSort(sorted)

	for _, p := range report.Percentiles {
		out[p] = percentileOf(sorted, p)
	}
	return out
}

func insertionSort(xs []float64) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}

func percentileOf(sorted []float64, key string) float64 {
	pct := map[string]float64{
		"00": 0, "16": 16, "50": 50, "84": 84, "90": 90,
		"99": 99, "99.9": 99.9, "99.99": 99.99, "100": 100,
	}[key]

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := pct / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
