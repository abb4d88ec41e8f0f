package report

import "time"

// record is one timestamped report retained in a Ring.
type record struct {
	at  int64
	rep Report
}

// Ring is a cadence-bucketed, retention-bounded history of reports,
// grounded on the original agent's report ring (spec.md §9 "Report
// ring"). Two rings (second- and minute-cadence) together back the
// `report.json`/`report-1min.json` history a consumer can replay.
//
// Ring itself is not safe for concurrent use; callers needing the
// "dedicated mutex" guard described in spec.md §5 wrap it themselves
// (infrastructure/reportstore/file.Store pushes into its rings under its
// own mutex).
type Ring struct {
	cadence   int64
	retention int64
	recs      []record
}

// NewRing returns an empty ring bucketing reports every cadence seconds
// and discarding any report older than retention seconds.
func NewRing(cadence, retention int64) *Ring {
	return &Ring{cadence: cadence, retention: retention}
}

// Push appends rep, timestamped at unixSeconds, evicting anything older
// than the retention window measured from unixSeconds.
func (r *Ring) Push(unixSeconds int64, rep Report) {
	at := unixSeconds / r.cadence * r.cadence
	r.recs = append(r.recs, record{at: at, rep: rep})

	cutoff := at - r.retention
	i := 0
	for ; i < len(r.recs); i++ {
		if r.recs[i].at >= cutoff {
			break
		}
	}
	if i > 0 {
		r.recs = r.recs[i:]
	}
}

// Len returns the number of retained reports.
func (r *Ring) Len() int { return len(r.recs) }

// Oldest and Newest return the bucket timestamp of the first and last
// retained report. ok is false when the ring is empty.
func (r *Ring) Oldest() (at int64, ok bool) {
	if len(r.recs) == 0 {
		return 0, false
	}
	return r.recs[0].at, true
}

func (r *Ring) Newest() (at int64, ok bool) {
	if len(r.recs) == 0 {
		return 0, false
	}
	return r.recs[len(r.recs)-1].at, true
}

// Selector, Accumulator, and Aggregator are the three independent
// capabilities of a downsampling consumer (spec.md REDESIGN FLAGS:
// "deep callback trio ... expressed as a capability set ... no
// inheritance"). A caller composes exactly the ones it needs instead of
// implementing a single monolithic interface.
type (
	Selector[T any]    func(*Report) T
	Accumulator[T any] func(acc *T, sample T)
	Aggregator[T any]  func(acc *T, nrSamples int)
)

// Series downsamples a Ring's reports into stride-sized buckets of type
// T, using the selector to extract a value from each report, the
// accumulator to fold samples within a bucket, and the aggregator to
// finalize a bucket once full (e.g. turning a running sum into a mean).
func Series[T any](r *Ring, stride int64, sel Selector[T], acc Accumulator[T], aggr Aggregator[T]) []T {
	if stride <= 0 {
		stride = 1
	}
	step := stride * r.cadence

	var out []T
	if len(r.recs) == 0 {
		return out
	}

	var (
		bucketAt int64
		bucket   T
		nr       int
		started  bool
	)

	flush := func() {
		aggr(&bucket, nr)
		out = append(out, bucket)
		var zero T
		bucket = zero
		nr = 0
	}

	for _, rec := range r.recs {
		at := rec.at / step * step
		if !started {
			bucketAt = at
			started = true
		}
		for bucketAt < at {
			flush()
			bucketAt += step
		}
		acc(&bucket, sel(&rec.rep))
		nr++
	}
	if nr > 0 {
		flush()
	}
	return out
}

// Now returns the current Unix second, the clock the runner threads
// bucket reports against.
func Now() int64 { return time.Now().Unix() }

// Within returns the reports whose bucket timestamp falls in
// [startUnix, endUnix), oldest first. Used by a study computed over a
// sweep run's report period (spec.md §4.8 "Studies").
func (r *Ring) Within(startUnix, endUnix int64) []Report {
	var out []Report
	for _, rec := range r.recs {
		if rec.at >= startUnix && rec.at < endUnix {
			out = append(out, rec.rep)
		}
	}
	return out
}
