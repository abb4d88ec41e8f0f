package reportstore

import "github.com/kodflow/resctld/internal/domain/report"

// Cadence selects which of Store's two write paths an Aggregator
// persists through.
type Cadence int

const (
	// CadenceSecond persists through Store.PutSecond.
	CadenceSecond Cadence = iota
	// CadenceMinute persists through Store.PutMinute.
	CadenceMinute
)

// numericAccum holds the running sums of the reference-app/benchmark/
// sideloader numeric fields a bucket averages over, independent of
// Usages/VMStat which are overwritten fresh every tick rather than
// averaged (spec.md §4.4 step 4).
type numericAccum struct {
	hashdLoad, hashdLat, hashdRPS [2]float64
	hashdErrors                  [2]uint64

	benchHashdProgress, benchIOCostProgress float64

	sideloaderHeadroom float64
}

// Aggregator implements the C4 "report aggregator" tick algorithm
// (spec.md §4.4): every call to Tick folds one sample into running
// sums; once the bucket boundary (bucketSecs) is crossed, it divides
// the sums by the sample count, splices in this tick's fresh
// Usages/VMStat (already populated on base by the caller), and
// persists the result through Store.
//
// Two live instances are expected: one with bucketSecs=1 writing
// through PutSecond, one with bucketSecs=60 writing through PutMinute
// (spec.md §4.4: "Two instances run in parallel: a 1-second file and a
// 60-second file").
type Aggregator struct {
	bucketSecs int64
	cadence    Cadence
	store      Store

	nextAt    int64
	nrSamples int
	acc       numericAccum
	latest    report.Report
}

// NewAggregator returns an Aggregator bucketing every bucketSecs
// seconds.
func NewAggregator(bucketSecs int64, cadence Cadence, store Store) *Aggregator {
	return &Aggregator{bucketSecs: bucketSecs, cadence: cadence, store: store}
}

// Tick folds base (this instant's freshly-sampled report, Usages and
// VMStat already populated by the caller) into the running accumulator
// and, once now reaches the bucket boundary, finalizes and persists the
// averaged summary (spec.md §4.4 "Tick algorithm").
func (a *Aggregator) Tick(base report.Report, now int64) error {
	a.accumulate(base)
	a.nrSamples++
	a.latest = base

	if a.nextAt == 0 {
		a.nextAt = now - now%a.bucketSecs + a.bucketSecs
	}
	if now < a.nextAt {
		return nil
	}

	summary := a.summarize()
	a.reset(now)

	switch a.cadence {
	case CadenceMinute:
		return a.store.PutMinute(summary)
	default:
		return a.store.PutSecond(summary)
	}
}

func (a *Aggregator) accumulate(base report.Report) {
	for i := 0; i < 2; i++ {
		a.acc.hashdLoad[i] += base.Hashd[i].Load
		a.acc.hashdLat[i] += base.Hashd[i].LatPct99
		a.acc.hashdRPS[i] += base.Hashd[i].RPS
		a.acc.hashdErrors[i] += base.Hashd[i].Errors
	}
	a.acc.benchHashdProgress += base.BenchHashd.Progress
	a.acc.benchIOCostProgress += base.BenchIOCost.Progress
	a.acc.sideloaderHeadroom += base.Sideloader.CPUHeadroom
}

// summarize divides every accumulated metric by the sample count,
// preserving identity fields (service name, phase, state) from the
// latest sample, then overwrites Usages/VMStat with this tick's fresh
// values (spec.md §4.4 steps 3-4).
func (a *Aggregator) summarize() report.Report {
	out := a.latest
	n := float64(a.nrSamples)
	if n == 0 {
		n = 1
	}

	for i := 0; i < 2; i++ {
		out.Hashd[i].Load = a.acc.hashdLoad[i] / n
		out.Hashd[i].LatPct99 = a.acc.hashdLat[i] / n
		out.Hashd[i].RPS = a.acc.hashdRPS[i] / n
		out.Hashd[i].Errors = uint64(float64(a.acc.hashdErrors[i]) / n)
	}
	out.BenchHashd.Progress = a.acc.benchHashdProgress / n
	out.BenchIOCost.Progress = a.acc.benchIOCostProgress / n
	out.Sideloader.CPUHeadroom = a.acc.sideloaderHeadroom / n

	// Usages and VMStat are already this tick's fresh values on
	// a.latest (the caller samples C3/vmstat before calling Tick); no
	// averaging applies to them.
	return out
}

func (a *Aggregator) reset(now int64) {
	a.nrSamples = 0
	a.acc = numericAccum{}
	a.nextAt = now - now%a.bucketSecs + a.bucketSecs
}
