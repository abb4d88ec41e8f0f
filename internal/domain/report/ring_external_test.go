package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/domain/report"
	"github.com/kodflow/resctld/internal/domain/runstate"
)

func TestRing_PushEvictsOlderThanRetention(t *testing.T) {
	t.Parallel()

	r := report.NewRing(1, 5)
	for i := int64(0); i < 10; i++ {
		r.Push(i, report.New(uint64(i), runstate.Running)) //nolint:gosec // test loop bound
	}

	assert.LessOrEqual(t, r.Len(), 6)
	oldest, ok := r.Oldest()
	require.True(t, ok)
	newest, ok := r.Newest()
	require.True(t, ok)
	assert.Equal(t, int64(9), newest)
	assert.GreaterOrEqual(t, oldest, int64(4))
}

func TestRing_Within(t *testing.T) {
	t.Parallel()

	r := report.NewRing(1, 100)
	for i := int64(0); i < 20; i++ {
		r.Push(i, report.New(uint64(i), runstate.Running)) //nolint:gosec // test loop bound
	}

	got := r.Within(5, 10)
	assert.Len(t, got, 5)
}

func TestRing_SeriesDownsamples(t *testing.T) {
	t.Parallel()

	r := report.NewRing(1, 100)
	for i := int64(0); i < 4; i++ {
		rep := report.New(uint64(i), runstate.Running) //nolint:gosec // test loop bound
		rep.Hashd[0].Load = float64(i)
		r.Push(i, rep)
	}

	sums := report.Series(
		r, 2,
		func(rep *report.Report) float64 { return rep.Hashd[0].Load },
		func(acc *float64, sample float64) { *acc += sample },
		func(acc *float64, nrSamples int) {
			if nrSamples > 0 {
				*acc /= float64(nrSamples)
			}
		},
	)

	require.Len(t, sums, 2)
	assert.InDelta(t, 0.5, sums[0], 1e-9)
	assert.InDelta(t, 2.5, sums[1], 1e-9)
}
