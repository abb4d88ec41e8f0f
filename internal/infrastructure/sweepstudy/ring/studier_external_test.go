package ring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/domain/qos"
	"github.com/kodflow/resctld/internal/domain/report"
	"github.com/kodflow/resctld/internal/domain/runstate"
	studyring "github.com/kodflow/resctld/internal/infrastructure/sweepstudy/ring"
)

func TestStudier_Study_ComputesMeanAndPercentiles(t *testing.T) {
	t.Parallel()

	r := report.NewRing(1, 3600)
	for i, vrate := range []float64{1.0, 2.0, 3.0, 4.0, 5.0} {
		rep := report.New(uint64(i), runstate.State{})
		rep.Timestamp = rep.Timestamp.Add(0)
		rep.IOCost.VRate = vrate
		r.Push(int64(1000+i), rep)
	}

	s := studyring.New(r)
	vrate, _, _, err := s.Study(qos.Period{Start: 1000, End: 1010})
	require.NoError(t, err)

	assert.InDelta(t, 3.0, vrate.Mean, 0.0001)
	assert.Equal(t, 1.0, vrate.Pcts["00"])
	assert.Equal(t, 5.0, vrate.Pcts["100"])
}

func TestStudier_Study_EmptyPeriodErrors(t *testing.T) {
	t.Parallel()

	r := report.NewRing(1, 3600)
	s := studyring.New(r)
	_, _, _, err := s.Study(qos.Period{Start: 0, End: 10})
	assert.Error(t, err)
}
