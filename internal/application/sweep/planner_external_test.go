package sweep_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/resctld/internal/application/sweep"
	"github.com/kodflow/resctld/internal/domain/qos"
)

func TestPlan_Explicit(t *testing.T) {
	t.Parallel()

	job := qos.JobSpec{Explicit: []qos.Override{{Off: true}, {Min: 3, Max: 3}}}
	plan := sweep.Plan(job, nil)

	assert.Equal(t, job.Explicit, plan.Points)
	assert.Nil(t, plan.DitherDist)
}

func TestPlan_DefaultIntervals(t *testing.T) {
	t.Parallel()

	job := qos.JobSpec{VrateMin: 1, VrateMax: 5}
	plan := sweep.Plan(job, nil)

	// 5 default intervals plus the always-run off point.
	require.Len(t, plan.Points, 6)
	assert.True(t, plan.Points[0].Off)
	assert.InDelta(t, 5.0, plan.Points[1].Max, 0.001)
	assert.InDelta(t, 1.0, plan.Points[len(plan.Points)-1].Max, 0.001)
}

func TestPlan_ZeroMinHalfClick(t *testing.T) {
	t.Parallel()

	job := qos.JobSpec{VrateMin: 0, VrateMax: 10, VrateIntvs: 5}
	plan := sweep.Plan(job, nil)

	click := 10.0 / 5
	last := plan.Points[len(plan.Points)-1]
	assert.InDelta(t, click, last.Min, 0.001)
}

func TestPlan_VrateFloorEnforced(t *testing.T) {
	t.Parallel()

	job := qos.JobSpec{VrateMin: 0.1, VrateMax: 2, VrateIntvs: 2}
	plan := sweep.Plan(job, nil)

	for _, p := range plan.Points {
		if p.Off {
			continue
		}
		assert.GreaterOrEqual(t, p.Min, qos.VrateFloor)
	}
}

func TestPlan_DitherReusesPriorDistance(t *testing.T) {
	t.Parallel()

	dist := 0.25
	job := qos.JobSpec{VrateMin: 1, VrateMax: 5, VrateIntvs: 5, Dither: true}
	prior := &qos.Record{DitherDist: &dist}

	plan := sweep.Plan(job, prior)

	require.NotNil(t, plan.DitherDist)
	assert.Equal(t, dist, *plan.DitherDist)
}

func TestPlan_DitherExplicitOverridesPrior(t *testing.T) {
	t.Parallel()

	explicit := 0.1
	priorDist := 0.9
	job := qos.JobSpec{VrateMin: 1, VrateMax: 5, VrateIntvs: 5, Dither: true, DitherDist: &explicit}
	prior := &qos.Record{DitherDist: &priorDist}

	plan := sweep.Plan(job, prior)

	require.NotNil(t, plan.DitherDist)
	assert.Equal(t, explicit, *plan.DitherDist)
}
