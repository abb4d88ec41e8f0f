package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/kodflow/resctld/internal/domain/benchknobs"
	"github.com/kodflow/resctld/internal/domain/qos"
)

// Driver orchestrates one sweep invocation end to end: plan, dedup
// against the prior record, execute each planned point, validate, and
// study (spec.md §4.8).
type Driver struct {
	deps   Deps
	device string
}

// New returns a Driver that validates applied QoS against device's
// io.cost.qos file.
func New(deps Deps, device string) *Driver {
	return &Driver{deps: deps, device: device}
}

// Run executes job against the given base model/QoS/memory profile,
// returning the finalized Record.
func (d *Driver) Run(ctx context.Context, job qos.JobSpec, baseModel benchknobs.Model, baseQoS benchknobs.QoS, memProfile uint64) (*qos.Record, error) {
	prior, err := d.deps.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading prior sweep record: %w", err)
	}
	if !prior.Matches(baseModel, baseQoS, memProfile) {
		prior = nil
	}

	plan := Plan(job, prior)

	rec := qos.Record{
		BaseModel:  baseModel,
		BaseQoS:    baseQoS,
		MemProfile: memProfile,
		DitherDist: plan.DitherDist,
	}
	if prior != nil {
		rec.IncRuns = prior.IncRuns
	}

	rec.Runs = make([]*qos.RecordRun, len(plan.Points))
	for i, ovr := range plan.Points {
		if ovr.Skip {
			continue
		}
		if cached := findCached(rec.IncRuns, ovr); cached != nil {
			rec.Runs[i] = cached
			continue
		}

		run, err := d.executeOne(ctx, job, baseQoS, ovr)
		if err != nil {
			if job.AllowFail {
				d.logWarn("sweep", "point failed, continuing (allow_fail)", err)
				continue
			}
			return nil, fmt.Errorf("executing qos point %+v: %w", ovr, err)
		}
		rec.IncRuns = append(rec.IncRuns, *run)
		if err := d.deps.Store.SaveIncremental(rec); err != nil {
			d.logWarn("sweep", "persisting incremental snapshot failed", err)
		}
		rec.Runs[i] = run
	}
	rec.IncRuns = nil

	if err := d.deps.Store.SaveFinal(rec); err != nil {
		return nil, fmt.Errorf("persisting final sweep record: %w", err)
	}
	return &rec, nil
}

// findCached returns a previously-completed run matching ovr, if any
// (spec.md §4.8 "Dedup and caching": "if a matching run already
// exists... reuse it").
func findCached(incRuns []qos.RecordRun, ovr qos.Override) *qos.RecordRun {
	for i := range incRuns {
		if incRuns[i].Ovr.Equal(ovr) {
			return &incRuns[i]
		}
	}
	return nil
}

// executeOne runs the full point-execution sequence (spec.md §4.8
// "Execution of one planned point").
func (d *Driver) executeOne(ctx context.Context, job qos.JobSpec, baseQoS benchknobs.QoS, ovr qos.Override) (*qos.RecordRun, error) {
	var applied *benchknobs.QoS
	if !ovr.Off {
		composed := qos.Compose(baseQoS, ovr)
		applied = &composed
		if err := d.deps.Config.NudgeIOCost(ovr); err != nil {
			return nil, fmt.Errorf("nudging agent to apply qos: %w", err)
		}
	}

	storageResult, period, err := d.runStorageWithRetries(ctx, ovr, job.Retries)
	if err != nil {
		return nil, err
	}

	if applied != nil {
		readBack, err := d.deps.Kernel.ReadIOCostQoS(d.device)
		if err != nil {
			return nil, fmt.Errorf("reading back applied qos: %w", err)
		}
		if !readBack.Equal(*applied) {
			return nil, fmt.Errorf("applied qos diverged from target: got %+v, want %+v", readBack, *applied)
		}
	}

	protFailed := false
	var adjSize *float64
	protResult, err := d.deps.Protection.Run(ctx, int64(float64(storageResult.MemSize)*storageResult.MemShare*4/5), storageResult.MemSize, job.IsolPct, job.IsolThr)
	if err != nil || protResult.FinalSize == nil {
		protFailed = true
	} else {
		f := float64(*protResult.FinalSize)
		adjSize = &f
	}

	vrate, readLat, writeLat, err := d.deps.Study.Study(period)
	if err != nil {
		return nil, fmt.Errorf("studying report period: %w", err)
	}

	run := &qos.RecordRun{
		Period:           period,
		Ovr:              ovr,
		QoSApplied:       applied,
		VRate:            vrate,
		ReadLat:          readLat,
		WriteLat:         writeLat,
		ProtectionFailed: protFailed,
	}
	if adjSize != nil {
		amof := *adjSize / storageResult.MemUsage
		delta := storageResult.MemOffloadFactor - amof
		fullSize := int64(*adjSize)
		run.AdjustedMemSize = &fullSize
		run.AdjustedMOF = &amof
		run.AdjustedMOFDelta = &delta
	}
	return run, nil
}

// runStorageWithRetries retries the storage sub-benchmark up to
// retries times, each attempt implicitly restarting the agent's
// benchmark service on exit (spec.md §4.8 step 2: "Each attempt stops
// the agent on exit. Exhaustion returns an error").
func (d *Driver) runStorageWithRetries(ctx context.Context, ovr qos.Override, retries int) (StorageResult, qos.Period, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		start := time.Now().Unix()
		res, err := d.deps.Storage.Run(ctx, ovr)
		if err == nil {
			return res, qos.Period{Start: start, End: time.Now().Unix()}, nil
		}
		lastErr = err
		d.logWarn("sweep", fmt.Sprintf("storage bench attempt %d/%d failed", attempt+1, retries+1), err)
	}
	return StorageResult{}, qos.Period{}, fmt.Errorf("storage bench exhausted %d retries: %w", retries, lastErr)
}

func (d *Driver) logWarn(eventType, msg string, err error) {
	if d.deps.Logger == nil {
		return
	}
	meta := map[string]any{}
	if err != nil {
		meta["error"] = err.Error()
	}
	d.deps.Logger.Warn("sweep", eventType, msg, meta)
}
