// Package watcher adapts application/sweep.AgentConfig onto an
// application/configwatch.Watcher, grounded on the runner's own
// apply_cmd.go "compose then WriteBench, bump the matching seq" idiom
// (spec.md §4.8 step 1: "push a composed QoS into bench.json and
// nudge iocost_seq so the runner picks it up").
package watcher

import (
	"fmt"

	"github.com/kodflow/resctld/internal/application/configwatch"
	"github.com/kodflow/resctld/internal/domain/qos"
)

// Config implements application/sweep.AgentConfig over a
// configwatch.Watcher shared with the runner's own reconcile loop.
type Config struct {
	Watcher configwatch.Watcher
}

// New builds a Config wrapping w.
func New(w configwatch.Watcher) *Config {
	return &Config{Watcher: w}
}

// NudgeIOCost implements sweep.AgentConfig.
func (c *Config) NudgeIOCost(ovr qos.Override) error {
	snap, _, err := c.Watcher.Poll()
	if err != nil {
		return fmt.Errorf("reading current bench.json: %w", err)
	}

	bench := snap.Bench
	if !ovr.Off {
		bench.IOCost.QoS = qos.Compose(bench.IOCost.QoS, ovr)
	}
	bench.IocostSeq++

	if err := c.Watcher.WriteBench(bench); err != nil {
		return fmt.Errorf("writing nudged bench.json: %w", err)
	}
	return nil
}

// CurrentIOCostSeq implements sweep.AgentConfig.
func (c *Config) CurrentIOCostSeq() (uint64, error) {
	snap, _, err := c.Watcher.Poll()
	if err != nil {
		return 0, fmt.Errorf("reading bench.json: %w", err)
	}
	return snap.Bench.IocostSeq, nil
}
