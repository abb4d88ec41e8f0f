// Package main provides the entry point for resctl-bench, the QoS
// sweep driver (spec.md §4.8, component C8): a standalone process that
// plans a set of io.cost QoS points against a running resctld agent,
// executes each through the storage/protection sub-benchmarks, and
// studies the resulting reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kodflow/resctld/internal/bootstrap"
)

var (
	version     = "dev"
	configPath  string
	jobSpecPath string
)

func main() {
	flag.StringVar(&configPath, "config", "/etc/resctl-bench/config.yaml", "path to sweep driver configuration file")
	flag.StringVar(&jobSpecPath, "job-spec", "", "path to the YAML job spec (overrides config's job_spec)")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("resctl-bench %s\n", version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()

	sw, err := bootstrap.BuildSweep(configPath, jobSpecPath)
	if err != nil {
		return fmt.Errorf("failed to build sweep driver: %w", err)
	}
	defer func() { _ = sw.Logger.Close() }()

	// The base model/QoS/memory profile are the agent's currently
	// applied values (spec.md §4.8 "Input": "the agent's
	// currently-applied model/QoS as the base point"), read off the
	// same bench.json the running resctld instance maintains.
	snap, err := sw.Watcher.Load()
	if err != nil {
		return fmt.Errorf("reading running agent's bench.json: %w", err)
	}

	rec, err := sw.Driver.Run(ctx, sw.Job, snap.Bench.IOCost.Model, snap.Bench.IOCost.QoS, snap.Bench.Hashd.MemProfile)
	if err != nil {
		return fmt.Errorf("sweep run failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
