// Package main provides the entry point for resctld, the resource
// control agent (spec.md §1): it reconciles cgroup, kernel, and
// workload-lifecycle knobs against a JSON command file and reports
// back the resulting pressure/usage/latency telemetry (component C7
// "Runner" driving C1-C6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kodflow/resctld/internal/bootstrap"
)

var (
	version    = "dev"
	configPath string
)

func main() {
	flag.StringVar(&configPath, "config", "/etc/resctld/config.yaml", "path to agent configuration file")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("resctld %s\n", version)
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

	agent, err := bootstrap.BuildAgent(ctx, configPath)
	if err != nil {
		return fmt.Errorf("failed to build agent: %w", err)
	}
	defer func() { _ = agent.Logger.Close() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	runErr := make(chan error, 1)
	go func() { runErr <- agent.Runner.Run(ctx) }()

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				// Config reload is handled per-iteration by the runner's
				// own maybe_reload (spec.md §4.7 step 6); SIGHUP only
				// needs to nudge an operator-visible log line here.
				agent.Logger.Info("main", "signal", "received SIGHUP, reload is picked up on next reconcile", nil)
			case syscall.SIGTERM, syscall.SIGINT:
				agent.Runner.Stop()
				cancel()
				return <-runErr
			}
		case err := <-runErr:
			return err
		}
	}
}
