//go:build wireinject

package bootstrap

import (
	"context"

	"github.com/google/wire"

	appconfigwatch "github.com/kodflow/resctld/internal/application/configwatch"
	appkernelctl "github.com/kodflow/resctld/internal/application/kernelctl"
	appreporter "github.com/kodflow/resctld/internal/application/reporter"
	apprunner "github.com/kodflow/resctld/internal/application/runner"
	appsweep "github.com/kodflow/resctld/internal/application/sweep"
	domprocess "github.com/kodflow/resctld/internal/domain/process"
	balloonadapter "github.com/kodflow/resctld/internal/infrastructure/balloon/memhog"
	configwatchfile "github.com/kodflow/resctld/internal/infrastructure/configwatch/file"
	sysfskernel "github.com/kodflow/resctld/internal/infrastructure/kernelctl/sysfs"
	boltdb "github.com/kodflow/resctld/internal/infrastructure/persistence/storage/boltdb"
	processexecutor "github.com/kodflow/resctld/internal/infrastructure/process/executor"
	cgroupsampler "github.com/kodflow/resctld/internal/infrastructure/resources/cgroup"
	sliceapplycgroup "github.com/kodflow/resctld/internal/infrastructure/sliceapply/cgroup"
	sweepbenchprotection "github.com/kodflow/resctld/internal/infrastructure/sweepbench/protection"
	sweepbenchstorage "github.com/kodflow/resctld/internal/infrastructure/sweepbench/storage"
	sweepconfigwatcher "github.com/kodflow/resctld/internal/infrastructure/sweepconfig/watcher"
	unitd "github.com/kodflow/resctld/internal/infrastructure/svchandle/unitd"
)

// InitializeAgent documents the cmd/resctld dependency graph for `go
// generate` to expand into a checked-in wire_gen.go; BuildAgent in
// agent.go is that expansion, hand-authored because this repo's
// runner/reporter pair needs the pre-declare-then-close-over-a-pointer
// construction order Wire's generator cannot express (the reporter
// captures a *runner.Runner that does not exist until after the
// runner's own StartReporter closure is built).
func InitializeAgent(ctx context.Context, configPath string) (*Agent, error) {
	wire.Build(
		processexecutor.New,
		wire.Bind(new(domprocess.Executor), new(*processexecutor.Executor)),

		wire.Struct(new(unitd.Factory), "*"),
		wire.Bind(new(appconfigwatch.Watcher), new(*configwatchfile.Watcher)),
		configwatchfile.New,

		sysfskernel.New,
		wire.Bind(new(appkernelctl.Kernel), new(*sysfskernel.Kernel)),

		sliceapplycgroup.New,
		balloonadapter.New,
		cgroupsampler.NewSampler,

		apprunner.New,
		appreporter.New,

		wire.Struct(new(Agent), "*"),
	)
	return nil, nil
}

// InitializeSweep documents the cmd/resctl-bench dependency graph the
// same way: the hand-authored expansion is BuildSweep in sweep.go.
func InitializeSweep(configPath, jobSpecPath string) (*Sweep, error) {
	wire.Build(
		sysfskernel.New,
		wire.Bind(new(appkernelctl.Kernel), new(*sysfskernel.Kernel)),

		configwatchfile.New,
		sweepconfigwatcher.New,
		wire.Bind(new(appsweep.AgentConfig), new(*sweepconfigwatcher.Config)),

		sweepbenchstorage.New,
		wire.Bind(new(appsweep.StorageBench), new(*sweepbenchstorage.Bench)),
		sweepbenchprotection.New,
		wire.Bind(new(appsweep.ProtectionBench), new(*sweepbenchprotection.Bench)),

		boltdb.New,
		wire.Bind(new(appsweep.Store), new(*boltdb.Store)),

		appsweep.New,

		wire.Struct(new(Sweep), "*"),
	)
	return nil, nil
}
