// Package collector queries the host OS for the four telemetry categories:
// platform identity, network identity, hardware utilization and the process
// census. Each category query either returns its record or a fatal error for
// that category; failures of individual sub-entries (one disk, one process,
// one interface) are dropped at the point of iteration and never surface.
package collector

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"

	"sysmon/internal/model"
)

type Collector struct {
	logger    logr.Logger
	cpuSample time.Duration

	// Seams at the per-item query points. Production uses the real OS
	// queries; tests swap these to force item-level failures.
	partitions func(ctx context.Context) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	procCount  func() (int, error)
	procList   func(ctx context.Context) ([]*process.Process, error)
	procInfo   func(ctx context.Context, p *process.Process) (model.ProcessInfo, error)
}

// New returns a Collector. cpuSample is the blocking window used to compute
// the instantaneous CPU usage rate; it is the only long-running step of a
// collection cycle.
func New(logger logr.Logger, cpuSample time.Duration) *Collector {
	if cpuSample <= 0 {
		cpuSample = time.Second
	}
	return &Collector{
		logger:    logger.WithName("collector"),
		cpuSample: cpuSample,
		partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, false)
		},
		usage:     disk.UsageWithContext,
		procCount: countProcesses,
		procList:  process.ProcessesWithContext,
		procInfo:  readProcessInfo,
	}
}
