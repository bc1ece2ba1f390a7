// Package manager runs one collection cycle: all four category queries plus
// assembly into a single immutable Snapshot.
package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"sysmon/internal/model"
)

// Source provides the four category queries. Satisfied by
// collector.Collector; tests substitute stubs.
type Source interface {
	Platform(ctx context.Context) (model.PlatformData, error)
	Network(ctx context.Context) (model.NetworkData, error)
	Hardware(ctx context.Context) (model.HardwareData, error)
	Process(ctx context.Context) (model.ProcessData, error)
}

// CategoryError names the telemetry category whose collection failed and
// wraps the underlying cause. It is the failure arm of a collection cycle's
// result: the cycle produced either a complete Snapshot or one of these.
type CategoryError struct {
	Category string
	Err      error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s collector: %v", e.Category, e.Err)
}

func (e *CategoryError) Unwrap() error { return e.Err }

type Manager struct {
	source Source
	logger logr.Logger
}

func New(source Source, logger logr.Logger) *Manager {
	return &Manager{
		source: source,
		logger: logger.WithName("manager"),
	}
}

// Collect runs one cycle and returns a fully populated Snapshot, or a
// *CategoryError naming the collector that failed. Collectors run in a fixed
// order: platform, network, hardware, process. The timestamp is taken before
// any collector runs so it bounds the cycle's as-of time. There is no
// caching and no retry; the next cycle retries naturally.
func (m *Manager) Collect(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()

	platform, err := m.source.Platform(ctx)
	if err != nil {
		return nil, &CategoryError{Category: "platform", Err: err}
	}
	network, err := m.source.Network(ctx)
	if err != nil {
		return nil, &CategoryError{Category: "network", Err: err}
	}
	hardware, err := m.source.Hardware(ctx)
	if err != nil {
		return nil, &CategoryError{Category: "hardware", Err: err}
	}
	proc, err := m.source.Process(ctx)
	if err != nil {
		return nil, &CategoryError{Category: "process", Err: err}
	}

	snap := model.Assemble(start, platform, network, hardware, proc)

	m.logger.V(1).Info("collection cycle complete",
		"elapsed", time.Since(start),
		"processes", len(snap.Process.RunningProcesses),
		"disks", len(snap.Hardware.Disk),
	)
	return snap, nil
}
