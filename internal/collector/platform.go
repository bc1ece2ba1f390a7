package collector

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/host"

	"sysmon/internal/model"
)

// Platform reads the host identity. It re-reads every cycle even though the
// values barely change; the query is cheap and keeps the snapshot uniform.
func (c *Collector) Platform(ctx context.Context) (model.PlatformData, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return model.PlatformData{}, fmt.Errorf("querying host info: %w", err)
	}

	version := info.Platform
	if info.PlatformVersion != "" {
		version = info.Platform + " " + info.PlatformVersion
	}

	return model.PlatformData{
		System:         info.OS,
		Release:        info.KernelVersion,
		Version:        version,
		Machine:        machineArch(info.KernelArch),
		Processor:      c.processorModel(),
		Architecture:   [2]string{strconv.Itoa(strconv.IntSize) + "bit", binaryFormat()},
		RuntimeVersion: runtime.Version(),
	}, nil
}

// processorModel resolves the CPU model string. ghw needs sysfs/DMI access;
// when it cannot deliver, the architecture name is close enough.
func (c *Collector) processorModel() string {
	cpuInfo, err := ghw.CPU()
	if err != nil || len(cpuInfo.Processors) == 0 {
		c.logger.V(1).Info("processor model unavailable, using architecture", "error", err)
		return runtime.GOARCH
	}
	return cpuInfo.Processors[0].Model
}

func machineArch(kernelArch string) string {
	if kernelArch != "" {
		return kernelArch
	}
	if runtime.GOARCH == "amd64" {
		return "x86_64"
	}
	return runtime.GOARCH
}

func binaryFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "Mach-O"
	case "windows":
		return "PE"
	default:
		return "ELF"
	}
}
