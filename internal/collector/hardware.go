package collector

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"sysmon/internal/model"
)

// Hardware reads CPU, memory and disk utilization. The CPU usage sample
// blocks for the configured window; this is the one deliberate suspension
// point of a collection cycle. A disk whose usage cannot be read is left out
// of the map; a missing frequency report leaves Frequency nil. Everything
// else failing is fatal for the category.
func (c *Collector) Hardware(ctx context.Context) (model.HardwareData, error) {
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return model.HardwareData{}, fmt.Errorf("counting physical cores: %w", err)
	}
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return model.HardwareData{}, fmt.Errorf("counting logical cores: %w", err)
	}

	usage, err := cpu.PercentWithContext(ctx, c.cpuSample, false)
	if err != nil {
		return model.HardwareData{}, fmt.Errorf("sampling cpu usage: %w", err)
	}
	var usagePercent float64
	if len(usage) > 0 {
		usagePercent = usage[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.HardwareData{}, fmt.Errorf("reading virtual memory: %w", err)
	}

	disks, err := c.diskUsage(ctx)
	if err != nil {
		return model.HardwareData{}, err
	}

	return model.HardwareData{
		CPU: model.CPUData{
			PhysicalCores: physical,
			TotalCores:    logical,
			Frequency:     c.cpuFrequency(ctx),
			UsagePercent:  usagePercent,
		},
		Memory: model.MemoryData{
			Total:       vm.Total,
			Available:   vm.Available,
			Used:        vm.Used,
			UsedPercent: vm.UsedPercent,
		},
		Disk: disks,
	}, nil
}

// diskUsage maps device -> usage for every mounted partition. Partition
// enumeration failing is fatal; a single unreadable mountpoint is skipped.
func (c *Collector) diskUsage(ctx context.Context) (map[string]model.DiskUsage, error) {
	parts, err := c.partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating disk partitions: %w", err)
	}

	disks := make(map[string]model.DiskUsage, len(parts))
	for _, part := range parts {
		usage, err := c.usage(ctx, part.Mountpoint)
		if err != nil {
			c.logger.V(1).Info("skipping disk", "device", part.Device, "mountpoint", part.Mountpoint, "error", err)
			continue
		}
		disks[part.Device] = model.DiskUsage{
			Mountpoint:  part.Mountpoint,
			Filesystem:  part.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		}
	}
	return disks, nil
}

// cpuFrequency reports the current/min/max frequency triple, or nil when the
// platform cannot report it. Current comes from the CPU info table; min and
// max come from cpufreq sysfs where available.
func (c *Collector) cpuFrequency(ctx context.Context) *model.CPUFrequency {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 || infos[0].Mhz <= 0 {
		c.logger.V(1).Info("cpu frequency unavailable", "error", err)
		return nil
	}

	freq := &model.CPUFrequency{Current: infos[0].Mhz}
	freq.Min = readFreqMHz(
		"/sys/devices/system/cpu/cpu0/cpufreq/cpuinfo_min_freq",
		"/sys/devices/system/cpu/cpu0/cpufreq/scaling_min_freq",
	)
	freq.Max = readFreqMHz(
		"/sys/devices/system/cpu/cpu0/cpufreq/bios_limit",
		"/sys/devices/system/cpu/cpu0/cpufreq/cpuinfo_max_freq",
		"/sys/devices/system/cpu/cpu0/cpufreq/scaling_max_freq",
	)
	if freq.Max == 0 {
		freq.Max = freq.Current
	}
	return freq
}

// readFreqMHz reads the first readable cpufreq file. Values are in kHz.
func readFreqMHz(paths ...string) float64 {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		khz, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			continue
		}
		return float64(khz) / 1000.0
	}
	return 0
}
