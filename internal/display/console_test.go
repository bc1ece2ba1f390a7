package display_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sysmon/internal/display"
	"sysmon/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Timestamp: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Platform:  model.PlatformData{System: "linux", Release: "6.1.0"},
		Network: model.NetworkData{
			Hostname:   "testhost",
			IPAddress:  "10.0.0.2",
			MACAddress: "aa:bb:cc:dd:ee:ff",
			Interfaces: map[string][]model.NetworkAddress{
				"eth0": {{Address: "10.0.0.2", Family: "inet"}},
			},
		},
		Hardware: model.HardwareData{
			CPU:    model.CPUData{PhysicalCores: 4, TotalCores: 8, UsagePercent: 42},
			Memory: model.MemoryData{Total: 16_000_000_000, Used: 8_000_000_000, UsedPercent: 50},
			Disk: map[string]model.DiskUsage{
				"/dev/sda1": {Mountpoint: "/", Filesystem: "ext4", Total: 100, Used: 55, UsedPercent: 55},
			},
		},
		Process: model.ProcessData{
			TotalProcesses: 3,
			RunningProcesses: []model.ProcessInfo{
				{PID: 1, Name: "init", Username: "root", MemoryPercent: 0.5},
				{PID: 42, Name: "hog", Username: "web", MemoryPercent: 12.5},
				{PID: 43, Name: "idle", Username: "web", MemoryPercent: 0.1},
			},
		},
	}
}

func TestRenderContainsAllSections(t *testing.T) {
	out := display.New(20).Render(sampleSnapshot())

	assert.Contains(t, out, "System Information")
	assert.Contains(t, out, "Hardware")
	assert.Contains(t, out, "Network")
	assert.Contains(t, out, "Disk Usage")
	assert.Contains(t, out, "Processes (3 total)")
	assert.Contains(t, out, "testhost")
	assert.Contains(t, out, "aa:bb:cc:dd:ee:ff")
	assert.Contains(t, out, "/dev/sda1")
}

func TestProcessTableSortedAndTruncated(t *testing.T) {
	out := display.New(2).Render(sampleSnapshot())

	// Heaviest process first, table cut at the configured size.
	assert.Contains(t, out, "hog")
	assert.Contains(t, out, "init")
	assert.NotContains(t, out, "idle")
	assert.Less(t, strings.Index(out, "hog"), strings.Index(out, "init"))
}

func TestRenderLiveBeforeFirstSnapshot(t *testing.T) {
	out := display.New(20).RenderLive(nil, nil, true)
	assert.Contains(t, out, "Last Update: never")
	assert.Contains(t, out, "auto-refresh: on")
}

func TestRenderLiveShowsFailureBanner(t *testing.T) {
	out := display.New(20).RenderLive(sampleSnapshot(), assert.AnError, false)
	assert.Contains(t, out, "refresh failed")
	assert.Contains(t, out, "auto-refresh: off")
	// Last-known-good snapshot still renders under the banner.
	assert.Contains(t, out, "testhost")
}
