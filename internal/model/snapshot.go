package model

import "time"

// Snapshot is one complete capture of all telemetry categories. It is built
// once per collection cycle and never modified afterwards; a new cycle
// produces a new Snapshot that supersedes the previous one.
type Snapshot struct {
	Timestamp time.Time    `json:"timestamp"`
	Platform  PlatformData `json:"platform"`
	Network   NetworkData  `json:"network"`
	Hardware  HardwareData `json:"hardware"`
	Process   ProcessData  `json:"process"`
}

// Assemble combines the four category records captured in one cycle with the
// cycle's capture timestamp. Pure combination: no I/O, no failure modes.
func Assemble(ts time.Time, platform PlatformData, network NetworkData, hardware HardwareData, process ProcessData) *Snapshot {
	return &Snapshot{
		Timestamp: ts,
		Platform:  platform,
		Network:   network,
		Hardware:  hardware,
		Process:   process,
	}
}

type PlatformData struct {
	System         string    `json:"system"`
	Release        string    `json:"release"`
	Version        string    `json:"version"`
	Machine        string    `json:"machine"`
	Processor      string    `json:"processor"`
	Architecture   [2]string `json:"architecture"`
	RuntimeVersion string    `json:"runtime_version"`
}

type NetworkData struct {
	Hostname   string                      `json:"hostname"`
	IPAddress  string                      `json:"ip_address"`
	MACAddress string                      `json:"mac_address"`
	Interfaces map[string][]NetworkAddress `json:"network_interfaces"`
}

// NetworkAddress is one address bound to an interface. Addresses keep the
// order the OS enumerated them in.
type NetworkAddress struct {
	Address string `json:"address"`
	Netmask string `json:"netmask,omitempty"`
	Family  string `json:"family"`
}

type HardwareData struct {
	CPU    CPUData              `json:"cpu"`
	Memory MemoryData           `json:"memory"`
	Disk   map[string]DiskUsage `json:"disk"`
}

type CPUData struct {
	PhysicalCores int `json:"physical_cores"`
	TotalCores    int `json:"total_cores"`
	// Frequency is nil when the platform cannot report it.
	Frequency    *CPUFrequency `json:"frequency,omitempty"`
	UsagePercent float64       `json:"current_usage"`
}

// CPUFrequency values are in MHz.
type CPUFrequency struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type MemoryData struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"percent"`
}

// DiskUsage describes one mounted device. Devices whose usage could not be
// read are left out of HardwareData.Disk entirely.
type DiskUsage struct {
	Mountpoint  string  `json:"mountpoint"`
	Filesystem  string  `json:"filesystem"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"percent"`
}

// ProcessData carries the process census. TotalProcesses comes from a
// separate enumeration pass than RunningProcesses, so the two can disagree
// when processes appear or vanish between the passes.
type ProcessData struct {
	TotalProcesses   int           `json:"total_processes"`
	RunningProcesses []ProcessInfo `json:"running_processes"`
}

type ProcessInfo struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	Username      string  `json:"username"`
	MemoryPercent float64 `json:"memory_percent"`
}
