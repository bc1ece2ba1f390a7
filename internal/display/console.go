// Package display renders a snapshot for the terminal. It is a pure
// consumer: it reads finished snapshots and has no influence on collection.
package display

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"sysmon/internal/model"
)

const (
	colorReset   = "\033[0m"
	colorHeader  = "\033[96m" // bright cyan
	colorError   = "\033[91m" // bright red
	clearScreen  = "\033[2J\033[H"
	timestampFmt = "2006-01-02 15:04:05"
)

type Renderer struct {
	topProcesses int
}

func New(topProcesses int) *Renderer {
	if topProcesses <= 0 {
		topProcesses = 20
	}
	return &Renderer{topProcesses: topProcesses}
}

// Render produces the full console view of one snapshot.
func (r *Renderer) Render(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(section("System Information"))
	p := snap.Platform
	fmt.Fprintf(&b, "OS:              %s %s\n", p.System, p.Release)
	fmt.Fprintf(&b, "Version:         %s\n", p.Version)
	fmt.Fprintf(&b, "Machine:         %s\n", p.Machine)
	fmt.Fprintf(&b, "Processor:       %s\n", p.Processor)
	fmt.Fprintf(&b, "Architecture:    %s\n", p.Architecture[0])
	fmt.Fprintf(&b, "Runtime:         %s\n", p.RuntimeVersion)

	b.WriteString(section("Hardware"))
	cpu := snap.Hardware.CPU
	fmt.Fprintf(&b, "CPU Cores:       %d physical / %d logical\n", cpu.PhysicalCores, cpu.TotalCores)
	fmt.Fprintf(&b, "CPU Usage:       %.1f%%\n", cpu.UsagePercent)
	if cpu.Frequency != nil {
		fmt.Fprintf(&b, "CPU Frequency:   %.0f MHz (min %.0f / max %.0f)\n",
			cpu.Frequency.Current, cpu.Frequency.Min, cpu.Frequency.Max)
	}
	memory := snap.Hardware.Memory
	fmt.Fprintf(&b, "Memory Total:    %s\n", humanize.Bytes(memory.Total))
	fmt.Fprintf(&b, "Memory Used:     %s (%.1f%%)\n", humanize.Bytes(memory.Used), memory.UsedPercent)
	fmt.Fprintf(&b, "Memory Avail:    %s\n", humanize.Bytes(memory.Available))

	b.WriteString(section("Network"))
	n := snap.Network
	fmt.Fprintf(&b, "Hostname:        %s\n", n.Hostname)
	fmt.Fprintf(&b, "IP Address:      %s\n", n.IPAddress)
	fmt.Fprintf(&b, "MAC Address:     %s\n", n.MACAddress)
	for _, name := range sortedKeys(n.Interfaces) {
		fmt.Fprintf(&b, "%s:\n", name)
		for _, addr := range n.Interfaces[name] {
			fmt.Fprintf(&b, "  - %s (%s)\n", addr.Address, addr.Family)
		}
	}

	b.WriteString(section("Disk Usage"))
	for _, device := range sortedKeys(snap.Hardware.Disk) {
		d := snap.Hardware.Disk[device]
		fmt.Fprintf(&b, "%s (%s) on %s\n", device, d.Filesystem, d.Mountpoint)
		fmt.Fprintf(&b, "  %s used of %s (%.1f%%), %s free\n",
			humanize.Bytes(d.Used), humanize.Bytes(d.Total), d.UsedPercent, humanize.Bytes(d.Free))
	}

	b.WriteString(section(fmt.Sprintf("Processes (%d total)", snap.Process.TotalProcesses)))
	b.WriteString(r.processTable(snap.Process.RunningProcesses))

	return b.String()
}

// RenderLive wraps Render with the live-view chrome: clear screen, last
// update line, auto-refresh state, and the last error when the shown
// snapshot is stale.
func (r *Renderer) RenderLive(snap *model.Snapshot, lastErr error, autoRefresh bool) string {
	var b strings.Builder
	b.WriteString(clearScreen)

	state := "on"
	if !autoRefresh {
		state = "off"
	}
	if snap == nil {
		fmt.Fprintf(&b, "Last Update: never  [auto-refresh: %s]\n", state)
	} else {
		fmt.Fprintf(&b, "Last Update: %s  [auto-refresh: %s]\n",
			snap.Timestamp.Format(timestampFmt), state)
	}
	if lastErr != nil {
		fmt.Fprintf(&b, "%srefresh failed: %v (showing last good snapshot)%s\n",
			colorError, lastErr, colorReset)
	}
	if snap != nil {
		b.WriteString(r.Render(snap))
	}
	b.WriteString("\ncommands: r=refresh  t=toggle auto-refresh  q=quit\n")
	return b.String()
}

// processTable renders the top processes by memory share, largest first.
func (r *Renderer) processTable(procs []model.ProcessInfo) string {
	sorted := make([]model.ProcessInfo, len(procs))
	copy(sorted, procs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MemoryPercent > sorted[j].MemoryPercent
	})
	if len(sorted) > r.topProcesses {
		sorted = sorted[:r.topProcesses]
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PID\tNAME\tUSER\tMEM%")
	for _, p := range sorted {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\n", p.PID, p.Name, p.Username, p.MemoryPercent)
	}
	w.Flush()
	return b.String()
}

func section(title string) string {
	return fmt.Sprintf("\n%s%s%s\n", colorHeader, title, colorReset)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
