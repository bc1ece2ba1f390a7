package collector_test

import (
	"context"
	"net"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmon/internal/collector"
)

func newTestCollector(t *testing.T) *collector.Collector {
	// Short CPU sample keeps the hardware test fast; production default is 1s.
	return collector.New(testr.New(t), 50*time.Millisecond)
}

func TestPlatform(t *testing.T) {
	c := newTestCollector(t)

	pd, err := c.Platform(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, pd.System)
	assert.NotEmpty(t, pd.Release)
	assert.NotEmpty(t, pd.Machine)
	assert.NotEmpty(t, pd.Processor)
	assert.NotEmpty(t, pd.Architecture[0])
	assert.NotEmpty(t, pd.Architecture[1])
	assert.Equal(t, runtime.Version(), pd.RuntimeVersion)
}

func TestNetwork(t *testing.T) {
	ifaces, err := net.Interfaces()
	require.NoError(t, err)
	if !hasUsableInterface(ifaces) {
		t.Skip("no non-loopback interface with a global unicast IPv4 address")
	}

	c := newTestCollector(t)
	nd, err := c.Network(context.Background())
	require.NoError(t, err)

	hostname, err := os.Hostname()
	require.NoError(t, err)
	assert.Equal(t, hostname, nd.Hostname)

	assert.NotEmpty(t, nd.IPAddress)
	assert.NotNil(t, net.ParseIP(nd.IPAddress))
	assert.Regexp(t, `^([0-9a-f]{2}:)+[0-9a-f]{2}$`, nd.MACAddress)

	require.NotNil(t, nd.Interfaces)
	assert.NotEmpty(t, nd.Interfaces)
	for name, addrs := range nd.Interfaces {
		assert.NotEmpty(t, name)
		for _, addr := range addrs {
			assert.NotEmpty(t, addr.Address)
			assert.Contains(t, []string{"inet", "inet6", "link"}, addr.Family)
		}
	}
}

// The MAC falls back to a derived identifier on loopback-only hosts, so only
// the primary IPv4 lookup still needs a real interface.
func hasUsableInterface(ifaces []net.Interface) bool {
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil && ipnet.IP.IsGlobalUnicast() {
				return true
			}
		}
	}
	return false
}

func TestHardware(t *testing.T) {
	c := newTestCollector(t)

	start := time.Now()
	hw, err := c.Hardware(context.Background())
	require.NoError(t, err)

	// The CPU usage sample is the deliberate blocking point of a cycle.
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	assert.GreaterOrEqual(t, hw.CPU.PhysicalCores, 1)
	assert.GreaterOrEqual(t, hw.CPU.TotalCores, hw.CPU.PhysicalCores)
	assert.GreaterOrEqual(t, hw.CPU.UsagePercent, 0.0)
	assert.LessOrEqual(t, hw.CPU.UsagePercent, 100.0)
	if hw.CPU.Frequency != nil {
		assert.Greater(t, hw.CPU.Frequency.Current, 0.0)
	}

	assert.Greater(t, hw.Memory.Total, uint64(0))
	assert.LessOrEqual(t, hw.Memory.Used, hw.Memory.Total)
	assert.GreaterOrEqual(t, hw.Memory.UsedPercent, 0.0)
	assert.LessOrEqual(t, hw.Memory.UsedPercent, 100.0)

	require.NotNil(t, hw.Disk)
	for device, usage := range hw.Disk {
		assert.NotEmpty(t, device)
		assert.NotEmpty(t, usage.Mountpoint)
		assert.LessOrEqual(t, usage.Used, usage.Total)
	}
}

func TestProcess(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); os.IsNotExist(err) && runtime.GOOS == "linux" {
		t.Skip("/proc not available")
	}

	c := newTestCollector(t)
	pd, err := c.Process(context.Background())
	require.NoError(t, err)

	assert.Greater(t, pd.TotalProcesses, 0)
	require.NotEmpty(t, pd.RunningProcesses)
	for _, proc := range pd.RunningProcesses {
		assert.Greater(t, proc.PID, int32(0))
		assert.NotEmpty(t, proc.Name)
		assert.GreaterOrEqual(t, proc.MemoryPercent, 0.0)
	}
}
