package collector

import (
	"context"
	"fmt"

	ps "github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v3/process"

	"sysmon/internal/model"
)

// Process takes the process census. The total count and the detailed list
// come from two independent enumeration passes; with real process churn the
// two can legitimately disagree, and the count is reported as seen by the
// first pass. A process that exits, denies access or turns zombie while its
// details are being read is dropped from the list, never failing the cycle.
func (c *Collector) Process(ctx context.Context) (model.ProcessData, error) {
	total, err := c.procCount()
	if err != nil {
		return model.ProcessData{}, err
	}

	procs, err := c.procList(ctx)
	if err != nil {
		return model.ProcessData{}, fmt.Errorf("enumerating processes: %w", err)
	}

	running := make([]model.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		info, err := c.procInfo(ctx, p)
		if err != nil {
			continue
		}
		running = append(running, info)
	}

	return model.ProcessData{
		TotalProcesses:   total,
		RunningProcesses: running,
	}, nil
}

// countProcesses is the cheap first pass behind TotalProcesses.
func countProcesses() (int, error) {
	all, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("counting processes: %w", err)
	}
	return len(all), nil
}

// readProcessInfo reads one process's details. A name or memory read failing
// means the process is gone or unreadable and the entry is dropped; username
// is allowed to be absent (e.g. the uid has no passwd entry) and that alone
// does not drop the process.
func readProcessInfo(ctx context.Context, p *process.Process) (model.ProcessInfo, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return model.ProcessInfo{}, err
	}
	memPercent, err := p.MemoryPercentWithContext(ctx)
	if err != nil {
		return model.ProcessInfo{}, err
	}
	username, err := p.UsernameWithContext(ctx)
	if err != nil {
		username = ""
	}

	return model.ProcessInfo{
		PID:           p.Pid,
		Name:          name,
		Username:      username,
		MemoryPercent: float64(memPercent),
	}, nil
}
