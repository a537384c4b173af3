package infra

import (
	"errors"
	"os"
	"syscall"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// ProcessTableImpl implements domain.ProcessTable using gopsutil.
type ProcessTableImpl struct {
	self int
}

// NewProcessTable creates a process table that hides the current process.
func NewProcessTable() *ProcessTableImpl {
	return &ProcessTableImpl{self: os.Getpid()}
}

// Snapshot lists live processes with their name and command line.
func (t *ProcessTableImpl) Snapshot() ([]domain.ProcessDescriptor, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	found := make([]domain.ProcessDescriptor, 0, len(procs))
	for _, p := range procs {
		if int(p.Pid) == t.self {
			continue
		}

		name, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}

		if status, err := p.Status(); err == nil && lo.Contains(status, process.Zombie) {
			continue
		}

		// Some processes hide their argv (kernel threads, other users); the name still identifies them.
		cmdline, _ := p.Cmdline()

		found = append(found, domain.ProcessDescriptor{
			PID:     int(p.Pid),
			Name:    name,
			Cmdline: cmdline,
		})
	}

	return found, nil
}

// Terminate sends SIGTERM to pid.
func (t *ProcessTableImpl) Terminate(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return err
	}
	if err := p.Terminate(); err != nil {
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return err
	}
	return nil
}

// Alive checks if a PID exists and is running.
func (t *ProcessTableImpl) Alive(pid int) bool {
	return IsProcessAlive(pid)
}

// FindMatching returns the pids of processes accepted by m.
// Enumeration failure is reported as "nothing found" because callers treat
// inspection problems as not running.
func FindMatching(table domain.ProcessTable, m domain.IdentityMatcher) []int {
	procs, err := table.Snapshot()
	if err != nil {
		return nil
	}
	matched := lo.Filter(procs, func(p domain.ProcessDescriptor, _ int) bool {
		return m.Matches(p)
	})
	return lo.Map(matched, func(p domain.ProcessDescriptor, _ int) int {
		return p.PID
	})
}

// Ensure ProcessTableImpl implements domain.ProcessTable.
var _ domain.ProcessTable = (*ProcessTableImpl)(nil)
