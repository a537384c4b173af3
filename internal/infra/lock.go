package infra

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// PIDLock implements domain.InstanceLock with a pid file.
// Staleness is decided by probing the recorded pid, never by file age.
type PIDLock struct {
	path   string
	alive  func(pid int) bool
	logger *zap.Logger
}

// NewPIDLock creates a lock at path using a signal-0 liveness check.
func NewPIDLock(path string, logger *zap.Logger) *PIDLock {
	return &PIDLock{path: path, alive: IsProcessAlive, logger: logger}
}

// NewPIDLockWithLiveness creates a lock with a custom liveness check (for testing).
func NewPIDLockWithLiveness(path string, alive func(pid int) bool, logger *zap.Logger) *PIDLock {
	return &PIDLock{path: path, alive: alive, logger: logger}
}

// Acquire claims the lock for the current process.
func (l *PIDLock) Acquire() (domain.LockHandle, error) {
	self := os.Getpid()

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		pid, perr := parsePID(data)
		if perr == nil && pid != self && l.alive(pid) {
			return nil, &domain.AlreadyRunningError{PID: pid, LockPath: l.path}
		}
		l.logger.Info("reclaiming stale instance lock",
			zap.String("path", l.path),
			zap.String("content", strings.TrimSpace(string(data))))
		if rerr := os.Remove(l.path); rerr != nil && !os.IsNotExist(rerr) {
			return nil, fmt.Errorf("%w: remove stale lock %s: %v", domain.ErrLockPath, l.path, rerr)
		}
	case os.IsNotExist(err):
		// Free
	default:
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrLockPath, l.path, err)
	}

	// Last writer wins if another process races us between the check and the rename.
	content := strconv.Itoa(self) + "\n"
	if err := atomicWriteFile(l.path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", domain.ErrLockPath, l.path, err)
	}

	l.logger.Debug("instance lock acquired", zap.String("path", l.path), zap.Int("pid", self))
	return &pidLockHandle{path: l.path, pid: self, logger: l.logger}, nil
}

// HolderPID returns the pid of the live lock owner, or 0 when the lock is free or stale.
func (l *PIDLock) HolderPID() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0
	}
	pid, err := parsePID(data)
	if err != nil || !l.alive(pid) {
		return 0
	}
	return pid
}

// Path returns the lock file path.
func (l *PIDLock) Path() string {
	return l.path
}

type pidLockHandle struct {
	path   string
	pid    int
	logger *zap.Logger
	once   sync.Once
	err    error
}

func (h *pidLockHandle) PID() int {
	return h.pid
}

// Release removes the lock file if it still names this process.
func (h *pidLockHandle) Release() error {
	h.once.Do(func() {
		data, err := os.ReadFile(h.path)
		if err != nil {
			if !os.IsNotExist(err) {
				h.err = err
			}
			return
		}
		if pid, err := parsePID(data); err != nil || pid != h.pid {
			h.logger.Warn("instance lock taken over, leaving it in place",
				zap.String("path", h.path))
			return
		}
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			h.err = err
			return
		}
		h.logger.Debug("instance lock released", zap.String("path", h.path))
	})
	return h.err
}

func parsePID(data []byte) (int, error) {
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	if pid <= 0 || pid > math.MaxInt32 {
		return 0, fmt.Errorf("invalid pid %d", pid)
	}
	return pid, nil
}

// IsProcessAlive sends signal 0 to pid. EPERM means the process exists but
// belongs to someone else, which still counts as alive.
func IsProcessAlive(pid int) bool {
	if pid <= 0 || pid > math.MaxInt32 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Ensure PIDLock implements domain.InstanceLock.
var _ domain.InstanceLock = (*PIDLock)(nil)
