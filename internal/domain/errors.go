package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigCorrupt means the config file could not be parsed; defaults were used.
	ErrConfigCorrupt = errors.New("config corrupt")

	// ErrAlreadyRunning means another live supervisor owns the instance lock.
	ErrAlreadyRunning = errors.New("another instance is already running")

	// ErrLockPath means the lock file itself cannot be created or written.
	ErrLockPath = errors.New("instance lock path unusable")

	// ErrInvalidInput means the user supplied a duration that is not a positive integer.
	ErrInvalidInput = errors.New("invalid input")

	// ErrHelperNotFound means the helper binary is not installed.
	ErrHelperNotFound = errors.New("helper not found")

	// ErrSpawnFailed means the helper binary exists but could not be started.
	ErrSpawnFailed = errors.New("helper spawn failed")

	// ErrPersistFailed means the config could not be written to disk.
	ErrPersistFailed = errors.New("persist failed")
)

// AlreadyRunningError carries the pid of the live lock owner.
type AlreadyRunningError struct {
	PID      int
	LockPath string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("another instance is already running (PID %d, lock %s)", e.PID, e.LockPath)
}

// Is makes errors.Is(err, ErrAlreadyRunning) hold.
func (e *AlreadyRunningError) Is(target error) bool {
	return target == ErrAlreadyRunning
}
