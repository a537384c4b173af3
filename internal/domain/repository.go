package domain

// ConfigStore persists the desired state.
// Implementation: JSON file in the per-user data directory.
type ConfigStore interface {
	// Load returns the stored config, or defaults when the file is missing or corrupt.
	// It never fails.
	Load() Config

	// Save writes the config atomically (temp file + rename).
	Save(cfg Config) error

	// Path returns the config file path.
	Path() string
}

// InstanceLock guarantees one live supervisor per user.
type InstanceLock interface {
	// Acquire claims the lock, reclaiming it from dead owners.
	// Returns an error matching ErrAlreadyRunning when a live owner exists.
	Acquire() (LockHandle, error)

	// HolderPID returns the pid of the live owner, or 0.
	HolderPID() int
}

// LockHandle is returned by a successful Acquire.
type LockHandle interface {
	// Release removes the lock file. Safe to call multiple times.
	Release() error

	// PID returns the owner pid written to the lock file.
	PID() int
}

// ProcessTable inspects and signals OS processes.
// Implementation: uses gopsutil for cross-platform support.
type ProcessTable interface {
	// Snapshot lists running processes. Processes that vanish while being
	// inspected are left out rather than reported as errors.
	Snapshot() ([]ProcessDescriptor, error)

	// Terminate sends SIGTERM. A process that no longer exists is not an error.
	Terminate(pid int) error

	// Alive checks if a PID exists and is running.
	Alive(pid int) bool
}

// IdentityMatcher recognizes a helper among running processes.
type IdentityMatcher interface {
	Matches(p ProcessDescriptor) bool
	String() string
}

// HelperController starts, stops and detects the helper of one idle action.
// Start and Stop work by identity, never by a remembered handle, so state left
// by a previous supervisor run can be reconciled.
type HelperController interface {
	// IsRunning reports whether a matching helper is live. Inspection errors count as not running.
	IsRunning() bool

	// Start launches the helper detached from the supervisor. Errors wrap
	// ErrHelperNotFound or ErrSpawnFailed.
	Start(minutes int) (pid int, err error)

	// Stop terminates every matching helper. Nothing matching is a successful no-op.
	Stop() (stopped []int, err error)
}

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	// Run executes a command and waits for it to complete.
	Run(name string, args ...string) error

	// Output executes a command and returns its stdout.
	Output(name string, args ...string) ([]byte, error)

	// LookPath resolves a binary on PATH.
	LookPath(name string) (string, error)
}

// Notifier delivers desktop notifications. Delivery is best-effort: implementations
// swallow their own failures.
type Notifier interface {
	Notify(summary, body string)
}

// StatusReporter receives status updates for the presentation layer.
type StatusReporter interface {
	Report(s Status)
}
