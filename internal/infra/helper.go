package infra

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// Spawner launches a detached process and returns its pid.
type Spawner func(path string, args []string) (int, error)

// ProcessHelper implements domain.HelperController for long-running helpers
// recognized in the process table by identity.
type ProcessHelper struct {
	spec     domain.HelperSpec
	matcher  domain.IdentityMatcher
	table    domain.ProcessTable
	lookPath func(string) (string, error)
	spawn    Spawner
	logger   *zap.Logger
}

// NewProcessHelper creates a controller that spawns real detached processes.
func NewProcessHelper(spec domain.HelperSpec, table domain.ProcessTable, logger *zap.Logger) *ProcessHelper {
	return NewProcessHelperWithDeps(spec, table, exec.LookPath, SpawnDetached, logger)
}

// NewProcessHelperWithDeps creates a controller with injectable dependencies (for testing).
func NewProcessHelperWithDeps(
	spec domain.HelperSpec,
	table domain.ProcessTable,
	lookPath func(string) (string, error),
	spawn Spawner,
	logger *zap.Logger,
) *ProcessHelper {
	return &ProcessHelper{
		spec:     spec,
		matcher:  MatcherFromSpec(spec),
		table:    table,
		lookPath: lookPath,
		spawn:    spawn,
		logger:   logger,
	}
}

// IsRunning reports whether any process matches the helper identity.
func (h *ProcessHelper) IsRunning() bool {
	return len(FindMatching(h.table, h.matcher)) > 0
}

// Start launches the helper with the given duration. A matching instance that is
// already running is stopped first so the new duration takes effect.
func (h *ProcessHelper) Start(minutes int) (int, error) {
	argv := ExpandCommand(h.spec.Command, minutes)
	if len(argv) == 0 {
		return 0, fmt.Errorf("%w: empty helper command", domain.ErrHelperNotFound)
	}

	path, err := h.lookPath(argv[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrHelperNotFound, argv[0], err)
	}

	if stopped, err := h.Stop(); err != nil {
		h.logger.Warn("could not stop previous helper instance",
			zap.Stringer("identity", h.matcher), zap.Error(err))
	} else if len(stopped) > 0 {
		h.logger.Info("replaced running helper instance",
			zap.Stringer("identity", h.matcher), zap.Ints("pids", stopped))
	}

	pid, err := h.spawn(path, argv[1:])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrSpawnFailed, argv[0], err)
	}

	h.logger.Info("helper started",
		zap.String("command", strings.Join(argv, " ")),
		zap.Int("pid", pid))
	return pid, nil
}

// Stop terminates every process matching the helper identity.
func (h *ProcessHelper) Stop() ([]int, error) {
	var (
		stopped []int
		errs    error
	)
	for _, pid := range FindMatching(h.table, h.matcher) {
		if err := h.table.Terminate(pid); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("terminate %d: %w", pid, err))
			continue
		}
		stopped = append(stopped, pid)
	}

	if len(stopped) > 0 {
		h.logger.Info("helper stopped",
			zap.Stringer("identity", h.matcher), zap.Ints("pids", stopped))
	}
	return stopped, errs
}

// Identity returns the matcher used to recognize the helper.
func (h *ProcessHelper) Identity() domain.IdentityMatcher {
	return h.matcher
}

// ExpandCommand substitutes {minutes} and {seconds} in every argument.
func ExpandCommand(tmpl []string, minutes int) []string {
	r := strings.NewReplacer(
		"{minutes}", strconv.Itoa(minutes),
		"{seconds}", strconv.Itoa(minutes*60),
	)
	out := make([]string, len(tmpl))
	for i, arg := range tmpl {
		out[i] = r.Replace(arg)
	}
	return out
}

// SpawnDetached starts a process in its own session with no stdio so it outlives us.
// The child is reaped in the background; nothing waits on it.
func SpawnDetached(path string, args []string) (int, error) {
	cmd := exec.Command(path, args...)

	// Create new session (detach from terminal and from our process group)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	// No stdin/stdout/stderr - fully detached
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// NewHelperController builds the controller for a helper spec.
func NewHelperController(spec domain.HelperSpec, table domain.ProcessTable, runner domain.CommandRunner, logger *zap.Logger) domain.HelperController {
	if spec.Kind == domain.HelperDPMS {
		return NewDPMSHelper(runner, logger)
	}
	return NewProcessHelper(spec, table, logger)
}

// Ensure ProcessHelper implements domain.HelperController.
var _ domain.HelperController = (*ProcessHelper)(nil)
