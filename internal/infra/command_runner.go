package infra

import (
	"os/exec"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// RealCommandRunner executes real system commands.
type RealCommandRunner struct{}

// Run executes a command and waits for it to complete.
func (r *RealCommandRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Output executes a command and returns its stdout.
func (r *RealCommandRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// LookPath resolves a binary on PATH.
func (r *RealCommandRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Ensure RealCommandRunner implements domain.CommandRunner.
var _ domain.CommandRunner = (*RealCommandRunner)(nil)
