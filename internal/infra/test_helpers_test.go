package infra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// mockProcessTable is a test double for domain.ProcessTable
type mockProcessTable struct {
	procs        map[int]domain.ProcessDescriptor
	snapshotErr  error
	terminateErr map[int]error
	terminated   []int
}

func newMockProcessTable(procs ...domain.ProcessDescriptor) *mockProcessTable {
	m := &mockProcessTable{
		procs:        make(map[int]domain.ProcessDescriptor),
		terminateErr: make(map[int]error),
	}
	for _, p := range procs {
		m.procs[p.PID] = p
	}
	return m
}

func (m *mockProcessTable) Snapshot() ([]domain.ProcessDescriptor, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	out := make([]domain.ProcessDescriptor, 0, len(m.procs))
	for _, p := range m.procs {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProcessTable) Terminate(pid int) error {
	if err := m.terminateErr[pid]; err != nil {
		return err
	}
	m.terminated = append(m.terminated, pid)
	delete(m.procs, pid)
	return nil
}

func (m *mockProcessTable) Alive(pid int) bool {
	_, ok := m.procs[pid]
	return ok
}

func (m *mockProcessTable) Add(p domain.ProcessDescriptor) {
	m.procs[p.PID] = p
}

// mockCommandRunner is a test double for domain.CommandRunner
type mockCommandRunner struct {
	runs      []string
	runErr    map[string]error
	outputs   map[string][]byte
	outputErr error
	missing   map[string]bool
}

func newMockCommandRunner() *mockCommandRunner {
	return &mockCommandRunner{
		runErr:  make(map[string]error),
		outputs: make(map[string][]byte),
		missing: make(map[string]bool),
	}
}

func (m *mockCommandRunner) Run(name string, args ...string) error {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	m.runs = append(m.runs, line)
	return m.runErr[line]
}

func (m *mockCommandRunner) Output(name string, args ...string) ([]byte, error) {
	if m.outputErr != nil {
		return nil, m.outputErr
	}
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	return m.outputs[line], nil
}

func (m *mockCommandRunner) LookPath(name string) (string, error) {
	if m.missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// fakeSpawner records spawns and adds the new process to the table.
type fakeSpawner struct {
	table   *mockProcessTable
	name    string
	nextPID int
	calls   [][]string
	err     error
}

func (f *fakeSpawner) Spawn(path string, args []string) (int, error) {
	f.calls = append(f.calls, append([]string{path}, args...))
	if f.err != nil {
		return 0, f.err
	}
	f.nextPID++
	pid := 5000 + f.nextPID
	if f.table != nil {
		f.table.Add(domain.ProcessDescriptor{
			PID:     pid,
			Name:    f.name,
			Cmdline: strings.Join(append([]string{path}, args...), " "),
		})
	}
	return pid, nil
}

var errNotFound = errors.New("not found")

func lookPathFound(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func lookPathMissing(string) (string, error) {
	return "", errNotFound
}
