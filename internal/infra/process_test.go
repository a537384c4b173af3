package infra

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

func TestProcessTable_SnapshotHidesSelf(t *testing.T) {
	table := NewProcessTable()

	procs, err := table.Snapshot()
	require.NoError(t, err)
	require.NotEmpty(t, procs)

	for _, p := range procs {
		assert.NotEqual(t, os.Getpid(), p.PID)
	}
}

func TestProcessTable_SpawnFindTerminate(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}

	pid, err := SpawnDetached(sleep, []string{"987"})
	require.NoError(t, err)

	table := NewProcessTable()
	matcher := AllOf{NameMatcher{Name: "sleep"}, CmdlineMatcher{Substrings: []string{"987"}}}

	require.Eventually(t, func() bool {
		return len(FindMatching(table, matcher)) > 0
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, FindMatching(table, matcher), pid)
	assert.True(t, table.Alive(pid))

	require.NoError(t, table.Terminate(pid))

	require.Eventually(t, func() bool {
		return len(FindMatching(table, matcher)) == 0
	}, 2*time.Second, 20*time.Millisecond)

	// Terminating a process that is gone is not an error.
	assert.NoError(t, table.Terminate(pid))
}

func TestFindMatching_SnapshotError(t *testing.T) {
	table := newMockProcessTable(domain.ProcessDescriptor{PID: 1, Name: "x"})
	table.snapshotErr = assert.AnError

	assert.Nil(t, FindMatching(table, NameMatcher{Name: "x"}))
}
