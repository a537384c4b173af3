package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadSettings_MissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_File(t *testing.T) {
	path := writeSettings(t, `
notify: false
settle_delay: 2s
script_path: /opt/idle/auto_off.sh
helpers:
  screen_off:
    kind: dpms
  shutdown:
    command: ["xautolock", "-time", "{minutes}", "-locker", "loginctl poweroff"]
    match_name: xautolock
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.False(t, s.Notify)
	assert.Equal(t, 2*time.Second, s.SettleDelay)
	assert.Equal(t, "/opt/idle/auto_off.sh", s.ScriptPath)
	require.Len(t, s.Helpers, 2)
	assert.Equal(t, domain.HelperDPMS, s.Helpers[domain.ActionScreenOff].Kind)
	assert.Equal(t, "loginctl poweroff", s.Helpers[domain.ActionShutdown].Command[4])
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	path := writeSettings(t, "notify: true\nscript_path: /a.sh\n")
	t.Setenv(EnvNotify, "false")
	t.Setenv(EnvScript, "/b.sh")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.False(t, s.Notify)
	assert.Equal(t, "/b.sh", s.ScriptPath)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":       "notify: [",
		"unknown action": "helpers:\n  hibernate:\n    command: [\"x\"]\n",
		"bad kind":       "helpers:\n  shutdown:\n    kind: systemd\n",
		"no command":     "helpers:\n  shutdown:\n    kind: process\n",
		"delay too long": "settle_delay: 5m\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := LoadSettings(writeSettings(t, content))

			require.Error(t, err)
			assert.Equal(t, DefaultSettings(), s)
		})
	}
}
