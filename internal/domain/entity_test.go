package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithActionReturnsCopy(t *testing.T) {
	base := DefaultConfig()

	next := base.WithAction(ActionShutdown, true, 45)

	assert.False(t, base.ShutdownEnabled, "original snapshot must not change")
	assert.Equal(t, DefaultShutdownMinutes, base.ShutdownMinutes)
	assert.True(t, next.Enabled(ActionShutdown))
	assert.Equal(t, 45, next.Minutes(ActionShutdown))
	assert.Equal(t, base.ScreenOffMinutes, next.ScreenOffMinutes)
}

func TestConfig_Normalize(t *testing.T) {
	cfg := Config{ShutdownEnabled: true, ShutdownMinutes: -3, ScreenOffMinutes: MaxMinutes + 10}

	got := cfg.Normalize()

	assert.True(t, got.ShutdownEnabled)
	assert.Equal(t, DefaultShutdownMinutes, got.ShutdownMinutes)
	assert.Equal(t, MaxMinutes, got.ScreenOffMinutes)

	got = Config{ShutdownMinutes: 120, ScreenOffMinutes: 120}.Normalize()
	assert.Equal(t, MaxShutdownMinutes, got.ShutdownMinutes)
	assert.Equal(t, 120, got.ScreenOffMinutes)
}

func TestParseActionID(t *testing.T) {
	tests := []struct {
		in   string
		want ActionID
	}{
		{"shutdown", ActionShutdown},
		{"Screen", ActionScreenOff},
		{"screen_off", ActionScreenOff},
		{" display ", ActionScreenOff},
	}
	for _, tt := range tests {
		got, err := ParseActionID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseActionID("reboot")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAlreadyRunningError_Is(t *testing.T) {
	err := fmt.Errorf("acquire: %w", &AlreadyRunningError{PID: 42, LockPath: "/tmp/x.lock"})

	assert.ErrorIs(t, err, ErrAlreadyRunning)

	var are *AlreadyRunningError
	require.True(t, errors.As(err, &are))
	assert.Equal(t, 42, are.PID)
}

func TestNewToggle(t *testing.T) {
	assert.Equal(t, ToggleShutdown{Minutes: "30"}, NewToggle(ActionShutdown, "30"))
	assert.Equal(t, ToggleScreenOff{Minutes: "5"}, NewToggle(ActionScreenOff, "5"))
	assert.Equal(t, ActionScreenOff, ApplyMinutes{Action: ActionScreenOff}.Target())
}
