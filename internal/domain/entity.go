// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"fmt"
	"strings"
)

// ActionID identifies one of the two idle actions.
type ActionID string

const (
	ActionShutdown  ActionID = "shutdown"
	ActionScreenOff ActionID = "screen_off"
)

// Actions lists every idle action in reconciliation order.
var Actions = []ActionID{ActionShutdown, ActionScreenOff}

// ParseActionID accepts the canonical IDs plus the short "screen" alias used on the command line.
func ParseActionID(s string) (ActionID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shutdown", "poweroff":
		return ActionShutdown, nil
	case "screen", "screen_off", "screen-off", "display":
		return ActionScreenOff, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
}

const (
	DefaultShutdownMinutes  = 30
	DefaultScreenOffMinutes = 10

	// MaxMinutes bounds every persisted duration (one day).
	MaxMinutes = 24 * 60

	// MaxShutdownMinutes is xautolock's own upper bound for -time.
	MaxShutdownMinutes = 60
)

// Config is the persisted desired state. It is a value: every mutation returns a new snapshot.
type Config struct {
	ShutdownEnabled  bool `json:"shutdown_enabled"`
	ShutdownMinutes  int  `json:"shutdown_minutes"`
	ScreenOffEnabled bool `json:"screen_off_enabled"`
	ScreenOffMinutes int  `json:"screen_off_minutes"`
}

// DefaultConfig returns the configuration used when nothing valid is on disk.
func DefaultConfig() Config {
	return Config{
		ShutdownEnabled:  false,
		ShutdownMinutes:  DefaultShutdownMinutes,
		ScreenOffEnabled: false,
		ScreenOffMinutes: DefaultScreenOffMinutes,
	}
}

// DefaultMinutes returns the hardcoded default duration of an action.
func DefaultMinutes(id ActionID) int {
	if id == ActionScreenOff {
		return DefaultScreenOffMinutes
	}
	return DefaultShutdownMinutes
}

// MaxMinutesFor returns the largest duration an action's helper accepts.
func MaxMinutesFor(id ActionID) int {
	if id == ActionShutdown {
		return MaxShutdownMinutes
	}
	return MaxMinutes
}

// Enabled reports the desired state of an action.
func (c Config) Enabled(id ActionID) bool {
	if id == ActionScreenOff {
		return c.ScreenOffEnabled
	}
	return c.ShutdownEnabled
}

// Minutes reports the persisted duration of an action.
func (c Config) Minutes(id ActionID) int {
	if id == ActionScreenOff {
		return c.ScreenOffMinutes
	}
	return c.ShutdownMinutes
}

// WithAction returns a copy of c with the action's flag and duration replaced.
func (c Config) WithAction(id ActionID, enabled bool, minutes int) Config {
	switch id {
	case ActionScreenOff:
		c.ScreenOffEnabled = enabled
		c.ScreenOffMinutes = minutes
	default:
		c.ShutdownEnabled = enabled
		c.ShutdownMinutes = minutes
	}
	return c
}

// Normalize replaces out-of-range durations: non-positive values take the default,
// values above the action's limit are clamped to it.
func (c Config) Normalize() Config {
	for _, id := range Actions {
		m := c.Minutes(id)
		switch {
		case m <= 0:
			m = DefaultMinutes(id)
		case m > MaxMinutesFor(id):
			m = MaxMinutesFor(id)
		}
		c = c.WithAction(id, c.Enabled(id), m)
	}
	return c
}

// ProcessDescriptor is what the process table reports about one running process.
type ProcessDescriptor struct {
	PID     int
	Name    string
	Cmdline string
}

// HelperKind selects how a helper is controlled.
type HelperKind string

const (
	// HelperProcess is a long-running helper recognized in the process table.
	HelperProcess HelperKind = "process"
	// HelperDPMS drives the X server's DPMS timers through xset.
	HelperDPMS HelperKind = "dpms"
)

// HelperSpec describes how to launch and recognize the helper behind an idle action.
// Command entries may contain the {minutes} and {seconds} placeholders.
type HelperSpec struct {
	Kind         HelperKind `yaml:"kind" validate:"omitempty,oneof=process dpms"`
	Command      []string   `yaml:"command" validate:"required_if=Kind process"`
	MatchName    string     `yaml:"match_name"`
	MatchCmdline []string   `yaml:"match_cmdline"`
}

// Status is reported back to the presentation layer after every operation.
type Status struct {
	Action  ActionID
	Enabled bool
	Running bool
	Minutes int
	Message string
	Err     error

	// Pending is set after a helper start: the live state still needs confirming.
	Pending bool
}

func (s Status) String() string {
	state := "disabled"
	if s.Enabled {
		state = "enabled"
	}
	live := "stopped"
	if s.Running {
		live = "running"
	}
	out := fmt.Sprintf("%s: %s, helper %s, %d min", s.Action, state, live, s.Minutes)
	if s.Message != "" {
		out += " - " + s.Message
	}
	return out
}
