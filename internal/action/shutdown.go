package action

import (
	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// ShutdownAction powers the machine off after inactivity using xautolock.
type ShutdownAction struct{}

// NewShutdownAction creates the power-off action.
func NewShutdownAction() *ShutdownAction {
	return &ShutdownAction{}
}

func (a *ShutdownAction) ID() domain.ActionID {
	return domain.ActionShutdown
}

func (a *ShutdownAction) Name() string {
	return "Auto shutdown"
}

func (a *ShutdownAction) DefaultMinutes() int {
	return domain.DefaultShutdownMinutes
}

func (a *ShutdownAction) MaxMinutes() int {
	return domain.MaxShutdownMinutes
}

// DefaultHelper runs xautolock with systemctl poweroff as the locker and a
// one-minute warning through notify-send.
func (a *ShutdownAction) DefaultHelper() domain.HelperSpec {
	return domain.HelperSpec{
		Kind: domain.HelperProcess,
		Command: []string{
			"xautolock",
			"-time", "{minutes}",
			"-locker", "systemctl poweroff",
			"-notify", "60",
			"-notifier", "notify-send 'Shutting down in 1 minute due to inactivity...'",
		},
		MatchName: "xautolock",
	}
}

// Ensure ShutdownAction implements IdleAction.
var _ IdleAction = (*ShutdownAction)(nil)
