package action

import (
	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// ScreenOffAction powers the display down after inactivity using xidlehook.
type ScreenOffAction struct{}

// NewScreenOffAction creates the screen-off action.
func NewScreenOffAction() *ScreenOffAction {
	return &ScreenOffAction{}
}

func (a *ScreenOffAction) ID() domain.ActionID {
	return domain.ActionScreenOff
}

func (a *ScreenOffAction) Name() string {
	return "Screen off"
}

func (a *ScreenOffAction) DefaultMinutes() int {
	return domain.DefaultScreenOffMinutes
}

func (a *ScreenOffAction) MaxMinutes() int {
	return domain.MaxMinutes
}

// DefaultHelper runs xidlehook, whose timers are in seconds. Playing audio
// keeps the screen on.
func (a *ScreenOffAction) DefaultHelper() domain.HelperSpec {
	return domain.HelperSpec{
		Kind: domain.HelperProcess,
		Command: []string{
			"xidlehook",
			"--not-when-audio",
			"--timer", "{seconds}", "xset dpms force off", "",
		},
		MatchName: "xidlehook",
	}
}

// Ensure ScreenOffAction implements IdleAction.
var _ IdleAction = (*ScreenOffAction)(nil)
