package domain

// Command is a user intent forwarded by the presentation layer to the reconciler.
type Command interface {
	// Target returns the idle action the command operates on.
	Target() ActionID
}

// ToggleShutdown flips the power-off action. Minutes is the raw user input.
type ToggleShutdown struct {
	Minutes string
}

func (ToggleShutdown) Target() ActionID { return ActionShutdown }

// ToggleScreenOff flips the screen-off action. Minutes is the raw user input.
type ToggleScreenOff struct {
	Minutes string
}

func (ToggleScreenOff) Target() ActionID { return ActionScreenOff }

// ApplyMinutes changes the duration of an action, restarting its helper when enabled.
type ApplyMinutes struct {
	Action  ActionID
	Minutes string
}

func (c ApplyMinutes) Target() ActionID { return c.Action }

// Refresh re-reads the live state of an action's helper. AfterStart marks the
// delayed check that follows a helper start.
type Refresh struct {
	Action     ActionID
	AfterStart bool
}

func (c Refresh) Target() ActionID { return c.Action }

// NewToggle builds the toggle command for an action.
func NewToggle(id ActionID, minutes string) Command {
	if id == ActionScreenOff {
		return ToggleScreenOff{Minutes: minutes}
	}
	return ToggleShutdown{Minutes: minutes}
}
