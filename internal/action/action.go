// Package action implements the Strategy pattern for idle actions.
// Each action (power-off, screen-off) defines its helper, limits and labels.
package action

import (
	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// IdleAction defines the strategy interface for one idle-triggered behaviour.
type IdleAction interface {
	// ID returns the unique identifier persisted in the config.
	ID() domain.ActionID

	// Name returns human-readable name for notifications.
	Name() string

	// DefaultMinutes returns the duration used before the user picks one.
	DefaultMinutes() int

	// MaxMinutes returns the largest duration the helper accepts.
	MaxMinutes() int

	// DefaultHelper returns how the helper is launched and recognized.
	DefaultHelper() domain.HelperSpec
}
