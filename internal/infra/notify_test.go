package infra

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDesktopNotifier_FallsBackWithoutBus(t *testing.T) {
	var got []string
	n := NewDesktopNotifierWithDeps("idlectl", nil, func(name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}, zap.NewNop())

	n.Notify("Auto shutdown", "Enabled: 30 min")

	assert.Equal(t, []string{"notify-send", "-a", "idlectl", "Auto shutdown", "Enabled: 30 min"}, got)
}

func TestDesktopNotifier_FailureIsSilent(t *testing.T) {
	n := NewDesktopNotifierWithDeps("idlectl", nil, func(string, ...string) error {
		return errors.New("notify-send: not found")
	}, zap.NewNop())

	assert.NotPanics(t, func() { n.Notify("Screen off", "Disabled") })

	bare := NewDesktopNotifierWithDeps("idlectl", nil, nil, zap.NewNop())
	assert.NotPanics(t, func() { bare.Notify("Screen off", "Disabled") })
}

func TestNopNotifier(t *testing.T) {
	assert.NotPanics(t, func() { NopNotifier{}.Notify("a", "b") })
}
