package infra

import (
	"os/exec"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsMethod = "org.freedesktop.Notifications.Notify"
	notifySendBinary    = "notify-send"
)

// DesktopNotifier implements domain.Notifier over the freedesktop notification
// D-Bus API, falling back to notify-send when the session bus is unavailable.
type DesktopNotifier struct {
	appName  string
	conn     *dbus.Conn
	fallback func(name string, args ...string) error
	logger   *zap.Logger
}

// NewDesktopNotifier connects to the session bus. A missing bus (headless session,
// no DBUS_SESSION_BUS_ADDRESS) is not an error: notify-send is used instead.
func NewDesktopNotifier(appName string, logger *zap.Logger) *DesktopNotifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		logger.Debug("session bus unavailable, notifications via notify-send", zap.Error(err))
		conn = nil
	}
	return NewDesktopNotifierWithDeps(appName, conn, startDetached, logger)
}

// NewDesktopNotifierWithDeps creates a notifier with injectable dependencies (for testing).
func NewDesktopNotifierWithDeps(appName string, conn *dbus.Conn, fallback func(string, ...string) error, logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		appName:  appName,
		conn:     conn,
		fallback: fallback,
		logger:   logger,
	}
}

// Notify sends a notification without waiting for the notification server.
// Failures are logged at debug level and otherwise ignored.
func (n *DesktopNotifier) Notify(summary, body string) {
	if n.conn != nil {
		obj := n.conn.Object(notificationsDest, dbus.ObjectPath(notificationsPath))
		call := obj.Go(notificationsMethod, dbus.FlagNoReplyExpected, nil,
			n.appName,                 // app_name
			uint32(0),                 // replaces_id
			"",                        // app_icon
			summary,                   // summary
			body,                      // body
			[]string{},                // actions
			map[string]dbus.Variant{}, // hints
			int32(-1),                 // expire_timeout: server default
		)
		if call.Err == nil {
			return
		}
		n.logger.Debug("D-Bus notification failed, trying notify-send", zap.Error(call.Err))
	}

	if n.fallback == nil {
		return
	}
	if err := n.fallback(notifySendBinary, "-a", n.appName, summary, body); err != nil {
		n.logger.Debug("notification not delivered", zap.Error(err))
	}
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}

// startDetached runs a short-lived command without waiting for it.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Ensure notifiers implement domain.Notifier.
var (
	_ domain.Notifier = (*DesktopNotifier)(nil)
	_ domain.Notifier = NopNotifier{}
)
