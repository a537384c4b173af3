// Package usecase contains application business logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/action"
	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// Binding pairs an idle action with the controller of its helper.
type Binding struct {
	Action     action.IdleAction
	Controller domain.HelperController
}

// Reconciler keeps the running helpers in line with the persisted desired state.
// It is not safe for concurrent use: the session's control goroutine owns it.
type Reconciler struct {
	store    domain.ConfigStore
	bindings map[domain.ActionID]Binding
	notifier domain.Notifier
	logger   *zap.Logger
	config   domain.Config
}

// NewReconciler creates a reconciler and loads the current snapshot from the store.
// Durations beyond an action's limit are clamped before anything is started.
func NewReconciler(
	store domain.ConfigStore,
	bindings []Binding,
	notifier domain.Notifier,
	logger *zap.Logger,
) *Reconciler {
	m := make(map[domain.ActionID]Binding, len(bindings))
	for _, b := range bindings {
		m[b.Action.ID()] = b
	}
	return &Reconciler{
		store:    store,
		bindings: m,
		notifier: notifier,
		logger:   logger,
		config:   store.Load().Normalize(),
	}
}

// Config returns the current snapshot.
func (r *Reconciler) Config() domain.Config {
	return r.config
}

// ParseMinutes validates a raw duration typed by the user.
func ParseMinutes(input string, limit int) (int, error) {
	s := strings.TrimSpace(input)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number of minutes", domain.ErrInvalidInput, s)
	}
	if n <= 0 || n > limit {
		return 0, fmt.Errorf("%w: %d minutes is outside 1..%d", domain.ErrInvalidInput, n, limit)
	}
	return n, nil
}

// Handle applies one user command and reports the resulting state.
func (r *Reconciler) Handle(ctx context.Context, cmd domain.Command) domain.Status {
	if err := ctx.Err(); err != nil {
		return domain.Status{Action: cmd.Target(), Err: err, Message: "session closed"}
	}

	b, ok := r.bindings[cmd.Target()]
	if !ok {
		return domain.Status{
			Action:  cmd.Target(),
			Err:     fmt.Errorf("%w: no helper for action %q", domain.ErrInvalidInput, cmd.Target()),
			Message: "unknown action",
		}
	}

	switch c := cmd.(type) {
	case domain.ToggleShutdown:
		return r.toggle(b, c.Minutes)
	case domain.ToggleScreenOff:
		return r.toggle(b, c.Minutes)
	case domain.ApplyMinutes:
		return r.apply(b, c.Minutes)
	case domain.Refresh:
		return r.refresh(b, c.AfterStart)
	default:
		return domain.Status{
			Action:  cmd.Target(),
			Err:     fmt.Errorf("%w: unsupported command %T", domain.ErrInvalidInput, cmd),
			Message: "unsupported command",
		}
	}
}

// Reconcile brings helpers in line with the snapshot at startup. Disabled actions are
// only inspected: a matching helper that is already running is reported, never stopped.
func (r *Reconciler) Reconcile(ctx context.Context) []domain.Status {
	statuses := make([]domain.Status, 0, len(r.bindings))

	for _, id := range domain.Actions {
		b, ok := r.bindings[id]
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		enabled := r.config.Enabled(id)
		minutes := r.config.Minutes(id)
		running := b.Controller.IsRunning()

		st := domain.Status{Action: id, Enabled: enabled, Running: running, Minutes: minutes}

		switch {
		case enabled && running:
			st.Message = "already running"
		case enabled:
			pid, err := b.Controller.Start(minutes)
			if err != nil {
				st = r.fail(b, err)
				st.Enabled = true
				st.Minutes = minutes
				break
			}
			r.logger.Info("helper restored",
				zap.String("action", string(id)),
				zap.Int("pid", pid),
				zap.Int("minutes", minutes))
			st.Pending = true
			st.Message = fmt.Sprintf("restored, %d min", minutes)
			r.notifier.Notify(b.Action.Name(), fmt.Sprintf("Enabled: %d min", minutes))
		case running:
			r.logger.Info("helper running while disabled, leaving it alone",
				zap.String("action", string(id)))
			st.Message = "disabled, but a matching helper is running"
		default:
			st.Message = "disabled"
		}

		statuses = append(statuses, st)
	}

	return statuses
}

// Refresh reports the live state of an action's helper.
func (r *Reconciler) Refresh(id domain.ActionID) domain.Status {
	return r.Handle(context.Background(), domain.Refresh{Action: id})
}

func (r *Reconciler) toggle(b Binding, input string) domain.Status {
	id := b.Action.ID()
	if r.config.Enabled(id) {
		return r.disable(b)
	}

	// No duration given: reuse the persisted one.
	if strings.TrimSpace(input) == "" {
		input = strconv.Itoa(r.config.Minutes(id))
	}
	minutes, err := ParseMinutes(input, b.Action.MaxMinutes())
	if err != nil {
		return r.fail(b, err)
	}

	pid, err := b.Controller.Start(minutes)
	if err != nil {
		return r.fail(b, err)
	}
	r.logger.Info("helper started",
		zap.String("action", string(id)),
		zap.Int("pid", pid),
		zap.Int("minutes", minutes))

	st := r.commit(b, r.config.WithAction(id, true, minutes))
	st.Pending = true
	if st.Err == nil {
		st.Message = fmt.Sprintf("enabled, %d min", minutes)
		r.notifier.Notify(b.Action.Name(), fmt.Sprintf("Enabled: %d min", minutes))
	}
	return st
}

func (r *Reconciler) disable(b Binding) domain.Status {
	id := b.Action.ID()

	stopped, stopErr := b.Controller.Stop()
	if stopErr != nil {
		r.logger.Warn("failed to stop helper",
			zap.String("action", string(id)),
			zap.Error(stopErr))
	} else {
		r.logger.Info("helper stopped",
			zap.String("action", string(id)),
			zap.Ints("pids", stopped))
	}

	st := r.commit(b, r.config.WithAction(id, false, r.config.Minutes(id)))
	if stopErr != nil {
		st.Running = b.Controller.IsRunning()
		if st.Err == nil {
			st.Err = stopErr
		}
		st.Message = "disabled, but the helper could not be stopped"
		r.notifier.Notify(b.Action.Name(), "Disabled, but the helper could not be stopped")
		return st
	}
	if st.Err == nil {
		st.Message = "disabled"
		r.notifier.Notify(b.Action.Name(), "Disabled")
	}
	return st
}

func (r *Reconciler) apply(b Binding, input string) domain.Status {
	id := b.Action.ID()
	minutes, err := ParseMinutes(input, b.Action.MaxMinutes())
	if err != nil {
		return r.fail(b, err)
	}

	enabled := r.config.Enabled(id)
	if enabled {
		pid, err := b.Controller.Start(minutes)
		if err != nil {
			return r.fail(b, err)
		}
		r.logger.Info("helper restarted",
			zap.String("action", string(id)),
			zap.Int("pid", pid),
			zap.Int("minutes", minutes))
	}

	st := r.commit(b, r.config.WithAction(id, enabled, minutes))
	st.Pending = enabled
	if st.Err == nil {
		st.Message = fmt.Sprintf("duration set to %d min", minutes)
		r.notifier.Notify(b.Action.Name(), fmt.Sprintf("Duration set to %d min", minutes))
	}
	return st
}

func (r *Reconciler) refresh(b Binding, afterStart bool) domain.Status {
	id := b.Action.ID()
	st := domain.Status{
		Action:  id,
		Enabled: r.config.Enabled(id),
		Running: b.Controller.IsRunning(),
		Minutes: r.config.Minutes(id),
	}

	if afterStart && st.Enabled && !st.Running {
		st.Err = fmt.Errorf("%w: %s helper exited right after start", domain.ErrSpawnFailed, id)
		st.Message = "helper is not running"
		r.logger.Warn("helper not running after start", zap.String("action", string(id)))
		r.notifier.Notify(b.Action.Name(), "The helper stopped right after starting")
	}
	return st
}

// commit replaces the snapshot and persists it. The snapshot is replaced even when
// the save fails so the session keeps matching the helpers it just changed.
func (r *Reconciler) commit(b Binding, next domain.Config) domain.Status {
	id := b.Action.ID()
	r.config = next

	st := domain.Status{
		Action:  id,
		Enabled: next.Enabled(id),
		Running: next.Enabled(id),
		Minutes: next.Minutes(id),
	}

	if err := r.store.Save(next); err != nil {
		r.logger.Error("failed to persist config",
			zap.String("path", r.store.Path()),
			zap.Error(err))
		st.Err = err
		st.Message = "state changed but could not be saved"
		r.notifier.Notify(b.Action.Name(), "Settings could not be saved")
	}
	return st
}

// fail reports an operation that left the snapshot untouched.
func (r *Reconciler) fail(b Binding, err error) domain.Status {
	id := b.Action.ID()
	msg := failureMessage(b.Action, err)

	r.logger.Warn("action failed",
		zap.String("action", string(id)),
		zap.String("reason", msg),
		zap.Error(err))
	r.notifier.Notify(b.Action.Name(), msg)

	return domain.Status{
		Action:  id,
		Enabled: r.config.Enabled(id),
		Running: b.Controller.IsRunning(),
		Minutes: r.config.Minutes(id),
		Message: msg,
		Err:     err,
	}
}

func failureMessage(a action.IdleAction, err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Sprintf("Invalid time: enter whole minutes between 1 and %d", a.MaxMinutes())
	case errors.Is(err, domain.ErrHelperNotFound):
		return "Helper not installed"
	case errors.Is(err, domain.ErrSpawnFailed):
		return "Helper could not be started"
	default:
		return "Operation failed"
	}
}
