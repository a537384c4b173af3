// Package session runs the single control loop that serializes user commands.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// Handler applies commands to the desired state. *usecase.Reconciler implements it.
type Handler interface {
	Handle(ctx context.Context, cmd domain.Command) domain.Status
	Reconcile(ctx context.Context) []domain.Status
}

// ReporterFunc adapts a function to domain.StatusReporter.
type ReporterFunc func(domain.Status)

// Report calls f(st).
func (f ReporterFunc) Report(st domain.Status) { f(st) }

// Config holds session configuration.
type Config struct {
	SettleDelay time.Duration // Wait before confirming a started helper is alive
	QueueSize   int           // Buffered commands before Submit blocks
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		SettleDelay: 500 * time.Millisecond,
		QueueSize:   16,
	}
}

// Session owns the control goroutine. Every command is handled on it, in order.
type Session struct {
	config   Config
	handler  Handler
	reporter domain.StatusReporter
	logger   *zap.Logger

	commands chan domain.Command
	done     chan struct{}
	once     sync.Once

	mu     sync.Mutex
	timers map[domain.ActionID]*time.Timer
}

// New creates a session. Call Run to start it.
func New(config Config, handler Handler, reporter domain.StatusReporter, logger *zap.Logger) *Session {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	return &Session{
		config:   config,
		handler:  handler,
		reporter: reporter,
		logger:   logger,
		commands: make(chan domain.Command, config.QueueSize),
		done:     make(chan struct{}),
		timers:   make(map[domain.ActionID]*time.Timer),
	}
}

// Submit queues a command. It returns false once the session has stopped.
func (s *Session) Submit(cmd domain.Command) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case <-s.done:
		return false
	case s.commands <- cmd:
		return true
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run reconciles once, then handles commands until ctx is canceled.
// Helpers are left running on exit.
func (s *Session) Run(ctx context.Context) error {
	defer s.stop()

	s.logger.Info("session started")

	for _, st := range s.handler.Reconcile(ctx) {
		s.report(st)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopping")
			return nil

		case cmd := <-s.commands:
			s.report(s.handler.Handle(ctx, cmd))
		}
	}
}

func (s *Session) report(st domain.Status) {
	if st.Err != nil {
		s.logger.Warn("command failed",
			zap.String("action", string(st.Action)),
			zap.Error(st.Err))
	} else {
		s.logger.Debug("status",
			zap.String("action", string(st.Action)),
			zap.Bool("enabled", st.Enabled),
			zap.Bool("running", st.Running))
	}

	s.reporter.Report(st)

	if st.Pending {
		s.scheduleCheck(st.Action)
	}
}

// scheduleCheck re-enters the loop with a liveness check once the helper had time to settle.
// A newer start of the same action replaces the pending check.
func (s *Session) scheduleCheck(id domain.ActionID) {
	t := time.AfterFunc(s.config.SettleDelay, func() {
		s.Submit(domain.Refresh{Action: id, AfterStart: true})
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.timers[id]; ok {
		prev.Stop()
	}
	s.timers[id] = t
}

func (s *Session) stop() {
	s.once.Do(func() {
		close(s.done)

		s.mu.Lock()
		for id, t := range s.timers {
			t.Stop()
			delete(s.timers, id)
		}
		s.mu.Unlock()
	})
}
