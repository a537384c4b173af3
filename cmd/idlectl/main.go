// Package main is the CLI entry point for idlectl.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/idlectl/internal/action"
	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
	"github.com/eliteGoblin/focusd/idlectl/internal/infra"
	"github.com/eliteGoblin/focusd/idlectl/internal/session"
	"github.com/eliteGoblin/focusd/idlectl/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "idlectl",
	Short: "Idle power supervisor - shuts down or blanks the screen when idle",
	Long: `idlectl keeps two idle actions in line with your settings:
powering the machine off and turning the screen off after a period of
inactivity. The actual idle detection is done by external helpers
(xautolock, xidlehook, xset); idlectl starts, stops and restores them.`,
	Version:      Version,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive session",
	Long: `Restores the saved state, then reads commands from stdin:

  shutdown [minutes]         toggle auto shutdown (saved duration if omitted)
  screen [minutes]           toggle screen off (saved duration if omitted)
  apply <action> <minutes>   change a duration, restarting the helper if enabled
  status                     show the state of both actions
  quit                       leave (helpers keep running)

Only one session may run at a time.`,
	RunE: runRun,
}

var toggleCmd = &cobra.Command{
	Use:       "toggle shutdown|screen",
	Short:     "Toggle one idle action",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"shutdown", "screen"},
	RunE:      runToggle,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Start the helpers that are enabled but not running",
	Long: `Runs the startup reconciliation once and exits. Suitable for a login hook.
Disabled actions are never touched.`,
	RunE: runReconcile,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show desired and live state",
	Long:  `Shows the saved settings and whether each helper is running. Use --watch to follow changes.`,
	RunE:  runStatus,
}

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Manage the auto_off.sh idle script",
}

var scriptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the limits stored in the script",
	RunE:  runScriptShow,
}

var scriptApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Rewrite the script limits and restart it",
	RunE:  runScriptApply,
}

var scriptStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the script unless it is already running",
	RunE:  runScriptStart,
}

var scriptStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop every running copy of the script",
	RunE:  runScriptStop,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	dataDir        string
	noNotify       bool
	verbose        bool
	jsonOutput     bool
	toggleMinutes  string
	watchStatus    bool
	scriptShutdown string
	scriptScreen   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for config, lock and log (default ~/.idlectl)")
	rootCmd.PersistentFlags().BoolVar(&noNotify, "no-notify", false, "Disable desktop notifications")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Debug logging")

	toggleCmd.Flags().StringVarP(&toggleMinutes, "minutes", "m", "", "Duration in minutes when enabling (default: saved duration)")
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Follow config changes")
	scriptApplyCmd.Flags().StringVar(&scriptShutdown, "shutdown", "", "Shutdown limit in minutes")
	scriptApplyCmd.Flags().StringVar(&scriptScreen, "screen", "", "Screen-off limit in minutes")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	scriptCmd.AddCommand(scriptShowCmd)
	scriptCmd.AddCommand(scriptApplyCmd)
	scriptCmd.AddCommand(scriptStartCmd)
	scriptCmd.AddCommand(scriptStopCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(versionCmd)
}

// app holds the components shared by every subcommand.
type app struct {
	paths    infra.Paths
	settings infra.Settings
	logger   *zap.Logger
	registry *action.Registry
	table    domain.ProcessTable
	runner   domain.CommandRunner
}

func newApp() *app {
	paths := infra.DefaultPaths()
	if dataDir != "" {
		paths = infra.PathsIn(dataDir, infra.RealUserHome())
	}

	logger := createLogger(paths.LogPath, verbose)

	settings, err := infra.LoadSettings(paths.SettingsPath)
	if err != nil {
		logger.Warn("using default settings", zap.Error(err))
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
	}
	if noNotify {
		settings.Notify = false
	}

	registry := action.NewRegistry()
	for id, spec := range settings.Helpers {
		registry.Override(id, spec)
	}

	return &app{
		paths:    paths,
		settings: settings,
		logger:   logger,
		registry: registry,
		table:    infra.NewProcessTable(),
		runner:   &infra.RealCommandRunner{},
	}
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) notifier() domain.Notifier {
	if !a.settings.Notify {
		return infra.NopNotifier{}
	}
	return infra.NewDesktopNotifier("idlectl", a.logger)
}

func (a *app) newReconciler() (*usecase.Reconciler, error) {
	bindings := make([]usecase.Binding, 0, len(domain.Actions))
	for _, act := range a.registry.GetAll() {
		spec, err := a.registry.Helper(act.ID())
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, usecase.Binding{
			Action:     act,
			Controller: infra.NewHelperController(spec, a.table, a.runner, a.logger),
		})
	}

	store := infra.NewFileConfigStoreWithLegacy(a.paths.ConfigPath, a.paths.LegacyConfigPath, a.logger)
	return usecase.NewReconciler(store, bindings, a.notifier(), a.logger), nil
}

// withLock runs fn while holding the instance lock. The lock is released on every exit path.
func (a *app) withLock(fn func() error) error {
	lock := infra.NewPIDLock(a.paths.LockPath, a.logger)
	handle, err := lock.Acquire()
	if err != nil {
		return err
	}
	defer func() {
		if err := handle.Release(); err != nil {
			a.logger.Warn("failed to release instance lock", zap.Error(err))
		}
	}()

	a.logger.Info("instance lock acquired",
		zap.Int("pid", handle.PID()),
		zap.String("path", lock.Path()))
	return fn()
}

// signalContext is canceled on SIGINT, SIGTERM or SIGHUP.
func signalContext(logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func runRun(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	err := a.withLock(func() error {
		rec, err := a.newReconciler()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(a.logger)
		defer cancel()

		out := &syncWriter{w: cmd.OutOrStdout()}
		cfg := session.DefaultConfig()
		cfg.SettleDelay = a.settings.SettleDelay

		s := session.New(cfg, rec, session.ReporterFunc(func(st domain.Status) {
			printStatus(out, st)
		}), a.logger)

		errCh := make(chan error, 1)
		go func() { errCh <- s.Run(ctx) }()

		newConsole(cmd.InOrStdin(), out, s).Run(ctx)
		cancel()
		return <-errCh
	})

	var running *domain.AlreadyRunningError
	if errors.As(err, &running) {
		a.logger.Info("another session is active, exiting", zap.Int("pid", running.PID))
		fmt.Fprintf(cmd.OutOrStdout(), "idlectl is already running (PID %d)\n", running.PID)
		return nil
	}
	return err
}

func runToggle(cmd *cobra.Command, args []string) error {
	id, err := domain.ParseActionID(args[0])
	if err != nil {
		return err
	}

	a := newApp()
	defer a.close()

	return a.withLock(func() error {
		rec, err := a.newReconciler()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(a.logger)
		defer cancel()

		st := rec.Handle(ctx, domain.NewToggle(id, toggleMinutes))
		printStatus(cmd.OutOrStdout(), st)
		if st.Pending {
			st = confirmStarted(ctx, rec, id, a.settings.SettleDelay)
			printStatus(cmd.OutOrStdout(), st)
		}
		return st.Err
	})
}

func runReconcile(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	return a.withLock(func() error {
		rec, err := a.newReconciler()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(a.logger)
		defer cancel()

		var errs error
		for _, st := range rec.Reconcile(ctx) {
			if st.Pending {
				st = confirmStarted(ctx, rec, st.Action, a.settings.SettleDelay)
			}
			printStatus(cmd.OutOrStdout(), st)
			if st.Err != nil {
				errs = multierr.Append(errs, st.Err)
			}
		}
		return errs
	})
}

// confirmStarted waits for the settle delay, then checks the helper is still alive.
func confirmStarted(ctx context.Context, rec *usecase.Reconciler, id domain.ActionID, delay time.Duration) domain.Status {
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
	return rec.Handle(context.Background(), domain.Refresh{Action: id, AfterStart: true})
}

func runStatus(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	out := cmd.OutOrStdout()
	if err := printReport(out, a); err != nil {
		return err
	}
	if !watchStatus {
		return nil
	}

	ctx, cancel := signalContext(a.logger)
	defer cancel()

	if err := os.MkdirAll(a.paths.DataDir, 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	fmt.Fprintf(out, "\nWatching %s (Ctrl-C to stop)\n", a.paths.ConfigPath)
	return infra.WatchFile(ctx, a.paths.ConfigPath, func() {
		fmt.Fprintln(out)
		if err := printReport(out, a); err != nil {
			a.logger.Warn("status refresh failed", zap.Error(err))
		}
	})
}

func printReport(out io.Writer, a *app) error {
	rec, err := a.newReconciler()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== idlectl Status ===")
	if pid := infra.NewPIDLock(a.paths.LockPath, a.logger).HolderPID(); pid > 0 {
		fmt.Fprintf(out, "Session: RUNNING (PID %d)\n", pid)
	} else {
		fmt.Fprintln(out, "Session: NOT RUNNING")
	}
	fmt.Fprintf(out, "Config:  %s\n\n", a.paths.ConfigPath)

	for _, act := range a.registry.GetAll() {
		st := rec.Refresh(act.ID())
		desired := "off"
		if st.Enabled {
			desired = "on"
		}
		live := "stopped"
		if st.Running {
			live = "running"
		}
		fmt.Fprintf(out, "%-14s %-3s %4d min  helper %s\n", act.Name(), desired, st.Minutes, live)
		if st.Enabled != st.Running {
			fmt.Fprintln(out, "               (out of sync: run 'idlectl reconcile')")
		}
	}
	fmt.Fprintln(out, "======================")
	return nil
}

func (a *app) scriptPath() string {
	return a.paths.ExpandHome(a.settings.ScriptPath)
}

func (a *app) scriptHelper() *infra.ProcessHelper {
	path := a.scriptPath()
	return infra.NewProcessHelper(domain.HelperSpec{
		Kind:         domain.HelperProcess,
		Command:      []string{path},
		MatchCmdline: []string{filepath.Base(path)},
	}, a.table, a.logger)
}

func runScriptShow(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	store := infra.NewScriptParamStore(a.scriptPath())
	params, err := store.Load()
	if err != nil {
		return err
	}

	running := "stopped"
	if a.scriptHelper().IsRunning() {
		running = "running"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Script:    %s (%s)\n", store.Path(), running)
	fmt.Fprintf(out, "Shutdown:  %d min\n", params.ShutdownMinutes)
	fmt.Fprintf(out, "Screen:    %d min\n", params.ScreenOffMinutes)
	return nil
}

func runScriptApply(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	if !cmd.Flags().Changed("shutdown") && !cmd.Flags().Changed("screen") {
		return fmt.Errorf("%w: pass --shutdown and/or --screen", domain.ErrInvalidInput)
	}

	store := infra.NewScriptParamStore(a.scriptPath())
	params, err := store.Load()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("shutdown") {
		if params.ShutdownMinutes, err = usecase.ParseMinutes(scriptShutdown, domain.MaxMinutes); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("screen") {
		if params.ScreenOffMinutes, err = usecase.ParseMinutes(scriptScreen, domain.MaxMinutes); err != nil {
			return err
		}
	}

	if err := store.Save(params); err != nil {
		return err
	}
	a.logger.Info("script limits updated",
		zap.String("path", store.Path()),
		zap.Int("shutdown_minutes", params.ShutdownMinutes),
		zap.Int("screen_off_minutes", params.ScreenOffMinutes))

	pid, err := a.scriptHelper().Start(params.ShutdownMinutes)
	if err != nil {
		return fmt.Errorf("limits saved, but the script could not be restarted: %w", err)
	}

	a.notifier().Notify("idlectl", "Settings applied and script restarted")
	fmt.Fprintf(cmd.OutOrStdout(), "Applied: shutdown %d min, screen %d min (script PID %d)\n",
		params.ShutdownMinutes, params.ScreenOffMinutes, pid)
	return nil
}

func runScriptStart(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	return startScript(cmd.OutOrStdout(), a.scriptPath(), a.scriptHelper())
}

func runScriptStop(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	return stopScript(cmd.OutOrStdout(), a.scriptHelper())
}

// startScript launches the script as-is. A copy that is already running is left alone.
func startScript(out io.Writer, path string, helper domain.HelperController) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: script %s not found", domain.ErrHelperNotFound, path)
	}
	if helper.IsRunning() {
		fmt.Fprintf(out, "Script already running: %s\n", path)
		return nil
	}

	// The script reads its limits from its own variables.
	pid, err := helper.Start(0)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Script started: %s (PID %d)\n", path, pid)
	return nil
}

func stopScript(out io.Writer, helper domain.HelperController) error {
	stopped, err := helper.Stop()
	if err != nil {
		return err
	}
	if len(stopped) == 0 {
		fmt.Fprintln(out, "Script not running")
		return nil
	}
	fmt.Fprintf(out, "Script stopped (PID %v)\n", stopped)
	return nil
}

func createLogger(path string, verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.OutputPaths = append(config.OutputPaths, "stderr")
	}

	_ = os.MkdirAll(filepath.Dir(path), 0700)
	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("idlectl %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
