package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/taskboard/internal/adapters/server"
	"github.com/evanschultz/taskboard/internal/adapters/server/common"
	"github.com/evanschultz/taskboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/config"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/fixtures"
	"github.com/evanschultz/taskboard/internal/platform"
	"github.com/evanschultz/taskboard/internal/tui"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program is the part of a bubbletea program the CLI drives.
type program interface {
	Run() (tea.Model, error)
	Send(tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
	stdout     io.Writer
	stderr     io.Writer
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	// A missing .env file is the common case.
	_ = godotenv.Load()

	root := newRootCommand(&rootOptions{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(""))
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// newRootCommand builds the command tree. The root command launches the TUI.
func newRootCommand(opts *rootOptions) *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TASKBOARD_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultAppName := "taskboard"
	if envApp := strings.TrimSpace(os.Getenv("TASKBOARD_APP_NAME")); envApp != "" {
		defaultAppName = envApp
	}

	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Task board with list, kanban and focus views",
		Long: `taskboard tracks tasks across To Do, In Progress, Review and Completed.
Run it without a command to open the terminal board.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", defaultAppName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts),
		newServeCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newSeedCommand(opts),
	)
	return root
}

// newPathsCommand prints the resolved on-disk locations.
func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print config, data and export locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: opts.appName, DevMode: opts.devMode})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "export_dir: %s\n", paths.ExportDir)
			return nil
		},
	}
}

// newServeCommand runs the REST and MCP endpoints.
func newServeCommand(opts *rootOptions) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and MCP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts, "serve")
			if err != nil {
				return err
			}
			defer s.Close()

			if strings.TrimSpace(bind) != "" {
				s.cfg.Server.HTTPBind = bind
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s.logger.Info("command flow start", "command", "serve", "bind", s.cfg.Server.HTTPBind)
			err = server.Run(ctx, server.Config{
				Bind:      s.cfg.Server.HTTPBind,
				APIPrefix: s.cfg.Server.APIEndpoint,
				MCPPath:   s.cfg.Server.MCPEndpoint,
				Name:      opts.appName,
				Version:   version,
			}, server.Dependencies{
				Service:   common.NewAppServiceAdapter(s.svc),
				Readiness: s.repo,
				Logger:    s.logger,
			})
			if err != nil {
				s.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			s.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (overrides server.http_bind)")
	return cmd
}

// newExportCommand writes a snapshot JSON file.
func newExportCommand(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every task and preference as snapshot JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts, "export")
			if err != nil {
				return err
			}
			defer s.Close()

			s.logger.Info("command flow start", "command", "export")
			if err := runExport(cmd.Context(), s.svc, outPath, cmd.OutOrStdout()); err != nil {
				s.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			s.logger.Info("command flow complete", "command", "export")
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// newImportCommand loads a snapshot JSON file.
func newImportCommand(opts *rootOptions) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks and preferences from snapshot JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			s, err := openSession(opts, "import")
			if err != nil {
				return err
			}
			defer s.Close()

			s.logger.Info("command flow start", "command", "import")
			count, err := runImport(cmd.Context(), s.svc, inPath)
			if err != nil {
				s.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("run import command: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", count)
			s.logger.Info("command flow complete", "command", "import", "tasks", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	return cmd
}

// newSeedCommand loads the bundled sample tasks into an empty store.
func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample tasks into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts, "seed")
			if err != nil {
				return err
			}
			defer s.Close()

			count, err := seedFixtures(cmd.Context(), s)
			if err != nil {
				return fmt.Errorf("run seed command: %w", err)
			}
			if count == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "store already has tasks; nothing seeded")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tasks\n", count)
			return nil
		},
	}
}

// runTUI opens the board and keeps its settings in sync with the config file.
func runTUI(ctx context.Context, opts *rootOptions) error {
	s, err := openSession(opts, "tui")
	if err != nil {
		return err
	}
	defer s.Close()

	s.logger.Info("command flow start", "command", "tui")
	if _, err := seedFixtures(ctx, s); err != nil {
		return fmt.Errorf("seed sample tasks: %w", err)
	}

	m := tui.NewModel(
		s.svc,
		tui.WithRuntimeConfig(toTUIRuntimeConfig(s.cfg)),
		tui.WithLogger(s.logger),
	)
	p := programFactory(m)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.watchConfig(watchCtx, func(cfg tui.RuntimeConfig, err error) {
		p.Send(tui.ConfigReloadedMsg{Config: cfg, Err: err})
	})

	s.logger.Info("starting tui program loop")
	if _, err := p.Run(); err != nil {
		s.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	s.logger.Info("command flow complete", "command", "tui")
	return nil
}

// session bundles the config, logger and storage one command runs against.
type session struct {
	paths        platform.Paths
	configPath   string
	dbPath       string
	dbOverridden bool
	defaults     config.Config
	cfg          config.Config
	logger       *runtimeLogger
	repo         *sqlite.Repository
	svc          *app.Service
}

// openSession resolves paths and config, then opens the database.
func openSession(opts *rootOptions, command string) (*session, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return nil, err
	}

	s := &session{paths: paths, configPath: opts.configPath, dbPath: opts.dbPath}
	s.dbOverridden = strings.TrimSpace(s.dbPath) != ""
	if s.configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TASKBOARD_CONFIG")); envPath != "" {
			s.configPath = envPath
		} else {
			s.configPath = paths.ConfigPath
		}
	}
	if !s.dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TASKBOARD_DB_PATH")); envPath != "" {
			s.dbPath = envPath
			s.dbOverridden = true
		} else {
			s.dbPath = paths.DBPath
		}
	}

	s.defaults = config.Default(s.dbPath)
	s.defaults.UI.ExportDir = paths.ExportDir
	s.cfg, err = s.loadConfig()
	if err != nil {
		return nil, err
	}

	s.logger, err = newRuntimeLogger(opts.stderr, opts.appName, opts.devMode, s.cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
		s.logger.SetConsoleEnabled(false)
	}

	s.logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	s.logger.Debug("runtime paths resolved", "config_path", s.configPath, "data_dir", paths.DataDir, "db_path", s.dbPath)
	s.logger.Info("configuration loaded", "config_path", s.configPath, "db_path", s.cfg.Database.Path, "log_level", s.cfg.Logging.Level)
	if devPath := s.logger.DevLogPath(); devPath != "" {
		s.logger.Info("dev file logging enabled", "path", devPath)
	}

	s.logger.Info("opening sqlite repository", "db_path", s.cfg.Database.Path)
	s.repo, err = sqlite.Open(s.cfg.Database.Path)
	if err != nil {
		s.logger.Error("sqlite open failed", "db_path", s.cfg.Database.Path, "err", err)
		_ = s.logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	s.logger.Info("sqlite repository ready", "db_path", s.cfg.Database.Path, "migrations", "ensured")

	s.svc = app.NewService(s.repo, uuid.NewString, nil, app.ServiceConfig{
		DefaultActor:         s.cfg.Identity.DisplayName,
		NotifyOnStatusChange: s.cfg.Board.NotifyOnStatusChange,
	})
	s.logger.Debug("application service initialized", "notify_on_status_change", s.cfg.Board.NotifyOnStatusChange)
	return s, nil
}

// loadConfig reads the config file, keeping an explicit database override.
func (s *session) loadConfig() (config.Config, error) {
	cfg, err := config.Load(s.configPath, s.defaults)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", s.configPath, err)
	}
	if s.dbOverridden {
		cfg.Database.Path = s.dbPath
	}
	return cfg, nil
}

// watchConfig reports every config file change until ctx ends. A watcher that
// cannot start is logged and the board keeps its startup settings.
func (s *session) watchConfig(ctx context.Context, onReload func(tui.RuntimeConfig, error)) {
	if err := config.EnsureConfigDir(s.configPath); err != nil {
		s.logger.Warn("config watch disabled", "config_path", s.configPath, "err", err)
		return
	}
	err := config.Watch(ctx, s.configPath, s.defaults, func(cfg config.Config, err error) {
		if err != nil {
			s.logger.Error("runtime config reload failed", "config_path", s.configPath, "err", err)
			onReload(tui.RuntimeConfig{}, err)
			return
		}
		s.logger.Info("runtime config reload complete", "config_path", s.configPath)
		onReload(toTUIRuntimeConfig(cfg), nil)
	})
	if err != nil {
		s.logger.Warn("config watch disabled", "config_path", s.configPath, "err", err)
	}
}

// Close closes the database and the dev-file sink.
func (s *session) Close() {
	if s == nil {
		return
	}
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			s.logger.Warn("sqlite close failed", "db_path", s.cfg.Database.Path, "err", err)
		}
	}
	if err := s.logger.Close(); err != nil && s.logger.shouldLogToSink(s.logger.consoleSink) {
		// Keep TUI shutdown quiet on the terminal when console logging is intentionally muted.
		_, _ = fmt.Fprintf(s.logger.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// seedFixtures loads the bundled sample tasks when the store is empty.
func seedFixtures(ctx context.Context, s *session) (int, error) {
	inputs, err := fixtures.Load()
	if err != nil {
		return 0, err
	}
	for _, issue := range fixtures.Check(inputs) {
		s.logger.Warn("sample task inconsistency", "task_id", issue.TaskID, "field", issue.Field, "reason", issue.Reason)
	}
	count, err := s.svc.SeedFixtures(ctx, inputs)
	if err != nil {
		s.logger.Error("seed failed", "err", err)
		return count, err
	}
	if count > 0 {
		s.logger.Info("sample tasks seeded", "tasks", count)
	}
	return count, nil
}

// runExport writes the snapshot to outPath, or stdout for "-".
func runExport(ctx context.Context, svc *app.Service, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "-" || outPath == "" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport reads one snapshot file and imports it.
func runImport(ctx context.Context, svc *app.Service, inPath string) (int, error) {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return 0, fmt.Errorf("decode snapshot json: %w", err)
	}
	count, err := svc.ImportSnapshot(ctx, snap)
	if err != nil {
		return 0, fmt.Errorf("import snapshot: %w", err)
	}
	return count, nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// toTUIRuntimeConfig maps persisted config values into runtime model options.
func toTUIRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	return tui.RuntimeConfig{
		DefaultView:    domain.ViewMode(cfg.Board.DefaultView),
		ShowProgress:   cfg.Board.ShowProgress,
		ShowAssignee:   cfg.Board.ShowAssignee,
		DateFormat:     cfg.Board.DateFormat,
		SimulatedDelay: cfg.SimulatedDelay(),
		ExportDir:      cfg.UI.ExportDir,
		DisplayName:    cfg.Identity.DisplayName,
		Keys: tui.KeyConfig{
			Search:        cfg.Keys.Search,
			Filter:        cfg.Keys.Filter,
			Create:        cfg.Keys.Create,
			Export:        cfg.Keys.Export,
			Share:         cfg.Keys.Share,
			Notifications: cfg.Keys.Notifications,
			BulkAction:    cfg.Keys.BulkAction,
			Grab:          cfg.Keys.Grab,
		},
	}
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
	stderr         io.Writer
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
		stderr:         stderr,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// log writes one event to every enabled sink.
func (l *runtimeLogger) log(level charmLog.Level, msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Log(level, msg, keyvals...)
	}
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.log(charmLog.DebugLevel, msg, keyvals...)
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.log(charmLog.InfoLevel, msg, keyvals...)
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.log(charmLog.WarnLevel, msg, keyvals...)
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.log(charmLog.ErrorLevel, msg, keyvals...)
}

// devLogFilePath resolves a workspace-local dev log file path for the current run day.
func devLogFilePath(configDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(configDir)
	if baseDir == "" {
		baseDir = ".taskboard/log"
	}
	if !filepath.IsAbs(baseDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		baseDir = filepath.Join(workspaceRootFrom(cwd), baseDir)
	}
	fileName := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// workspaceRootFrom resolves the nearest ancestor holding a go.mod or .git entry.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	for dir := start; ; {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return "taskboard"
	}
	return stem
}
