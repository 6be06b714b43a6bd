package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/config"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("TASKBOARD_DEV_MODE", "false")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// Send drops messages.
func (fakeProgram) Send(tea.Msg) {}

// scriptedProgram represents program data used to exercise model flows inside run() tests.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

// Run runs scripted model interactions and returns the final state.
func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

// Send drops messages.
func (scriptedProgram) Send(tea.Msg) {}

// applyModelMsg applies one message and any resulting command chain.
func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	return applyModelCmd(t, updated, cmd)
}

// applyModelCmd executes one command chain to completion (bounded for safety).
func applyModelCmd(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	out := model
	currentCmd := cmd
	for i := 0; i < 8 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		out = updated
		currentCmd = nextCmd
	}
	return out
}

// isolatePaths points every platform lookup at a temp dir.
func isolatePaths(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("TASKBOARD_CONFIG", "")
	t.Setenv("TASKBOARD_DB_PATH", "")
	return tmp
}

func stubProgram(t *testing.T, factory func(tea.Model) program) {
	t.Helper()
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = factory
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	isolatePaths(t)
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgramWithSampleTasks verifies the board opens on seeded data.
func TestRunStartsProgramWithSampleTasks(t *testing.T) {
	tmp := isolatePaths(t)
	var loaded int
	stubProgram(t, func(model tea.Model) program {
		return scriptedProgram{
			model: model,
			runFn: func(current tea.Model) (tea.Model, error) {
				current = applyModelCmd(t, current, current.Init())
				current = applyModelMsg(t, current, tea.WindowSizeMsg{Width: 120, Height: 40})
				if current.View().Content == nil {
					t.Fatal("expected rendered board")
				}
				current = applyModelMsg(t, current, tea.KeyPressMsg{Code: '2', Text: "2"})
				loaded++
				return current, nil
			},
		}
	})

	dbPath := filepath.Join(tmp, "taskboard.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected program to run once, got %d", loaded)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(snap.Tasks) == 0 {
		t.Fatal("expected sample tasks to be seeded on first launch")
	}
	found := false
	for _, pref := range snap.Preferences {
		if pref.Key == app.PreferenceViewMode && pref.Value == string(domain.ViewModeKanban) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected kanban view preference persisted, got %#v", snap.Preferences)
	}
}

// TestRunProgramError verifies TUI failures are wrapped.
func TestRunProgramError(t *testing.T) {
	tmp := isolatePaths(t)
	stubProgram(t, func(tea.Model) program { return fakeProgram{runErr: fmt.Errorf("boom")} })
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "t.db"), "--config", filepath.Join(tmp, "c.toml")}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "run tui program") {
		t.Fatalf("expected wrapped program error, got %v", err)
	}
}

// TestRunInvalidFlag verifies behavior for the covered scenario.
func TestRunInvalidFlag(t *testing.T) {
	isolatePaths(t)
	if err := run(context.Background(), []string{"--bogus"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected flag parse error")
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	isolatePaths(t)
	if err := run(context.Background(), []string{"wat"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected unknown command error")
	}
}

// TestRunServeAnswersUntilCancelled verifies serve wires the service and stops on cancel.
func TestRunServeAnswersUntilCancelled(t *testing.T) {
	tmp := isolatePaths(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	args := []string{"--db", filepath.Join(tmp, "serve.db"), "--config", filepath.Join(tmp, "c.toml"), "serve", "--bind", addr}
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, args, io.Discard, io.Discard)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("readyz status = %d, want %d", resp.StatusCode, http.StatusOK)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never answered: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	resp, err := http.Get("http://" + addr + "/api/v1/tasks")
	if err != nil {
		t.Fatalf("GET tasks error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tasks status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run(serve) error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

// TestRunSeedIsIdempotent verifies seeding only fills an empty store.
func TestRunSeedIsIdempotent(t *testing.T) {
	tmp := isolatePaths(t)
	args := []string{"--db", filepath.Join(tmp, "seed.db"), "--config", filepath.Join(tmp, "c.toml"), "seed"}

	var first strings.Builder
	if err := run(context.Background(), args, &first, io.Discard); err != nil {
		t.Fatalf("run(seed) error = %v", err)
	}
	if !strings.HasPrefix(first.String(), "seeded ") {
		t.Fatalf("unexpected seed output %q", first.String())
	}
	var second strings.Builder
	if err := run(context.Background(), args, &second, io.Discard); err != nil {
		t.Fatalf("run(seed) second error = %v", err)
	}
	if !strings.Contains(second.String(), "nothing seeded") {
		t.Fatalf("expected second seed to be a no-op, got %q", second.String())
	}
}

// TestRunExportImportRoundTrip verifies snapshots move tasks between databases.
func TestRunExportImportRoundTrip(t *testing.T) {
	tmp := isolatePaths(t)
	cfgPath := filepath.Join(tmp, "c.toml")
	srcDB := filepath.Join(tmp, "src.db")
	dstDB := filepath.Join(tmp, "dst.db")
	outPath := filepath.Join(tmp, "exports", "snapshot.json")

	if err := run(context.Background(), []string{"--db", srcDB, "--config", cfgPath, "seed"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(seed) error = %v", err)
	}
	if err := run(context.Background(), []string{"--db", srcDB, "--config", cfgPath, "export", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if snap.Version != app.SnapshotVersion || len(snap.Tasks) == 0 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dstDB, "--config", cfgPath, "import", "--in", outPath}, &out, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}
	if want := fmt.Sprintf("imported %d tasks", len(snap.Tasks)); !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

// TestRunImportErrors verifies import argument and file validation.
func TestRunImportErrors(t *testing.T) {
	tmp := isolatePaths(t)
	base := []string{"--db", filepath.Join(tmp, "t.db"), "--config", filepath.Join(tmp, "c.toml"), "import"}

	if err := run(context.Background(), base, io.Discard, io.Discard); err == nil || !strings.Contains(err.Error(), "--in is required") {
		t.Fatalf("expected missing --in error, got %v", err)
	}
	bad := filepath.Join(tmp, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := run(context.Background(), append(base, "--in", bad), io.Discard, io.Discard); err == nil || !strings.Contains(err.Error(), "decode snapshot json") {
		t.Fatalf("expected decode error, got %v", err)
	}
	if err := run(context.Background(), append(base, "--in", filepath.Join(tmp, "missing.json")), io.Discard, io.Discard); err == nil {
		t.Fatal("expected missing file error")
	}
}

// TestRunConfigAndDBEnvOverrides verifies behavior for the covered scenario.
func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	tmp := isolatePaths(t)
	dbPath := filepath.Join(tmp, "env.db")
	cfgPath := filepath.Join(tmp, "env.toml")
	t.Setenv("TASKBOARD_DB_PATH", dbPath)
	t.Setenv("TASKBOARD_CONFIG", cfgPath)

	if err := run(context.Background(), []string{"seed"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(seed) error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected env db path to be used, stat error = %v", err)
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	tmp := isolatePaths(t)
	var out strings.Builder
	if err := run(context.Background(), []string{"--app", "tb", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"app: tb", "dev_mode: false", filepath.Join(tmp, "config", "tb", "config.toml"), filepath.Join(tmp, "data", "tb", "tb.db"), "export_dir: "} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in paths output:\n%s", want, got)
		}
	}
}

// TestRunRejectsInvalidLoggingLevelFromConfig verifies behavior for the covered scenario.
func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	tmp := isolatePaths(t)
	cfgPath := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "t.db"), "--config", cfgPath, "seed"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging level validation error, got %v", err)
	}
}

// TestRunDevModeCreatesWorkspaceLogFile verifies behavior for the covered scenario.
func TestRunDevModeCreatesWorkspaceLogFile(t *testing.T) {
	tmp := isolatePaths(t)
	workspace := filepath.Join(tmp, "ws")
	if err := os.MkdirAll(filepath.Join(workspace, ".git"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(workspace)

	args := []string{"--dev", "--db", filepath.Join(tmp, "t.db"), "--config", filepath.Join(tmp, "c.toml"), "seed"}
	if err := run(context.Background(), args, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(seed) error = %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(workspace, ".taskboard", "log", "taskboard-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one dev log file, got %v (err %v)", matches, err)
	}
	content, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "sqlite repository ready") {
		t.Fatalf("expected logfmt runtime events, got %s", content)
	}
}

// TestRunTUIModeWritesRuntimeLogsToFileOnly verifies behavior for the covered scenario.
func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	tmp := isolatePaths(t)
	workspace := filepath.Join(tmp, "ws")
	if err := os.MkdirAll(filepath.Join(workspace, ".git"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(workspace)
	stubProgram(t, func(tea.Model) program { return fakeProgram{} })

	var stderr bytes.Buffer
	args := []string{"--dev", "--db", filepath.Join(tmp, "t.db"), "--config", filepath.Join(tmp, "c.toml")}
	if err := run(context.Background(), args, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if strings.Contains(stderr.String(), "starting tui program loop") {
		t.Fatalf("expected console sink muted in tui mode, got %q", stderr.String())
	}
	matches, _ := filepath.Glob(filepath.Join(workspace, ".taskboard", "log", "*.log"))
	if len(matches) != 1 {
		t.Fatalf("expected dev log file, got %v", matches)
	}
	content, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected tui events in dev log, got %s", content)
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("TASKBOARD_TEST_BOOL", "true")
	if v, ok := parseBoolEnv("TASKBOARD_TEST_BOOL"); !ok || !v {
		t.Fatalf("expected true, got %t %t", v, ok)
	}
	t.Setenv("TASKBOARD_TEST_BOOL", "nope")
	if _, ok := parseBoolEnv("TASKBOARD_TEST_BOOL"); ok {
		t.Fatal("expected invalid bool to be ignored")
	}
	t.Setenv("TASKBOARD_TEST_BOOL", "")
	if _, ok := parseBoolEnv("TASKBOARD_TEST_BOOL"); ok {
		t.Fatal("expected blank bool to be ignored")
	}
}

// TestToTUIRuntimeConfigMapsFields verifies config values reach the model.
func TestToTUIRuntimeConfigMapsFields(t *testing.T) {
	cfg := config.Default("/tmp/t.db")
	cfg.Board.DefaultView = "focus"
	cfg.Board.ShowProgress = false
	cfg.UI.SimulatedDelayMS = 250
	cfg.UI.ExportDir = "/tmp/exports"
	cfg.Identity.DisplayName = "Ana Ruiz"
	cfg.Keys.Grab = "m"

	got := toTUIRuntimeConfig(cfg)
	if got.DefaultView != domain.ViewModeFocus || got.ShowProgress || !got.ShowAssignee {
		t.Fatalf("unexpected board mapping %#v", got)
	}
	if got.SimulatedDelay != 250*time.Millisecond || got.ExportDir != "/tmp/exports" || got.DisplayName != "Ana Ruiz" {
		t.Fatalf("unexpected ui mapping %#v", got)
	}
	want := tui.KeyConfig{Search: "/", Filter: "f", Create: "n", Export: "x", Share: "y", Notifications: "!", BulkAction: "B", Grab: "m"}
	if got.Keys != want {
		t.Fatalf("unexpected key mapping %#v", got.Keys)
	}
}

// TestWatchConfigSendsReloads verifies config edits reach the running board.
func TestWatchConfigSendsReloads(t *testing.T) {
	tmp := isolatePaths(t)
	cfgPath := filepath.Join(tmp, "conf", "config.toml")
	s := &session{
		configPath: cfgPath,
		dbPath:     filepath.Join(tmp, "t.db"),
		defaults:   config.Default(filepath.Join(tmp, "t.db")),
		logger:     &runtimeLogger{},
	}
	got := make(chan tui.RuntimeConfig, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.watchConfig(ctx, func(cfg tui.RuntimeConfig, err error) {
		if err == nil {
			got <- cfg
		}
	})

	if err := os.WriteFile(cfgPath, []byte("[board]\ndefault_view = \"kanban\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case cfg := <-got:
		if cfg.DefaultView != domain.ViewModeKanban {
			t.Fatalf("expected reloaded kanban default, got %q", cfg.DefaultView)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies behavior for the covered scenario.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := workspaceRootFrom(nested); got != root {
		t.Fatalf("expected %q, got %q", root, got)
	}
}

// TestSanitizeLogFileStem verifies app names become safe file names.
func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"taskboard":   "taskboard",
		"my app/dev":  "my-app-dev",
		"  ":          "taskboard",
		"c:\\weird: ": "c--weird",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies behavior for the covered scenario.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	logger, err := newRuntimeLogger(&console, "taskboard", false, config.LoggingConfig{Level: "info"}, time.Now)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.Info("visible event")
	logger.SetConsoleEnabled(false)
	logger.Info("hidden event")
	logger.Debug("below level")
	if !strings.Contains(console.String(), "visible event") || strings.Contains(console.String(), "hidden event") {
		t.Fatalf("unexpected console output %q", console.String())
	}
	if _, err := newRuntimeLogger(&console, "taskboard", false, config.LoggingConfig{Level: "loud"}, time.Now); err == nil {
		t.Fatal("expected invalid level error")
	}
}
