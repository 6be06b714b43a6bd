package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/taskboard.db")
	if cfg.Database.Path != "/tmp/taskboard.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Board.DefaultView != "list" {
		t.Fatalf("unexpected default view %q", cfg.Board.DefaultView)
	}
	if !cfg.Board.ShowProgress || !cfg.Board.ShowAssignee {
		t.Fatal("expected progress and assignee columns enabled by default")
	}
	if cfg.SimulatedDelay() != 1500*time.Millisecond {
		t.Fatalf("unexpected simulated delay %v", cfg.SimulatedDelay())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/taskboard.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/taskboard.db"

[logging]
level = "debug"

[logging.dev_file]
enabled = false

[board]
default_view = "kanban"
show_assignee = false

[ui]
simulated_delay_ms = 0

[identity]
display_name = "Ana Ruiz"

[keys]
grab = "m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/taskboard.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging config %#v", cfg.Logging)
	}
	if cfg.Board.DefaultView != "kanban" || cfg.Board.ShowAssignee {
		t.Fatalf("unexpected board config %#v", cfg.Board)
	}
	if !cfg.Board.ShowProgress {
		t.Fatal("expected unset show_progress to keep the default")
	}
	if cfg.SimulatedDelay() != 0 {
		t.Fatalf("expected zero delay, got %v", cfg.SimulatedDelay())
	}
	if cfg.Identity.DisplayName != "Ana Ruiz" || cfg.Keys.Grab != "m" || cfg.Keys.Search != "/" {
		t.Fatalf("unexpected identity/keys %#v %#v", cfg.Identity, cfg.Keys)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"view":  "[board]\ndefault_view = \"timeline\"\n",
		"level": "[logging]\nlevel = \"loud\"\n",
		"delay": "[ui]\nsimulated_delay_ms = 60000\n",
		"keys":  "[keys]\nfilter = \"/\"\n",
		"blank": "[keys]\nshare = \" \"\n",
		"toml":  "[board\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := Load(path, Default("/tmp/default.db")); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[board]\ndefault_view = \"list\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan Config, 4)
	err := Watch(ctx, path, Default("/tmp/default.db"), func(cfg Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[board]\ndefault_view = \"focus\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case cfg := <-reloaded:
		if cfg.Board.DefaultView != "focus" {
			t.Fatalf("unexpected reloaded view %q", cfg.Board.DefaultView)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatchRequiresCallback(t *testing.T) {
	if err := Watch(context.Background(), filepath.Join(t.TempDir(), "config.toml"), Default("/tmp/x.db"), nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
