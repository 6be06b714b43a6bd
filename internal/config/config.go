package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

// maxSimulatedDelayMS caps the fake processing delay shown before exports.
const maxSimulatedDelayMS = 10_000

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
	Identity IdentityConfig `toml:"identity"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	DefaultView          string `toml:"default_view"` // list | kanban | focus
	ShowProgress         bool   `toml:"show_progress"`
	ShowAssignee         bool   `toml:"show_assignee"`
	DateFormat           string `toml:"date_format"`
	NotifyOnStatusChange bool   `toml:"notify_on_status_change"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type UIConfig struct {
	SimulatedDelayMS int    `toml:"simulated_delay_ms"`
	ExportDir        string `toml:"export_dir"`
}

type IdentityConfig struct {
	DisplayName string `toml:"display_name"`
}

type KeyConfig struct {
	Search        string `toml:"search"`
	Filter        string `toml:"filter"`
	Create        string `toml:"create"`
	Export        string `toml:"export"`
	Share         string `toml:"share"`
	Notifications string `toml:"notifications"`
	BulkAction    string `toml:"bulk_action"`
	Grab          string `toml:"grab"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".taskboard/log",
			},
		},
		Board: BoardConfig{
			DefaultView:          string(domain.ViewModeList),
			ShowProgress:         true,
			ShowAssignee:         true,
			DateFormat:           "Jan 2, 2006",
			NotifyOnStatusChange: true,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		UI: UIConfig{
			SimulatedDelayMS: 1500,
		},
		Keys: KeyConfig{
			Search:        "/",
			Filter:        "f",
			Create:        "n",
			Export:        "x",
			Share:         "y",
			Notifications: "!",
			BulkAction:    "B",
			Grab:          "g",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if _, err := domain.ParseViewMode(c.Board.DefaultView); err != nil {
		return fmt.Errorf("invalid board.default_view: %q", c.Board.DefaultView)
	}
	if strings.TrimSpace(c.Board.DateFormat) == "" {
		return errors.New("board.date_format is required")
	}

	if c.UI.SimulatedDelayMS < 0 || c.UI.SimulatedDelayMS > maxSimulatedDelayMS {
		return fmt.Errorf("ui.simulated_delay_ms must be between 0 and %d", maxSimulatedDelayMS)
	}

	bindings := map[string]string{
		"search":        c.Keys.Search,
		"filter":        c.Keys.Filter,
		"create":        c.Keys.Create,
		"export":        c.Keys.Export,
		"share":         c.Keys.Share,
		"notifications": c.Keys.Notifications,
		"bulk_action":   c.Keys.BulkAction,
		"grab":          c.Keys.Grab,
	}
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	slices.Sort(names)
	seen := map[string]string{}
	for _, name := range names {
		key := strings.TrimSpace(bindings[name])
		if key == "" {
			return fmt.Errorf("keys.%s is required", name)
		}
		if other, ok := seen[key]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s (%q)", name, other, key)
		}
		seen[key] = name
	}

	return nil
}

// SimulatedDelay returns the configured export delay.
func (c Config) SimulatedDelay() time.Duration {
	return time.Duration(c.UI.SimulatedDelayMS) * time.Millisecond
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
