package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// defaultAppName names the config and data directories.
const defaultAppName = "taskboard"

// Paths holds every on-disk location the app reads or writes.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	ExportDir  string
}

// Options selects the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// baseOverride names the env vars that replace the config and data bases on one OS.
type baseOverride struct {
	config string
	data   string
}

// overridesByOS lists env var overrides per GOOS. macOS keeps the OS defaults.
var overridesByOS = map[string]baseOverride{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: defaultAppName})
}

// DefaultPathsWithOptions resolves paths for the current OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = defaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	switch runtime.GOOS {
	case "linux":
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", homeErr)
		}
		dataDir = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataDir = v
		}
	}

	env := map[string]string{}
	for _, override := range overridesByOS {
		env[override.config] = os.Getenv(override.config)
		env[override.data] = os.Getenv(override.data)
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// PathsFor resolves paths from explicit inputs so every OS can be tested anywhere.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	if override, ok := overridesByOS[goos]; ok {
		if v := strings.TrimSpace(env[override.config]); v != "" {
			configBase = v
		}
		if v := strings.TrimSpace(env[override.data]); v != "" {
			dataBase = v
		}
	}

	appDataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    appDataDir,
		DBPath:     filepath.Join(appDataDir, appName+".db"),
		ExportDir:  filepath.Join(appDataDir, "exports"),
	}, nil
}

// SnapshotPath returns a timestamped snapshot file name inside dir.
func SnapshotPath(dir string, now time.Time) string {
	return filepath.Join(dir, "taskboard-"+now.UTC().Format("20060102-150405")+".json")
}
