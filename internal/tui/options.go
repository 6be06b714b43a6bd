package tui

import (
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
)

// RuntimeConfig holds the settings the model can pick up without a restart.
type RuntimeConfig struct {
	DefaultView    domain.ViewMode
	ShowProgress   bool
	ShowAssignee   bool
	DateFormat     string
	SimulatedDelay time.Duration
	ExportDir      string
	DisplayName    string
	Keys           KeyConfig
}

// DefaultRuntimeConfig returns the settings used when no option overrides them.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DefaultView:    domain.ViewModeList,
		ShowProgress:   true,
		ShowAssignee:   true,
		DateFormat:     "Jan 2, 2006",
		SimulatedDelay: 1500 * time.Millisecond,
		ExportDir:      ".",
	}
}

// Logger is the structured logger the model reports developer warnings to.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type Option func(*Model)

// WithRuntimeConfig applies startup settings.
func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		m.applyRuntimeConfig(cfg)
		m.board.SetViewMode(m.cfg.DefaultView)
	}
}

// WithLogger routes model warnings to logger.
func WithLogger(logger Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source used for export names.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}

// applyRuntimeConfig normalizes cfg and stores it on the model.
func (m *Model) applyRuntimeConfig(cfg RuntimeConfig) {
	if _, err := domain.ParseViewMode(string(cfg.DefaultView)); err != nil {
		cfg.DefaultView = domain.ViewModeList
	}
	if strings.TrimSpace(cfg.DateFormat) == "" {
		cfg.DateFormat = DefaultRuntimeConfig().DateFormat
	}
	if cfg.SimulatedDelay < 0 {
		cfg.SimulatedDelay = 0
	}
	if strings.TrimSpace(cfg.ExportDir) == "" {
		cfg.ExportDir = "."
	}
	cfg.DisplayName = strings.TrimSpace(cfg.DisplayName)
	m.cfg = cfg
	m.keys = newKeyMap()
	m.keys.applyConfig(cfg.Keys)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
