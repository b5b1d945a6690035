package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/transfers/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type levelTheme struct {
	level log.Level
	icon  string
	color lipgloss.AdaptiveColor
}

var levelThemes = []levelTheme{
	{log.DebugLevel, "🐛", lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}},
	{log.InfoLevel, "ℹ️", lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}},
	{log.WarnLevel, "⚠️", lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}},
	{log.ErrorLevel, "❌", lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}},
}

// Keys highlighted in text output; audit lines carry transferID and accountID.
var highlightedKeys = []string{"error", "transferID", "accountID", "status", "prefix", "caller", "time"}

func loggerStyles() *log.Styles {
	styles := log.DefaultStyles()
	for _, th := range levelThemes {
		styles.Levels[th.level] = lipgloss.NewStyle().
			SetString(th.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(th.color)
	}
	accent := levelThemes[0].color
	for _, key := range highlightedKeys {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(accent)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(levelThemes[3].color)
	return styles
}

// newLogger builds the slog logger backed by charmbracelet/log and writing to w.
func newLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(loggerStyles())
	return slog.New(handler)
}

// setupLogger builds the process logger on stdout and installs it as the slog default.
func setupLogger(cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{}
	}
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}
