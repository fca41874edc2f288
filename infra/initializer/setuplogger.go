package initializer

import (
	"log/slog"
	"os"
	"strings"

	"github.com/amirasaad/pos/config"
	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

// setupLogger builds the process-wide slog logger backed by charmbracelet/log.
// Format, level, prefix and timestamp layout come from config.LogConfig.
func setupLogger(cfg config.LogConfig) *slog.Logger {
	styles := charmlog.DefaultStyles()
	styles.Levels[charmlog.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO ✅").
		Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"})
	styles.Levels[charmlog.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG 🔎").
		Foreground(lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"})
	styles.Levels[charmlog.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN ⚠️").
		Foreground(lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"})
	styles.Levels[charmlog.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR ❌").
		Foreground(lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"})

	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	styles.Values["err"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["sale_id"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))

	formattersMap := map[string]charmlog.Formatter{
		"json": charmlog.JSONFormatter,
		"text": charmlog.TextFormatter,
	}
	formatter, ok := formattersMap[strings.ToLower(cfg.Format)]
	if !ok {
		formatter = charmlog.TextFormatter
	}

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           charmlog.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(styles)

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
