package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsultanov/flts/internal/version"
)

var (
	cfgFile  string
	homeDir  string
	logLevel string
)

// ParseLogLevel converts a string log level to slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

// GetLogLevel returns the configured log level, checking:
// 1. CLI flag (--log-level)
// 2. Environment variable (FLTS_LOG_LEVEL)
// 3. Default (info)
func GetLogLevel() slog.Level {
	level := logLevel
	if level == "" {
		level = os.Getenv("FLTS_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}

	parsed, err := ParseLogLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
		return slog.LevelInfo
	}
	return parsed
}

// IsDebugLevel returns true if the configured log level is debug.
func IsDebugLevel() bool {
	return GetLogLevel() == slog.LevelDebug
}

var rootCmd = &cobra.Command{
	Use:   "flts",
	Short: "Crash-safe local library of books and their translations",
	Long: `flts manages a local library of books and per-language translations,
stored as checksummed binary containers that tolerate concurrent editors
and file-sync tools.

It includes:
  - EPUB import/export
  - A reconciling save protocol that merges conflicting writes instead of
    overwriting them
  - An optional LLM-backed translator for filling in missing paragraph
    translations
  - A file watcher for reacting to changes made by other processes`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.flts/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "flts home directory (default: ~/.flts)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default: info, env: FLTS_LOG_LEVEL)",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: GetLogLevel(),
		})))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(bookCmd)
}
