package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tsultanov/flts/internal/config"
)

// loadConfig loads configuration from --config (or the default search
// path), without enabling hot-reload — CLI commands run once and exit.
func loadConfig() (*config.Config, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	return mgr.Get(), nil
}

// resolveLibraryRoot returns the effective library root: the override
// flag if given, otherwise the configured one, with "~" expanded.
func resolveLibraryRoot(override string) (string, error) {
	if override != "" {
		return expandHome(override)
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return expandHome(cfg.LibraryRoot)
}

// durationFromMillis converts a millisecond count from config into a
// time.Duration.
func durationFromMillis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
