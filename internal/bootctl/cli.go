// Package bootctl implements the ocrboot CLI: manifest-driven bootstrap
// of DeepSeek-OCR inference environments (clone, venv, pinned installs,
// weight staging, T4 patches, inference invocation, verification).
package bootctl

import (
	"os"

	"ocrboot/internal/config"
)

// Config holds the CLI-level settings shared by every command.
type Config struct {
	Manifest string
	LogLvl   string
}

func defaultConfig() *Config {
	return &Config{
		Manifest: envStr("OCRBOOT_MANIFEST", "ocrboot.yaml"),
		LogLvl:   envStr("OCRBOOT_LOG_LEVEL", "info"),
	}
}

// loadManifest reads, defaults and validates the manifest named by cfg.
func loadManifest(cfg *Config) (*config.Manifest, error) {
	m, err := config.Load(cfg.Manifest)
	if err != nil {
		return nil, err
	}
	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	cfg := defaultConfig()
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		errl("%v", err)
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/ocrboot.
func Main() int { return MainWithArgs(os.Args[1:]) }
