package bootctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// installerArgv returns the argv prefix that installs packages into the
// environment: uv installs via "uv pip install --python <py>", everything
// else via the env's own pip.
func installerArgv(m *config.Manifest) ([]string, error) {
	if m.Env.Kind == config.EnvUV {
		py, err := envPython(m)
		if err != nil {
			return nil, err
		}
		return []string{"uv", "pip", "install", "--python", py}, nil
	}
	pip, err := envPip(m)
	if err != nil {
		return nil, err
	}
	return []string{pip, "install"}, nil
}

// installDeps installs everything the manifest pins, in order: pre-built
// wheels first (the vLLM wheel must land before anything resolves against
// it), then pinned specs, then requirements files.
func installDeps(m *config.Manifest) error {
	ws, err := workspaceDir(m)
	if err != nil {
		return err
	}
	penv, err := proxyEnv(m)
	if err != nil {
		return err
	}
	argv, err := installerArgv(m)
	if err != nil {
		return err
	}
	var index []string
	if m.Packages.IndexURL != "" {
		index = []string{"--extra-index-url", m.Packages.IndexURL}
	}
	install := func(args ...string) error {
		full := append(append([]string{}, argv[1:]...), args...)
		return fnRunCmd(context.Background(), Cmd{Path: argv[0], Args: full, Env: penv})
	}

	for _, w := range m.Packages.Wheels {
		p, err := resolvePath(ws, w)
		if err != nil {
			return err
		}
		wheel, err := resolveWheel(p)
		if err != nil {
			return fmt.Errorf("wheel %s: %w", w, err)
		}
		info("[deps] Installing wheel %s", filepath.Base(wheel))
		if err := install(wheel); err != nil {
			return fmt.Errorf("install wheel %s: %w", filepath.Base(wheel), err)
		}
	}

	if len(m.Packages.Pins) > 0 {
		info("[deps] Installing %d pinned packages", len(m.Packages.Pins))
		args := append(append([]string{}, index...), m.Packages.Pins...)
		if err := install(args...); err != nil {
			return fmt.Errorf("install pins: %w", err)
		}
	}

	for _, req := range m.Packages.Requirements {
		p, err := resolvePath(ws, req)
		if err != nil {
			return err
		}
		if !fsutil.PathExists(p) {
			return fmt.Errorf("requirements file not found: %s", p)
		}
		info("[deps] Installing requirements %s", p)
		args := append(append([]string{}, index...), "-r", p)
		if err := install(args...); err != nil {
			return fmt.Errorf("install -r %s: %w", p, err)
		}
	}
	return nil
}

// resolveWheel accepts either a wheel file or a directory holding one.
func resolveWheel(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}
	name, err := firstWheel(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(path, name), nil
}
