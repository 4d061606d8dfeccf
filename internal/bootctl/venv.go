package bootctl

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"ocrboot/internal/config"
)

// installEnv creates the virtual environment the manifest asks for.
// conda and uv both lay the interpreter out under <env>/bin, so the
// later steps resolve tools the same way for every kind.
func installEnv(m *config.Manifest) error {
	dir, err := envDir(m)
	if err != nil {
		return err
	}
	switch m.Env.Kind {
	case config.EnvConda:
		info("[env] Creating conda env at %s", dir)
		args := []string{"create", "-y", "-p", dir}
		if m.Env.Python != "" {
			args = append(args, "python="+m.Env.Python)
		}
		return runCmdVerbose(context.Background(), "conda", args...)
	case config.EnvUV:
		info("[env] Creating uv venv at %s", dir)
		args := []string{"venv", dir}
		if m.Env.Python != "" {
			args = append(args, "--python", m.Env.Python)
		}
		return runCmdVerbose(context.Background(), "uv", args...)
	default:
		info("[env] Creating venv at %s", dir)
		return runCmdVerbose(context.Background(), "python3", "-m", "venv", dir)
	}
}

// envDir resolves the environment directory, anchored at the workspace
// when the manifest path is relative.
func envDir(m *config.Manifest) (string, error) {
	ws, err := workspaceDir(m)
	if err != nil {
		return "", err
	}
	return resolvePath(ws, m.Env.Path)
}

func envPython(m *config.Manifest) (string, error) {
	dir, err := envDir(m)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bin", "python"), nil
}

func envPip(m *config.Manifest) (string, error) {
	dir, err := envDir(m)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bin", "pip"), nil
}

// printActivateEnv prints export lines for the caller to eval. A child
// process cannot mutate the invoking shell, which is what the original
// scripts relied on sourcing for.
func printActivateEnv(m *config.Manifest) error {
	dir, err := envDir(m)
	if err != nil {
		return err
	}
	fmt.Printf("export VIRTUAL_ENV=%q\n", dir)
	fmt.Printf("export PATH=\"%s:$PATH\"\n", filepath.Join(dir, "bin"))
	if m.Run.GPU != "" {
		fmt.Printf("export CUDA_VISIBLE_DEVICES=%q\n", m.Run.GPU)
	}
	penv, err := proxyEnv(m)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(penv))
	for k := range penv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("export %s=%q\n", k, penv[k])
	}
	return nil
}
