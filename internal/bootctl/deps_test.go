package bootctl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ocrboot/internal/config"
)

func TestInstallerArgv(t *testing.T) {
	m := venvManifest(config.EnvVenv)
	argv, err := installerArgv(m)
	require.NoError(t, err)
	require.Equal(t, []string{"/ws/.venv/bin/pip", "install"}, argv)

	m = venvManifest(config.EnvConda)
	argv, err = installerArgv(m)
	require.NoError(t, err)
	require.Equal(t, []string{"/ws/.venv/bin/pip", "install"}, argv)

	m = venvManifest(config.EnvUV)
	argv, err = installerArgv(m)
	require.NoError(t, err)
	require.Equal(t, []string{"uv", "pip", "install", "--python", "/ws/.venv/bin/python"}, argv)
}

func TestResolveWheel(t *testing.T) {
	d := t.TempDir()
	whl := filepath.Join(d, "vllm-0.8.5-cp38-abi3-linux_x86_64.whl")
	require.NoError(t, os.WriteFile(whl, []byte("x"), 0o644))

	// direct file
	got, err := resolveWheel(whl)
	require.NoError(t, err)
	require.Equal(t, whl, got)

	// directory resolves to the wheel inside
	got, err = resolveWheel(d)
	require.NoError(t, err)
	require.Equal(t, whl, got)

	// directory without wheels
	empty := t.TempDir()
	_, err = resolveWheel(empty)
	require.Error(t, err)

	// missing path
	_, err = resolveWheel(filepath.Join(d, "nope.whl"))
	require.Error(t, err)
}

func TestInstallDeps_MissingInputs(t *testing.T) {
	ws := t.TempDir()
	m := &config.Manifest{Workspace: ws}
	m.ApplyDefaults()

	// requirements file that does not exist fails before any tool runs
	m.Packages.Requirements = []string{"DeepSeek-OCR/requirements.txt"}
	require.Error(t, installDeps(m))

	// wheel path that does not exist fails the same way
	m.Packages.Requirements = nil
	m.Packages.Wheels = []string{"wheels/vllm.whl"}
	require.Error(t, installDeps(m))
}
