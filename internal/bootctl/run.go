package bootctl

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// runInference invokes the batch OCR entry point with the environment
// the original script expects, streaming its output. SIGINT/SIGTERM
// cancel the context and kill the child.
func runInference(m *config.Manifest) error {
	if m.Run.Script == "" {
		return fmt.Errorf("run.script is not set in the manifest")
	}
	dir, err := runDir(m)
	if err != nil {
		return err
	}
	py, err := envPython(m)
	if err != nil {
		return err
	}
	if !fsutil.PathExists(py) {
		return fmt.Errorf("env interpreter not found at %s; run 'ocrboot install env' first", py)
	}
	if !fsutil.PathExists(filepath.Join(dir, m.Run.Script)) {
		return fmt.Errorf("entry point %s not found under %s", m.Run.Script, dir)
	}
	if !hasNvidiaGPU() {
		warn("[run] nvidia-smi not found; inference will likely fail without a GPU")
	}
	env := inferenceEnv(m, cudaVersion())
	info("[run] %s %s (dir: %s)", py, m.Run.Script, dir)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = killProcesses() }()
	return fnRunCmd(ctx, Cmd{Path: py, Args: []string{m.Run.Script}, Dir: dir, Env: env, Stream: true})
}

// inferenceEnv builds the child environment. cuda is the detected
// toolkit release, "" when unknown.
func inferenceEnv(m *config.Manifest, cuda string) map[string]string {
	env := map[string]string{
		"CUDA_VISIBLE_DEVICES": m.Run.GPU,
	}
	if cuda == "11.8" {
		// Triton needs the matching ptxas on CUDA 11.8 hosts
		env["TRITON_PTXAS_PATH"] = "/usr/local/cuda-11.8/bin/ptxas"
	}
	for k, v := range m.Run.Env {
		env[k] = v
	}
	return env
}
