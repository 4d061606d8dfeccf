package bootctl

import (
	"os"
	"path/filepath"
	"testing"

	"ocrboot/internal/config"
)

func TestInferenceEnv(t *testing.T) {
	m := &config.Manifest{Run: config.Run{GPU: "0"}}
	m.ApplyDefaults()

	env := inferenceEnv(m, "")
	if env["CUDA_VISIBLE_DEVICES"] != "0" {
		t.Fatalf("CUDA_VISIBLE_DEVICES: %q", env["CUDA_VISIBLE_DEVICES"])
	}
	if env["VLLM_USE_V1"] != "0" {
		t.Fatalf("VLLM_USE_V1 default missing: %+v", env)
	}
	if _, ok := env["TRITON_PTXAS_PATH"]; ok {
		t.Fatalf("TRITON_PTXAS_PATH must only be set on CUDA 11.8")
	}

	env = inferenceEnv(m, "11.8")
	if env["TRITON_PTXAS_PATH"] != "/usr/local/cuda-11.8/bin/ptxas" {
		t.Fatalf("TRITON_PTXAS_PATH: %q", env["TRITON_PTXAS_PATH"])
	}

	env = inferenceEnv(m, "12.1")
	if _, ok := env["TRITON_PTXAS_PATH"]; ok {
		t.Fatalf("TRITON_PTXAS_PATH must not be set on CUDA 12.1")
	}

	// manifest env wins over computed values
	m.Run.Env["CUDA_VISIBLE_DEVICES"] = "1"
	env = inferenceEnv(m, "")
	if env["CUDA_VISIBLE_DEVICES"] != "1" {
		t.Fatalf("manifest override lost: %q", env["CUDA_VISIBLE_DEVICES"])
	}
}

func TestRunInference_Preflight(t *testing.T) {
	m := &config.Manifest{Workspace: t.TempDir()}
	m.ApplyDefaults()

	// no script configured
	if err := runInference(m); err == nil {
		t.Fatalf("expected error when run.script unset")
	}

	// script configured but env missing
	m.Run.Script = "run_dpsk_ocr_pdf_batch.py"
	m.Run.Dir = "proj"
	if err := runInference(m); err == nil {
		t.Fatalf("expected error when interpreter missing")
	}

	// interpreter present but entry point missing
	bin := filepath.Join(m.Workspace, ".venv", "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bin, "python"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := runInference(m); err == nil {
		t.Fatalf("expected error when entry point missing")
	}
}
