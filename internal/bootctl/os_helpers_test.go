package bootctl

import "testing"

func TestParseCUDARelease(t *testing.T) {
	out := `nvcc: NVIDIA (R) Cuda compiler driver
Copyright (c) 2005-2022 NVIDIA Corporation
Built on Wed_Sep_21_10:33:58_PDT_2022
Cuda compilation tools, release 11.8, V11.8.89
Build cuda_11.8.r11.8/compiler.31833905_0
`
	if got := parseCUDARelease(out); got != "11.8" {
		t.Fatalf("expected 11.8, got %q", got)
	}
	if got := parseCUDARelease("no version info here"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := parseCUDARelease("Cuda compilation tools, release 12.4"); got != "12.4" {
		t.Fatalf("expected 12.4, got %q", got)
	}
}
