package bootctl

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// cudaVersion returns the installed CUDA toolkit release (e.g. "11.8"),
// or "" when none is detectable.
func cudaVersion() string {
	if out, err := exec.Command("nvcc", "--version").Output(); err == nil {
		if v := parseCUDARelease(string(out)); v != "" {
			return v
		}
	}
	// fall back to the /usr/local/cuda symlink
	if target, err := os.Readlink("/usr/local/cuda"); err == nil {
		base := filepath.Base(target)
		if strings.HasPrefix(base, "cuda-") {
			return strings.TrimPrefix(base, "cuda-")
		}
	}
	return ""
}

// parseCUDARelease extracts the release number from nvcc --version output,
// e.g. "Cuda compilation tools, release 11.8, V11.8.89" -> "11.8".
func parseCUDARelease(out string) string {
	for _, line := range strings.Split(out, "\n") {
		i := strings.Index(line, "release ")
		if i < 0 {
			continue
		}
		rest := line[i+len("release "):]
		if j := strings.IndexAny(rest, ",;"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return ""
}

// hasNvidiaGPU reports whether the NVIDIA driver tooling is present.
func hasNvidiaGPU() bool {
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}
