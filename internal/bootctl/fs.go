package bootctl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// firstWheel returns the name of the first *.whl file in dir.
func firstWheel(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".whl") {
			return name, nil
		}
	}
	return "", fmt.Errorf("no .whl files found in %s", dir)
}

// workspaceDir resolves the manifest workspace to an absolute-ish path.
func workspaceDir(m *config.Manifest) (string, error) {
	return fsutil.ExpandHome(m.Workspace)
}

// resolvePath expands p and anchors it at the workspace when relative.
func resolvePath(ws, p string) (string, error) {
	ep, err := fsutil.ExpandHome(p)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(ep) {
		return ep, nil
	}
	return filepath.Join(ws, ep), nil
}

// runDir resolves the directory holding the inference entry point.
func runDir(m *config.Manifest) (string, error) {
	if m.Run.Dir == "" {
		return "", fmt.Errorf("run.dir is not set in the manifest")
	}
	ws, err := workspaceDir(m)
	if err != nil {
		return "", err
	}
	return resolvePath(ws, m.Run.Dir)
}
