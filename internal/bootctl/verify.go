package bootctl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// verifyAll runs the acceptance checks: proxy reachable, repos cloned,
// interpreter working, declared imports resolving, entry point present.
func verifyAll(m *config.Manifest) error {
	if err := verifyProxy(m); err != nil {
		return err
	}
	if err := verifyRepos(m); err != nil {
		return err
	}
	if err := verifyEnv(m); err != nil {
		return err
	}
	if err := verifyImports(m); err != nil {
		return err
	}
	return verifyEntry(m)
}

func verifyProxy(m *config.Manifest) error {
	penv, err := proxyEnv(m)
	if err != nil {
		return err
	}
	if len(penv) == 0 {
		return nil
	}
	if envBool("OCRBOOT_SKIP_PROXY_CHECK", false) {
		info("[verify] proxy check skipped (OCRBOOT_SKIP_PROXY_CHECK)")
		return nil
	}
	timeout := time.Duration(envInt("OCRBOOT_PROXY_TIMEOUT_MS", 2000)) * time.Millisecond
	if err := proxyReachable(penv, timeout); err != nil {
		return fmt.Errorf("proxy unreachable: %w", err)
	}
	info("[verify] proxy reachable")
	return nil
}

func verifyRepos(m *config.Manifest) error {
	ws, err := workspaceDir(m)
	if err != nil {
		return err
	}
	for _, r := range m.Repos {
		dest := filepath.Join(ws, r.Dest)
		if !fsutil.PathExists(filepath.Join(dest, ".git")) {
			return fmt.Errorf("repo %s missing at %s; run 'ocrboot install repos'", r.Name, dest)
		}
		info("[verify] repo %s present", r.Name)
	}
	return nil
}

func verifyEnv(m *config.Manifest) error {
	py, err := envPython(m)
	if err != nil {
		return err
	}
	if !fsutil.PathExists(py) {
		return fmt.Errorf("env interpreter missing at %s; run 'ocrboot install env'", py)
	}
	if err := runCmdVerbose(context.Background(), py, "--version"); err != nil {
		return fmt.Errorf("%s --version failed: %w", py, err)
	}
	return nil
}

func verifyImports(m *config.Manifest) error {
	if len(m.Verify.Imports) == 0 {
		return nil
	}
	py, err := envPython(m)
	if err != nil {
		return err
	}
	for _, mod := range m.Verify.Imports {
		if err := runCmdVerbose(context.Background(), py, "-c", "import "+mod); err != nil {
			return fmt.Errorf("module %s is not importable: %w", mod, err)
		}
		info("[verify] import %s ok", mod)
	}
	return nil
}

func verifyEntry(m *config.Manifest) error {
	if m.Run.Script == "" {
		return nil
	}
	dir, err := runDir(m)
	if err != nil {
		return err
	}
	script := filepath.Join(dir, m.Run.Script)
	if !fsutil.PathExists(script) {
		return fmt.Errorf("entry point missing at %s", script)
	}
	info("[verify] entry point present")
	return nil
}
