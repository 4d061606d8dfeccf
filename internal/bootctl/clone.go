package bootctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// installRepos clones every manifest repo into the workspace, or
// fast-forwards an existing checkout. A clone failure aborts the rest.
func installRepos(m *config.Manifest) error {
	ws, err := workspaceDir(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(ws, 0o755); err != nil {
		return err
	}
	penv, err := proxyEnv(m)
	if err != nil {
		return err
	}
	for _, r := range m.Repos {
		dest := filepath.Join(ws, r.Dest)
		if fsutil.PathExists(filepath.Join(dest, ".git")) {
			info("[clone] Updating %s in %s", r.Name, dest)
			_ = runEnvCmd(context.Background(), penv, "git", "-C", dest, "pull", "--ff-only")
			continue
		}
		info("[clone] Cloning %s into %s", r.Name, dest)
		if err := runEnvCmd(context.Background(), penv, "git", "clone", r.URL, dest); err != nil {
			return fmt.Errorf("clone %s: %w", r.Name, err)
		}
		if r.Ref != "" {
			if err := runCmdVerbose(context.Background(), "git", "-C", dest, "checkout", r.Ref); err != nil {
				return fmt.Errorf("checkout %s@%s: %w", r.Name, r.Ref, err)
			}
		}
	}
	return nil
}
