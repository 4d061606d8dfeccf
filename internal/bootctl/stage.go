package bootctl

import (
	"fmt"
	"os"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// stageAll copies each staged entry (model weights, configs) into the
// location the inference code expects.
func stageAll(m *config.Manifest) error {
	ws, err := workspaceDir(m)
	if err != nil {
		return err
	}
	for _, s := range m.Stage {
		src, err := resolvePath(ws, s.Src)
		if err != nil {
			return err
		}
		dest, err := resolvePath(ws, s.Dest)
		if err != nil {
			return err
		}
		fi, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("stage source %s: %w", s.Src, err)
		}
		info("[stage] Copying %s -> %s", src, dest)
		if fi.IsDir() {
			err = fsutil.CopyDir(src, dest)
		} else {
			err = fsutil.CopyFile(src, dest)
		}
		if err != nil {
			return fmt.Errorf("stage %s: %w", s.Src, err)
		}
	}
	return nil
}
