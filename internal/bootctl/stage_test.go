package bootctl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

func TestStageAll(t *testing.T) {
	ws := t.TempDir()
	src := filepath.Join(ws, "weights")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "model.safetensors"), []byte("w"), 0o644))
	cfgFile := filepath.Join(ws, "config.py")
	require.NoError(t, os.WriteFile(cfgFile, []byte("MODEL_PATH = './models'"), 0o644))

	m := &config.Manifest{
		Workspace: ws,
		Stage: []config.StageDir{
			{Src: "weights", Dest: "DeepSeek-OCR/DeepSeek-OCR-vllm/models"},
			{Src: "config.py", Dest: "DeepSeek-OCR/DeepSeek-OCR-vllm/config.py"},
		},
	}
	m.ApplyDefaults()
	require.NoError(t, stageAll(m))

	require.True(t, fsutil.PathExists(filepath.Join(ws, "DeepSeek-OCR", "DeepSeek-OCR-vllm", "models", "model.safetensors")))
	require.True(t, fsutil.PathExists(filepath.Join(ws, "DeepSeek-OCR", "DeepSeek-OCR-vllm", "config.py")))
}

func TestStageAll_MissingSource(t *testing.T) {
	m := &config.Manifest{
		Workspace: t.TempDir(),
		Stage:     []config.StageDir{{Src: "missing", Dest: "out"}},
	}
	m.ApplyDefaults()
	require.Error(t, stageAll(m))
}
