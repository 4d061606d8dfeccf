package bootctl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// T4 cards have no bfloat16 support and their shared memory cannot hold
// the default KV block size, so the cloned sources need dtype and
// block_size rewrites before the entry point will run on them.
type rewrite struct {
	old, new string
}

var t4Rewrites = []rewrite{
	{"torch.bfloat16", "torch.float16"},
	{"bfloat16", "float16"},
	{"block_size=256", "block_size=16"},
}

// vLLM moved several symbols between releases while the cloned sources
// pin the old import paths, so they break against newer wheels. Each
// fix swaps a pinned import for a try/except chain over the known
// locations. The chain still contains the pinned line, so the marker
// comment is what makes a fix idempotent.
type importFix struct {
	old    string
	new    string
	marker string
}

var vllmImportFixes = []importFix{
	{
		old:    "from vllm.model_executor import SamplingMetadata",
		marker: "# SamplingMetadata moved across vllm releases",
		new: `# SamplingMetadata moved across vllm releases
try:
    from vllm.model_executor.sampling_metadata import SamplingMetadata
except ImportError:
    try:
        from vllm.model_executor import SamplingMetadata
    except ImportError:
        try:
            from vllm.sequence import SamplingMetadata
        except ImportError:
            from vllm.v1.sample.metadata import SamplingMetadata`,
	},
	{
		old:    "from vllm.model_executor.model_loader.utils import set_default_torch_dtype",
		marker: "# set_default_torch_dtype moved across vllm releases",
		new: `# set_default_torch_dtype moved across vllm releases
try:
    from vllm.utils.torch_utils import set_default_torch_dtype
except ImportError:
    try:
        from vllm.model_executor.model_loader.utils import set_default_torch_dtype
    except ImportError:
        try:
            from vllm.utils import set_default_torch_dtype
        except ImportError:
            def set_default_torch_dtype(dtype):
                pass`,
	},
	{
		old: `from vllm.model_executor.models.utils import (AutoWeightsLoader, WeightsMapper, flatten_bn,
                    init_vllm_registered_model, maybe_prefix,
                    merge_multimodal_embeddings)`,
		marker: "# merge_multimodal_embeddings moved across vllm releases",
		new: `from vllm.model_executor.models.utils import (AutoWeightsLoader, WeightsMapper, flatten_bn,
                    init_vllm_registered_model, maybe_prefix)
# merge_multimodal_embeddings moved across vllm releases
try:
    from vllm.model_executor.models.utils import merge_multimodal_embeddings
except ImportError:
    try:
        from vllm.model_executor.models.utils import _merge_multimodal_embeddings as merge_multimodal_embeddings
    except ImportError:
        from vllm.multimodal.utils import merge_multimodal_embeddings`,
	},
	{
		old: `from vllm import AsyncLLMEngine, SamplingParams
from vllm.engine.arg_utils import AsyncEngineArgs`,
		marker: "# AsyncLLMEngine and AsyncEngineArgs moved across vllm releases",
		new: `# AsyncLLMEngine and AsyncEngineArgs moved across vllm releases
try:
    from vllm import AsyncLLMEngine, SamplingParams
except ImportError:
    from vllm.engine.async_llm_engine import AsyncLLMEngine
    from vllm import SamplingParams
try:
    from vllm.engine.arg_utils import AsyncEngineArgs
except ImportError:
    try:
        from vllm.engine.async_llm_engine import AsyncEngineArgs
    except ImportError:
        from vllm import AsyncEngineArgs`,
	},
	{
		old:    "from vllm.model_executor.models.registry import ModelRegistry",
		marker: "# ModelRegistry moved across vllm releases",
		new: `# ModelRegistry moved across vllm releases
try:
    from vllm.model_executor.models.registry import ModelRegistry
except ImportError:
    try:
        from vllm.model_executor.models import ModelRegistry
    except ImportError:
        from vllm.model_executor.model_loader import ModelRegistry`,
	},
}

const backupDirName = ".ocrboot-backup"

// applyRewrites returns the rewritten content and the number of
// replacements made. Order matters: the torch-qualified form is handled
// before the bare literal so each occurrence is counted once.
func applyRewrites(content string, rws []rewrite) (string, int) {
	n := 0
	for _, rw := range rws {
		c := strings.Count(content, rw.old)
		if c == 0 {
			continue
		}
		content = strings.ReplaceAll(content, rw.old, rw.new)
		n += c
	}
	return content, n
}

// applyImportFixes rewrites pinned vLLM imports into fallback chains,
// returning the rewritten content and the number of fixes applied.
// A fix is skipped when its marker is already present.
func applyImportFixes(content string, fixes []importFix) (string, int) {
	n := 0
	for _, f := range fixes {
		if !strings.Contains(content, f.old) || strings.Contains(content, f.marker) {
			continue
		}
		content = strings.ReplaceAll(content, f.old, f.new)
		n++
	}
	return content, n
}

// patchT4 rewrites the *.py files under the run directory, copying each
// original into the backup directory before its first modification.
func patchT4(m *config.Manifest) error {
	dir, err := runDir(m)
	if err != nil {
		return err
	}
	backup := filepath.Join(dir, backupDirName)
	patched := 0
	walk := func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if fi.Name() == backupDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out, n := applyRewrites(string(b), t4Rewrites)
		out, nf := applyImportFixes(out, vllmImportFixes)
		n += nf
		if n == 0 {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		bpath := filepath.Join(backup, rel)
		if !fsutil.PathExists(bpath) {
			if err := fsutil.CopyFile(path, bpath); err != nil {
				return fmt.Errorf("backup %s: %w", rel, err)
			}
		}
		if err := os.WriteFile(path, []byte(out), fi.Mode().Perm()); err != nil {
			return err
		}
		info("[patch] %s: %d rewrites", rel, n)
		patched++
		return nil
	}
	if err := filepath.Walk(dir, walk); err != nil {
		return err
	}
	if patched == 0 {
		info("[patch] Nothing to patch under %s", dir)
	} else {
		info("[patch] Patched %d files (originals in %s)", patched, backup)
	}
	return nil
}

// patchRestore copies backed-up originals over the patched files.
func patchRestore(m *config.Manifest) error {
	dir, err := runDir(m)
	if err != nil {
		return err
	}
	backup := filepath.Join(dir, backupDirName)
	if !fsutil.PathExists(backup) {
		return fmt.Errorf("no backups found under %s", backup)
	}
	restored := 0
	walk := func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(backup, path)
		if err != nil {
			return err
		}
		if err := fsutil.CopyFile(path, filepath.Join(dir, rel)); err != nil {
			return err
		}
		info("[patch] restored %s", rel)
		restored++
		return nil
	}
	if err := filepath.Walk(backup, walk); err != nil {
		return err
	}
	info("[patch] Restored %d files", restored)
	return nil
}
