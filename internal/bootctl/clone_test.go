package bootctl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ocrboot/internal/config"
)

// captureCmds swaps the command runner for a recorder so tests can
// assert the exact command lines a step constructs.
func captureCmds(t *testing.T) *[]Cmd {
	t.Helper()
	old := fnRunCmd
	got := &[]Cmd{}
	fnRunCmd = func(ctx context.Context, c Cmd) error {
		*got = append(*got, c)
		return nil
	}
	t.Cleanup(func() { fnRunCmd = old })
	return got
}

func argvString(c Cmd) string {
	return c.Path + " " + strings.Join(c.Args, " ")
}

func cloneManifest(t *testing.T, ref string) *config.Manifest {
	t.Helper()
	m := &config.Manifest{
		Workspace: t.TempDir(),
		Repos:     []config.Repo{{URL: "https://github.com/deepseek-ai/DeepSeek-OCR.git", Ref: ref}},
	}
	m.ApplyDefaults()
	return m
}

func TestInstallRepos_CloneAndCheckout(t *testing.T) {
	got := captureCmds(t)
	m := cloneManifest(t, "main")
	if err := installRepos(m); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	dest := filepath.Join(m.Workspace, "DeepSeek-OCR")
	if len(*got) != 2 {
		t.Fatalf("want clone + checkout, got %d commands: %+v", len(*got), *got)
	}
	if s := argvString((*got)[0]); s != "git clone https://github.com/deepseek-ai/DeepSeek-OCR.git "+dest {
		t.Fatalf("clone argv wrong: %s", s)
	}
	if s := argvString((*got)[1]); s != "git -C "+dest+" checkout main" {
		t.Fatalf("checkout argv wrong: %s", s)
	}
}

func TestInstallRepos_NoRefSkipsCheckout(t *testing.T) {
	got := captureCmds(t)
	m := cloneManifest(t, "")
	if err := installRepos(m); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(*got) != 1 || !strings.HasPrefix(argvString((*got)[0]), "git clone ") {
		t.Fatalf("want a single clone, got %+v", *got)
	}
}

func TestInstallRepos_ExistingCheckoutPulls(t *testing.T) {
	got := captureCmds(t)
	m := cloneManifest(t, "main")
	dest := filepath.Join(m.Workspace, "DeepSeek-OCR")
	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := installRepos(m); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("want a single ff-pull, got %d commands: %+v", len(*got), *got)
	}
	if s := argvString((*got)[0]); s != "git -C "+dest+" pull --ff-only" {
		t.Fatalf("pull argv wrong: %s", s)
	}
}

func TestInstallRepos_CloneFailureAborts(t *testing.T) {
	old := fnRunCmd
	calls := 0
	fnRunCmd = func(ctx context.Context, c Cmd) error {
		calls++
		return errors.New("network down")
	}
	t.Cleanup(func() { fnRunCmd = old })

	m := &config.Manifest{
		Workspace: t.TempDir(),
		Repos: []config.Repo{
			{URL: "https://github.com/deepseek-ai/DeepSeek-OCR.git"},
			{URL: "https://github.com/vllm-project/vllm.git"},
		},
	}
	m.ApplyDefaults()
	if err := installRepos(m); err == nil {
		t.Fatalf("expected clone failure to propagate")
	}
	if calls != 1 {
		t.Fatalf("second repo attempted after failure: %d calls", calls)
	}
}

func TestInstallRepos_ProxyEnvOnClone(t *testing.T) {
	got := captureCmds(t)
	m := cloneManifest(t, "")
	penv := filepath.Join(t.TempDir(), "proxy.env")
	if err := os.WriteFile(penv, []byte("https_proxy=http://proxy:3128\n"), 0o644); err != nil {
		t.Fatalf("write proxy env: %v", err)
	}
	m.ProxyEnv = penv
	if err := installRepos(m); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(*got) != 1 || (*got)[0].Env["https_proxy"] != "http://proxy:3128" {
		t.Fatalf("proxy env not threaded into clone: %+v", *got)
	}
}
