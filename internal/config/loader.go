package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Env kinds accepted by the manifest.
const (
	EnvVenv  = "venv"
	EnvUV    = "uv"
	EnvConda = "conda"
)

// Repo is a model repository to clone into the workspace.
type Repo struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	URL  string `json:"url" yaml:"url" toml:"url"`
	Ref  string `json:"ref" yaml:"ref" toml:"ref"`
	Dest string `json:"dest" yaml:"dest" toml:"dest"`
}

// Env describes the Python virtual environment to create.
type Env struct {
	Kind   string `json:"kind" yaml:"kind" toml:"kind"`
	Path   string `json:"path" yaml:"path" toml:"path"`
	Python string `json:"python" yaml:"python" toml:"python"`
}

// Packages lists what gets installed into the environment, in order:
// wheels first, then pinned specs, then requirements files.
type Packages struct {
	Pins         []string `json:"pins" yaml:"pins" toml:"pins"`
	Wheels       []string `json:"wheels" yaml:"wheels" toml:"wheels"`
	Requirements []string `json:"requirements" yaml:"requirements" toml:"requirements"`
	IndexURL     string   `json:"index_url" yaml:"index_url" toml:"index_url"`
}

// StageDir is a directory copied into place before running (model weights).
type StageDir struct {
	Src  string `json:"src" yaml:"src" toml:"src"`
	Dest string `json:"dest" yaml:"dest" toml:"dest"`
}

// Run names the inference entry point and its environment.
type Run struct {
	Script string            `json:"script" yaml:"script" toml:"script"`
	Dir    string            `json:"dir" yaml:"dir" toml:"dir"`
	GPU    string            `json:"gpu" yaml:"gpu" toml:"gpu"`
	Env    map[string]string `json:"env" yaml:"env" toml:"env"`
}

// Verify lists module names that must import cleanly after install.
type Verify struct {
	Imports []string `json:"imports" yaml:"imports" toml:"imports"`
}

// Manifest is the root bootstrap description. Zero values mean
// "unspecified" and are filled in by ApplyDefaults.
type Manifest struct {
	Workspace string     `json:"workspace" yaml:"workspace" toml:"workspace"`
	ProxyEnv  string     `json:"proxy_env" yaml:"proxy_env" toml:"proxy_env"`
	Repos     []Repo     `json:"repos" yaml:"repos" toml:"repos"`
	Env       Env        `json:"env" yaml:"env" toml:"env"`
	Packages  Packages   `json:"packages" yaml:"packages" toml:"packages"`
	Stage     []StageDir `json:"stage" yaml:"stage" toml:"stage"`
	Run       Run        `json:"run" yaml:"run" toml:"run"`
	Verify    Verify     `json:"verify" yaml:"verify" toml:"verify"`
}

// Load reads a manifest file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Manifest, error) {
	var m Manifest
	if path == "" {
		return m, fmt.Errorf("empty manifest path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &m); err != nil {
			return m, err
		}
	case ".json":
		if err := json.Unmarshal(b, &m); err != nil {
			return m, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &m); err != nil {
			return m, err
		}
	default:
		return m, fmt.Errorf("unsupported manifest extension: %s", ext)
	}
	return m, nil
}

// ApplyDefaults fills unspecified fields with working defaults.
func (m *Manifest) ApplyDefaults() {
	if m.Workspace == "" {
		m.Workspace = "."
	}
	if m.Env.Kind == "" {
		m.Env.Kind = EnvVenv
	}
	if m.Env.Path == "" {
		m.Env.Path = ".venv"
	}
	if m.Run.GPU == "" {
		m.Run.GPU = "0"
	}
	if m.Run.Env == nil {
		m.Run.Env = map[string]string{}
	}
	// The batch OCR entry point requires the v0 vLLM engine.
	if _, ok := m.Run.Env["VLLM_USE_V1"]; !ok {
		m.Run.Env["VLLM_USE_V1"] = "0"
	}
	for i := range m.Repos {
		r := &m.Repos[i]
		if r.Dest == "" {
			r.Dest = DeriveDest(r.URL)
		}
		if r.Name == "" {
			r.Name = r.Dest
		}
	}
}

// DeriveDest returns the checkout directory implied by a clone URL,
// mirroring git's own default (basename minus a trailing .git).
func DeriveDest(url string) string {
	base := strings.TrimSuffix(url, "/")
	if i := strings.LastIndexAny(base, "/:"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".git")
}

// Validate rejects manifests that cannot drive a bootstrap.
func (m *Manifest) Validate() error {
	switch m.Env.Kind {
	case EnvVenv, EnvUV, EnvConda:
	default:
		return fmt.Errorf("env.kind must be one of venv|uv|conda, got %q", m.Env.Kind)
	}
	// conda create without a python spec makes an empty env with no
	// interpreter, which only fails later steps obscurely
	if m.Env.Kind == EnvConda && m.Env.Python == "" {
		return fmt.Errorf("env.python is required when env.kind is conda (e.g. \"3.12\")")
	}
	for i, r := range m.Repos {
		if r.URL == "" {
			return fmt.Errorf("repos[%d]: url is required", i)
		}
	}
	for i, s := range m.Stage {
		if s.Src == "" || s.Dest == "" {
			return fmt.Errorf("stage[%d]: src and dest are required", i)
		}
	}
	if m.Run.Script != "" && m.Run.Dir == "" {
		return fmt.Errorf("run.dir is required when run.script is set")
	}
	return nil
}
