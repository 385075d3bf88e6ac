// Package config loads `.cargo/config.toml` settings and resolves the
// environment variables they declare
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
	"github.com/pelletier/go-toml"
)

const (
	// DirName is the settings directory next to a project descriptor
	DirName = ".cargo"
	// FileName is the settings file inside DirName
	FileName = "config.toml"
	// LegacyFileName is read when FileName is absent
	LegacyFileName = "config"

	defaultTargetDir = "target"
)

// Config is the decoded content of a settings file
type Config struct {
	Build *Build
	Env   map[string]EnvOption
}

// Build is the `[build]` table
type Build struct {
	TargetDir *string
}

// EnvOption is one entry of the `[env]` table: either EnvString or EnvValue
type EnvOption interface {
	envOption()
}

// EnvString is a plain `KEY = "value"` entry
type EnvString string

// EnvValue is a `KEY = { value = "...", force = true, relative = true }` entry
type EnvValue struct {
	Value    string `json:"value" yaml:"value"`
	Force    bool   `json:"force,omitempty" yaml:"force,omitempty"`
	Relative bool   `json:"relative,omitempty" yaml:"relative,omitempty"`
}

func (EnvString) envOption() {}
func (EnvValue) envOption() {}

// IsForced reports whether opt overrides an already set variable
func IsForced(opt EnvOption) bool {
	v, ok := opt.(EnvValue)
	return ok && v.Force
}

// LocalizedConfig is a settings file together with the directory that holds
// its `.cargo` directory
type LocalizedConfig struct {
	Root   string
	Path   string
	Config Config
}

// Load reads the settings file at path. Root is the parent of the `.cargo`
// directory containing it.
func Load(path string) (*LocalizedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.IOError(path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, types.ParseError(path, err)
	}

	return &LocalizedConfig{
		Root:   filepath.Dir(filepath.Dir(path)),
		Path:   path,
		Config: *cfg,
	}, nil
}

// Parse decodes settings file content. Only `[build] target-dir` and `[env]`
// are interpreted; everything else is ignored.
func Parse(data []byte) (*Config, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	if tree.Has("build.target-dir") {
		dir, ok := tree.GetPath([]string{"build", "target-dir"}).(string)
		if !ok {
			return nil, fmt.Errorf("`build.target-dir` must be a string")
		}
		cfg.Build = &Build{TargetDir: &dir}
	} else if tree.Has("build") {
		cfg.Build = &Build{}
	}

	if !tree.Has("env") {
		return cfg, nil
	}
	envTree, ok := tree.Get("env").(*toml.Tree)
	if !ok {
		return nil, fmt.Errorf("`env` must be a table")
	}

	cfg.Env = make(map[string]EnvOption)
	for _, key := range envTree.Keys() {
		opt, err := decodeEnvOption(key, envTree.GetPath([]string{key}))
		if err != nil {
			return nil, err
		}
		cfg.Env[key] = opt
	}
	return cfg, nil
}

// decodeEnvOption picks the variant from the shape of the TOML value
func decodeEnvOption(key string, raw interface{}) (EnvOption, error) {
	switch v := raw.(type) {
	case string:
		return EnvString(v), nil
	case *toml.Tree:
		var opt EnvValue
		value, ok := v.Get("value").(string)
		if !ok {
			return nil, fmt.Errorf("env `%s`: `value` must be a string", key)
		}
		opt.Value = value
		if v.Has("force") {
			if opt.Force, ok = v.Get("force").(bool); !ok {
				return nil, fmt.Errorf("env `%s`: `force` must be a boolean", key)
			}
		}
		if v.Has("relative") {
			if opt.Relative, ok = v.Get("relative").(bool); !ok {
				return nil, fmt.Errorf("env `%s`: `relative` must be a boolean", key)
			}
		}
		return opt, nil
	default:
		return nil, fmt.Errorf("env `%s`: expected a string or a table, found %T", key, raw)
	}
}

// FindForWorkspace returns the nearest settings file in dir or any of its
// ancestors, or nil when there is none
func FindForWorkspace(dir string) (*LocalizedConfig, error) {
	start, err := utils.Canonicalize(dir)
	if err != nil {
		return nil, types.IOError(dir, err)
	}

	for ancestor := range utils.Ancestors(start) {
		for _, name := range []string{FileName, LegacyFileName} {
			path := filepath.Join(ancestor, DirName, name)
			if utils.FileExists(path) {
				return Load(path)
			}
		}
	}
	return nil, nil
}

// TargetDirName returns `[build] target-dir`, or "target" when unset
func (c *LocalizedConfig) TargetDirName() string {
	if c == nil || c.Config.Build == nil || c.Config.Build.TargetDir == nil {
		return defaultTargetDir
	}
	return *c.Config.Build.TargetDir
}

// EnvKeys returns the configured variable names in sorted order
func (c *LocalizedConfig) EnvKeys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Config.Env))
	for k := range c.Config.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
