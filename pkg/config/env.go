package config

import (
	"os"
	"sync"

	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
)

// Environment is a key/value store of environment variables
type Environment interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
}

// ProcessEnv is the environment of the running process
type ProcessEnv struct{}

// Lookup implements Environment
func (ProcessEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Set implements Environment
func (ProcessEnv) Set(key, value string) error {
	return os.Setenv(key, value)
}

// MapEnv is an in-memory Environment
type MapEnv struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMapEnv creates a MapEnv holding a copy of vars
func NewMapEnv(vars map[string]string) *MapEnv {
	env := &MapEnv{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		env.vars[k] = v
	}
	return env
}

// Lookup implements Environment
func (e *MapEnv) Lookup(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[key]
	return v, ok
}

// Set implements Environment
func (e *MapEnv) Set(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	e.vars[key] = value
	return nil
}

// ResolveEnv returns the value of key. A forced settings entry beats the
// environment, which beats an unforced settings entry. c may be nil.
func (c *LocalizedConfig) ResolveEnv(key string, env Environment) (string, error) {
	var (
		opt        EnvOption
		configured bool
	)
	if c != nil {
		opt, configured = c.Config.Env[key]
	}

	if configured && IsForced(opt) {
		return c.resolveOption(key, opt)
	}
	if value, ok := env.Lookup(key); ok {
		return value, nil
	}
	if configured {
		return c.resolveOption(key, opt)
	}
	return "", types.EnvNotPresent(key)
}

func (c *LocalizedConfig) resolveOption(key string, opt EnvOption) (string, error) {
	switch o := opt.(type) {
	case EnvString:
		return string(o), nil
	case EnvValue:
		if !o.Relative {
			return o.Value, nil
		}
		path := utils.AbsFrom(c.Root, o.Value)
		canonical, err := utils.Canonicalize(path)
		if err != nil {
			return "", types.EnvCanonicalize(key, path, err)
		}
		return canonical, nil
	}
	return "", types.EnvNotPresent(key)
}

// SetEnvVars exports every settings entry into env. Unforced entries whose
// key is already set are left alone. It returns the keys that were written.
func (c *LocalizedConfig) SetEnvVars(env Environment) ([]string, error) {
	var written []string
	for _, key := range c.EnvKeys() {
		opt := c.Config.Env[key]
		if _, ok := env.Lookup(key); ok && !IsForced(opt) {
			continue
		}

		value, err := c.resolveOption(key, opt)
		if err != nil {
			return written, err
		}
		if err := env.Set(key, value); err != nil {
			return written, types.IOError(key, err)
		}
		written = append(written, key)
	}
	return written, nil
}
