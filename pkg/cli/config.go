package cli

import (
	"github.com/cratekit/cratekit/pkg/config"
)

// Output formats accepted by --format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ConfigName is the base name of the optional defaults file searched for in
// the working directory
const ConfigName = ".cratekit"

// Config holds the CLI settings that are not part of the resolution request
type Config struct {
	ConfigFile string
	WorkDir    string
	Verbosity  string
	LogFile    string
	Format     string
	Version    string

	// Env receives the [env] variables of the resolved project. Nil means the
	// process environment.
	Env config.Environment
}

// NewConfig creates a new CLI configuration with defaults
func NewConfig() *Config {
	return &Config{
		WorkDir:   ".",
		Verbosity: "warn",
		Format:    FormatText,
		Version:   "dev",
	}
}

func (c *Config) environment() config.Environment {
	if c.Env == nil {
		return config.ProcessEnv{}
	}
	return c.Env
}
