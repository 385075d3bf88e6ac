// Package cli provides the command-line interface for cratekit
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rcontext "github.com/cratekit/cratekit/pkg/context"
	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/subcommand"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CLI encapsulates the command-line interface. Each instance carries its own
// flag set and viper instance, so several can run side by side in tests.
type CLI struct {
	config   *Config
	rootCmd  *cobra.Command
	viper    *viper.Viper
	logger   logger.Logger
	output   io.Writer
	errorOut io.Writer
}

// NewCLI creates a new CLI instance with the given configuration
func NewCLI(config *Config) *CLI {
	if config == nil {
		config = NewConfig()
	}

	cli := &CLI{
		config:   config,
		viper:    viper.New(),
		logger:   logger.NewNopLogger(),
		output:   os.Stdout,
		errorOut: os.Stderr,
	}

	cli.setupCommands()
	return cli
}

// NewCLIWithOutput creates a CLI with custom output writers (for testing)
func NewCLIWithOutput(config *Config, output, errorOut io.Writer) *CLI {
	cli := NewCLI(config)
	cli.output = output
	cli.errorOut = errorOut
	cli.rootCmd.SetOut(output)
	cli.rootCmd.SetErr(errorOut)
	return cli
}

// Execute runs the CLI with the given arguments
func (c *CLI) Execute(args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.Execute()
}

// ExecuteContext runs the CLI with context support
func (c *CLI) ExecuteContext(ctx context.Context, args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:   "cratekit",
		Short: "Resolve cargo build requests into packages, artifacts and output paths",
		Long: `cratekit answers the questions a cargo build wrapper has to answer before
it runs anything: which package a request selects, which bins, examples and
library that package has, and where their build outputs will land.

Requests use the cargo flags (--package, --bin, --release, --target, ...) and
honor .cargo/config.toml, including its [env] table.`,

		SilenceUsage:      true,
		PersistentPreRunE: c.initializeConfig,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	c.setupFlags()

	c.rootCmd.Version = c.config.Version
	c.rootCmd.SetVersionTemplate("cratekit v{{.Version}}\n")

	c.rootCmd.AddCommand(c.newListCmd())
	c.rootCmd.AddCommand(c.newMetadataCmd())
	c.rootCmd.AddCommand(c.newPathCmd())
	c.rootCmd.AddCommand(c.newEnvCmd())
	c.rootCmd.AddCommand(c.newArgsCmd())
	c.rootCmd.AddCommand(c.newWatchCmd())
	c.rootCmd.AddCommand(c.newVersionCmd())
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()

	// Global flags
	flags.StringVar(&c.config.ConfigFile, "config", "", "defaults file (default: "+ConfigName+".yaml in the working directory)")
	flags.StringVarP(&c.config.WorkDir, "workdir", "C", c.config.WorkDir, "directory to resolve from")
	flags.StringVarP(&c.config.Verbosity, "verbosity", "v", c.config.Verbosity, "log level (debug, info, warn, error)")
	flags.StringVar(&c.config.LogFile, "log-file", "", "also write logs to this file")
	flags.StringVar(&c.config.Format, "format", c.config.Format, "output format (text, json, yaml)")

	// Request flags, named as cargo names them
	flags.BoolP("quiet", "q", false, "no output printed to stdout by the build")
	flags.BoolP("release", "r", false, "build artifacts in release mode")
	flags.String("profile", "", "build artifacts with the specified profile")
	flags.String("target", "", "build for the target triple")
	flags.StringSlice("bin", nil, "build only the specified binary")
	flags.Bool("bins", false, "build all binaries")
	flags.StringSlice("example", nil, "build only the specified example")
	flags.Bool("examples", false, "build all examples")
	flags.Bool("lib", false, "build only this package's library")
	flags.StringP("package", "p", "", "package to build")
	flags.String("target-dir", "", "directory for all generated artifacts")
	flags.String("manifest-path", "", "path to Cargo.toml")
}

func (c *CLI) initializeConfig(cmd *cobra.Command, args []string) error {
	v := c.viper
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix("CRATEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	workDir, err := filepath.Abs(v.GetString("workdir"))
	if err != nil {
		return fmt.Errorf("invalid working directory: %w", err)
	}
	c.config.WorkDir = workDir

	if c.config.ConfigFile != "" {
		v.SetConfigFile(c.config.ConfigFile)
	} else {
		v.AddConfigPath(workDir)
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	configErr := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if configErr != nil && !errors.As(configErr, &notFound) {
		return fmt.Errorf("failed to read config file: %w", configErr)
	}

	c.config.Verbosity = v.GetString("verbosity")
	c.config.LogFile = v.GetString("log-file")
	c.config.Format = v.GetString("format")

	switch c.config.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output format: %s", c.config.Format)
	}

	if c.errorOut == os.Stderr {
		c.logger = logger.CreateLogger(c.config.LogFile, c.config.Verbosity)
	} else {
		c.logger = logger.CreateLoggerWithOutput(c.config.LogFile, c.config.Verbosity, c.errorOut)
	}

	if configErr == nil {
		c.logger.Debug("Using config file", logger.WithField("file", v.ConfigFileUsed()))
	}

	cmd.SetContext(rcontext.NewRun(cmd.Context(), cmd.Name()))
	return nil
}

// filter assembles the resolution request from flags, CRATEKIT_* variables
// and the defaults file, in that order of precedence
func (c *CLI) filter() (types.Filter, error) {
	v := c.viper
	f := types.Filter{
		Package:      v.GetString("package"),
		ManifestPath: v.GetString("manifest-path"),
		TargetDir:    v.GetString("target-dir"),
		Target:       v.GetString("target"),
		Profile:      v.GetString("profile"),
		Release:      v.GetBool("release"),
		Bins:         v.GetStringSlice("bin"),
		Examples:     v.GetStringSlice("example"),
		AllBins:      v.GetBool("bins"),
		AllExamples:  v.GetBool("examples"),
		Lib:          v.GetBool("lib"),
		Quiet:        v.GetBool("quiet"),
	}

	result := validation.ValidateFilter(f)
	for _, warning := range result.Warnings() {
		c.logger.Warn(warning.Error())
	}
	return f, result.Err()
}

func (c *CLI) resolve(ctx context.Context) (*subcommand.Subcommand, error) {
	filter, err := c.filter()
	if err != nil {
		return nil, err
	}
	return subcommand.New(filter,
		subcommand.WithWorkDir(c.config.WorkDir),
		subcommand.WithEnvironment(c.config.environment()),
		subcommand.WithLogger(c.logger),
		subcommand.WithContext(ctx),
	)
}

// render writes v in the configured format. text draws the human readable
// form and is only called for FormatText.
func (c *CLI) render(v interface{}, text func(io.Writer) error) error {
	switch c.config.Format {
	case FormatJSON:
		enc := json.NewEncoder(c.output)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(c.output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(c.output)
	}
}
