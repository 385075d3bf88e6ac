package subcommand

import (
	"context"
	"os"

	"github.com/cratekit/cratekit/pkg/config"
	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
)

// Option customizes how New resolves a project
type Option func(*dependencies)

// dependencies are the collaborators of a resolution. Nil fields are filled
// with the process-bound defaults.
type dependencies struct {
	env        config.Environment
	workDir    string
	globber    utils.Globber
	logger     logger.Logger
	hostTriple string
	ctx        context.Context
}

// WithEnvironment replaces the process environment
func WithEnvironment(env config.Environment) Option {
	return func(d *dependencies) { d.env = env }
}

// WithWorkDir sets the directory the descriptor search starts from
func WithWorkDir(dir string) Option {
	return func(d *dependencies) { d.workDir = dir }
}

// WithGlobber replaces the file system globber used for workspace members
func WithGlobber(g utils.Globber) Option {
	return func(d *dependencies) { d.globber = g }
}

// WithLogger sets the logger resolution stages report to
func WithLogger(l logger.Logger) Option {
	return func(d *dependencies) { d.logger = l }
}

// WithHostTriple overrides the detected host platform
func WithHostTriple(triple string) Option {
	return func(d *dependencies) { d.hostTriple = triple }
}

// WithContext attaches run-scoped log fields from ctx
func WithContext(ctx context.Context) Option {
	return func(d *dependencies) { d.ctx = ctx }
}

func newDependencies(opts []Option) (*dependencies, error) {
	d := &dependencies{}
	for _, opt := range opts {
		opt(d)
	}

	if d.env == nil {
		d.env = config.ProcessEnv{}
	}
	if d.globber == nil {
		d.globber = utils.NewFSGlobber()
	}
	if d.logger == nil {
		d.logger = logger.NewNopLogger()
	}
	if d.ctx != nil {
		d.logger = logger.WithContext(d.ctx, d.logger)
	}
	if d.hostTriple == "" {
		d.hostTriple = types.HostTriple()
	}
	if d.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, types.IOError(".", err)
		}
		d.workDir = wd
	}
	return d, nil
}
