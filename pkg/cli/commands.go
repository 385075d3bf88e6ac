package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the artifacts a request selects",
		Long: `List the library, binaries and examples of the selected package that the
request covers. Without --lib, --bin, --bins, --example or --examples every
artifact is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := c.resolve(cmd.Context())
			if err != nil {
				return err
			}

			artifacts := project.Artifacts().All()
			return c.render(artifacts, func(w io.Writer) error {
				if len(artifacts) == 0 {
					c.logger.Warn("No artifacts found", logger.WithField("package", project.Package()))
					return nil
				}

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				header := color.New(color.Bold)
				fmt.Fprintln(tw, header.Sprint("KIND")+"\t"+header.Sprint("NAME")+"\t"+header.Sprint("SOURCE"))
				for _, a := range artifacts {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Kind, a.Name, a.Path)
				}
				return tw.Flush()
			})
		},
	}
}

func (c *CLI) newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Show the full resolution of a request",
		Long: `Show the selected package, its manifests, the profile, the target directory
and the output path of every selected artifact. Use --format json or yaml
for a machine readable form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := c.resolve(cmd.Context())
			if err != nil {
				return err
			}

			snapshot := project.Snapshot()
			return c.render(snapshot, func(w io.Writer) error {
				return writeSnapshot(w, snapshot)
			})
		},
	}
}

func writeSnapshot(w io.Writer, s types.ProjectSnapshot) error {
	label := color.New(color.FgCyan)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	target := s.Target
	if target == "" {
		target = "host (" + s.HostTriple + ")"
	}

	fmt.Fprintf(tw, "%s\t%s\n", label.Sprint("Package:"), s.Package)
	fmt.Fprintf(tw, "%s\t%s\n", label.Sprint("Manifest:"), s.Manifest)
	if s.WorkspaceManifest != "" {
		fmt.Fprintf(tw, "%s\t%s\n", label.Sprint("Workspace:"), s.WorkspaceManifest)
	}
	fmt.Fprintf(tw, "%s\t%s\n", label.Sprint("Profile:"), s.Profile)
	fmt.Fprintf(tw, "%s\t%s\n", label.Sprint("Target:"), target)
	fmt.Fprintf(tw, "%s\t%s\n", label.Sprint("Target dir:"), s.TargetDir)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Artifacts) == 0 {
		return nil
	}
	fmt.Fprintln(w, label.Sprint("Artifacts:"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, a := range s.Artifacts {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", a.Kind, a.Name, a.OutputPath)
	}
	return tw.Flush()
}

func (c *CLI) newPathCmd() *cobra.Command {
	var crateType string

	cmd := &cobra.Command{
		Use:   "path [name...]",
		Short: "Print the output paths of the selected artifacts",
		Long: `Print where the build writes each selected artifact. Names restrict the
output to those artifacts. With --crate-type every artifact is printed as
that crate type; artifacts that cannot be built that way are skipped unless
named explicitly, which is an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ct types.CrateType
			if crateType != "" {
				parsed, err := types.ParseCrateType(crateType)
				if err != nil {
					return err
				}
				ct = parsed
			}

			project, err := c.resolve(cmd.Context())
			if err != nil {
				return err
			}

			wanted := make(map[string]bool, len(args))
			for _, name := range args {
				wanted[name] = true
			}

			var outputs []types.ArtifactOutput
			for _, a := range project.Artifacts().All() {
				if len(wanted) > 0 && !wanted[a.Name] {
					continue
				}
				artifactType := ct
				if artifactType == "" {
					artifactType = types.DefaultCrateType(a.Kind)
				}
				if !a.Supports(artifactType) {
					if wanted[a.Name] {
						return fmt.Errorf("%s %q cannot be built as %s", a.Kind, a.Name, artifactType)
					}
					continue
				}
				delete(wanted, a.Name)
				outputs = append(outputs, types.ArtifactOutput{
					Artifact:   a,
					CrateType:  artifactType,
					OutputPath: project.ArtifactPath(a, project.Target(), artifactType),
				})
			}

			if len(wanted) > 0 {
				missing := make([]string, 0, len(wanted))
				for name := range wanted {
					missing = append(missing, name)
				}
				sort.Strings(missing)
				return fmt.Errorf("%w: no selected artifact named %s", types.ErrNotFound, strings.Join(missing, ", "))
			}

			return c.render(outputs, func(w io.Writer) error {
				for _, out := range outputs {
					fmt.Fprintln(w, out.OutputPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&crateType, "crate-type", "", "crate type to compute paths for (bin, lib, staticlib, cdylib)")
	return cmd
}

func (c *CLI) newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env [key...]",
		Short: "Print the values of [env] entries as the build would see them",
		Long: `Resolve the project, apply the [env] table of its .cargo/config.toml and
print each key with its effective value. Without keys every key the table
declares is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := c.resolve(cmd.Context())
			if err != nil {
				return err
			}

			cfg := project.Config()
			keys := args
			if len(keys) == 0 {
				keys = cfg.EnvKeys()
			}

			env := c.config.environment()
			values := make(map[string]string, len(keys))
			for _, key := range keys {
				value, err := cfg.ResolveEnv(key, env)
				if err != nil {
					return err
				}
				values[key] = value
			}

			return c.render(values, func(w io.Writer) error {
				for _, key := range keys {
					fmt.Fprintf(w, "%s=%s\n", key, values[key])
				}
				return nil
			})
		},
	}
}

func (c *CLI) newArgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "args",
		Short: "Print the request as cargo flags",
		Long: `Print the request back as cargo command line flags, for forwarding to a
cargo invocation:

  cargo build $(cratekit args --release --bin app)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := c.filter()
			if err != nil {
				return err
			}

			cargoArgs := filter.CargoArgs()
			if cargoArgs == nil {
				cargoArgs = []string{}
			}
			return c.render(cargoArgs, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, strings.Join(cargoArgs, " "))
				return err
			})
		},
	}
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.output, "cratekit v%s\n", c.config.Version)
		},
	}
}
