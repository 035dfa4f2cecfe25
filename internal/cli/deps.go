package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkggraph/pkg/deps"
	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
)

// depsCommand creates the deps command, which lists direct dependencies only.
func (c *CLI) depsCommand() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "deps <package>",
		Short: "List the direct dependencies of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.baseOptions(args[0])
			if version != "" {
				opts.Version = version
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			idx, err := runner.LoadIndex(ctx, runner.Sources(opts), opts.Refresh)
			if err != nil {
				return err
			}

			notify := func(n deps.Notice) { printWarning("%s", n) }
			direct, err := deps.DirectDependencies(idx, opts.Package, deps.ParseVersion(opts.Version), notify)
			if errors.Is(err, deps.ErrNotFound) {
				return pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err, "package %q is not in the index", opts.Package)
			}
			if err != nil {
				return err
			}

			for _, name := range direct {
				if idx.Contains(name) {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), name+" (unresolved)")
				}
			}
			if len(direct) == 0 {
				printInfo("%s has no dependencies", opts.Package)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", `package version ("latest" by default)`)
	return cmd
}
