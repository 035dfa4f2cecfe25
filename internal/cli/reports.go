package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/graph"
	pkgio "github.com/matzehuels/pkggraph/pkg/io"
	"github.com/matzehuels/pkggraph/pkg/storage"
)

// reportsCommand creates the reports command for saved reports.
func (c *CLI) reportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Manage saved analysis reports",
	}

	cmd.AddCommand(c.reportsListCommand())
	cmd.AddCommand(c.reportsShowCommand())
	cmd.AddCommand(c.reportsDeleteCommand())

	return cmd
}

// reportsListCommand creates the "reports list" subcommand.
func (c *CLI) reportsListCommand() *cobra.Command {
	var opts storage.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := store.List(ctx, opts)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				printInfo("No saved reports")
				return nil
			}
			out := cmd.OutOrStdout()
			for _, r := range reports {
				fmt.Fprintf(out, "%s  %s  %s %s  %d packages%s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Package, r.Version, r.Stats.Nodes, cycleMark(r))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Package, "package", "", "only reports for this package")
	cmd.Flags().IntVar(&opts.Limit, "limit", storage.DefaultListLimit, "maximum number of reports")
	return cmd
}

// reportsShowCommand creates the "reports show" subcommand.
func (c *CLI) reportsShowCommand() *cobra.Command {
	format := formatText
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := store.Get(ctx, args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return pkgerrors.Wrap(pkgerrors.ErrCodeReportNotFound, err, "no saved report %q", args[0])
			}
			if err != nil {
				return err
			}
			if format == formatJSON {
				return graph.WriteReport(report, cmd.OutOrStdout())
			}
			return pkgio.WriteText(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&format, "format", format, "output format: text or json")
	return cmd
}

// reportsDeleteCommand creates the "reports delete" subcommand.
func (c *CLI) reportsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete saved reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(ctx, id); err != nil {
					return err
				}
			}
			printSuccess("Deleted %d reports", len(args))
			return nil
		},
	}
}

func cycleMark(r *graph.Report) string {
	if r.HasCycle() {
		return "  " + StyleWarning.Render("cycle")
	}
	return ""
}
