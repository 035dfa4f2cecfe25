package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/graph"
	pkgio "github.com/matzehuels/pkggraph/pkg/io"
	"github.com/matzehuels/pkggraph/pkg/pipeline"
)

// Output formats for report commands.
const (
	formatText = "text"
	formatJSON = "json"
)

// analysisFlags holds the flags shared by every command that analyses a package.
type analysisFlags struct {
	version string // requested version (empty: config, then latest)
	depth   int    // maximum depth (0: config, then default)
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.version, "version", "", `package version ("latest" by default)`)
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, fmt.Sprintf("maximum dependency depth (default %d)", pipeline.DefaultMaxDepth))
}

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	analysisFlags
	output string // report file (.json for JSON, text otherwise)
	format string // stdout format
	save   bool   // save the report to the store
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	opts := analyzeOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "analyze <package>",
		Short: "Analyse a package: dependency tree, cycles and load order",
		Long: `Analyse a package's dependency graph and print the full report.

Examples:
  pkggraph analyze curl --repo https://dl-cdn.alpinelinux.org/alpine/v3.19/main
  pkggraph analyze A --mode test --repo testdata/index.txt --depth 3
  pkggraph analyze curl --output curl.json --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return pkgerrors.New(pkgerrors.ErrCodeInvalidFormat, "format must be %q or %q, got %q", formatText, formatJSON, opts.format)
			}
			result, err := c.runAnalysis(cmd, args[0], opts.analysisFlags)
			if err != nil {
				return err
			}
			report := result.Report

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				if err := graph.WriteReport(report, out); err != nil {
					return err
				}
			} else if err := pkgio.WriteText(out, report); err != nil {
				return err
			}

			if opts.output != "" {
				if err := pkgio.Export(report, opts.output); err != nil {
					return err
				}
				printFile(opts.output)
			}
			if opts.save {
				if err := c.saveReport(cmd.Context(), report); err != nil {
					return err
				}
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file (.json for JSON, text otherwise)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "stdout format: text or json")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the report to the report store")

	return cmd
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "tree <package>",
		Short: "Print a package's dependency tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.runAnalysis(cmd, args[0], flags)
			if err != nil {
				return err
			}
			return pkgio.WriteTree(cmd.OutOrStdout(), result.Report)
		},
	}
	flags.register(cmd)
	return cmd
}

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	var (
		flags   analysisFlags
		install bool
	)
	cmd := &cobra.Command{
		Use:   "order <package>",
		Short: "Print the load order of a package's dependency graph",
		Long: `Print the packages of a dependency graph one per line.

The default order lists every package before its dependencies. With --install
the order is reversed so that dependencies come first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.runAnalysis(cmd, args[0], flags)
			if err != nil {
				return err
			}
			report := result.Report
			order := report.Order
			if install {
				order = report.InstallOrder
			}
			writeLines(cmd.OutOrStdout(), order)
			if !report.OrderComplete {
				printWarning("Order is incomplete: %d of %d packages are in or behind a cycle (%s)",
					report.Stats.Nodes-len(report.Order), report.Stats.Nodes, strings.Join(report.Cycle, " -> "))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&install, "install", false, "dependencies first")
	return cmd
}

// cyclesCommand creates the cycles command.
func (c *CLI) cyclesCommand() *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "cycles <package>",
		Short: "Report a dependency cycle reachable from a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.runAnalysis(cmd, args[0], flags)
			if err != nil {
				return err
			}
			report := result.Report
			if !report.HasCycle() {
				printSuccess("No cycle within depth %d of %s", report.MaxDepth, report.Package)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(report.Cycle, " -> "))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// runAnalysis runs the pipeline for pkg with config, global flags and the
// command's analysis flags applied in that order.
func (c *CLI) runAnalysis(cmd *cobra.Command, pkg string, flags analysisFlags) (*pipeline.Result, error) {
	ctx := cmd.Context()
	opts := c.baseOptions(pkg)
	if flags.version != "" {
		opts.Version = flags.version
	}
	if cmd.Flags().Changed("depth") {
		if err := pkgerrors.ValidateDepth(flags.depth); err != nil {
			return nil, err
		}
		opts.MaxDepth = flags.depth
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	return c.execute(ctx, runner, opts)
}

func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var spinner *Spinner
	if opts.IsOnline() {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Loading %d repositories...", len(opts.Repositories)))
		spinner.Start()
	}
	result, err := runner.Execute(ctx, opts)
	if spinner != nil {
		if err != nil && !spinner.Cancelled() {
			spinner.StopWithError("Analysis failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return nil, err
	}

	report := result.Report
	prog.done(fmt.Sprintf("Analysed %s %s", report.Package, report.Version))
	printStats(report.Stats, result.CacheHit)
	return result, nil
}

func (c *CLI) saveReport(ctx context.Context, report *graph.Report) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, report); err != nil {
		return err
	}
	printSuccess("Saved report %s", StyleHighlight.Render(report.ID))
	return nil
}

func writeLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
