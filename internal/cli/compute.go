package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/pipeline"
)

// imagesSuffix is appended to the base path of computed artifacts so that
// nets.json does not collide with its own image file.
const imagesSuffix = "-images"

// computeOpts holds the command-line flags for the compute command.
type computeOpts struct {
	grid     int    // grid size; ignored unless gridSet
	gridSet  bool   // --grid was given
	parallel bool   // one worker per orientation
	output   string // base output path (derived from input if empty)
	formats  string // comma-separated artifact formats
	noCache  bool   // disable the batch cache
	refresh  bool   // recompute even if cached
}

// computeCommand creates the compute command.
func (c *CLI) computeCommand() *cobra.Command {
	var opts computeOpts

	cmd := &cobra.Command{
		Use:   "compute <nets.json|nets.toml>",
		Short: "Compute the eight orientation wire images from a net file",
		Long: `Compute the eight orientation wire images from a net file.

The net file lists, per orientation 0..7, the boxes of the nets that connect
to the macro. Every orientation must be present, even if it has no nets.

Examples:
  orientplace compute nets.toml                      # writes nets-images.json
  orientplace compute nets.json --grid 64 --parallel
  orientplace compute nets.json -f json,png -o out/blk7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.gridSet = cmd.Flags().Changed("grid")
			return c.runCompute(cmd.Context(), newPrinter(cmd), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.grid, "grid", opts.grid, "grid size (default: from the net file)")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "compute orientations concurrently")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "base output path (default: derived from input)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), png, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the batch cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached batch exists")

	return cmd
}

func (c *CLI) runCompute(ctx context.Context, out printer, input string, opts computeOpts) error {
	logger := loggerFromContext(ctx)

	nf, err := netio.ReadNetMapFile(input)
	if err != nil {
		return err
	}
	grid, err := resolveGrid(opts.grid, opts.gridSet, nf.Grid)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d nets from %s", nf.Nets.NetCount(), input)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Grid:     grid,
		Parallel: opts.parallel,
		Refresh:  opts.refresh,
		Formats:  parseFormats(opts.formats, pipeline.FormatJSON),
		Logger:   logger,
	}

	prog := newProgress(logger)
	spin := startSpinner(ctx, c.Err, computeMessage(grid, opts.parallel))
	result, err := runner.Execute(ctx, nf.Nets, popts)
	spin.Stop()
	if spin.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed %d images", len(result.Batch)))

	base := basePath(opts.output, input) + imagesSuffix
	var jsonPath string
	out.success("Computed %s batch", StyleNumber.Render(fmt.Sprintf("%d×%d", grid, grid)))
	out.batchStats(grid, result.Stats.NetCount, opts.parallel, result.CacheHit)
	for _, format := range popts.Formats {
		path := base + "." + format
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		if format == pipeline.FormatJSON {
			jsonPath = path
		}
		out.file(path)
	}

	if jsonPath != "" {
		out.nextStep("Render heatmaps", fmt.Sprintf("%s render %s", appName, jsonPath))
	}
	return nil
}
