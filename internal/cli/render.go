package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/pipeline"
	"github.com/matzehuels/orientplace/pkg/render/heatmap"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string // base output path (derived from input if empty)
	formats     string // comma-separated heatmap formats
	orientation int    // single orientation to draw; -1 draws the whole sheet
}

// renderCommand creates the render command for drawing heatmaps.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{orientation: -1}

	cmd := &cobra.Command{
		Use:   "render <images.json>",
		Short: "Render a computed batch as heatmaps",
		Long: `Render a computed batch as heatmaps.

By default all eight orientations are drawn on one 2×4 sheet sharing a color
scale. Use --orientation to draw a single image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), newPrinter(cmd), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "base output path (default: derived from input)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png (default), svg (comma-separated)")
	cmd.Flags().IntVar(&opts.orientation, "orientation", opts.orientation, "draw only this orientation (0-7)")

	return cmd
}

func runRender(ctx context.Context, out printer, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	b, err := netio.ReadBatchFile(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded batch: grid %d", b.Grid())

	formats := parseFormats(opts.formats, pipeline.FormatPNG)
	for _, f := range formats {
		if f != heatmap.FormatPNG && f != heatmap.FormatSVG {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'png' or 'svg')", f)
		}
	}

	base := basePath(opts.output, input)
	var artifacts map[string][]byte
	if opts.orientation >= 0 {
		o := wireimg.Orientation(opts.orientation)
		if !o.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "orientation %d outside 0..%d", opts.orientation, wireimg.NumOrientations-1)
		}
		base = fmt.Sprintf("%s-%s", base, o)
		artifacts = make(map[string][]byte, len(formats))
		for _, f := range formats {
			data, err := heatmap.RenderImage(b[o], f, heatmap.WithTitle(o.String()))
			if err != nil {
				return err
			}
			artifacts[f] = data
		}
	} else {
		artifacts, err = pipeline.RenderBatch(b, formats)
		if err != nil {
			return err
		}
	}

	out.success("Rendered %s heatmaps", StyleNumber.Render(fmt.Sprintf("%d×%d", b.Grid(), b.Grid())))
	for _, f := range formats {
		path := base + "." + f
		if err := writeArtifact(path, artifacts[f]); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
		logger.Debugf("Generated %s", path)
		out.file(path)
	}
	return nil
}
