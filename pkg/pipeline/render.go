package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/observability"
	"github.com/matzehuels/orientplace/pkg/render/heatmap"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// Render generates output artifacts for b in the requested formats.
func (r *Runner) Render(ctx context.Context, b wireimg.Batch, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := RenderBatch(b, opts.Formats)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

// RenderBatch encodes b in each format without touching the cache.
func RenderBatch(b wireimg.Batch, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = netio.MarshalBatch(b)
		case FormatPNG:
			data, err = heatmap.RenderBatch(b, heatmap.FormatPNG)
		case FormatSVG:
			data, err = heatmap.RenderBatch(b, heatmap.FormatSVG)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
