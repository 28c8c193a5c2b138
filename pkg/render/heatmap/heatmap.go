package heatmap

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

const (
	defaultTileSize = 3 * vg.Inch
	defaultColors   = 64
	sheetRows       = 2
	sheetCols       = 4
)

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	tile    vg.Length
	colors  int
	title   string
	palette func(n int) palette.Palette
}

// WithTileSize sets the edge length of one orientation tile.
func WithTileSize(l vg.Length) Option { return func(r *renderer) { r.tile = l } }

// WithTitle sets the plot title of a single image.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// WithColors sets how many palette steps the color scale uses.
func WithColors(n int) Option { return func(r *renderer) { r.colors = n } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		tile:   defaultTileSize,
		colors: defaultColors,
		palette: func(n int) palette.Palette {
			return palette.Heat(n, 1)
		},
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.colors < 2 {
		r.colors = 2
	}
	return r
}

// grid adapts a wire image to plotter.GridXYZ.
type grid struct {
	img *wireimg.Image
}

func (g grid) Dims() (c, r int) {
	n := g.img.Size()
	return n, n
}

func (g grid) Z(c, r int) float64 { return g.img.At(c, r) }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// RenderImage renders one wire image in the given format.
func RenderImage(img *wireimg.Image, format string, opts ...Option) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	if err := checkImage(img); err != nil {
		return nil, err
	}
	r := newRenderer(opts...)

	st := img.Stats()
	p := r.plot(img, st.Min, st.Max)
	p.Title.Text = r.title

	w, err := p.WriterTo(r.tile, r.tile, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create heatmap writer")
	}
	return writeAll(w)
}

// RenderBatch renders all eight orientations of b on one sheet.
func RenderBatch(b wireimg.Batch, format string, opts ...Option) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	for o, img := range b {
		if err := checkImage(img); err != nil {
			return nil, fmt.Errorf("orientation %d: %w", o, err)
		}
	}
	r := newRenderer(opts...)
	lo, hi := batchRange(b)

	plots := make([][]*plot.Plot, sheetRows)
	for row := range plots {
		plots[row] = make([]*plot.Plot, sheetCols)
		for col := range plots[row] {
			o := wireimg.Orientation(row*sheetCols + col)
			p := r.plot(b[o], lo, hi)
			p.Title.Text = o.String()
			plots[row][col] = p
		}
	}

	width := r.tile * sheetCols
	height := r.tile * sheetRows
	var c interface {
		vg.CanvasSizer
		io.WriterTo
	}
	switch format {
	case FormatPNG:
		c = vgimg.PngCanvas{Canvas: vgimg.New(width, height)}
	case FormatSVG:
		c = vgsvg.New(width, height)
	}

	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: sheetRows,
		Cols: sheetCols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		for col := range plots[row] {
			plots[row][col].Draw(canvases[row][col])
		}
	}
	return writeAll(c)
}

func (r renderer) plot(img *wireimg.Image, lo, hi float64) *plot.Plot {
	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = color.White

	if hi <= lo {
		hi = lo + 1
	}
	h := plotter.NewHeatMap(grid{img}, r.palette(r.colors))
	h.Min = lo
	h.Max = hi
	p.Add(h)
	return p
}

func batchRange(b wireimg.Batch) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, img := range b {
		st := img.Stats()
		lo = math.Min(lo, st.Min)
		hi = math.Max(hi, st.Max)
	}
	return lo, hi
}

func checkFormat(format string) error {
	switch format {
	case FormatPNG, FormatSVG:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported heatmap format %q (want png or svg)", format)
}

func checkImage(img *wireimg.Image) error {
	if img == nil {
		return errors.New(errors.ErrCodeInvalidInput, "missing image")
	}
	if img.Size() == 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "cannot draw an empty image")
	}
	return nil
}

func writeAll(w io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode heatmap")
	}
	return buf.Bytes(), nil
}
