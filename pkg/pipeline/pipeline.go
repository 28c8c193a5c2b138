// Package pipeline runs the validate → compute → render flow shared by the
// CLI and any embedding service.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Validate: check the net map against the grid before any work starts
//  2. Compute: fill the eight orientation images, sequentially or in parallel
//  3. Render: encode the batch as JSON and draw PNG/SVG heatmaps
//
// Computed batches are cached by the content hash of their inputs, so a
// repeated run over the same nets and grid skips stage 2.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, nets, pipeline.Options{
//	    Grid:     64,
//	    Parallel: true,
//	    Formats:  []string{"json", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orientplace/pkg/cache"
	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and library callers
// =============================================================================

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatSVG  = "svg"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatJSON

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatPNG:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Grid is the side length of every image. Zero is valid and yields
	// empty images.
	Grid int `json:"grid"`

	// Parallel computes the eight orientations concurrently.
	Parallel bool `json:"parallel,omitempty"`

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Formats lists the artifacts to render. Defaults to json.
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and hooks.
	RunID string

	// Batch holds the eight orientation images.
	Batch wireimg.Batch

	// NetsHash is the content hash of the nets and grid.
	NetsHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the batch came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Grid        int
	NetCount    int
	ComputeTime time.Duration
	RenderTime  time.Duration
	Images      [wireimg.NumOrientations]wireimg.Stats
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, png, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateGrid(o.Grid); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// BatchKeyOpts returns cache key options for batch computation.
func (o *Options) BatchKeyOpts() cache.BatchKeyOpts {
	return cache.BatchKeyOpts{Grid: o.Grid}
}

// Mode names the compute driver for logs.
func (o *Options) Mode() string {
	if o.Parallel {
		return "parallel"
	}
	return "sequential"
}

func (s Stats) String() string {
	return fmt.Sprintf("grid=%d nets=%d compute=%s render=%s",
		s.Grid, s.NetCount, s.ComputeTime, s.RenderTime)
}
