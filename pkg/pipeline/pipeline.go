// Package pipeline wires the scan → layout → render stages into one
// reusable unit.
//
// This package implements the complete headless path from a directory on
// disk to a rendered SVG treemap. The interactive TUI drives the same
// underlying packages itself because it re-layouts on every resize; the
// pipeline exists for everything that wants a single answer: the export
// command, scripts, and tests.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Scan: Walk the directory and build the size-annotated tree
//  2. Layout: Compute squarified treemap cells for the tree
//  3. Render: Paint the cells into a standalone SVG document
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Root:  "/var/log",
//	    Title: "Disk usage under /var/log",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("usage.svg", result.SVG, 0o644)
package pipeline

import (
	"time"

	"github.com/dumap/dumap/pkg/errors"
	"github.com/dumap/dumap/pkg/render"
	"github.com/dumap/dumap/pkg/scan"
	"github.com/dumap/dumap/pkg/treemap"
)

// Default values, re-exported from the owning packages so CLI and config
// share a single source of truth.
const (
	DefaultScanMaxDepth     = scan.DefaultMaxDepth
	DefaultScanMaxFiles     = scan.DefaultMaxFiles
	DefaultProgressInterval = scan.DefaultProgressInterval

	DefaultDepth    = render.DefaultDepth
	DefaultMaxNodes = render.DefaultMaxNodes
	DefaultWidth    = render.DefaultWidth
	DefaultHeight   = render.DefaultHeight

	DefaultMinCellSide = render.DefaultMinCellSide
	DefaultLegendTopN  = render.DefaultLegendTopN
)

// Options contains all configuration for the export pipeline.
type Options struct {
	// Scan options. ScanMaxFiles of 0 means unlimited, matching
	// scan.Config; the other zero values mean "use the default".
	Root             string
	ScanMaxDepth     int
	ScanMaxFiles     int
	ProgressInterval int

	// Layout options
	Depth    int
	MaxNodes int
	Width    float64
	Height   float64

	// Render options
	MinCellSide float64
	LegendTopN  int
	HideLegend  bool
	HideLabels  bool
	Title       string

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scan is the full scan outcome: tree, stats, and warnings.
	Scan *scan.Result

	// Cells is the computed treemap layout in canvas coordinates.
	Cells []treemap.Cell

	// SVG is the rendered document.
	SVG []byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CellCount  int
	ScanTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent, calling it multiple times
// has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForScan(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForScan checks required fields and applies defaults for the scan
// stage.
func (o *Options) ValidateForScan() error {
	if o.Root == "" {
		return errors.New(errors.ErrCodeInvalidInput, "root directory is required")
	}

	if o.ScanMaxDepth == 0 {
		o.ScanMaxDepth = DefaultScanMaxDepth
	}
	if o.ProgressInterval == 0 {
		o.ProgressInterval = DefaultProgressInterval
	}

	if err := errors.ValidatePositive("scan-depth", o.ScanMaxDepth); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("max-files", o.ScanMaxFiles); err != nil {
		return err
	}
	return errors.ValidatePositive("progress-interval", o.ProgressInterval)
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()

	if err := errors.ValidatePositive("depth", o.Depth); err != nil {
		return err
	}
	if err := errors.ValidatePositive("max-nodes", o.MaxNodes); err != nil {
		return err
	}
	if err := errors.ValidateDimension("width", o.Width); err != nil {
		return err
	}
	return errors.ValidateDimension("height", o.Height)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.MinCellSide == 0 {
		o.MinCellSide = DefaultMinCellSide
	}
	if o.LegendTopN == 0 {
		o.LegendTopN = DefaultLegendTopN
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()

	if o.MinCellSide < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min-cell must not be negative, got %g", o.MinCellSide)
	}
	if o.LegendTopN < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "legend-top must not be negative, got %d", o.LegendTopN)
	}
	return nil
}

// ScanConfig returns the scan stage configuration.
func (o *Options) ScanConfig() scan.Config {
	return scan.Config{
		MaxDepth:         o.ScanMaxDepth,
		MaxFiles:         o.ScanMaxFiles,
		ProgressInterval: o.ProgressInterval,
	}
}

// Bounds returns the layout canvas.
func (o *Options) Bounds() treemap.Rect {
	return treemap.Rect{X: 0, Y: 0, W: o.Width, H: o.Height}
}

// RenderOptions translates the render fields into render package options.
func (o *Options) RenderOptions() []render.SVGOption {
	opts := []render.SVGOption{
		render.WithSize(o.Width, o.Height),
		render.WithMinCellSide(o.MinCellSide),
		render.WithTitle(o.Title),
	}
	if o.HideLegend {
		opts = append(opts, render.WithLegendTopN(0))
	} else {
		opts = append(opts, render.WithLegendTopN(o.LegendTopN))
	}
	if o.HideLabels {
		opts = append(opts, render.WithoutLabels())
	}
	return opts
}
