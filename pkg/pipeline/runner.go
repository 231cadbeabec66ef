package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dumap/dumap/pkg/fstree"
	"github.com/dumap/dumap/pkg/observability"
	"github.com/dumap/dumap/pkg/render"
	"github.com/dumap/dumap/pkg/scan"
	"github.com/dumap/dumap/pkg/treemap"
)

// Runner executes pipeline stages. It is stateless apart from the logger,
// so multiple goroutines can safely share one Runner with different
// options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to the package
// default logger.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete scan → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	hooks := observability.Pipeline()

	scanStart := time.Now()
	hooks.OnScanStart(ctx, opts.Root)
	scanResult, err := r.Scan(ctx, opts)
	if err != nil {
		hooks.OnScanComplete(ctx, opts.Root, 0, time.Since(scanStart), err)
		return nil, fmt.Errorf("scan: %w", err)
	}
	result.Scan = scanResult
	result.Stats.ScanTime = time.Since(scanStart)
	hooks.OnScanComplete(ctx, opts.Root, scanResult.Stats.EntriesScanned, result.Stats.ScanTime, nil)

	r.Logger.Info("scanned directory",
		"root", opts.Root,
		"entries", scanResult.Stats.EntriesScanned,
		"files", scanResult.Stats.FilesScanned,
		"dirs", scanResult.Stats.DirsScanned,
		"warnings", scanResult.Stats.Warnings,
		"truncated", scanResult.Stats.Truncated,
		"duration", result.Stats.ScanTime)

	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, scanResult.Stats.EntriesScanned)
	cells, err := r.ComputeLayout(scanResult.Root, opts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(layoutStart), err)
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Cells = cells
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.CellCount = len(cells)
	hooks.OnLayoutComplete(ctx, len(cells), result.Stats.LayoutTime, nil)

	r.Logger.Info("computed layout",
		"cells", len(cells),
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	hooks.OnRenderStart(ctx, len(cells))
	svg, err := r.Render(scanResult.Root, cells, opts)
	if err != nil {
		hooks.OnRenderComplete(ctx, 0, time.Since(renderStart), err)
		return nil, fmt.Errorf("render: %w", err)
	}
	result.SVG = svg
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, len(svg), result.Stats.RenderTime, nil)

	r.Logger.Info("rendered svg",
		"bytes", len(svg),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Scan runs the scan stage, consuming the worker's progress stream until
// the terminal message. Context cancellation stops the wait, not the
// worker; the abandoned channel is handed to a drainer so the worker can
// finish on its own.
func (r *Runner) Scan(ctx context.Context, opts Options) (*scan.Result, error) {
	if err := opts.ValidateForScan(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := scan.Start(opts.Root, opts.ScanConfig())
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil, scan.DisconnectedError()
			}
			if msg.Err != nil {
				return nil, msg.Err
			}
			if msg.Result != nil {
				return msg.Result, nil
			}
			r.Logger.Debug("scan progress",
				"phase", msg.Progress.Phase,
				"entries", msg.Progress.EntriesScanned,
				"percent", msg.Progress.Percent)
		case <-ctx.Done():
			scan.Drain(ch)
			return nil, ctx.Err()
		}
	}
}

// ComputeLayout runs the layout stage over an existing tree.
func (r *Runner) ComputeLayout(root *fstree.Node, opts Options) ([]treemap.Cell, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	return treemap.Layout(root, opts.Bounds(), opts.Depth, opts.MaxNodes), nil
}

// Render runs the render stage over an existing tree and layout.
func (r *Runner) Render(root *fstree.Node, cells []treemap.Cell, opts Options) ([]byte, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	return render.RenderSVG(root, cells, opts.RenderOptions()...), nil
}
