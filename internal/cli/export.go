package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dumap/dumap/internal/config"
	"github.com/dumap/dumap/pkg/errors"
	"github.com/dumap/dumap/pkg/pipeline"
)

// exportCommand creates the export command, the headless SVG renderer.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output   string
		maxDepth int
		maxFiles int
		interval int
		depth    int
		maxNodes int
		minCell  float64
		width    float64
		height   float64
		labels   bool
	)

	cmd := &cobra.Command{
		Use:   "export [path] -o FILE",
		Short: "Render disk usage to an SVG file",
		Long: `Render disk usage to an SVG file.

The export command runs the same scan as the interactive browser but
without a terminal UI: it walks the directory, lays out the treemap on a
fixed canvas, and writes a standalone SVG document to the output file.
Suitable for cron jobs, CI artifacts, and sharing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := exportOptions(c.activeConfig(), rootArg(args))

			flags := cmd.Flags()
			if flags.Changed("max-depth") {
				opts.ScanMaxDepth = maxDepth
			}
			if flags.Changed("max-files") {
				opts.ScanMaxFiles = maxFiles
			}
			if flags.Changed("interval") {
				opts.ProgressInterval = interval
			}
			if flags.Changed("depth") {
				opts.Depth = depth
			}
			if flags.Changed("max-nodes") {
				opts.MaxNodes = maxNodes
			}
			if flags.Changed("min-cell") {
				opts.MinCellSide = minCell
			}
			if flags.Changed("width") {
				opts.Width = width
			}
			if flags.Changed("height") {
				opts.Height = height
			}
			if flags.Changed("labels") {
				opts.HideLabels = !labels
			}

			return c.runExport(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output SVG file (required)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", pipeline.DefaultScanMaxDepth, "directory depth limit for the walk")
	cmd.Flags().IntVar(&maxFiles, "max-files", pipeline.DefaultScanMaxFiles, "stop sizing after this many files (0 = unlimited)")
	cmd.Flags().IntVar(&interval, "interval", pipeline.DefaultProgressInterval, "entries between progress updates")
	cmd.Flags().IntVar(&depth, "depth", pipeline.DefaultDepth, "tree depth shown in the treemap")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", pipeline.DefaultMaxNodes, "largest number of rectangles to lay out")
	cmd.Flags().Float64Var(&minCell, "min-cell", pipeline.DefaultMinCellSide, "skip rectangles smaller than this many pixels per side")
	cmd.Flags().Float64Var(&width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	cmd.Flags().Float64Var(&height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw file and folder labels")

	return cmd
}

// exportOptions maps the settings file onto pipeline options. Flags that
// were set on the command line override individual fields afterwards.
func exportOptions(cfg *config.Config, root string) pipeline.Options {
	opts := pipeline.Options{
		Root:             root,
		ScanMaxDepth:     cfg.Scan.MaxDepth,
		ScanMaxFiles:     cfg.Scan.MaxFiles,
		ProgressInterval: cfg.Scan.ProgressInterval,
		Depth:            cfg.View.Depth,
		MaxNodes:         cfg.View.MaxNodes,
		Width:            cfg.Export.Width,
		Height:           cfg.Export.Height,
		MinCellSide:      cfg.View.MinCellPx,
		LegendTopN:       cfg.View.LegendTopN,
		HideLabels:       !cfg.View.ShowLabels,
	}
	if cfg.View.LegendTopN == 0 {
		opts.HideLegend = true
	}
	return opts
}

// runExport executes the pipeline and writes the SVG artifact.
func (c *CLI) runExport(ctx context.Context, opts pipeline.Options, output string) error {
	if err := errors.ValidateOutputPath(output); err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	if opts.Title == "" {
		opts.Title = "Disk usage under " + opts.Root
	}

	runner := pipeline.NewRunner(logger)
	track := newProgress(logger)

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", opts.Root))
	spin.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spin.Cancelled() {
			spin.Stop()
			return err
		}
		spin.StopWithError("Export failed")
		return err
	}
	spin.Stop()

	if err := os.WriteFile(output, result.SVG, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to write %s", output)
	}
	track.done("Exported " + output)

	printSuccess("Export complete")
	printFile(output)
	printStats(result.Scan.Stats, result.Scan.Root.Size, result.Stats.CellCount)

	if n := result.Scan.Stats.Warnings; n > 0 {
		printWarning("%d entries skipped (rerun with --verbose for details)", n)
		for _, w := range result.Scan.Warnings {
			logger.Debug("scan warning", "detail", w)
		}
	}
	return nil
}
