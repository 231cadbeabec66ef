package cli

import (
	"github.com/spf13/cobra"

	"github.com/dumap/dumap/internal/config"
	"github.com/dumap/dumap/internal/ui"
	"github.com/dumap/dumap/pkg/pipeline"
	"github.com/dumap/dumap/pkg/scan"
)

// scanCommand creates the scan command, the interactive treemap browser.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		maxDepth int
		maxFiles int
		interval int
		depth    int
		maxNodes int
		minCell  float64
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Browse disk usage as an interactive treemap",
		Long: `Browse disk usage as an interactive treemap.

The scan command walks the directory (current directory by default),
streaming progress while it counts and then sizes every entry, and opens
the treemap browser when the walk finishes. Rectangle areas are
proportional to size on disk; colors follow file extensions.

Keys:
  arrows, hjkl   move the selection between rectangles
  enter          open the selected folder
  backspace, esc go back to the parent folder
  w              toggle the list of skipped entries
  r              rescan from scratch
  q              quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := uiOptions(c.activeConfig(), rootArg(args))

			flags := cmd.Flags()
			if flags.Changed("max-depth") {
				opts.Scan.MaxDepth = maxDepth
			}
			if flags.Changed("max-files") {
				opts.Scan.MaxFiles = maxFiles
			}
			if flags.Changed("interval") {
				opts.Scan.ProgressInterval = interval
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

			return ui.Run(opts)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", pipeline.DefaultScanMaxDepth, "directory depth limit for the walk")
	cmd.Flags().IntVar(&maxFiles, "max-files", pipeline.DefaultScanMaxFiles, "stop sizing after this many files (0 = unlimited)")
	cmd.Flags().IntVar(&interval, "interval", pipeline.DefaultProgressInterval, "entries between progress updates")
	cmd.Flags().IntVar(&depth, "depth", pipeline.DefaultDepth, "tree depth shown in the treemap")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", pipeline.DefaultMaxNodes, "largest number of rectangles to lay out")
	cmd.Flags().Float64Var(&minCell, "min-cell", pipeline.DefaultMinCellSide, "hide rectangles smaller than this many cells per side")

	return cmd
}

// uiOptions maps the settings file onto browser options. Flags that were
// set on the command line override individual fields afterwards.
func uiOptions(cfg *config.Config, root string) ui.Options {
	opts := ui.Options{
		Root: root,
		Scan: scan.Config{
			MaxDepth:         cfg.Scan.MaxDepth,
			MaxFiles:         cfg.Scan.MaxFiles,
			ProgressInterval: cfg.Scan.ProgressInterval,
		},
		Depth:       cfg.View.Depth,
		MaxNodes:    cfg.View.MaxNodes,
		MinCellSide: cfg.View.MinCellPx,
		LegendTopN:  cfg.View.LegendTopN,
		HideLabels:  !cfg.View.ShowLabels,
	}
	if cfg.View.LegendTopN == 0 {
		opts.HideLegend = true
	}
	return opts
}
