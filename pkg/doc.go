// Package pkg provides the core libraries for dumap disk-usage visualization.
//
// # Overview
//
// Dumap walks a directory tree, aggregates size on disk bottom-up, and draws
// the result as a squarified treemap where every rectangle's area is
// proportional to the bytes underneath it. The pkg directory is organized
// into three main areas:
//
//  1. Domain logic - tree model, scanning, layout ([fstree], [scan], [treemap])
//  2. Presentation - colors, SVG output, human formatting ([render], [format])
//  3. Orchestration - the headless export pipeline ([pipeline])
//
// # Architecture
//
// The typical data flow through dumap:
//
//	Directory on disk
//	         ↓
//	    [scan] package (two-phase walk, streamed progress)
//	         ↓
//	    [fstree] package (size-annotated tree)
//	         ↓
//	    [treemap] package (squarified layout cells)
//	         ↓
//	    [render] package (SVG document) or the terminal browser
//
// # Quick Start
//
// Scan a directory and render an SVG treemap:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/dumap/dumap/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Root:  "/var/log",
//	    Title: "Disk usage under /var/log",
//	})
//	if err != nil {
//	    // handle
//	}
//	os.WriteFile("usage.svg", result.SVG, 0o644)
//
// # Main Packages
//
// [fstree] - The size-annotated directory tree. Nodes aggregate child sizes
// bottom-up after insertion and sort children largest-first for layout.
// Extension statistics for the legend live here too.
//
// [scan] - Two-phase directory walker. A counting pass estimates the total
// entry count, then the scanning pass builds the tree while streaming
// progress messages (percent, ETA, current path) over a channel.
//
// [treemap] - Pure squarified treemap layout. Produces pre-order cells with
// float64 rectangles; no I/O and no drawing.
//
// [render] - The shared color mapping (per-extension palette with depth
// shading) and the standalone SVG document writer.
//
// [format] - Human-readable sizes, durations, and label truncation.
//
// [pipeline] - Complete export pipeline (scan → layout → render) used by
// the export command and scripts. Ensures consistent behavior across entry
// points.
//
// [errors] - Coded errors shared by every layer, with user-facing messages.
//
// [observability] - Optional hooks around pipeline stages for metrics
// backends; no-ops unless registered.
//
// [buildinfo] - Version, commit, and build date injected via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/treemap/...  # Specific package
//	go test -run Example       # Examples only
//
// [fstree]: https://pkg.go.dev/github.com/dumap/dumap/pkg/fstree
// [scan]: https://pkg.go.dev/github.com/dumap/dumap/pkg/scan
// [treemap]: https://pkg.go.dev/github.com/dumap/dumap/pkg/treemap
// [render]: https://pkg.go.dev/github.com/dumap/dumap/pkg/render
// [format]: https://pkg.go.dev/github.com/dumap/dumap/pkg/format
// [pipeline]: https://pkg.go.dev/github.com/dumap/dumap/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/dumap/dumap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/dumap/dumap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/dumap/dumap/pkg/buildinfo
package pkg
