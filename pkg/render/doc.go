// Package render turns a scanned tree into a standalone SVG treemap.
//
// # Overview
//
// [RenderSVG] paints precomputed [treemap.Layout] cells as flat rectangles:
// files colored by extension, directories in a neutral slate, both darkened
// slightly per nesting level so structure stays readable without borders
// doing all the work. The output is a complete SVG document with no
// external references.
//
// Basic usage:
//
//	bounds := treemap.Rect{W: render.DefaultWidth, H: render.DefaultHeight}
//	cells := treemap.Layout(result.Root, bounds, render.DefaultDepth, render.DefaultMaxNodes)
//	svg := render.RenderSVG(result.Root, cells,
//	    render.WithTitle(result.Root.Path),
//	)
//
// # SVG Options
//
//   - [WithSize]: Canvas dimensions in pixels (default 1200x800); must
//     match the bounds the cells were laid out against
//   - [WithMinCellSide]: Drop cells thinner than this (default 1px)
//   - [WithTitle]: Header line above the treemap
//   - [WithLegendTopN]: Rows in the extension legend, 0 hides it (default 12)
//   - [WithoutLabels]: Suppress in-cell name labels
//
// # Colors
//
// Cell colors are derived deterministically from the extension key, so the
// same tree always renders the same image and the legend swatches match the
// cells. See [fstree.ExtensionKey] for how paths map to keys. [CellFill],
// [KeyFill], and [CanvasFill] expose the mapping so other frontends can
// paint the same tree the same way.
//
// [treemap.Layout]: github.com/dumap/dumap/pkg/treemap.Layout
// [fstree.ExtensionKey]: github.com/dumap/dumap/pkg/fstree.ExtensionKey
package render
