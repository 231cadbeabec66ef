package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/dumap/dumap/pkg/format"
	"github.com/dumap/dumap/pkg/fstree"
	"github.com/dumap/dumap/pkg/treemap"
)

// Presentation defaults, shared by the CLI export command and the TUI.
const (
	DefaultWidth       = 1200.0
	DefaultHeight      = 800.0
	DefaultDepth       = 8
	DefaultMaxNodes    = 20000
	DefaultMinCellSide = 1.0
	DefaultLegendTopN  = 12
)

const (
	headerHeight    = 28.0
	legendRowHeight = 18.0
	legendPadding   = 10.0
	legendSwatch    = 12.0

	// Cells narrower or shorter than these never get a readable label.
	labelMinWidth  = 95.0
	labelMinHeight = 20.0
	labelCharWidth = 7.0
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width       float64
	height      float64
	minCellSide float64
	showLabels  bool
	legendTopN  int
	title       string
}

func WithSize(width, height float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = width, height }
}
func WithMinCellSide(px float64) SVGOption { return func(r *svgRenderer) { r.minCellSide = px } }
func WithoutLabels() SVGOption             { return func(r *svgRenderer) { r.showLabels = false } }
func WithLegendTopN(n int) SVGOption       { return func(r *svgRenderer) { r.legendTopN = n } }
func WithTitle(title string) SVGOption     { return func(r *svgRenderer) { r.title = title } }

// RenderSVG paints precomputed treemap cells as a complete SVG document.
// The cells must come from [treemap.Layout] over a (0, 0, width, height)
// canvas matching [WithSize]; the tree is consulted for the legend. An
// optional header line sits above the canvas and the extension legend
// below. Output is deterministic for a given tree, cells, and option set.
func RenderSVG(root *fstree.Node, cells []treemap.Cell, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	headerH := 0.0
	if r.title != "" {
		headerH = headerHeight
	}

	var legendRows []fstree.ExtensionTotal
	var totalBytes int64
	if r.legendTopN > 0 {
		totals, total := fstree.ExtensionTotals(root)
		if len(totals) > r.legendTopN {
			totals = totals[:r.legendTopN]
		}
		legendRows = totals
		totalBytes = total
	}
	legendH := 0.0
	if len(legendRows) > 0 {
		legendH = 2*legendPadding + float64(len(legendRows))*legendRowHeight
	}

	totalH := headerH + r.height + legendH

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, totalH, r.width, totalH)

	if r.title != "" {
		renderHeader(&buf, r.width, r.title)
	}

	if headerH > 0 {
		fmt.Fprintf(&buf, `  <g transform="translate(0,%.1f)">`+"\n", headerH)
	}
	renderCells(&buf, &r, cells)
	if headerH > 0 {
		buf.WriteString("  </g>\n")
	}

	if len(legendRows) > 0 {
		renderLegend(&buf, headerH+r.height, legendRows, totalBytes)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		width:       DefaultWidth,
		height:      DefaultHeight,
		minCellSide: DefaultMinCellSide,
		showLabels:  true,
		legendTopN:  DefaultLegendTopN,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderHeader(buf *bytes.Buffer, width float64, title string) {
	fmt.Fprintf(buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		width, headerHeight, CanvasFill())
	fmt.Fprintf(buf, `  <text x="8" y="19" font-family="sans-serif" font-size="13" font-weight="bold" fill="#ffffff">%s</text>`+"\n",
		escapeXML(title))
}

func renderCells(buf *bytes.Buffer, r *svgRenderer, cells []treemap.Cell) {
	fmt.Fprintf(buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		r.width, r.height, CanvasFill())

	for _, cell := range cells {
		if cell.Depth == 0 {
			continue
		}
		if cell.Rect.W < r.minCellSide || cell.Rect.H < r.minCellSide {
			continue
		}

		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#000000" stroke-opacity="0.18" stroke-width="1"/>`+"\n",
			cell.Rect.X, cell.Rect.Y, cell.Rect.W, cell.Rect.H, CellFill(cell.Node, cell.Depth))

		if r.showLabels && cell.Rect.W > labelMinWidth && cell.Rect.H > labelMinHeight {
			label := fmt.Sprintf("%s (%s)", cell.Node.Name, format.Size(cell.Node.Size))
			maxChars := int(math.Max(math.Floor(cell.Rect.W/labelCharWidth), 6))
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="11" fill="#ffffff">%s</text>`+"\n",
				cell.Rect.X+4, cell.Rect.Y+14, escapeXML(format.TruncateLabel(label, maxChars)))
		}
	}
}

func renderLegend(buf *bytes.Buffer, top float64, rows []fstree.ExtensionTotal, totalBytes int64) {
	y := top + legendPadding
	for _, row := range rows {
		fmt.Fprintf(buf, `  <rect x="8" y="%.1f" width="%.1f" height="%.1f" rx="2" fill="%s"/>`+"\n",
			y, legendSwatch, legendSwatch, KeyFill(row.Key))

		percent := 0.0
		if totalBytes > 0 {
			percent = float64(row.Bytes) / float64(totalBytes) * 100
		}
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="11" fill="#333333">%s  %.1f%%  %s</text>`+"\n",
			8+legendSwatch+6, y+legendSwatch-2,
			escapeXML(LegendLabel(row.Key)), percent, format.Size(row.Bytes))

		y += legendRowHeight
	}
}

// LegendLabel renders an extension key the way users read it: a leading dot
// for real extensions, a phrase for the fallback bucket.
func LegendLabel(key string) string {
	if key == fstree.NoExtensionKey {
		return "(no extension)"
	}
	return "." + key
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
