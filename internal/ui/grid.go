package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dumap/dumap/pkg/format"
	"github.com/dumap/dumap/pkg/fstree"
	"github.com/dumap/dumap/pkg/render"
	"github.com/dumap/dumap/pkg/treemap"
)

// Cells need at least this much room before a label is worth drawing.
const (
	labelMinCols = 8
	labelMinRows = 2
)

// gridCell is one treemap cell snapped to terminal coordinates, with its
// label and fill precomputed so redraws stay allocation-light.
type gridCell struct {
	node  *fstree.Node
	depth int
	x, y  int
	w, h  int
	label string
	fill  lipgloss.Color
}

// newGridCell snaps a layout cell to whole terminal cells. Edges round to
// the nearest column/row so adjacent cells stay contiguous; extents never
// drop below one cell.
func newGridCell(cell treemap.Cell) gridCell {
	x := int(math.Round(cell.Rect.X))
	y := int(math.Round(cell.Rect.Y))
	w := int(math.Round(cell.Rect.X+cell.Rect.W)) - x
	h := int(math.Round(cell.Rect.Y+cell.Rect.H)) - y
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	return gridCell{
		node:  cell.Node,
		depth: cell.Depth,
		x:     x,
		y:     y,
		w:     w,
		h:     h,
		label: fmt.Sprintf("%s (%s)", cell.Node.Name, format.Size(cell.Node.Size)),
		fill:  lipgloss.Color(render.CellFill(cell.Node, cell.Depth)),
	}
}

// renderGrid paints the cells onto a w×h character canvas. Cells arrive in
// pre-order, so children overwrite their parent's interior and each parent
// keeps a one-cell ring where its label lives.
func renderGrid(items []gridCell, w, h int, selected *fstree.Node, showLabels bool) string {
	if w < 1 || h < 1 {
		return ""
	}

	runes := make([][]rune, h)
	styles := make([][]lipgloss.Style, h)
	for y := range runes {
		runes[y] = make([]rune, w)
		styles[y] = make([]lipgloss.Style, w)
		for x := range runes[y] {
			runes[y][x] = ' '
			styles[y][x] = styleCanvas
		}
	}

	for i := range items {
		paintCell(runes, styles, items[i], w, h, items[i].node == selected, showLabels)
	}

	var b strings.Builder
	for y := 0; y < h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			b.WriteString(styles[y][x].Render(string(runes[y][x])))
		}
	}
	return b.String()
}

func paintCell(runes [][]rune, styles [][]lipgloss.Style, cell gridCell, gridW, gridH int, selected, showLabels bool) {
	style := lipgloss.NewStyle().Background(cell.fill).Foreground(colorWhite)
	if selected {
		style = styleSelected
	}

	for y := cell.y; y < cell.y+cell.h && y < gridH; y++ {
		if y < 0 {
			continue
		}
		for x := cell.x; x < cell.x+cell.w && x < gridW; x++ {
			if x < 0 {
				continue
			}
			runes[y][x] = ' '
			styles[y][x] = style
		}
	}

	if !showLabels || cell.w < labelMinCols || cell.h < labelMinRows {
		return
	}
	if cell.y < 0 || cell.y >= gridH {
		return
	}

	text := format.TruncateLabel(cell.label, cell.w-2)
	x := cell.x + 1
	for _, r := range text {
		if x >= gridW || x >= cell.x+cell.w-1 {
			break
		}
		if x >= 0 {
			runes[cell.y][x] = r
			styles[cell.y][x] = style
		}
		x++
	}
}
