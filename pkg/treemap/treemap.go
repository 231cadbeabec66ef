package treemap

import (
	"cmp"
	"math"
	"slices"

	"github.com/dumap/dumap/pkg/fstree"
)

const (
	// cellPadding shrinks a node's rectangle before its children are packed,
	// so adjacent cell borders never overlap.
	cellPadding = 1.0

	// minSide is the smallest rectangle extent worth emitting or subdividing.
	minSide = 0.2
)

// Rect is an axis-aligned rectangle in layout units. The origin is the
// top-left corner; Y grows downward.
type Rect struct {
	X, Y float64
	W, H float64
}

// Area returns the rectangle's area, treating negative extents as zero.
func (r Rect) Area() float64 { return math.Max(r.W, 0) * math.Max(r.H, 0) }

// ShortestSide returns the smaller of width and height.
func (r Rect) ShortestSide() float64 { return math.Min(r.W, r.H) }

// Shrink insets the rectangle by padding on all four sides, clamping the
// extents at zero.
func (r Rect) Shrink(padding float64) Rect {
	doubled := padding * 2
	return Rect{
		X: r.X + padding,
		Y: r.Y + padding,
		W: math.Max(r.W-doubled, 0),
		H: math.Max(r.H-doubled, 0),
	}
}

// Cell places one tree node on the canvas.
type Cell struct {
	Node  *fstree.Node
	Rect  Rect
	Depth int
}

// rowItem pairs a child with its target area for the current level.
type rowItem struct {
	node *fstree.Node
	area float64
}

// placedItem is a child with its assigned rectangle, in packing order.
type placedItem struct {
	node *fstree.Node
	rect Rect
}

// Layout packs the tree rooted at root into bounds and returns the placed
// cells in pre-order, the depth-0 root first. maxDepth bounds descent below
// the root and maxNodes bounds the total number of cells. Bounds with a
// non-positive width or height yield nil. The function is pure: identical
// inputs produce the identical cell sequence.
func Layout(root *fstree.Node, bounds Rect, maxDepth, maxNodes int) []Cell {
	if bounds.W <= 0 || bounds.H <= 0 {
		return nil
	}

	cells := make([]Cell, 0, 2048)
	return layoutNode(cells, root, bounds, 0, maxDepth, maxNodes)
}

func layoutNode(out []Cell, node *fstree.Node, bounds Rect, depth, maxDepth, maxNodes int) []Cell {
	if len(out) >= maxNodes || bounds.W <= minSide || bounds.H <= minSide {
		return out
	}

	out = append(out, Cell{Node: node, Rect: bounds, Depth: depth})

	if depth >= maxDepth || len(node.Children) == 0 {
		return out
	}

	inner := bounds.Shrink(cellPadding)
	if inner.W <= minSide || inner.H <= minSide {
		return out
	}

	children := make([]*fstree.Node, 0, len(node.Children))
	for _, child := range node.Children {
		if child.Size > 0 {
			children = append(children, child)
		}
	}
	if len(children) == 0 {
		return out
	}

	// Already true after finalization, but layout must not depend on the
	// caller having sorted.
	slices.SortStableFunc(children, func(a, b *fstree.Node) int {
		return cmp.Compare(b.Size, a.Size)
	})

	var totalSize int64
	for _, child := range children {
		totalSize = saturatingAdd(totalSize, child.Size)
	}
	if totalSize == 0 {
		return out
	}

	totalArea := inner.Area()
	items := make([]rowItem, len(children))
	for i, child := range children {
		items[i] = rowItem{
			node: child,
			area: totalArea * (float64(child.Size) / float64(totalSize)),
		}
	}

	for _, placed := range squarify(items, inner) {
		out = layoutNode(out, placed.node, placed.rect, depth+1, maxDepth, maxNodes)
		if len(out) >= maxNodes {
			break
		}
	}
	return out
}

// squarify assigns rectangles to items row by row. Items join the current
// row while doing so does not increase the row's worst aspect ratio;
// otherwise the row is laid out against the remaining rectangle and a new
// row starts with the rejected item.
func squarify(items []rowItem, bounds Rect) []placedItem {
	out := make([]placedItem, 0, len(items))
	remaining := bounds
	var row []rowItem

	for _, item := range items {
		expanded := append(slices.Clone(row), item)

		side := math.Max(remaining.ShortestSide(), 1.0)
		if len(row) == 0 || worstRatio(expanded, side) <= worstRatio(row, side) {
			row = append(row, item)
			continue
		}

		remaining = layoutRow(row, remaining, &out)
		row = row[:0]
		row = append(row, item)
	}

	if len(row) > 0 {
		layoutRow(row, remaining, &out)
	}

	return out
}

// layoutRow places one closed row inside bounds and returns the rectangle
// left over for subsequent rows.
func layoutRow(row []rowItem, bounds Rect, out *[]placedItem) Rect {
	var rowArea float64
	for _, item := range row {
		rowArea += item.area
	}

	if bounds.W >= bounds.H {
		// The row packs along the shortest side. Width >= height means the
		// shortest side is height, so the row is a vertical strip consuming
		// width.
		var colWidth float64
		if bounds.H > 0 {
			colWidth = rowArea / bounds.H
		}

		y := bounds.Y
		for _, item := range row {
			var height float64
			if colWidth > 0 {
				height = item.area / colWidth
			}
			*out = append(*out, placedItem{
				node: item.node,
				rect: Rect{X: bounds.X, Y: y, W: math.Max(colWidth, 0), H: math.Max(height, 0)},
			})
			y += height
		}

		return Rect{
			X: bounds.X + colWidth,
			Y: bounds.Y,
			W: math.Max(bounds.W-colWidth, 0),
			H: bounds.H,
		}
	}

	// Width < height: the shortest side is width, so the row is a horizontal
	// strip consuming height.
	var rowHeight float64
	if bounds.W > 0 {
		rowHeight = rowArea / bounds.W
	}

	x := bounds.X
	for _, item := range row {
		var width float64
		if rowHeight > 0 {
			width = item.area / rowHeight
		}
		*out = append(*out, placedItem{
			node: item.node,
			rect: Rect{X: x, Y: bounds.Y, W: math.Max(width, 0), H: math.Max(rowHeight, 0)},
		})
		x += width
	}

	return Rect{
		X: bounds.X,
		Y: bounds.Y + rowHeight,
		W: bounds.W,
		H: math.Max(bounds.H-rowHeight, 0),
	}
}

// worstRatio is the squarify quality metric: the worst aspect ratio any item
// in the row would get if the row were laid out against a strip of the given
// side length. Lower is better; an unusable row rates +Inf.
func worstRatio(row []rowItem, side float64) float64 {
	if len(row) == 0 || side <= 0 {
		return math.Inf(1)
	}

	minArea := math.Inf(1)
	maxArea := 0.0
	sum := 0.0

	for _, item := range row {
		area := math.Max(item.area, 0)
		minArea = math.Min(minArea, area)
		maxArea = math.Max(maxArea, area)
		sum += area
	}

	if minArea <= 0 || sum <= 0 {
		return math.Inf(1)
	}

	sideSq := side * side
	sumSq := sum * sum
	return math.Max(sideSq*maxArea/sumSq, sumSq/(sideSq*minArea))
}

func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
