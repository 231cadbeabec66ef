package ui

import (
	"github.com/dumap/dumap/pkg/fstree"
	"github.com/dumap/dumap/pkg/treemap"
)

// cacheKey captures everything a grid build depends on. Layout is pure, so
// two builds with equal keys over the same generation's tree are identical.
type cacheKey struct {
	generation int
	width      int
	height     int
	depth      int
	maxNodes   int
	minCell    float64
}

// layoutCache memoizes the most recent grid build. The browser re-keys on
// every access; only a changed key pays for a relayout, so redraws between
// keystrokes reuse the same cells, labels, and fills.
type layoutCache struct {
	key    cacheKey
	items  []gridCell
	primed bool
	builds int
}

// cellsFor returns the drawable cells for root under key, rebuilding only
// when the key differs from the cached one. The root cell itself and cells
// below the minimum size are dropped during the build.
func (c *layoutCache) cellsFor(root *fstree.Node, key cacheKey) []gridCell {
	if c.primed && key == c.key {
		return c.items
	}

	bounds := treemap.Rect{W: float64(key.width), H: float64(key.height)}
	cells := treemap.Layout(root, bounds, key.depth, key.maxNodes)

	items := make([]gridCell, 0, len(cells))
	for _, cell := range cells {
		if cell.Depth == 0 {
			continue
		}
		if cell.Rect.W < key.minCell || cell.Rect.H < key.minCell {
			continue
		}
		items = append(items, newGridCell(cell))
	}

	c.key = key
	c.items = items
	c.primed = true
	c.builds++
	return items
}

// cellAt returns the index of the cell covering the point, or -1. Cells are
// scanned in reverse emission order so the deepest cell drawn on top wins.
func cellAt(items []gridCell, x, y int) int {
	for i := len(items) - 1; i >= 0; i-- {
		c := items[i]
		if x >= c.x && x < c.x+c.w && y >= c.y && y < c.y+c.h {
			return i
		}
	}
	return -1
}

// findCell returns the index of the cell holding node, or -1.
func findCell(items []gridCell, node *fstree.Node) int {
	if node == nil {
		return -1
	}
	for i := range items {
		if items[i].node == node {
			return i
		}
	}
	return -1
}

// neighborIndex picks the cell to move to from cur in the given direction:
// the nearest center strictly past the current cell's center. Peers at the
// same depth are preferred so arrows sweep one level at a time instead of
// jumping between a folder and its contents.
func neighborIndex(items []gridCell, cur, dx, dy int) int {
	if best := directionalNearest(items, cur, dx, dy, true); best >= 0 {
		return best
	}
	return directionalNearest(items, cur, dx, dy, false)
}

func directionalNearest(items []gridCell, cur, dx, dy int, sameDepth bool) int {
	c := items[cur]
	cx := c.x + c.w/2
	cy := c.y + c.h/2

	best := -1
	bestDist := -1
	for i := range items {
		if i == cur {
			continue
		}
		cand := items[i]
		if sameDepth && cand.depth != c.depth {
			continue
		}

		bx := cand.x + cand.w/2
		by := cand.y + cand.h/2
		if dx > 0 && bx <= cx {
			continue
		}
		if dx < 0 && bx >= cx {
			continue
		}
		if dy > 0 && by <= cy {
			continue
		}
		if dy < 0 && by >= cy {
			continue
		}

		dist := abs(bx-cx) + abs(by-cy)
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
