package treemap

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/dumap/dumap/pkg/fstree"
)

const areaTolerance = 1e-6

func buildRootWithSizes(sizes []int64) *fstree.Node {
	root := fstree.New("root", "root", 0)
	for i, size := range sizes {
		name := fmt.Sprintf("child_%d", i)
		root.Children = append(root.Children, fstree.New(name, "root/"+name, size))
	}
	root.FinalizeSizes()
	root.SortBySizeDesc()
	return root
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 40}

	if got := r.Area(); got != 4000 {
		t.Errorf("Area() = %v, want 4000", got)
	}
	if got := r.ShortestSide(); got != 40 {
		t.Errorf("ShortestSide() = %v, want 40", got)
	}

	shrunk := r.Shrink(1)
	want := Rect{X: 11, Y: 21, W: 98, H: 38}
	if shrunk != want {
		t.Errorf("Shrink(1) = %+v, want %+v", shrunk, want)
	}

	collapsed := Rect{W: 1, H: 1}.Shrink(2)
	if collapsed.W != 0 || collapsed.H != 0 {
		t.Errorf("Shrink should clamp at zero, got %+v", collapsed)
	}
}

func TestWorstRatio(t *testing.T) {
	tests := []struct {
		name string
		row  []rowItem
		side float64
		want float64
	}{
		{"empty row", nil, 10, math.Inf(1)},
		{"zero side", []rowItem{{area: 100}}, 0, math.Inf(1)},
		{"zero area item", []rowItem{{area: 0}}, 10, math.Inf(1)},
		{"perfect square", []rowItem{{area: 100}}, 10, 1},
		{"two equal items", []rowItem{{area: 50}, {area: 50}}, 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := worstRatio(tt.row, tt.side)
			if math.IsInf(tt.want, 1) {
				if !math.IsInf(got, 1) {
					t.Errorf("worstRatio() = %v, want +Inf", got)
				}
				return
			}
			if math.Abs(got-tt.want) > areaTolerance {
				t.Errorf("worstRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayoutDegenerateBounds(t *testing.T) {
	root := buildRootWithSizes([]int64{100})

	tests := []struct {
		name   string
		bounds Rect
	}{
		{"zero width", Rect{W: 0, H: 100}},
		{"zero height", Rect{W: 100, H: 0}},
		{"negative width", Rect{W: -5, H: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cells := Layout(root, tt.bounds, 4, 1024); cells != nil {
				t.Errorf("Layout() = %d cells, want nil", len(cells))
			}
		})
	}

	t.Run("below epsilon", func(t *testing.T) {
		if cells := Layout(root, Rect{W: 0.1, H: 100}, 4, 1024); len(cells) != 0 {
			t.Errorf("Layout() = %d cells, want 0", len(cells))
		}
	})
}

func TestLayoutPreOrderRootFirst(t *testing.T) {
	root := buildRootWithSizes([]int64{500, 250, 125, 64})
	cells := Layout(root, Rect{W: 800, H: 600}, 2, 1024)

	if len(cells) == 0 {
		t.Fatal("no cells emitted")
	}
	if cells[0].Node != root || cells[0].Depth != 0 {
		t.Errorf("first cell = %s depth %d, want root depth 0", cells[0].Node.Name, cells[0].Depth)
	}
	for i := 1; i < len(cells); i++ {
		if cells[i].Depth == 0 {
			t.Errorf("cell %d has depth 0, only the first may", i)
		}
	}
}

func TestLayoutProportionalAreas(t *testing.T) {
	root := buildRootWithSizes([]int64{500, 250, 125, 64})
	bounds := Rect{W: 1200, H: 600}
	cells := Layout(root, bounds, 1, 1024)

	var children []Cell
	for _, cell := range cells {
		if cell.Depth == 1 {
			children = append(children, cell)
		}
	}
	if len(children) != 4 {
		t.Fatalf("depth-1 cells = %d, want 4", len(children))
	}

	inner := bounds.Shrink(cellPadding)
	innerArea := inner.Area()
	total := float64(500 + 250 + 125 + 64)

	var sumAreas float64
	for _, cell := range children {
		want := innerArea * float64(cell.Node.Size) / total
		got := cell.Rect.Area()
		if math.Abs(got-want) > innerArea*1e-4 {
			t.Errorf("%s area = %f, want %f", cell.Node.Name, got, want)
		}
		sumAreas += got
	}

	// The children tile the padded canvas completely.
	if math.Abs(sumAreas-innerArea) > innerArea*1e-4 {
		t.Errorf("sum of child areas = %f, want %f", sumAreas, innerArea)
	}
}

func TestLayoutWideCanvasSplitsAcrossXAxis(t *testing.T) {
	root := buildRootWithSizes([]int64{500, 250, 125, 64, 32, 16, 8, 4})
	cells := Layout(root, Rect{W: 1200, H: 600}, 1, 1024)

	var distinctX []float64
	for _, cell := range cells {
		if cell.Depth != 1 {
			continue
		}
		seen := false
		for _, x := range distinctX {
			if math.Abs(x-cell.Rect.X) < 0.1 {
				seen = true
				break
			}
		}
		if !seen {
			distinctX = append(distinctX, cell.Rect.X)
		}
	}

	if len(distinctX) < 2 {
		t.Errorf("distinct x positions = %d, want at least 2 on a wide canvas", len(distinctX))
	}
}

func TestLayoutContainmentAndDisjointSiblings(t *testing.T) {
	root := fstree.New("root", "root", 0)
	root.Insert("a/a1.bin", 400)
	root.Insert("a/a2.bin", 300)
	root.Insert("b/b1.bin", 200)
	root.Insert("b/b2/b21.bin", 150)
	root.Insert("c.bin", 100)
	root.FinalizeSizes()
	root.SortBySizeDesc()

	cells := Layout(root, Rect{W: 1000, H: 700}, 8, 4096)
	if len(cells) < 8 {
		t.Fatalf("cells = %d, want all nodes placed", len(cells))
	}

	// Pre-order lets a depth stack recover each cell's parent.
	parents := make([]Cell, 0, 8)
	siblingGroups := make(map[*fstree.Node][]Cell)
	for _, cell := range cells {
		for len(parents) > cell.Depth {
			parents = parents[:len(parents)-1]
		}
		if cell.Depth > 0 {
			parent := parents[len(parents)-1]
			inner := parent.Rect.Shrink(cellPadding)
			assertWithin(t, cell, inner)
			siblingGroups[parent.Node] = append(siblingGroups[parent.Node], cell)
		}
		parents = append(parents, cell)
	}

	for _, group := range siblingGroups {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if overlapArea(group[i].Rect, group[j].Rect) > areaTolerance {
					t.Errorf("siblings %s and %s overlap", group[i].Node.Path, group[j].Node.Path)
				}
			}
		}
	}
}

func assertWithin(t *testing.T, cell Cell, inner Rect) {
	t.Helper()
	const slack = 1e-3
	r := cell.Rect
	if r.X < inner.X-slack || r.Y < inner.Y-slack ||
		r.X+r.W > inner.X+inner.W+slack || r.Y+r.H > inner.Y+inner.H+slack {
		t.Errorf("%s rect %+v escapes parent inner bounds %+v", cell.Node.Path, r, inner)
	}
}

func overlapArea(a, b Rect) float64 {
	w := math.Min(a.X+a.W, b.X+b.W) - math.Max(a.X, b.X)
	h := math.Min(a.Y+a.H, b.Y+b.H) - math.Max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func TestLayoutMaxNodesBudget(t *testing.T) {
	root := buildRootWithSizes([]int64{100, 90, 80, 70, 60, 50, 40, 30})

	cells := Layout(root, Rect{W: 800, H: 600}, 1, 3)
	if len(cells) != 3 {
		t.Errorf("cells = %d, want exactly the 3-cell budget", len(cells))
	}
	if cells[0].Depth != 0 {
		t.Error("budget must still admit the root first")
	}
}

func TestLayoutMaxDepth(t *testing.T) {
	root := fstree.New("root", "root", 0)
	root.Insert("a/b/c.bin", 100)
	root.FinalizeSizes()
	root.SortBySizeDesc()

	tests := []struct {
		maxDepth  int
		wantCells int
	}{
		{0, 1}, // root only
		{1, 2}, // root + a
		{2, 3}, // root + a + b
		{3, 4}, // full chain
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth_%d", tt.maxDepth), func(t *testing.T) {
			cells := Layout(root, Rect{W: 800, H: 600}, tt.maxDepth, 1024)
			if len(cells) != tt.wantCells {
				t.Errorf("cells = %d, want %d", len(cells), tt.wantCells)
			}
		})
	}
}

func TestLayoutSkipsZeroSizeChildren(t *testing.T) {
	root := buildRootWithSizes([]int64{100, 0, 0})
	cells := Layout(root, Rect{W: 800, H: 600}, 1, 1024)

	if len(cells) != 2 {
		t.Fatalf("cells = %d, want root plus the one sized child", len(cells))
	}
	if cells[1].Node.Size != 100 {
		t.Errorf("placed child size = %d, want 100", cells[1].Node.Size)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	root := buildRootWithSizes([]int64{987, 610, 377, 233, 144, 89, 55, 34, 21, 13})
	bounds := Rect{W: 1024, H: 640}

	first := Layout(root, bounds, 4, 512)
	second := Layout(root, bounds, 4, 512)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different cell sequences")
	}
}
