// Package treemap packs a size-annotated filesystem tree into
// non-overlapping rectangles using the squarified treemap algorithm.
//
// # Overview
//
// A treemap fills a canvas so that every node's area is proportional to its
// size and nesting mirrors the directory hierarchy. The squarify heuristic
// builds each directory level out of rows: children are taken in
// size-descending order and appended to the current row while doing so does
// not worsen the row's worst aspect ratio; otherwise the row is closed, laid
// out along the shorter side of the remaining space, and a new row begins.
// The result keeps rectangles close to square, which is what makes the
// visualization legible.
//
// # Usage
//
// [Layout] is a pure function over a finalized [fstree.Node] tree:
//
//	cells := treemap.Layout(result.Root, treemap.Rect{W: 1200, H: 800}, 8, 20000)
//
// Cells arrive in pre-order: the depth-0 root first, then each child subtree
// in packing order. Identical inputs always produce the identical cell
// sequence, so callers may cache the slice against the inputs that produced
// it and reuse it until one of them changes.
//
// # Budgets
//
// maxDepth bounds recursion below the root; maxNodes bounds the total cell
// count. When the node budget is exhausted the walk stops emitting, leaving
// the already-emitted prefix valid. Rectangles whose width or height falls
// to the near-zero epsilon are dropped along with their subtrees, as are
// children with zero size.
//
// [fstree.Node]: github.com/dumap/dumap/pkg/fstree
package treemap
