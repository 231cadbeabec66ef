// Package fstree provides the size-annotated filesystem tree that scans
// produce and layouts consume.
//
// A tree is grown incrementally with [Node.Insert] while a scan walks the
// filesystem, then frozen by one [Node.FinalizeSizes] pass (bottom-up
// aggregation) and one [Node.SortBySizeDesc] pass. After finalization the
// tree is treated as immutable and may be read concurrently.
package fstree

import (
	"cmp"
	"math"
	"path/filepath"
	"slices"
	"strings"
)

// Node is one filesystem path in the tree. Each node is exclusively owned
// by its parent; children are only ever freshly created, so cycles cannot
// occur. A node without children is a leaf (a regular file).
type Node struct {
	Name     string  // last path component
	Path     string  // full path, unique within the tree
	Size     int64   // bytes; for directories, aggregate of descendants after finalization
	Children []*Node // insertion order until SortBySizeDesc
}

// New creates a node with no children.
func New(name, path string, size int64) *Node {
	return &Node{Name: name, Path: path, Size: size}
}

// IsDir reports whether the node represents a directory. Directories are
// exactly the nodes with children; a scanned empty directory stays a leaf.
func (n *Node) IsDir() bool {
	return len(n.Children) > 0
}

// Insert records a leaf size for a path relative to this node, creating any
// missing intermediate nodes with size 0. Empty and "." components are
// skipped. Repeating an insert for the same terminal path overwrites that
// leaf's size (last write wins); sibling insertion order is irrelevant to
// the finalized result.
func (n *Node) Insert(relPath string, leafSize int64) {
	var parts []string
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return
	}

	cur := n
	for i, part := range parts {
		child := cur.childNamed(part)
		if child == nil {
			child = New(part, filepath.Join(cur.Path, part), 0)
			cur.Children = append(cur.Children, child)
		}
		if i == len(parts)-1 {
			child.Size = leafSize
			return
		}
		cur = child
	}
}

func (n *Node) childNamed(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// FinalizeSizes recomputes every directory's size as the saturating sum of
// its children's finalized sizes and returns this node's final size. Leaves
// keep their stored size. Call exactly once, after all inserts and before
// layout.
func (n *Node) FinalizeSizes() int64 {
	if len(n.Children) == 0 {
		return n.Size
	}

	var total int64
	for _, child := range n.Children {
		total = saturatingAdd(total, child.FinalizeSizes())
	}
	n.Size = total
	return total
}

// SortBySizeDesc sorts every children list by size descending, recursively.
// The sort is stable: equal-sized siblings keep their insertion order.
func (n *Node) SortBySizeDesc() {
	slices.SortStableFunc(n.Children, func(a, b *Node) int {
		return cmp.Compare(b.Size, a.Size)
	})
	for _, child := range n.Children {
		child.SortBySizeDesc()
	}
}

// saturatingAdd clamps at MaxInt64 instead of overflowing.
func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
