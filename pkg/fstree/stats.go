package fstree

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// NoExtensionKey is the grouping key for leaves without a file extension.
const NoExtensionKey = "(no_ext)"

// ExtensionTotal aggregates the leaves sharing one extension key.
type ExtensionTotal struct {
	Key   string // lowercased extension without the dot, or NoExtensionKey
	Bytes int64
	Files int64
}

// ExtensionKey returns the grouping key for a path: the lowercased extension
// without its dot, or NoExtensionKey when there is none. Dotfiles such as
// ".gitignore" count as having no extension.
func ExtensionKey(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return NoExtensionKey
	}
	key := strings.ToLower(strings.TrimSpace(ext[1:]))
	if key == "" {
		return NoExtensionKey
	}
	return key
}

// ExtensionTotals walks the tree's leaves and aggregates bytes and file
// counts per extension key. Results are sorted by bytes descending, ties by
// key ascending. The second return value is the total size of all leaves.
func ExtensionTotals(root *Node) ([]ExtensionTotal, int64) {
	totals := make(map[string]*ExtensionTotal)
	var totalBytes int64

	var walk func(n *Node)
	walk = func(n *Node) {
		if len(n.Children) == 0 {
			key := ExtensionKey(n.Path)
			entry := totals[key]
			if entry == nil {
				entry = &ExtensionTotal{Key: key}
				totals[key] = entry
			}
			entry.Bytes = saturatingAdd(entry.Bytes, n.Size)
			entry.Files++
			totalBytes = saturatingAdd(totalBytes, n.Size)
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	out := make([]ExtensionTotal, 0, len(totals))
	for _, entry := range totals {
		out = append(out, *entry)
	}
	slices.SortFunc(out, func(a, b ExtensionTotal) int {
		if c := cmp.Compare(b.Bytes, a.Bytes); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out, totalBytes
}
