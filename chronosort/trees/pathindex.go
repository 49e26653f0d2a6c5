package trees

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

// PathIndex is a patricia-tree index over directory paths with O(k) lookups,
// where k is the length of the path. The organizer uses it to record bucket
// directories it has already created so concurrent file tasks landing in the
// same week folder issue a single MkdirAll between them.
type PathIndex struct {
	tree *radix.Tree
	mu   sync.Mutex
}

// NewPathIndex creates an empty path index.
func NewPathIndex() *PathIndex {
	return &PathIndex{tree: radix.New()}
}

// MarkCreated records path as created. It returns true if the path was not
// present before, i.e. the caller is the one responsible for creating it.
func (idx *PathIndex) MarkCreated(path string) bool {
	key := normalizePath(path)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.tree.Get(key); ok {
		return false
	}
	idx.tree.Insert(key, struct{}{})
	return true
}

// Contains reports whether path has been recorded.
func (idx *PathIndex) Contains(path string) bool {
	key := normalizePath(path)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, ok := idx.tree.Get(key)
	return ok
}

// WalkPrefix visits every recorded path starting with prefix.
func (idx *PathIndex) WalkPrefix(prefix string, fn func(path string) bool) {
	key := normalizePath(prefix)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tree.WalkPrefix(key, func(s string, _ interface{}) bool {
		return fn(s)
	})
}

// Len returns the number of recorded paths.
func (idx *PathIndex) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return idx.tree.Len()
}

// normalizePath cleans a path and forces forward slashes so the radix keys
// are stable across platforms.
func normalizePath(path string) string {
	return strings.TrimSuffix(filepath.ToSlash(filepath.Clean(path)), "/")
}
