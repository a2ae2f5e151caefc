package filesystem

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/brettbedarf/filetree"
	"github.com/brettbedarf/filetree/ordering"
	"github.com/brettbedarf/filetree/treepath"
)

// Kind tags a node as a directory or a file
type Kind uint8

const (
	DirKind Kind = iota
	FileKind
)

func (k Kind) String() string {
	if k == FileKind {
		return "file"
	}
	return "dir"
}

type node struct {
	path     treepath.Path // immutable, so sharing it never aliases caller state
	parent   Handle        // NoHandle for the root
	kind     Kind
	children []Handle // directories only; sorted by the arena policy
	contents []byte   // files only; private copy
}

func (n *node) entry() ordering.Entry {
	return ordering.Entry{Path: n.path, IsFile: n.kind == FileKind}
}

// NewNode creates a node at path p under parent and links it into the
// parent's children at the sort-preserving index. parent is NoHandle for a
// root. contents is copied for files and ignored for directories.
//
// Fails with:
//   - ErrConflictingPath if the parent's path is not a prefix of p
//   - ErrNoSuchPath if p is not exactly one level below the parent (or depth 1 for a root)
//   - ErrNotADirectory if the parent is a file
//   - ErrAlreadyInTree if the parent already has a child at p
//   - ErrMemory if the arena is full or contents exceed the file size limit
//
// Nothing is allocated or linked when an error is returned.
func (a *Arena) NewNode(p treepath.Path, parent Handle, kind Kind, contents []byte) (Handle, error) {
	if p.IsZero() {
		return NoHandle, fmt.Errorf("%w: empty path", filetree.ErrNoSuchPath)
	}

	var par *node
	if parent != NoHandle {
		par = a.get(parent)
		if par == nil {
			return NoHandle, fmt.Errorf("%w: parent of %s is not in the tree", filetree.ErrNoSuchPath, p)
		}
		parentDepth := par.path.Depth()
		if treepath.SharedPrefixDepth(p, par.path) < parentDepth {
			return NoHandle, fmt.Errorf("%w: %s is not under %s", filetree.ErrConflictingPath, p, par.path)
		}
		if p.Depth() != parentDepth+1 {
			return NoHandle, fmt.Errorf("%w: %s is not a direct child of %s", filetree.ErrNoSuchPath, p, par.path)
		}
		if par.kind == FileKind {
			return NoHandle, fmt.Errorf("%w: %s", filetree.ErrNotADirectory, par.path)
		}
		if found, _ := a.HasChild(parent, p); found {
			return NoHandle, fmt.Errorf("%w: %s", filetree.ErrAlreadyInTree, p)
		}
	} else if p.Depth() != 1 {
		return NoHandle, fmt.Errorf("%w: root %s must have depth 1", filetree.ErrNoSuchPath, p)
	}

	if a.full() {
		return NoHandle, fmt.Errorf("%w: node limit %d reached", filetree.ErrMemory, a.limits.MaxNodes)
	}
	n := &node{path: p, parent: parent, kind: kind}
	if kind == FileKind {
		if a.tooLarge(contents) {
			return NoHandle, fmt.Errorf("%w: %d bytes exceeds file size limit %d",
				filetree.ErrMemory, len(contents), a.limits.MaxFileSize)
		}
		n.contents = bytes.Clone(contents)
	}

	h := a.alloc(n)
	if par != nil {
		idx, _ := a.search(par, n.entry())
		par.children = slices.Insert(par.children, idx, h)
	}
	return h, nil
}

func (a *Arena) tooLarge(contents []byte) bool {
	return a.limits.MaxFileSize > 0 && len(contents) > a.limits.MaxFileSize
}

// search finds key among par's children under the arena policy. Returns the
// found index or the index key would be inserted at.
func (a *Arena) search(par *node, key ordering.Entry) (int, bool) {
	return slices.BinarySearchFunc(par.children, key, func(h Handle, key ordering.Entry) int {
		return a.policy.Compare(a.slots[h].entry(), key)
	})
}

// Free detaches h from its parent and releases h and its entire subtree.
// Returns the number of nodes released; 0 if h is not live.
func (a *Arena) Free(h Handle) int {
	n := a.get(h)
	if n == nil {
		return 0
	}
	if par := a.get(n.parent); par != nil {
		if i := slices.Index(par.children, h); i >= 0 {
			par.children = slices.Delete(par.children, i, i+1)
		}
	}

	count := 0
	stack := []Handle{h}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := a.get(cur)
		if n == nil {
			// already released via a corrupted duplicate link
			continue
		}
		stack = append(stack, n.children...)
		a.release(cur)
		count++
	}
	return count
}

// Exists reports whether h is a live node
func (a *Arena) Exists(h Handle) bool {
	return a.get(h) != nil
}

// Path returns the node's path; the zero Path if h is not live
func (a *Arena) Path(h Handle) treepath.Path {
	if n := a.get(h); n != nil {
		return n.path
	}
	return treepath.Path{}
}

// Parent returns the node's parent handle, false for the root
func (a *Arena) Parent(h Handle) (Handle, bool) {
	n := a.get(h)
	if n == nil || n.parent == NoHandle {
		return NoHandle, false
	}
	return n.parent, true
}

func (a *Arena) IsFile(h Handle) bool {
	n := a.get(h)
	return n != nil && n.kind == FileKind
}

func (a *Arena) Kind(h Handle) Kind {
	if n := a.get(h); n != nil {
		return n.kind
	}
	return DirKind
}

// NumChildren is the length of the node's child list, always 0 for a
// well-formed file
func (a *Arena) NumChildren(h Handle) int {
	if n := a.get(h); n != nil {
		return len(n.children)
	}
	return 0
}

// Child returns the i-th child in sort order
func (a *Arena) Child(h Handle, i int) (Handle, error) {
	n := a.get(h)
	if n == nil {
		return NoHandle, fmt.Errorf("%w: node %d", filetree.ErrNoSuchPath, h)
	}
	if n.kind == FileKind {
		return NoHandle, fmt.Errorf("%w: %s", filetree.ErrNotADirectory, n.path)
	}
	if i < 0 || i >= len(n.children) {
		return NoHandle, fmt.Errorf("%w: child %d of %s", filetree.ErrNoSuchPath, i, n.path)
	}
	return n.children[i], nil
}

// HasChild reports whether the directory at h has a child with path p.
// The index is the child's position if found; otherwise where a directory at
// p would be inserted. Always false for files.
func (a *Arena) HasChild(h Handle, p treepath.Path) (bool, int) {
	n := a.get(h)
	if n == nil || n.kind == FileKind {
		return false, 0
	}
	dirIdx, found := a.search(n, ordering.Entry{Path: p})
	if found {
		return true, dirIdx
	}
	if idx, found := a.search(n, ordering.Entry{Path: p, IsFile: true}); found {
		return true, idx
	}
	return false, dirIdx
}

// Contents returns the file's buffer (nil for directories). The returned
// slice is owned by the arena and must not be modified.
func (a *Arena) Contents(h Handle) []byte {
	if n := a.get(h); n != nil && n.kind == FileKind {
		return n.contents
	}
	return nil
}

// ContentLength is the file's byte length, 0 for directories
func (a *Arena) ContentLength(h Handle) int {
	return len(a.Contents(h))
}

// ReplaceContents swaps in a private copy of contents and hands the previous
// buffer back to the caller. Fails with ErrNoSuchPath if h is not a file,
// or ErrMemory if contents exceed the file size limit (the old buffer stays).
func (a *Arena) ReplaceContents(h Handle, contents []byte) ([]byte, error) {
	n := a.get(h)
	if n == nil || n.kind != FileKind {
		return nil, fmt.Errorf("%w: %s is not a file", filetree.ErrNoSuchPath, a.Path(h))
	}
	if a.tooLarge(contents) {
		return nil, fmt.Errorf("%w: %d bytes exceeds file size limit %d",
			filetree.ErrMemory, len(contents), a.limits.MaxFileSize)
	}
	old := n.contents
	n.contents = bytes.Clone(contents)
	return old, nil
}

// Compare orders two nodes by path
func (a *Arena) Compare(x, y Handle) int {
	return treepath.Compare(a.Path(x), a.Path(y))
}
