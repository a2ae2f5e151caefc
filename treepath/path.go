// Package treepath implements the immutable slash-separated paths that address
// nodes in a file tree.
package treepath

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/filetree"
)

// Separator between path components
const Separator = "/"

// Path is an immutable sequence of non-empty name components.
// The zero Path has depth 0 and is never produced by New.
type Path struct {
	comps []string
	name  string // rendered form, cached at construction
}

// New parses s into a Path. A single leading separator is accepted and
// dropped, so "/a/b" and "a/b" are the same path.
//
// Returns ErrBadPath for the empty string, a trailing separator or any empty
// component ("a//b").
func New(s string) (Path, error) {
	trimmed := strings.TrimPrefix(s, Separator)
	if trimmed == "" {
		return Path{}, fmt.Errorf("%w: empty path %q", filetree.ErrBadPath, s)
	}
	comps := strings.Split(trimmed, Separator)
	for _, c := range comps {
		if c == "" {
			return Path{}, fmt.Errorf("%w: empty component in %q", filetree.ErrBadPath, s)
		}
	}
	return Path{comps: comps, name: trimmed}, nil
}

// MustNew is like New but panics on a malformed path. Intended for tests and
// constant paths.
func MustNew(s string) Path {
	p, err := New(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Depth is the number of components; 0 only for the zero Path.
func (p Path) Depth() int {
	return len(p.comps)
}

// IsZero reports whether p is the zero (null) Path
func (p Path) IsZero() bool {
	return len(p.comps) == 0
}

// Prefix returns the path formed by the first k components.
// Returns ErrNoSuchPath unless 1 <= k <= Depth().
func (p Path) Prefix(k int) (Path, error) {
	if k < 1 || k > len(p.comps) {
		return Path{}, fmt.Errorf("%w: prefix depth %d of %q (depth %d)",
			filetree.ErrNoSuchPath, k, p.name, len(p.comps))
	}
	if k == len(p.comps) {
		return p, nil
	}
	comps := p.comps[:k:k]
	return Path{comps: comps, name: strings.Join(comps, Separator)}, nil
}

// Base returns the last component, "" for the zero Path
func (p Path) Base() string {
	if len(p.comps) == 0 {
		return ""
	}
	return p.comps[len(p.comps)-1]
}

// Component returns the i-th component (0-based).
func (p Path) Component(i int) string {
	return p.comps[i]
}

// String renders the path without a leading separator, i.e. "a/b/c"
func (p Path) String() string {
	return p.name
}

// Equal reports whether both paths have identical component sequences
func (p Path) Equal(o Path) bool {
	return Compare(p, o) == 0
}

// Compare orders paths lexicographically over their component sequences.
// A proper prefix sorts before any of its extensions.
func Compare(a, b Path) int {
	n := min(len(a.comps), len(b.comps))
	for i := 0; i < n; i++ {
		if c := strings.Compare(a.comps[i], b.comps[i]); c != 0 {
			return c
		}
	}
	return len(a.comps) - len(b.comps)
}

// SharedPrefixDepth is the length of the longest common leading run of
// components of a and b.
func SharedPrefixDepth(a, b Path) int {
	n := min(len(a.comps), len(b.comps))
	for i := 0; i < n; i++ {
		if a.comps[i] != b.comps[i] {
			return i
		}
	}
	return n
}

// Join appends name as a new last component. name must be a single
// non-empty component.
func (p Path) Join(name string) (Path, error) {
	if name == "" || strings.Contains(name, Separator) {
		return Path{}, fmt.Errorf("%w: invalid component %q", filetree.ErrBadPath, name)
	}
	comps := make([]string, len(p.comps)+1)
	copy(comps, p.comps)
	comps[len(p.comps)] = name
	return Path{comps: comps, name: strings.Join(comps, Separator)}, nil
}
