// Package ordering defines how the children of a directory are sorted.
package ordering

import "github.com/brettbedarf/filetree/treepath"

// Entry is the part of a node a Policy may look at
type Entry struct {
	Path   treepath.Path
	IsFile bool
}

// Policy is a total order over sibling entries. Compare returns <0, 0 or >0
// and must return 0 only for equal paths.
type Policy interface {
	Name() string
	Compare(a, b Entry) int
}

// Built-in policy names
const (
	LexicalName   = "lexical"
	DirsFirstName = "dirs-first"
)

var (
	// Lexical orders siblings purely by path
	Lexical Policy = lexical{}
	// DirsFirst places every directory before every file, then orders by path
	DirsFirst Policy = dirsFirst{}
)

type lexical struct{}

func (lexical) Name() string { return LexicalName }

func (lexical) Compare(a, b Entry) int {
	return treepath.Compare(a.Path, b.Path)
}

type dirsFirst struct{}

func (dirsFirst) Name() string { return DirsFirstName }

func (dirsFirst) Compare(a, b Entry) int {
	if a.IsFile != b.IsFile {
		if a.IsFile {
			return 1
		}
		return -1
	}
	return treepath.Compare(a.Path, b.Path)
}
