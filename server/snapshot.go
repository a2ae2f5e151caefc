package server

import (
	"strings"

	"github.com/brettbedarf/filetree"
	"github.com/brettbedarf/filetree/filesystem"
	"github.com/brettbedarf/filetree/treepath"
)

// Entry is one node of a tree snapshot
type Entry struct {
	Path     string
	Parent   string // "" for the tree root
	Name     string
	IsFile   bool
	Contents []byte // private copy, files only
}

// Snapshot copies every node of tree in preorder, so each entry follows its
// parent. The snapshot does not change when the tree does.
func Snapshot(tree *filesystem.Tree) ([]Entry, error) {
	entries := make([]Entry, 0, tree.Count())
	err := tree.Walk(func(info filetree.NodeInfo) error {
		e := Entry{Path: info.Path(), Name: info.Name(), IsFile: info.IsFile()}
		if i := strings.LastIndex(e.Path, treepath.Separator); i >= 0 {
			e.Parent = e.Path[:i]
		}
		if e.IsFile {
			contents, err := tree.FileContents(e.Path)
			if err != nil {
				return err
			}
			e.Contents = contents
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
