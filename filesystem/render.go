package filesystem

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/brettbedarf/filetree"
)

// Render draws the tree with box-drawing branches; files carry their size.
// Empty for an uninitialized or empty tree.
func (t *Tree) Render() string {
	if !t.initialized || t.root == NoHandle {
		return ""
	}

	var out treeprint.Tree
	branches := map[string]treeprint.Tree{}
	_ = t.Walk(func(info filetree.NodeInfo) error {
		if out == nil {
			out = treeprint.NewWithRoot(info.Name())
			branches[info.Path()] = out
			return nil
		}
		parent := branches[parentPath(info)]
		if info.IsFile() {
			parent.AddMetaNode(fmt.Sprintf("%dB", info.Size()), info.Name())
			return nil
		}
		branches[info.Path()] = parent.AddBranch(info.Name())
		return nil
	})
	return out.String()
}

func parentPath(info filetree.NodeInfo) string {
	p := info.Path()
	return p[:len(p)-len(info.Name())-1]
}
