package filesystem

import (
	"github.com/brettbedarf/filetree"
	"github.com/brettbedarf/filetree/treepath"
)

var _ filetree.NodeInfo = (*nodeInfo)(nil)

// nodeInfo is a detached snapshot of one node
type nodeInfo struct {
	path   treepath.Path
	isFile bool
	size   int
}

func (i *nodeInfo) Path() string {
	return i.path.String()
}

func (i *nodeInfo) Name() string {
	return i.path.Base()
}

func (i *nodeInfo) IsFile() bool {
	return i.isFile
}

func (i *nodeInfo) Size() int {
	return i.size
}

// Depth is the number of path components
func (i *nodeInfo) Depth() int {
	return i.path.Depth()
}
