package server

import (
	"testing"

	"github.com/brettbedarf/filetree/config"
	"github.com/brettbedarf/filetree/filesystem"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T) *filesystem.Tree {
	t.Helper()
	tree, err := filesystem.NewTree(config.NewConfig(nil))
	require.NoError(t, err)
	require.NoError(t, tree.Init())
	require.NoError(t, tree.InsertFile("a/b/f.txt", []byte("hello")))
	require.NoError(t, tree.InsertDir("a/c"))
	return tree
}

func TestSnapshot(t *testing.T) {
	tree := newTestTree(t)

	entries, err := Snapshot(tree)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, Entry{Path: "a", Name: "a"}, entries[0])
	assert.Equal(t, Entry{Path: "a/b", Parent: "a", Name: "b"}, entries[1])
	assert.Equal(t, Entry{Path: "a/b/f.txt", Parent: "a/b", Name: "f.txt", IsFile: true, Contents: []byte("hello")}, entries[2])
	assert.Equal(t, "a/c", entries[3].Path)

	// detached from later tree changes
	_, err = tree.ReplaceFileContents("a/b/f.txt", []byte("bye"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(entries[2].Contents))
}

func TestSnapshot_Uninitialized(t *testing.T) {
	tree, err := filesystem.NewTree(config.NewConfig(nil))
	require.NoError(t, err)
	_, err = Snapshot(tree)
	assert.Error(t, err)
}

func TestSnapshotRoot_OnAdd(t *testing.T) {
	entries, err := Snapshot(newTestTree(t))
	require.NoError(t, err)

	root := &snapshotRoot{entries: entries}
	// NewNodeFS wires the root inode and calls OnAdd without mounting
	fs.NewNodeFS(root, &fs.Options{})

	a := root.GetChild("a")
	require.NotNil(t, a)
	assert.True(t, a.IsDir())
	assert.NotNil(t, a.GetChild("c"))

	f := a.GetChild("b").GetChild("f.txt")
	require.NotNil(t, f)
	assert.False(t, f.IsDir())
	file, ok := f.Operations().(*fs.MemRegularFile)
	require.True(t, ok)
	assert.Equal(t, "hello", string(file.Data))
	assert.EqualValues(t, 5, file.Attr.Size)
}

func TestMount_UnmountWithoutServe(t *testing.T) {
	m, err := New(config.NewConfig(nil), newTestTree(t))
	require.NoError(t, err)
	assert.NoError(t, m.Unmount())
	m.Wait()
}
