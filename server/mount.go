package server

import (
	"context"
	"os"

	"github.com/brettbedarf/filetree/config"
	"github.com/brettbedarf/filetree/filesystem"
	"github.com/brettbedarf/filetree/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// snapshotRoot is the mount's root directory; the tree root appears as its
// only child
type snapshotRoot struct {
	fs.Inode
	entries []Entry
}

var _ fs.NodeOnAdder = (*snapshotRoot)(nil)

// OnAdd builds the whole inode tree up front
func (r *snapshotRoot) OnAdd(ctx context.Context) {
	logger := util.GetLogger("Snapshot.OnAdd")

	dirs := map[string]*fs.Inode{"": &r.Inode}
	for _, e := range r.entries {
		parent, ok := dirs[e.Parent]
		if !ok {
			logger.Error().Str("path", e.Path).Msg("Snapshot entry has no parent; skipping")
			continue
		}
		var child *fs.Inode
		if e.IsFile {
			file := &fs.MemRegularFile{Data: e.Contents, Attr: fileAttr(len(e.Contents))}
			child = parent.NewPersistentInode(ctx, file, fs.StableAttr{Mode: fuse.S_IFREG})
		} else {
			child = parent.NewPersistentInode(ctx, &fs.Inode{}, fs.StableAttr{Mode: fuse.S_IFDIR})
			dirs[e.Path] = child
		}
		parent.AddChild(e.Name, child, false)
	}
	logger.Debug().Int("entries", len(r.entries)).Msg("Built snapshot inodes")
}

func fileAttr(size int) fuse.Attr {
	return fuse.Attr{
		Mode: 0o444,
		Size: uint64(size),
		Owner: fuse.Owner{
			Uid: uint32(os.Getuid()),
			Gid: uint32(os.Getgid()),
		},
	}
}

// Mount serves a read-only snapshot of a tree over FUSE
type Mount struct {
	cfg     *config.Config
	entries []Entry
	server  *fuse.Server
}

// New snapshots tree for mounting; later tree changes are not visible
func New(cfg *config.Config, tree *filesystem.Tree) (*Mount, error) {
	entries, err := Snapshot(tree)
	if err != nil {
		return nil, err
	}
	return &Mount{cfg: cfg, entries: entries}, nil
}

// Serve mounts and serves the snapshot at the given mountPoint.
func (m *Mount) Serve(mountPoint string) error {
	opts := m.cfg.MountOptions
	root := &snapshotRoot{entries: m.entries}
	srv, err := fs.Mount(mountPoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug || m.cfg.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("FuseServer", util.TraceLevel),
		},
		UID: uint32(os.Getuid()),
		GID: uint32(os.Getgid()),
	})
	if err != nil {
		return err
	}
	m.server = srv
	return nil
}

// Wait blocks until the mount is unmounted
func (m *Mount) Wait() {
	if m.server != nil {
		m.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (m *Mount) Unmount() error {
	if m.server == nil {
		return nil
	}
	if err := m.server.Unmount(); err != nil {
		return err
	}
	m.server = nil
	return nil
}
