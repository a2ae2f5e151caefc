package filesystem

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/brettbedarf/filetree"
	"github.com/brettbedarf/filetree/checker"
	"github.com/brettbedarf/filetree/config"
	"github.com/brettbedarf/filetree/internal/metrics"
	"github.com/brettbedarf/filetree/internal/util"
	"github.com/brettbedarf/filetree/ordering"
	"github.com/brettbedarf/filetree/treepath"
	"github.com/google/uuid"
)

var _ filetree.TreeOperator = (*Tree)(nil)

// Validator checks a whole tree. *checker.Checker[Handle] is the default.
type Validator interface {
	CheckTree(s checker.State[Handle]) error
}

type Option func(*Tree)

// WithValidator replaces the default checker used around mutations
func WithValidator(v Validator) Option {
	return func(t *Tree) {
		t.validator = v
	}
}

// Tree is a path-addressed hierarchy of directories and files with a single
// root. Every operation takes a slash separated path such as "a/b/c"; a
// leading "/" is accepted.
//
// When Config.CheckInvariants is set the whole tree is validated before and
// after every operation and a violation panics with the *checker.Violation.
//
// NOTE: not safe for concurrent use
type Tree struct {
	cfg         *config.Config
	id          uuid.UUID
	arena       *Arena
	checker     *checker.Checker[Handle]
	validator   Validator
	initialized bool
	root        Handle
	count       int
	logger      util.Logger
}

// NewTree creates an uninitialized tree; call Init before use.
// Fails if cfg names an unregistered ordering policy.
func NewTree(cfg *config.Config, opts ...Option) (*Tree, error) {
	if cfg == nil {
		cfg = config.NewConfig(nil)
	}
	policy, err := ordering.Lookup(cfg.Ordering)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	arena := NewArena(policy, Limits{MaxNodes: cfg.MaxNodes, MaxFileSize: cfg.MaxFileSize})
	t := &Tree{
		cfg:     cfg,
		id:      id,
		arena:   arena,
		checker: checker.New[Handle](arena, checker.Options{Policy: policy, RootMustBeDir: cfg.RootMustBeDir}),
		logger:  util.GetLogger("Tree").With().Str("tree", id.String()).Logger(),
	}
	t.validator = t.checker
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Tree) ID() uuid.UUID {
	return t.id
}

// Arena exposes the node storage for read-only traversal
func (t *Tree) Arena() *Arena {
	return t.arena
}

// Checker is the checker bound to this tree's arena and policy
func (t *Tree) Checker() *checker.Checker[Handle] {
	return t.checker
}

func (t *Tree) Policy() ordering.Policy {
	return t.arena.Policy()
}

// State is the tree bookkeeping as seen by the checker
func (t *Tree) State() checker.State[Handle] {
	return checker.State[Handle]{
		Initialized: t.initialized,
		Root:        t.root,
		HasRoot:     t.root != NoHandle,
		Count:       t.count,
	}
}

// Root returns the root handle, NoHandle for an empty tree
func (t *Tree) Root() Handle {
	return t.root
}

func (t *Tree) IsInitialized() bool {
	return t.initialized
}

// Count is the number of nodes in the tree
func (t *Tree) Count() int {
	return t.count
}

// Check validates the whole tree without panicking
func (t *Tree) Check() error {
	return t.validator.CheckTree(t.State())
}

func (t *Tree) assertValid(op, phase string) {
	if !t.cfg.CheckInvariants {
		return
	}
	start := time.Now()
	err := t.validator.CheckTree(t.State())
	metrics.RecordCheckDuration(time.Since(start))
	metrics.RecordCheck("tree", err == nil)
	if err != nil {
		t.logger.Error().Err(err).Str("op", op).Str("phase", phase).Msg("Tree invariant violated")
		panic(err)
	}
}

// mutate runs fn between two whole-tree checks and records the outcome
func (t *Tree) mutate(op string, fn func() error) error {
	t.assertValid(op, "before")
	err := fn()
	t.assertValid(op, "after")
	metrics.RecordMutation(op, filetree.StatusOf(err).String())
	return err
}

// Init readies an empty tree. Fails with ErrInitialization if already initialized.
func (t *Tree) Init() error {
	return t.mutate("init", func() error {
		if t.initialized {
			return fmt.Errorf("%w: tree already initialized", filetree.ErrInitialization)
		}
		t.initialized = true
		t.root = NoHandle
		t.count = 0
		t.logger.Debug().Msg("Initialized tree")
		return nil
	})
}

// Destroy frees every node and returns the tree to the uninitialized state.
// Fails with ErrInitialization if not initialized.
func (t *Tree) Destroy() error {
	return t.mutate("destroy", func() error {
		if !t.initialized {
			return fmt.Errorf("%w: tree not initialized", filetree.ErrInitialization)
		}
		freed := t.arena.Free(t.root)
		metrics.AddNodes(-freed)
		t.root = NoHandle
		t.count = 0
		t.initialized = false
		t.logger.Debug().Int("freed", freed).Msg("Destroyed tree")
		return nil
	})
}

// InsertDir adds the directory at path along with any missing ancestors.
// Nothing is added if any of them cannot be.
func (t *Tree) InsertDir(path string) error {
	return t.mutate("insert_dir", func() error {
		return t.insert(path, DirKind, nil)
	})
}

// InsertFile adds a file holding a copy of contents at path along with any
// missing ancestor directories. A file can never be the root.
func (t *Tree) InsertFile(path string, contents []byte) error {
	return t.mutate("insert_file", func() error {
		return t.insert(path, FileKind, contents)
	})
}

// RemoveDir removes the directory at path and everything below it
func (t *Tree) RemoveDir(path string) error {
	return t.mutate("remove_dir", func() error {
		return t.remove(path, DirKind)
	})
}

// RemoveFile removes the file at path
func (t *Tree) RemoveFile(path string) error {
	return t.mutate("remove_file", func() error {
		return t.remove(path, FileKind)
	})
}

// ContainsDir reports whether a directory exists at path
func (t *Tree) ContainsDir(path string) bool {
	return t.contains(path, DirKind)
}

// ContainsFile reports whether a file exists at path
func (t *Tree) ContainsFile(path string) bool {
	return t.contains(path, FileKind)
}

func (t *Tree) contains(path string, kind Kind) bool {
	t.assertValid("contains", "before")
	h, err := t.find(path)
	return err == nil && t.arena.Kind(h) == kind
}

// FileContents returns a copy of the contents of the file at path
func (t *Tree) FileContents(path string) ([]byte, error) {
	t.assertValid("file_contents", "before")
	h, err := t.findFile(path)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(t.arena.Contents(h)), nil
}

// ReplaceFileContents stores a copy of contents in the file at path and
// returns the previous contents
func (t *Tree) ReplaceFileContents(path string, contents []byte) (old []byte, err error) {
	err = t.mutate("replace_contents", func() error {
		h, err := t.findFile(path)
		if err != nil {
			return err
		}
		old, err = t.arena.ReplaceContents(h, contents)
		return err
	})
	return old, err
}

// Stat describes the node at path
func (t *Tree) Stat(path string) (filetree.NodeInfo, error) {
	t.assertValid("stat", "before")
	h, err := t.find(path)
	if err != nil {
		return nil, err
	}
	return t.info(h), nil
}

// Walk calls fn for every node in preorder, children in sort order.
// Stops at and returns the first error from fn.
func (t *Tree) Walk(fn func(info filetree.NodeInfo) error) error {
	if !t.initialized {
		return fmt.Errorf("%w: tree not initialized", filetree.ErrInitialization)
	}
	if t.root == NoHandle {
		return nil
	}
	stack := []Handle{t.root}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := fn(t.info(h)); err != nil {
			return err
		}
		for i := t.arena.NumChildren(h) - 1; i >= 0; i-- {
			child, err := t.arena.Child(h, i)
			if err != nil {
				return err
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// String renders every path in preorder, one per line. Empty for an
// uninitialized or empty tree.
func (t *Tree) String() string {
	var sb strings.Builder
	_ = t.Walk(func(info filetree.NodeInfo) error {
		sb.WriteString(info.Path())
		sb.WriteByte('\n')
		return nil
	})
	return sb.String()
}

func (t *Tree) info(h Handle) *nodeInfo {
	size := t.arena.NumChildren(h)
	if t.arena.IsFile(h) {
		size = t.arena.ContentLength(h)
	}
	return &nodeInfo{path: t.arena.Path(h), isFile: t.arena.IsFile(h), size: size}
}

// traverse follows p from the root as far as the tree matches it and returns
// the deepest node reached. NoHandle for an empty tree. Fails with
// ErrConflictingPath if p does not start at the root and ErrNotADirectory if
// p continues below a file.
func (t *Tree) traverse(p treepath.Path) (Handle, error) {
	if t.root == NoHandle {
		return NoHandle, nil
	}
	first, err := p.Prefix(1)
	if err != nil {
		return NoHandle, err
	}
	if rootPath := t.arena.Path(t.root); !first.Equal(rootPath) {
		return NoHandle, fmt.Errorf("%w: %s is not under root %s", filetree.ErrConflictingPath, p, rootPath)
	}

	cur := t.root
	for level := 2; level <= p.Depth(); level++ {
		if t.arena.IsFile(cur) {
			return cur, fmt.Errorf("%w: %s", filetree.ErrNotADirectory, t.arena.Path(cur))
		}
		prefix, _ := p.Prefix(level)
		found, idx := t.arena.HasChild(cur, prefix)
		if !found {
			break
		}
		if cur, err = t.arena.Child(cur, idx); err != nil {
			return NoHandle, err
		}
	}
	return cur, nil
}

func (t *Tree) find(path string) (Handle, error) {
	if !t.initialized {
		return NoHandle, fmt.Errorf("%w: tree not initialized", filetree.ErrInitialization)
	}
	p, err := treepath.New(path)
	if err != nil {
		return NoHandle, err
	}
	h, err := t.traverse(p)
	if err != nil {
		return NoHandle, err
	}
	if h == NoHandle || !t.arena.Path(h).Equal(p) {
		return NoHandle, fmt.Errorf("%w: %s", filetree.ErrNoSuchPath, p)
	}
	return h, nil
}

func (t *Tree) findFile(path string) (Handle, error) {
	h, err := t.find(path)
	if err != nil {
		return NoHandle, err
	}
	if !t.arena.IsFile(h) {
		return NoHandle, fmt.Errorf("%w: %s is a directory", filetree.ErrNoSuchPath, path)
	}
	return h, nil
}

func (t *Tree) insert(path string, kind Kind, contents []byte) error {
	if !t.initialized {
		return fmt.Errorf("%w: tree not initialized", filetree.ErrInitialization)
	}
	p, err := treepath.New(path)
	if err != nil {
		return err
	}
	if kind == FileKind && p.Depth() == 1 && t.cfg.RootMustBeDir {
		return fmt.Errorf("%w: file %s cannot be the root", filetree.ErrConflictingPath, p)
	}

	cur, err := t.traverse(p)
	if err != nil {
		return err
	}
	level := 1
	if cur != NoHandle {
		curPath := t.arena.Path(cur)
		if curPath.Equal(p) {
			return fmt.Errorf("%w: %s", filetree.ErrAlreadyInTree, p)
		}
		level = curPath.Depth() + 1
	}

	first, parent := NoHandle, cur
	created := 0
	for ; level <= p.Depth(); level++ {
		prefix, _ := p.Prefix(level)
		k, data := DirKind, []byte(nil)
		if level == p.Depth() {
			k, data = kind, contents
		}
		h, err := t.arena.NewNode(prefix, parent, k, data)
		if err != nil {
			// all or nothing; freeing the first new node drops the whole chain
			if first != NoHandle {
				t.arena.Free(first)
			}
			t.logger.Error().Err(err).Str("path", p.String()).Msg("Failed to insert node")
			return err
		}
		if first == NoHandle {
			first = h
		}
		parent = h
		created++
	}

	if t.root == NoHandle {
		t.root = first
	}
	t.count += created
	metrics.AddNodes(created)
	if created > 1 {
		t.logger.Info().Str("path", p.String()).Msg(fmt.Sprintf("Created %d new node(s)", created))
	} else {
		t.logger.Debug().Str("path", p.String()).Str("kind", kind.String()).Msg("Added new node")
	}
	return nil
}

func (t *Tree) remove(path string, kind Kind) error {
	h, err := t.find(path)
	if err != nil {
		return err
	}
	switch isFile := t.arena.IsFile(h); {
	case kind == DirKind && isFile:
		return fmt.Errorf("%w: %s is a file", filetree.ErrNotADirectory, path)
	case kind == FileKind && !isFile:
		return fmt.Errorf("%w: %s is a directory", filetree.ErrNoSuchPath, path)
	}

	freed := t.arena.Free(h)
	t.count -= freed
	if t.count == 0 {
		t.root = NoHandle
	}
	metrics.AddNodes(-freed)
	t.logger.Debug().Str("path", path).Int("freed", freed).Msg("Removed node")
	return nil
}
