// Package checker validates the structural invariants of a file tree.
//
// The checker only reads the tree through a [Graph] and never mutates it.
// It is meant as an assertion around mutations and as a test oracle.
package checker

import (
	"fmt"

	"github.com/brettbedarf/filetree/internal/metrics"
	"github.com/brettbedarf/filetree/internal/util"
	"github.com/brettbedarf/filetree/ordering"
	"github.com/brettbedarf/filetree/treepath"
)

// Graph is the read-only view of a tree the checker needs. H is the node
// handle type; handles are compared by identity.
type Graph[H comparable] interface {
	// Exists reports whether h refers to a live node
	Exists(h H) bool
	Path(h H) treepath.Path
	Parent(h H) (parent H, ok bool)
	IsFile(h H) bool
	NumChildren(h H) int
	Child(h H, i int) (H, error)
}

// State is the tree-level bookkeeping to reconcile against the graph
type State[H comparable] struct {
	Initialized bool
	Root        H
	HasRoot     bool
	Count       int
}

type Options struct {
	// Policy the siblings must be strictly increasing under (Default ordering.Lexical)
	Policy ordering.Policy
	// RootMustBeDir rejects a file root
	RootMustBeDir bool
}

// Checker validates nodes and whole trees of a Graph
type Checker[H comparable] struct {
	g             Graph[H]
	policy        ordering.Policy
	rootMustBeDir bool
	logger        util.Logger
}

func New[H comparable](g Graph[H], opts Options) *Checker[H] {
	policy := opts.Policy
	if policy == nil {
		policy = ordering.Lexical
	}
	return &Checker[H]{
		g:             g,
		policy:        policy,
		rootMustBeDir: opts.RootMustBeDir,
		logger:        util.GetLogger("Checker"),
	}
}

// CheckNode verifies n against its parent and its direct children.
// Returns the first *Violation found, nil if n is valid.
func (c *Checker[H]) CheckNode(n H) error {
	if !c.g.Exists(n) {
		return newViolation(RuleNilNode, "node is not live")
	}
	path := c.g.Path(n)
	if path.IsZero() {
		return newViolation(RuleNilPath, "node has a nil path")
	}

	if parent, ok := c.g.Parent(n); ok {
		if err := c.checkParentLink(parent, path); err != nil {
			return err
		}
	}

	num := c.g.NumChildren(n)
	if num != 0 && c.g.IsFile(n) {
		return newViolation(RuleFileHasChildren, fmt.Sprintf("file has %d children", num), path.String())
	}

	var prev ordering.Entry
	for i := 0; i < num; i++ {
		child, err := c.g.Child(n, i)
		if err != nil || !c.g.Exists(child) {
			return newViolation(RuleChildCount,
				fmt.Sprintf("declares %d children but child %d is unavailable", num, i), path.String())
		}
		childPath := c.g.Path(child)

		if back, ok := c.g.Parent(child); !ok || back != n {
			return newViolation(RuleBackReference, "child's parent reference does not match parent",
				path.String(), childPath.String())
		}

		for j := i + 1; j < num; j++ {
			other, err := c.g.Child(n, j)
			if err != nil || !c.g.Exists(other) {
				continue // reported when the outer loop reaches j
			}
			if c.g.Path(other).Equal(childPath) {
				return newViolation(RuleDuplicateSibling, fmt.Sprintf("children %d and %d share a path", i, j),
					path.String(), childPath.String())
			}
		}

		entry := ordering.Entry{Path: childPath, IsFile: c.g.IsFile(child)}
		if i > 0 && c.policy.Compare(prev, entry) >= 0 {
			return newViolation(RuleSiblingOrder, fmt.Sprintf("children out of %s order", c.policy.Name()),
				prev.Path.String(), childPath.String())
		}
		prev = entry
	}

	return nil
}

func (c *Checker[H]) checkParentLink(parent H, path treepath.Path) error {
	if !c.g.Exists(parent) {
		return newViolation(RuleNilNode, "parent is not live", path.String())
	}
	parentPath := c.g.Path(parent)
	if parentPath.IsZero() {
		return newViolation(RuleNilPath, "parent has a nil path", path.String())
	}
	parentDepth := parentPath.Depth()

	if treepath.SharedPrefixDepth(path, parentPath) != parentDepth {
		return newViolation(RuleParentPrefix, "parent path is not a prefix of the node path",
			parentPath.String(), path.String())
	}
	if parentDepth+1 != path.Depth() {
		return newViolation(RuleParentDepth, "node is not one level below its parent",
			parentPath.String(), path.String())
	}
	if prefix, err := path.Prefix(parentDepth); err != nil || !prefix.Equal(parentPath) {
		return newViolation(RuleParentComponents, "node path does not extend its parent path",
			parentPath.String(), path.String())
	}
	return nil
}

// CheckTree verifies the tree-level bookkeeping in s and every node reachable
// from its root. Returns the first *Violation found.
func (c *Checker[H]) CheckTree(s State[H]) error {
	if !s.Initialized {
		if s.HasRoot {
			return newViolation(RuleUninitialized, "not initialized, but root is present")
		}
		if s.Count != 0 {
			return newViolation(RuleUninitialized, fmt.Sprintf("not initialized, but count is %d", s.Count))
		}
		return nil
	}

	if !s.HasRoot {
		if s.Count != 0 {
			return newViolation(RuleEmptyTreeCount, fmt.Sprintf("root is absent but count is %d", s.Count))
		}
		return nil
	}

	if !c.g.Exists(s.Root) {
		return newViolation(RuleNilNode, "root is not live")
	}
	rootPath := c.g.Path(s.Root).String()
	if _, ok := c.g.Parent(s.Root); ok {
		return newViolation(RuleRootHasParent, "root node has a parent", rootPath)
	}
	if c.rootMustBeDir && c.g.IsFile(s.Root) {
		return newViolation(RuleRootIsFile, "root node is a file", rootPath)
	}

	visited, err := c.traverse(s.Root, c.CheckNode)
	if err != nil {
		return err
	}
	if visited != s.Count {
		return newViolation(RuleCountMismatch,
			fmt.Sprintf("recorded count %d but %d nodes are reachable", s.Count, visited))
	}
	return nil
}

// traverse visits every node reachable from root in preorder using an
// explicit worklist, so deep trees cannot exhaust the goroutine stack.
// Reaching a node twice is reported as a cycle. Returns the number of
// distinct nodes visited.
func (c *Checker[H]) traverse(root H, visit func(H) error) (int, error) {
	visited := make(map[H]struct{})
	stack := []H{root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[n]; seen {
			return len(visited), newViolation(RuleCycle, "node reached twice", c.g.Path(n).String())
		}
		visited[n] = struct{}{}

		if err := visit(n); err != nil {
			return len(visited), err
		}

		// reverse push so children pop left to right
		for i := c.g.NumChildren(n) - 1; i >= 0; i-- {
			child, err := c.g.Child(n, i)
			if err != nil {
				return len(visited), newViolation(RuleChildCount,
					fmt.Sprintf("child %d is unavailable", i), c.g.Path(n).String())
			}
			stack = append(stack, child)
		}
	}
	return len(visited), nil
}

// IsValidNode is CheckNode reporting a bool; the diagnostic goes to the log.
func (c *Checker[H]) IsValidNode(n H) bool {
	return c.report("node", c.CheckNode(n))
}

// IsValidTree is CheckTree reporting a bool; the diagnostic goes to the log.
func (c *Checker[H]) IsValidTree(s State[H]) bool {
	return c.report("tree", c.CheckTree(s))
}

func (c *Checker[H]) report(scope string, err error) bool {
	metrics.RecordCheck(scope, err == nil)
	if err == nil {
		return true
	}
	evt := c.logger.Error().Err(err).Str("scope", scope)
	if rule := RuleOf(err); rule != 0 {
		evt = evt.Stringer("rule", rule)
	}
	evt.Msg("Invariant check failed")
	return false
}
