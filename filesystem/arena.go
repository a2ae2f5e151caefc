package filesystem

import "github.com/brettbedarf/filetree/ordering"

// Handle addresses a node in an Arena. Handles of freed nodes may be reused
// by later allocations.
type Handle uint32

// NoHandle is the absent handle, used for the root's parent and an empty tree
const NoHandle Handle = 0

// Limits bound the resources an Arena may hold; zero values are unlimited.
// Exceeding either fails with ErrMemory.
type Limits struct {
	MaxNodes    int
	MaxFileSize int
}

// Arena owns every node of a tree. Nodes link to each other only through
// handles, so the parent back-reference can never dangle into freed memory.
//
// NOTE: not safe for concurrent use
type Arena struct {
	slots  []*node // slot 0 is never used so that NoHandle stays invalid
	free   []Handle
	live   int
	limits Limits
	policy ordering.Policy
}

// NewArena creates an empty arena whose directories keep their children
// sorted by policy (ordering.Lexical if nil).
func NewArena(policy ordering.Policy, limits Limits) *Arena {
	if policy == nil {
		policy = ordering.Lexical
	}
	return &Arena{
		slots:  make([]*node, 1, 16),
		limits: limits,
		policy: policy,
	}
}

// Len is the number of live nodes
func (a *Arena) Len() int {
	return a.live
}

// Policy returns the sibling ordering used by this arena
func (a *Arena) Policy() ordering.Policy {
	return a.policy
}

func (a *Arena) full() bool {
	return a.limits.MaxNodes > 0 && a.live >= a.limits.MaxNodes
}

func (a *Arena) alloc(n *node) Handle {
	a.live++
	if last := len(a.free) - 1; last >= 0 {
		h := a.free[last]
		a.free = a.free[:last]
		a.slots[h] = n
		return h
	}
	a.slots = append(a.slots, n)
	return Handle(len(a.slots) - 1)
}

func (a *Arena) release(h Handle) {
	n := a.slots[h]
	n.children = nil
	n.contents = nil
	a.slots[h] = nil
	a.free = append(a.free, h)
	a.live--
}

// get returns the live node at h or nil
func (a *Arena) get(h Handle) *node {
	if h == NoHandle || int(h) >= len(a.slots) {
		return nil
	}
	return a.slots[h]
}
