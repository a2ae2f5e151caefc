package checker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/brettbedarf/filetree/ordering"
	"github.com/brettbedarf/filetree/treepath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode is a hand-wired node; handles are map keys and 0 means none.
type fakeNode struct {
	path     string
	parent   int
	isFile   bool
	children []int
	extra    int // added to NumChildren to make the declared count lie
}

type fakeGraph map[int]*fakeNode

func (g fakeGraph) Exists(h int) bool {
	_, ok := g[h]
	return ok
}

func (g fakeGraph) Path(h int) treepath.Path {
	n, ok := g[h]
	if !ok || n.path == "" {
		return treepath.Path{}
	}
	return treepath.MustNew(n.path)
}

func (g fakeGraph) Parent(h int) (int, bool) {
	n, ok := g[h]
	if !ok || n.parent == 0 {
		return 0, false
	}
	return n.parent, true
}

func (g fakeGraph) IsFile(h int) bool {
	n, ok := g[h]
	return ok && n.isFile
}

func (g fakeGraph) NumChildren(h int) int {
	n, ok := g[h]
	if !ok {
		return 0
	}
	return len(n.children) + n.extra
}

func (g fakeGraph) Child(h, i int) (int, error) {
	n, ok := g[h]
	if !ok || i >= len(n.children) {
		return 0, fmt.Errorf("no child %d", i)
	}
	return n.children[i], nil
}

// validGraph builds
//
//	a (1)
//	├── a/b (2)
//	│   └── a/b/d (4)
//	└── a/c (3, file)
func validGraph() fakeGraph {
	return fakeGraph{
		1: {path: "a", children: []int{2, 3}},
		2: {path: "a/b", parent: 1, children: []int{4}},
		3: {path: "a/c", parent: 1, isFile: true},
		4: {path: "a/b/d", parent: 2},
	}
}

func state(count int) State[int] {
	return State[int]{Initialized: true, Root: 1, HasRoot: true, Count: count}
}

func TestCheckTree_Valid(t *testing.T) {
	t.Parallel()

	c := New[int](validGraph(), Options{RootMustBeDir: true})
	require.NoError(t, c.CheckTree(state(4)))
	assert.True(t, c.IsValidTree(state(4)))
	for h := 0; h < 4; h++ {
		assert.NoError(t, c.CheckNode(h+1))
	}
}

func TestCheckTree_StateRules(t *testing.T) {
	t.Parallel()

	c := New[int](validGraph(), Options{})

	tests := []struct {
		name string
		s    State[int]
		rule Rule
	}{
		{"uninitialized with root", State[int]{Root: 1, HasRoot: true}, RuleUninitialized},
		{"uninitialized with count", State[int]{Count: 3}, RuleUninitialized},
		{"empty tree with count", State[int]{Initialized: true, Count: 1}, RuleEmptyTreeCount},
		{"dangling root", State[int]{Initialized: true, Root: 99, HasRoot: true, Count: 1}, RuleNilNode},
		{"undercount", state(3), RuleCountMismatch},
		{"overcount", state(5), RuleCountMismatch},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := c.CheckTree(tt.s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Equal(t, tt.rule, RuleOf(err))
		})
	}

	assert.NoError(t, c.CheckTree(State[int]{}), "uninitialized empty state is valid")
	assert.NoError(t, c.CheckTree(State[int]{Initialized: true}), "initialized empty state is valid")
}

func TestCheckTree_RootRules(t *testing.T) {
	t.Parallel()

	t.Run("root has parent", func(t *testing.T) {
		t.Parallel()
		g := validGraph()
		g[1].parent = 4
		err := New[int](g, Options{}).CheckTree(state(4))
		assert.Equal(t, RuleRootHasParent, RuleOf(err))
	})

	t.Run("root is file", func(t *testing.T) {
		t.Parallel()
		g := fakeGraph{1: {path: "a", isFile: true}}
		err := New[int](g, Options{RootMustBeDir: true}).CheckTree(state(1))
		assert.Equal(t, RuleRootIsFile, RuleOf(err))

		// without the option a lone file root is acceptable
		assert.NoError(t, New[int](g, Options{}).CheckTree(state(1)))
	})
}

func TestCheckNode_ParentLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(g fakeGraph)
		node    int
		rule    Rule
	}{
		{"nil path", func(g fakeGraph) { g[4].path = "" }, 4, RuleNilPath},
		{"sibling-looking path", func(g fakeGraph) { g[4].path = "a/x/d" }, 4, RuleParentPrefix},
		{"unrelated path", func(g fakeGraph) { g[4].path = "z/b/d" }, 4, RuleParentPrefix},
		{"depth skip", func(g fakeGraph) { g[4].path = "a/b/d/e" }, 4, RuleParentDepth},
		{"same depth as parent", func(g fakeGraph) { g[4].path = "a/b" }, 4, RuleParentDepth},
		{"dangling parent", func(g fakeGraph) { g[4].parent = 42 }, 4, RuleNilNode},
		{"missing node", func(g fakeGraph) {}, 77, RuleNilNode},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := validGraph()
			tt.corrupt(g)
			err := New[int](g, Options{}).CheckNode(tt.node)
			require.Error(t, err)
			assert.Equal(t, tt.rule, RuleOf(err), "got %v", err)
		})
	}
}

func TestCheckNode_Children(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(g fakeGraph)
		node    int
		rule    Rule
	}{
		{"file has children", func(g fakeGraph) { g[3].children = []int{4} }, 3, RuleFileHasChildren},
		{"declared count lies", func(g fakeGraph) { g[2].extra = 1 }, 2, RuleChildCount},
		{"child not live", func(g fakeGraph) { g[2].children = []int{55} }, 2, RuleChildCount},
		{"back-reference", func(g fakeGraph) { g[4].parent = 1 }, 2, RuleBackReference},
		{"orphaned child", func(g fakeGraph) { g[4].parent = 0 }, 2, RuleBackReference},
		{"duplicate sibling", func(g fakeGraph) {
			g[5] = &fakeNode{path: "a/b", parent: 1}
			g[1].children = []int{2, 3, 5}
		}, 1, RuleDuplicateSibling},
		{"out of order", func(g fakeGraph) { g[1].children = []int{3, 2} }, 1, RuleSiblingOrder},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := validGraph()
			tt.corrupt(g)
			c := New[int](g, Options{})
			err := c.CheckNode(tt.node)
			require.Error(t, err)
			assert.Equal(t, tt.rule, RuleOf(err), "got %v", err)
			assert.False(t, c.IsValidNode(tt.node))
		})
	}
}

func TestCheckNode_BackReferenceDiagnostic(t *testing.T) {
	t.Parallel()

	g := validGraph()
	g[4].parent = 1
	err := New[int](g, Options{}).CheckNode(2)

	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, []string{"a/b", "a/b/d"}, v.Paths)
	assert.Contains(t, err.Error(), "parent back-reference")
}

func TestCheckNode_OrderingPolicy(t *testing.T) {
	t.Parallel()

	// lexical order: a/a (file) < a/b (dir)
	g := fakeGraph{
		1: {path: "a", children: []int{2, 3}},
		2: {path: "a/a", parent: 1, isFile: true},
		3: {path: "a/b", parent: 1},
	}
	assert.NoError(t, New[int](g, Options{Policy: ordering.Lexical}).CheckNode(1))

	err := New[int](g, Options{Policy: ordering.DirsFirst}).CheckNode(1)
	assert.Equal(t, RuleSiblingOrder, RuleOf(err))

	g[1].children = []int{3, 2}
	assert.NoError(t, New[int](g, Options{Policy: ordering.DirsFirst}).CheckNode(1))
	assert.Equal(t, RuleSiblingOrder, RuleOf(New[int](g, Options{}).CheckNode(1)))
}

func TestCheckTree_CycleTerminates(t *testing.T) {
	t.Parallel()

	g := validGraph()
	// a/b/d lists the root as its child
	g[4].children = []int{1}

	err := New[int](g, Options{}).CheckTree(state(4))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestTraverse_DetectsCycle(t *testing.T) {
	t.Parallel()

	g := validGraph()
	g[4].children = []int{2}

	c := New[int](g, Options{})
	visited, err := c.traverse(1, func(int) error { return nil })

	require.Error(t, err)
	assert.Equal(t, RuleCycle, RuleOf(err))
	assert.Equal(t, 3, visited, "a/c is never reached")

	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"a/b"}, v.Paths, "must report the repeated node")
}

func TestTraverse_PreorderLeftToRight(t *testing.T) {
	t.Parallel()

	c := New[int](validGraph(), Options{})
	var order []int
	visited, err := c.traverse(1, func(h int) error {
		order = append(order, h)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, visited)
	assert.Equal(t, []int{1, 2, 4, 3}, order)
}

func TestCheckTree_DeepChain(t *testing.T) {
	t.Parallel()

	const depth = 2000
	g := fakeGraph{}
	path := "n"
	for h := 1; h <= depth; h++ {
		n := &fakeNode{path: path, parent: h - 1}
		if h < depth {
			n.children = []int{h + 1}
		}
		g[h] = n
		path += "/n"
	}

	assert.NoError(t, New[int](g, Options{}).CheckTree(state(depth)))
}

func TestViolation_Error(t *testing.T) {
	t.Parallel()

	v := newViolation(RuleSiblingOrder, "children out of lexical order", "a/c", "a/b")
	assert.Equal(t, "invalid tree: sibling order: children out of lexical order (a/c) (a/b)", v.Error())
	assert.Equal(t, "rule(99)", Rule(99).String())
	assert.Equal(t, Rule(0), RuleOf(errors.New("other")))
}
