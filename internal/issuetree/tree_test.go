package issuetree

import (
	"math/rand"
	"testing"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, tree *Tree, issueID int, parent NodeID) NodeID {
	t.Helper()
	id, err := tree.CreateNode(issueID, "issue", parent)
	require.NoError(t, err)
	return id
}

func TestCreateNode_RootAndChildLevels(t *testing.T) {
	tree := New()
	root := mustCreate(t, tree, 1, NoParent)
	child := mustCreate(t, tree, 2, root)
	grandchild := mustCreate(t, tree, 3, child)

	for id, want := range map[NodeID]int{root: 0, child: 1, grandchild: 2} {
		n, err := tree.Node(id)
		require.NoError(t, err)
		assert.Equal(t, want, n.Level)
	}

	r, _ := tree.Node(root)
	assert.True(t, r.IsRoot())
	assert.Equal(t, []NodeID{child}, r.Children)
	assert.Equal(t, "#1", r.Label())

	c, _ := tree.Node(child)
	assert.Equal(t, root, c.Parent)
	assert.False(t, c.IsRoot())
}

func TestCreateNode_LeafBookkeeping(t *testing.T) {
	tree := New()
	a := mustCreate(t, tree, 1, NoParent)
	b := mustCreate(t, tree, 2, NoParent)
	assert.Equal(t, []NodeID{a, b}, tree.Leaves())

	a1 := mustCreate(t, tree, 3, a)
	assert.ElementsMatch(t, []NodeID{b, a1}, tree.Leaves())

	// A second child must not remove anything else.
	a2 := mustCreate(t, tree, 4, a)
	assert.ElementsMatch(t, []NodeID{b, a1, a2}, tree.Leaves())

	assert.Equal(t, []NodeID{a, b}, tree.Roots())
	assert.Equal(t, 4, tree.Len())
}

func TestCreateNode_UnknownParent(t *testing.T) {
	tree := New()
	_, err := tree.CreateNode(1, "orphan", NodeID(42))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, tree.Len())
}

func TestRecord_IsLocalToNode(t *testing.T) {
	tree := New()
	root := mustCreate(t, tree, 1, NoParent)
	child := mustCreate(t, tree, 2, root)

	require.NoError(t, tree.Record(child, "alice", "Dev", 3))
	require.NoError(t, tree.Record(child, "alice", "Dev", 1))

	r, _ := tree.Node(root)
	c, _ := tree.Node(child)
	assert.True(t, r.Store.Empty())
	assert.Equal(t, 4.0, c.Store.Hours("alice", "Dev"))

	assert.Equal(t, []NodeID{child}, tree.NodesWithData())
	assert.Empty(t, tree.RootsWithData())

	assert.ErrorIs(t, tree.Record(NodeID(9), "alice", "Dev", 1), domain.ErrInvalidInput)
}

func TestWalk_DepthFirstAndSkip(t *testing.T) {
	tree := New()
	a := mustCreate(t, tree, 1, NoParent)
	b := mustCreate(t, tree, 2, NoParent)
	a1 := mustCreate(t, tree, 3, a)
	mustCreate(t, tree, 4, a1)
	mustCreate(t, tree, 5, b)
	mustCreate(t, tree, 6, a)

	var order []int
	tree.Walk(func(id NodeID, n *Node) bool {
		order = append(order, n.IssueID)
		return true
	})
	assert.Equal(t, []int{1, 3, 4, 6, 2, 5}, order)

	order = nil
	tree.Walk(func(id NodeID, n *Node) bool {
		order = append(order, n.IssueID)
		return id != a1
	})
	assert.Equal(t, []int{1, 3, 6, 2, 5}, order)
}

// TestTree_Invariants grows random trees and checks level arithmetic and
// that the leaf set is exactly the childless nodes without duplicates.
func TestTree_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		tree := New()
		n := rng.Intn(40) + 1
		for i := 0; i < n; i++ {
			parent := NoParent
			if tree.Len() > 0 && rng.Intn(4) != 0 {
				parent = NodeID(rng.Intn(tree.Len()))
			}
			mustCreate(t, tree, i+1, parent)
		}

		childless := map[NodeID]bool{}
		seen := 0
		tree.Walk(func(id NodeID, node *Node) bool {
			seen++
			if node.IsRoot() {
				assert.Equal(t, 0, node.Level, "trial %d", trial)
			} else {
				p, err := tree.Node(node.Parent)
				require.NoError(t, err)
				assert.Equal(t, p.Level+1, node.Level, "trial %d", trial)
			}
			if len(node.Children) == 0 {
				childless[id] = true
			}
			return true
		})
		assert.Equal(t, tree.Len(), seen, "trial %d: every node reachable exactly once", trial)

		leaves := tree.Leaves()
		dup := map[NodeID]bool{}
		for _, l := range leaves {
			assert.False(t, dup[l], "trial %d: duplicate leaf %d", trial, l)
			dup[l] = true
			assert.True(t, childless[l], "trial %d: leaf %d has children", trial, l)
		}
		assert.Len(t, leaves, len(childless), "trial %d", trial)
	}
}
