// Package issuetree mirrors a tracker's parent/child issue hierarchy and
// accumulates spent time per issue, user and effective activity.
package issuetree

import (
	"fmt"

	"github.com/alexanderramin/redtally/internal/domain"
)

// NodeID addresses a node inside its Tree. IDs are stable for the lifetime
// of the tree and are never reused.
type NodeID int

// NoParent marks a node created as a root.
const NoParent NodeID = -1

// Node is one issue in the hierarchy. Parent and children are stored as
// arena indices; the Tree owns every node.
type Node struct {
	IssueID  int
	Subject  string
	Parent   NodeID
	Children []NodeID
	Level    int
	Store    *Store
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == NoParent }

// Label returns the "#<id>" table label for the node's issue.
func (n *Node) Label() string { return domain.IssueLabel(n.IssueID) }

// Tree is an arena of nodes with ordered roots and the current leaf set.
type Tree struct {
	nodes  []Node
	roots  []NodeID
	leaves []NodeID
	isLeaf map[NodeID]bool
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{isLeaf: make(map[NodeID]bool)}
}

// CreateNode adds a node for an issue under parent, or as a new root when
// parent is NoParent. The parent leaves the leaf set only if it is still in
// it, so a second child does not disturb the set.
func (t *Tree) CreateNode(issueID int, subject string, parent NodeID) (NodeID, error) {
	level := 0
	if parent != NoParent {
		p, err := t.node(parent)
		if err != nil {
			return 0, err
		}
		level = p.Level + 1
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		IssueID: issueID,
		Subject: subject,
		Parent:  parent,
		Level:   level,
		Store:   NewStore(),
	})

	if parent == NoParent {
		t.roots = append(t.roots, id)
	} else {
		p := &t.nodes[parent]
		p.Children = append(p.Children, id)
		if t.isLeaf[parent] {
			t.removeLeaf(parent)
		}
	}
	t.leaves = append(t.leaves, id)
	t.isLeaf[id] = true

	return id, nil
}

func (t *Tree) removeLeaf(id NodeID) {
	for i, l := range t.leaves {
		if l == id {
			t.leaves = append(t.leaves[:i], t.leaves[i+1:]...)
			break
		}
	}
	delete(t.isLeaf, id)
}

// Record accumulates hours into the node's own store. Ancestors are not
// touched: issue totals are local, not roll-ups.
func (t *Tree) Record(id NodeID, user, activity string, hours float64) error {
	n, err := t.node(id)
	if err != nil {
		return err
	}
	n.Store.Add(user, activity, hours)
	return nil
}

// Node returns the node for id. The pointer is only valid until the next
// CreateNode call.
func (t *Tree) Node(id NodeID) (*Node, error) {
	return t.node(id)
}

func (t *Tree) node(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: unknown node %d", domain.ErrInvalidInput, id)
	}
	return &t.nodes[id], nil
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Roots returns root node IDs in creation order.
func (t *Tree) Roots() []NodeID {
	return append([]NodeID(nil), t.roots...)
}

// Leaves returns the currently childless nodes.
func (t *Tree) Leaves() []NodeID {
	return append([]NodeID(nil), t.leaves...)
}

// Walk visits every node depth-first, roots in order, children in order.
// Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(id NodeID, n *Node) bool) {
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n := &t.nodes[id]
		if !fn(id, n) {
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range t.roots {
		visit(r)
	}
}

// NodesWithData returns, depth-first, the nodes whose store is non-empty.
func (t *Tree) NodesWithData() []NodeID {
	var out []NodeID
	t.Walk(func(id NodeID, n *Node) bool {
		if !n.Store.Empty() {
			out = append(out, id)
		}
		return true
	})
	return out
}

// RootsWithData returns the root nodes whose store is non-empty.
func (t *Tree) RootsWithData() []NodeID {
	var out []NodeID
	for _, r := range t.roots {
		if !t.nodes[r].Store.Empty() {
			out = append(out, r)
		}
	}
	return out
}
