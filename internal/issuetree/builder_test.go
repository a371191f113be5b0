package issuetree

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/redtally/internal/activity"
	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builderEnv struct {
	src      *testutil.FakeSource
	resolver *activity.Resolver
	roots    []domain.Issue
}

func newBuilderEnv(t *testing.T, overrides ...activity.Override) builderEnv {
	t.Helper()
	src := testutil.NewFakeSource(nil)
	resolver, err := activity.NewResolver(src.Fixture.Roles, src.Fixture.Activities, overrides)
	require.NoError(t, err)
	roots, err := src.RootIssues(context.Background(), 1)
	require.NoError(t, err)
	return builderEnv{src: src, resolver: resolver, roots: roots}
}

func (e builderEnv) build(t *testing.T, opts ...BuilderOption) (*Tree, error) {
	t.Helper()
	b := NewBuilder(e.src, e.src, e.resolver, e.src.Fixture.RoleMap(1), testutil.FixtureWindow, opts...)
	tree := New()
	err := b.Build(context.Background(), tree, e.roots)
	return tree, err
}

func issueIDs(t *testing.T, tree *Tree) []int {
	t.Helper()
	var ids []int
	tree.Walk(func(id NodeID, n *Node) bool {
		ids = append(ids, n.IssueID)
		return true
	})
	return ids
}

func TestBuild_DepthZeroKeepsRootsOnly(t *testing.T) {
	env := newBuilderEnv(t)

	tree, err := env.build(t, WithDepthLimit(0))
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20}, issueIDs(t, tree))
	assert.Equal(t, tree.Roots(), tree.Leaves())
	assert.Zero(t, env.src.CallCount("ChildIssues"), "depth 0 must never descend")

	root, _ := tree.Node(tree.Roots()[0])
	assert.Equal(t, 3.0, root.Store.Hours("alice", "Development"), "entry outside the window is ignored")
	assert.Equal(t, 0.5, root.Store.Hours("bob", "Meeting"))
}

func TestBuild_DepthLimitIsAbsoluteCeiling(t *testing.T) {
	cases := []struct {
		depth      int
		wantIssues []int
		wantLeaves int
		childCalls int
	}{
		{depth: 0, wantIssues: []int{10, 20}, wantLeaves: 2, childCalls: 0},
		{depth: 1, wantIssues: []int{10, 11, 20}, wantLeaves: 2, childCalls: 2},
		{depth: 2, wantIssues: []int{10, 11, 12, 20}, wantLeaves: 2, childCalls: 3},
		{depth: 5, wantIssues: []int{10, 11, 12, 20}, wantLeaves: 2, childCalls: 4},
	}
	for _, tc := range cases {
		env := newBuilderEnv(t)
		tree, err := env.build(t, WithDepthLimit(tc.depth))
		require.NoError(t, err, "depth %d", tc.depth)

		assert.Equal(t, tc.wantIssues, issueIDs(t, tree), "depth %d", tc.depth)
		assert.Len(t, tree.Leaves(), tc.wantLeaves, "depth %d", tc.depth)
		assert.Equal(t, tc.childCalls, env.src.CallCount("ChildIssues"), "depth %d", tc.depth)

		tree.Walk(func(id NodeID, n *Node) bool {
			assert.LessOrEqual(t, n.Level, tc.depth, "depth %d", tc.depth)
			return true
		})
	}
}

func TestBuild_ChildNodesHoldTheirOwnEntries(t *testing.T) {
	env := newBuilderEnv(t)

	tree, err := env.build(t, WithDepthLimit(2))
	require.NoError(t, err)

	byIssue := map[int]*Node{}
	tree.Walk(func(id NodeID, n *Node) bool {
		byIssue[n.IssueID] = n
		return true
	})

	assert.Equal(t, 1.5, byIssue[11].Store.Hours("alice", "Testing"))
	assert.Equal(t, 2.0, byIssue[12].Store.Hours("carol", "Development"))
	assert.Equal(t, 0.0, byIssue[10].Store.Hours("alice", "Testing"), "no roll-up into ancestors")
	assert.Equal(t, 2, byIssue[12].Level)
}

func TestBuild_ResolvesActivityPerUserRoles(t *testing.T) {
	env := newBuilderEnv(t,
		activity.Override{Role: "Developer", Activity: "Meeting", ReportAs: "Admin"},
		activity.Override{Role: "Manager", Activity: "Meeting", ReportAs: "Coordination"},
	)

	tree, err := env.build(t)
	require.NoError(t, err)

	root, _ := tree.Node(tree.Roots()[0])
	assert.Equal(t, 0.5, root.Store.Hours("bob", "Admin"))
	assert.False(t, root.Store.Has("bob", "Meeting"))
}

func TestBuild_PropagatesSourceFailure(t *testing.T) {
	env := newBuilderEnv(t)
	cause := errors.New("tracker unavailable")
	env.src.FailOn("ChildIssues", 11, cause)

	tree, err := env.build(t, WithDepthLimit(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "child issues of 11")

	assert.Equal(t, []int{10, 11}, issueIDs(t, tree), "walk stops at the failure")
	assert.NotContains(t, env.src.Calls(), "IssueTimeEntries:20")
}

func TestBuild_PropagatesEntryFailure(t *testing.T) {
	env := newBuilderEnv(t)
	env.src.FailOn("IssueTimeEntries", 20, errors.New("timeout"))

	_, err := env.build(t)
	assert.ErrorIs(t, err, domain.ErrSourceFailure)
}

func TestBuild_UserWithoutRolesIsInvalidInput(t *testing.T) {
	env := newBuilderEnv(t)
	env.src.Fixture.Entries = append(env.src.Fixture.Entries,
		testutil.NewTestEntry("mallory", "Development", 1, testutil.WithIssue(20)))

	_, err := env.build(t)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "mallory")
}

func TestBuild_NegativeDepthIsConfigurationError(t *testing.T) {
	env := newBuilderEnv(t)

	_, err := env.build(t, WithDepthLimit(-1))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestBuild_VisitFuncAndCancellation(t *testing.T) {
	env := newBuilderEnv(t)

	var visited []int
	_, err := env.build(t, WithDepthLimit(2), WithVisitFunc(func(issue domain.Issue, level int, entries int) {
		visited = append(visited, issue.ID)
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12, 20}, visited)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewBuilder(env.src, env.src, env.resolver, env.src.Fixture.RoleMap(1), testutil.FixtureWindow)
	err = b.Build(ctx, New(), env.roots)
	assert.ErrorIs(t, err, context.Canceled)
}
