package issuetree

import (
	"context"
	"fmt"

	"github.com/alexanderramin/redtally/internal/domain"
)

// EntrySource lists the time entries logged against one issue.
type EntrySource interface {
	IssueTimeEntries(ctx context.Context, issueID int, window domain.Window) ([]domain.TimeEntry, error)
}

// ChildSource lists the direct children of one issue.
type ChildSource interface {
	ChildIssues(ctx context.Context, issueID int) ([]domain.Issue, error)
}

// ActivityResolver maps a user's roles and a raw activity to the activity
// the time is reported under.
type ActivityResolver interface {
	Resolve(roles domain.RoleSet, raw string) (string, error)
}

// VisitFunc is called after an issue's entries have been recorded.
type VisitFunc func(issue domain.Issue, level int, entries int)

// Builder populates a Tree by walking the tracker hierarchy top-down.
type Builder struct {
	entries    EntrySource
	children   ChildSource
	resolver   ActivityResolver
	roles      domain.RoleMap
	window     domain.Window
	depthLimit int
	onVisit    VisitFunc
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithDepthLimit sets the deepest level whose nodes still fetch children.
// It is an absolute ceiling on Node.Level, not a remaining-depth counter:
// 0 aggregates root issues only, 1 adds their children, and so on.
func WithDepthLimit(limit int) BuilderOption {
	return func(b *Builder) { b.depthLimit = limit }
}

// WithVisitFunc registers a callback invoked once per visited issue.
func WithVisitFunc(fn VisitFunc) BuilderOption {
	return func(b *Builder) { b.onVisit = fn }
}

// NewBuilder creates a Builder for one project. roles maps each user to the
// roles held on that project; window bounds the time entries fetched.
func NewBuilder(entries EntrySource, children ChildSource, resolver ActivityResolver, roles domain.RoleMap, window domain.Window, opts ...BuilderOption) *Builder {
	b := &Builder{
		entries:  entries,
		children: children,
		resolver: resolver,
		roles:    roles,
		window:   window,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build adds every root issue, and its descendants down to the depth
// limit, to tree. The first failure aborts the walk and is returned; the
// subtree being walked at that point is left incomplete.
func (b *Builder) Build(ctx context.Context, tree *Tree, roots []domain.Issue) error {
	if b.depthLimit < 0 {
		return fmt.Errorf("%w: negative depth limit %d", domain.ErrConfiguration, b.depthLimit)
	}
	for _, issue := range roots {
		if err := b.walk(ctx, tree, issue, NoParent); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) walk(ctx context.Context, tree *Tree, issue domain.Issue, parent NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := tree.CreateNode(issue.ID, issue.Subject, parent)
	if err != nil {
		return err
	}

	entries, err := b.entries.IssueTimeEntries(ctx, issue.ID, b.window)
	if err != nil {
		return fmt.Errorf("listing time entries for issue %d: %w", issue.ID, err)
	}
	for _, e := range entries {
		act, err := b.resolver.Resolve(b.roles.For(e.User), e.Activity)
		if err != nil {
			return fmt.Errorf("resolving activity for %s on issue %d: %w", e.User, issue.ID, err)
		}
		if err := tree.Record(id, e.User, act, e.Hours); err != nil {
			return err
		}
	}

	node, err := tree.Node(id)
	if err != nil {
		return err
	}
	level := node.Level
	if b.onVisit != nil {
		b.onVisit(issue, level, len(entries))
	}

	if level >= b.depthLimit {
		return nil
	}

	kids, err := b.children.ChildIssues(ctx, issue.ID)
	if err != nil {
		return fmt.Errorf("listing child issues of %d: %w", issue.ID, err)
	}
	for _, child := range kids {
		if err := b.walk(ctx, tree, child, id); err != nil {
			return err
		}
	}
	return nil
}
