package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/redtally/internal/activity"
	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/issuetree"
	"github.com/alexanderramin/redtally/internal/report"
	"github.com/alexanderramin/redtally/internal/source"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type reportService struct {
	src      source.Source
	log      zerolog.Logger
	observer UseCaseObserver
}

func NewReportService(src source.Source, log zerolog.Logger, observers ...UseCaseObserver) ReportService {
	return &reportService{
		src:      src,
		log:      log,
		observer: combineObservers(observers),
	}
}

// generation holds what one run shares across projects.
type generation struct {
	req       ReportRequest
	resolver  *activity.Resolver
	projector *report.Projector
	report    *report.Report
	trees     []ProjectTree
}

func (s *reportService) Generate(ctx context.Context, req ReportRequest) (result *Result, err error) {
	startedAt := time.Now().UTC()
	runID := uuid.NewString()
	fields := map[string]any{
		"run_id": runID,
		"from":   req.Window.FromString(),
		"to":     req.Window.ToString(),
		"depth":  req.Depth,
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "generate-report",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if err = req.Window.Validate(); err != nil {
		return nil, err
	}
	if req.Depth < 0 {
		return nil, fmt.Errorf("%w: depth must be >= 0, got %d", domain.ErrConfiguration, req.Depth)
	}
	lang := req.Language
	if lang == "" {
		lang = report.LangEN
	}
	msgs, err := report.MessagesFor(lang)
	if err != nil {
		return nil, err
	}
	now := startedAt
	if req.Now != nil {
		now = *req.Now
	}

	var gen *generation
	err = source.Run(ctx, s.src, func(ctx context.Context, src source.Source) error {
		var err error
		gen, err = s.prepare(ctx, src, req, runID, lang, msgs, now)
		if err != nil {
			return err
		}
		projects, err := src.Projects(ctx)
		if err != nil {
			return err
		}
		for _, p := range projects {
			if !wantsProject(req.Projects, p) {
				continue
			}
			if err := s.aggregateProject(ctx, src, gen, p); err != nil {
				return fmt.Errorf("project %s: %w", p.DisplayName(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["projects"] = len(gen.report.Projects)
	fields["issue_projects"] = len(gen.report.Issues)
	return &Result{Report: gen.report, Trees: gen.trees}, nil
}

func (s *reportService) prepare(ctx context.Context, src source.Source, req ReportRequest, runID string, lang report.Language, msgs report.Messages, now time.Time) (*generation, error) {
	activities, err := src.Activities(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := src.Roles(ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := activity.NewResolver(roles, activities, req.Overrides)
	if err != nil {
		return nil, err
	}

	reported := report.ReportedActivities(activities, req.ExcludedActivities)
	return &generation{
		req:       req,
		resolver:  resolver,
		projector: report.NewProjector(reported, msgs.Total),
		report:    report.New(runID, lang, msgs, req.Window, req.Depth, reported, now),
	}, nil
}

// aggregateProject fills the project-level table with entries that carry
// no issue, then builds the issue tree from the project's root issues.
// Every project gets a project-level table, even with nothing logged.
func (s *reportService) aggregateProject(ctx context.Context, src source.Source, gen *generation, p domain.Project) error {
	roles, err := src.ProjectRoles(ctx, p.ID)
	if err != nil {
		return err
	}
	entries, err := src.ProjectTimeEntries(ctx, p.ID, gen.req.Window)
	if err != nil {
		return err
	}

	store := issuetree.NewStore()
	for _, e := range entries {
		if e.HasIssue() {
			continue
		}
		act, err := gen.resolver.Resolve(roles.For(e.User), e.Activity)
		if err != nil {
			return fmt.Errorf("resolving activity for %s: %w", e.User, err)
		}
		store.Add(e.User, act, e.Hours)
	}
	gen.report.AddProject(p, gen.projector.Project(p.DisplayName(), store))

	roots, err := src.RootIssues(ctx, p.ID)
	if err != nil {
		return err
	}
	tree := issuetree.New()
	opts := []issuetree.BuilderOption{issuetree.WithDepthLimit(gen.req.Depth)}
	if gen.req.OnVisit != nil {
		opts = append(opts, issuetree.WithVisitFunc(gen.req.OnVisit))
	}
	b := issuetree.NewBuilder(src, src, gen.resolver, roles, gen.req.Window, opts...)
	if err := b.Build(ctx, tree, roots); err != nil {
		return err
	}
	gen.trees = append(gen.trees, ProjectTree{Project: p, Tree: tree})

	var tables []report.IssueTable
	for _, id := range tree.NodesWithData() {
		n, err := tree.Node(id)
		if err != nil {
			return err
		}
		tables = append(tables, report.IssueTable{
			IssueID: n.IssueID,
			Subject: n.Subject,
			Level:   n.Level,
			Table:   gen.projector.Project(n.Label(), n.Store),
		})
	}
	gen.report.AddIssues(p, tables)

	s.log.Debug().
		Int("project_id", p.ID).
		Int("entries", len(entries)).
		Int("issues", tree.Len()).
		Int("issue_tables", len(tables)).
		Msg("project aggregated")
	return nil
}

func wantsProject(filter []string, p domain.Project) bool {
	if len(filter) == 0 {
		return true
	}
	for _, key := range filter {
		if p.Matches(key) {
			return true
		}
	}
	return false
}
