package service

import (
	"context"
	"time"

	"github.com/alexanderramin/redtally/internal/activity"
	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/issuetree"
	"github.com/alexanderramin/redtally/internal/report"
)

// ReportService runs report generations.
type ReportService interface {
	Generate(ctx context.Context, req ReportRequest) (*Result, error)
}

// ReportRequest carries every setting of one generation.
type ReportRequest struct {
	Window             domain.Window
	Depth              int
	Language           report.Language
	Overrides          []activity.Override
	ExcludedActivities []string
	// Projects limits the run to matching projects; empty means all.
	Projects []string
	// Now stamps the report; the current time when nil.
	Now *time.Time
	// OnVisit is called for every issue walked.
	OnVisit issuetree.VisitFunc
}

// Result is a finished generation: the report and the trees it was
// projected from.
type Result struct {
	Report *report.Report
	Trees  []ProjectTree
}

// ProjectTree is the issue tree built for one project.
type ProjectTree struct {
	Project domain.Project
	Tree    *issuetree.Tree
}
