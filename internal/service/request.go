package service

import (
	"time"

	"github.com/alexanderramin/redtally/internal/config"
	"github.com/alexanderramin/redtally/internal/report"
)

// NewReportRequest builds a request from cfg with the window resolved
// against now.
func NewReportRequest(cfg config.Config, now time.Time) (ReportRequest, error) {
	window, err := cfg.ReportWindow(now)
	if err != nil {
		return ReportRequest{}, err
	}
	lang, err := report.ParseLanguage(cfg.Language)
	if err != nil {
		return ReportRequest{}, err
	}
	return ReportRequest{
		Window:             window,
		Depth:              cfg.Depth,
		Language:           lang,
		Overrides:          cfg.Overrides,
		ExcludedActivities: cfg.ExcludedActivities,
		Projects:           cfg.Projects,
		Now:                &now,
	}, nil
}
