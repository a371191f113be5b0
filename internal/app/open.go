package app

import (
	"fmt"

	"github.com/alexanderramin/redtally/internal/config"
	"github.com/alexanderramin/redtally/internal/db"
	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/service"
	"github.com/alexanderramin/redtally/internal/source"
	"github.com/alexanderramin/redtally/internal/source/redmineapi"
	"github.com/alexanderramin/redtally/internal/source/redminedb"
	"github.com/rs/zerolog"
)

// Reports is an opened report use case together with the resources
// behind it. Close releases them.
type Reports struct {
	GenerateReportUseCase
	close func() error
}

// Close releases the source.
func (r *Reports) Close() error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close()
}

// OpenSource connects the source cfg.Source names. The returned func
// releases it.
func OpenSource(cfg config.Config, log zerolog.Logger) (source.Source, func() error, error) {
	switch cfg.Source {
	case config.SourceSQLite:
		database, err := db.OpenDB(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redmine database: %w", err)
		}
		return redminedb.New(database), database.Close, nil
	case config.SourceAPI, "":
		rc := redmineapi.DefaultConfig()
		rc.BaseURL = cfg.Redmine.URL
		rc.APIKey = cfg.Redmine.APIKey
		rc.InsecureSkipVerify = cfg.Redmine.InsecureSkipVerify
		if cfg.Redmine.Timeout > 0 {
			rc.Timeout = cfg.Redmine.Timeout
		}
		rc.MaxRetries = cfg.Redmine.MaxRetries
		if cfg.Redmine.PageSize > 0 {
			rc.PageSize = cfg.Redmine.PageSize
		}
		client := redmineapi.NewClient(rc, log, redmineapi.NewLogObserver(log))
		return client, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown source %q", domain.ErrConfiguration, cfg.Source)
	}
}

// OpenReports returns the report use case over the configured source,
// with generations logged to log.
func OpenReports(cfg config.Config, log zerolog.Logger) (*Reports, error) {
	src, closeFn, err := OpenSource(cfg, log)
	if err != nil {
		return nil, err
	}
	svc := service.NewReportService(src, log, service.NewLogUseCaseObserver(log))
	return &Reports{GenerateReportUseCase: svc, close: closeFn}, nil
}

// NewReports wraps an already built use case; close may be nil.
func NewReports(uc GenerateReportUseCase, close func() error) *Reports {
	return &Reports{GenerateReportUseCase: uc, close: close}
}
