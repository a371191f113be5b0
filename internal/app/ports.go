// Package app wires the configured data source into the use cases the
// command line and the HTTP server run.
package app

import (
	"context"

	"github.com/alexanderramin/redtally/internal/service"
)

type GenerateReportUseCase interface {
	Generate(ctx context.Context, req service.ReportRequest) (*service.Result, error)
}
