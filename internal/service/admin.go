package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

// Admin calls the staff-only dashboard endpoints.
type Admin struct {
	api    API
	logger *logger.Logger
}

func NewAdmin(api API, logger *logger.Logger) *Admin {
	return &Admin{api: api, logger: logger}
}

func (s *Admin) Stats(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := call(ctx, s.api, http.MethodGet, "/admin/stats/", nil, &stats); err != nil {
		return model.DashboardStats{}, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return stats, nil
}

// GenerateData asks the backend to fill itself with synthetic data.
func (s *Admin) GenerateData(ctx context.Context, cfg model.GenerateConfig) (model.GenerateResult, error) {
	s.logger.Info("Admin service: generating data",
		"users", cfg.Users,
		"epreuves", cfg.Epreuves,
		"interactions", cfg.Interactions)

	var result model.GenerateResult
	if err := call(ctx, s.api, http.MethodPost, "/admin/generate-data/", cfg, &result); err != nil {
		return model.GenerateResult{}, fmt.Errorf("failed to generate data: %w", err)
	}
	return result, nil
}

// Export returns the raw export archive: a JSON document or a zip of CSV files.
func (s *Admin) Export(ctx context.Context, format model.ExportFormat) ([]byte, error) {
	switch format {
	case model.ExportJSON, model.ExportCSV:
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	q := url.Values{"format": {string(format)}}
	resp, err := s.api.Request(ctx, http.MethodGet, "/admin/export-data/", nil,
		apiclient.WithQuery(q), apiclient.WithHeader("Accept", "*/*"))
	if err != nil {
		return nil, fmt.Errorf("failed to export data: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("failed to export data: %w", err)
	}
	return resp.Body, nil
}
