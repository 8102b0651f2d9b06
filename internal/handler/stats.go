package handler

import (
	"context"
	"net/http"

	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/pkg/response"
)

type StatsService interface {
	ComputeDashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

type StatsHandler struct {
	service StatsService
}

func NewStatsHandler(service StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetStats handles GET /api/admin/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ComputeDashboardStats(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, stats)
}
