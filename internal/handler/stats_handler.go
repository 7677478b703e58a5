package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"erpdesk/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
	log          zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{statsService: statsService, log: log}
}

// GetStats handles GET /api/v1/stats
// @Summary Get tenant statistics
// @Description Document counts and grand totals grouped by kind and status
// @Tags stats
// @Produce json
// @Success 200 {object} Response{data=domain.Stats} "Aggregate statistics"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, stats)
}
