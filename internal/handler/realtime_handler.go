package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"erpdesk/internal/realtime"
)

// RealtimeHandler upgrades authenticated requests to event streams.
type RealtimeHandler struct {
	hub *realtime.Hub
	log zerolog.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, log: log}
}

// Stream handles GET /api/v1/ws
// @Summary Document event stream
// @Description Websocket delivering document events of the caller's tenant. Browsers pass the access token as the access_token query parameter.
// @Tags realtime
// @Param access_token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /ws [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	// The upgrader writes its own error response.
	if err := h.hub.Serve(c.Writer, c.Request, tenantID, userID); err != nil {
		h.log.Debug().Err(err).Str("tenant_id", tenantID.String()).Msg("realtime: upgrade failed")
	}
}
