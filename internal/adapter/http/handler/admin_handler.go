package handler

import (
	"errors"
	"io"

	"intro-auction/internal/adapter/http/dto"
	"intro-auction/internal/core/ports"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler lets an operator drive the reaper by hand.
type AdminHandler struct {
	reaperSvc ports.ReaperService
	batchSize int
	log       zerolog.Logger
}

func NewAdminHandler(reaperSvc ports.ReaperService, batchSize int, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{reaperSvc: reaperSvc, batchSize: batchSize, log: log}
}

// RunReaper handles POST /api/v1/admin/reaper/run. The body is optional.
func (h *AdminHandler) RunReaper(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.RunReaperRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	maxRecipients := h.batchSize
	if req.MaxRecipients > 0 {
		maxRecipients = req.MaxRecipients
	}

	stats, err := h.reaperSvc.RunCycle(c.Request.Context(), maxRecipients)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.log.Info().
		Str("operator_id", rc.ViewerID.String()).
		Int("max_recipients", maxRecipients).
		Int("resolved", stats.Resolved).
		Int("failed", stats.Failed).
		Msg("manual reaper cycle")
	response.OK(c, dto.ToReaperStatsResponse(stats))
}
