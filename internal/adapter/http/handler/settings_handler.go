package handler

import (
	"intro-auction/internal/adapter/http/dto"
	"intro-auction/internal/core/ports"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	auctionSvc ports.AuctionService
}

func NewSettingsHandler(auctionSvc ports.AuctionService) *SettingsHandler {
	return &SettingsHandler{auctionSvc: auctionSvc}
}

// UpdateDailyLimit handles PUT /api/v1/intro-settings/daily-limit.
func (h *SettingsHandler) UpdateDailyLimit(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.UpdateDailyLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	settings, err := h.auctionSvc.UpdateDailyLimit(c.Request.Context(), rc.ViewerID, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToIntroSettingsResponse(settings))
}
