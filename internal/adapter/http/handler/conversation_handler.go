package handler

import (
	"intro-auction/internal/adapter/http/dto"
	"intro-auction/internal/core/ports"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/money"
	"intro-auction/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderIdempotencyKey makes a create request replay its first result.
const HeaderIdempotencyKey = "Idempotency-Key"

// ConversationHandler exposes the auction operations.
type ConversationHandler struct {
	auctionSvc ports.AuctionService
}

func NewConversationHandler(auctionSvc ports.AuctionService) *ConversationHandler {
	return &ConversationHandler{auctionSvc: auctionSvc}
}

// Create handles POST /api/v1/conversations.
func (h *ConversationHandler) Create(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	key := c.GetHeader(HeaderIdempotencyKey)
	if len(key) > 128 {
		response.Error(c, apperror.Validation("Idempotency-Key must be at most 128 characters"))
		return
	}

	result, err := h.auctionSvc.CreateConversation(c.Request.Context(), ports.CreateConversationRequest{
		SenderID:       rc.ViewerID,
		RecipientID:    uuid.MustParse(req.RecipientID),
		BidPrice:       money.MustParse(req.BidPrice),
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateConversationResponse{
		ConversationID: result.ConversationID.String(),
		BidStatus:      string(result.BidStatus),
	})
}

// Open handles POST /api/v1/conversations/:id/open.
func (h *ConversationHandler) Open(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	conv, err := h.auctionSvc.AcceptConversation(c.Request.Context(), id, rc.ViewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToConversationResponse(conv))
}

// Reply handles POST /api/v1/conversations/:id/replies.
func (h *ConversationHandler) Reply(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	conv, err := h.auctionSvc.PostReply(c.Request.Context(), id, rc.ViewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToConversationResponse(conv))
}
