package handler

import (
	"strconv"

	"intro-auction/internal/adapter/http/dto"
	"intro-auction/internal/core/ports"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/money"
	"intro-auction/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler exposes the caller's token account.
type AccountHandler struct {
	ledgerSvc ports.LedgerService
}

func NewAccountHandler(ledgerSvc ports.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerSvc: ledgerSvc}
}

// Open handles POST /api/v1/accounts/me. Repeated calls return the same account.
func (h *AccountHandler) Open(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	account, err := h.ledgerSvc.OpenAccount(c.Request.Context(), rc.ViewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToAccountResponse(account))
}

// Balance handles GET /api/v1/accounts/me/balance.
func (h *AccountHandler) Balance(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	balance, err := h.ledgerSvc.GetBalance(c.Request.Context(), rc.ViewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToBalanceResponse(balance))
}

// Journal handles GET /api/v1/accounts/me/journal?limit=N.
func (h *AccountHandler) Journal(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(c, apperror.Validation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.ledgerSvc.ListJournal(c.Request.Context(), rc.ViewerID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.JournalListResponse{Entries: make([]dto.JournalEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.ToJournalEntryResponse(e))
	}
	response.OK(c, resp)
}

// Sweep handles POST /api/v1/accounts/me/deposits/sweep.
func (h *AccountHandler) Sweep(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	entry, err := h.ledgerSvc.CreditDeposit(c.Request.Context(), rc.ViewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if entry == nil {
		response.OK(c, dto.SweepResponse{Credited: false})
		return
	}
	e := dto.ToJournalEntryResponse(entry)
	response.OK(c, dto.SweepResponse{Credited: true, Entry: &e})
}

// Withdraw handles POST /api/v1/accounts/me/withdrawals.
func (h *AccountHandler) Withdraw(c *gin.Context) {
	rc, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	entry, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		UserID:      rc.ViewerID,
		Amount:      money.MustParse(req.Amount),
		DestAddress: req.DestAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToJournalEntryResponse(entry))
}
