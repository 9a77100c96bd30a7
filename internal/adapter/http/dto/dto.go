package dto

import (
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
)

// CreateConversationRequest is the body of POST /conversations.
// BidPrice is a decimal string with at most 8 fractional digits.
type CreateConversationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required,uuid"`
	BidPrice    string `json:"bid_price" binding:"required,money"`
}

// WithdrawRequest is the body of POST /accounts/me/withdrawals.
type WithdrawRequest struct {
	Amount      string `json:"amount" binding:"required,money"`
	DestAddress string `json:"dest_address" binding:"required,max=128,safe_id"`
}

// UpdateDailyLimitRequest is the body of PUT /intro-settings/daily-limit.
// The range is checked by the auction service.
type UpdateDailyLimitRequest struct {
	Limit int `json:"limit"`
}

// RunReaperRequest is the optional body of POST /admin/reaper/run.
type RunReaperRequest struct {
	MaxRecipients int `json:"max_recipients" binding:"omitempty,min=1,max=100000"`
}

type CreateConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	BidStatus      string `json:"bid_status"`
}

type ConversationResponse struct {
	ID                string `json:"id"`
	SenderID          string `json:"sender_id"`
	RecipientID       string `json:"recipient_id"`
	BidPrice          string `json:"bid_price"`
	BidStatus         string `json:"bid_status"`
	SenderStatus      string `json:"sender_status"`
	RecipientStatus   string `json:"recipient_status"`
	LastMessageSender string `json:"last_message_sender"`
	LastUpdate        string `json:"last_update"`
	CreatedAt         string `json:"created_at"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Confirmed string `json:"confirmed"`
	CreatedAt string `json:"created_at"`
}

type BalanceResponse struct {
	Confirmed   string `json:"confirmed"`
	Unconfirmed string `json:"unconfirmed"`
}

type JournalEntryResponse struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	SourceID       string  `json:"source_id,omitempty"`
	TargetID       string  `json:"target_id,omitempty"`
	Amount         string  `json:"amount"`
	Fee            string  `json:"fee"`
	Net            string  `json:"net"`
	ConversationID *string `json:"conversation_id,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	DestAddress    string  `json:"dest_address,omitempty"`
	ExternalTxID   string  `json:"external_txid,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type JournalListResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
}

// SweepResponse reports whether a deposit was credited.
type SweepResponse struct {
	Credited bool                  `json:"credited"`
	Entry    *JournalEntryResponse `json:"entry,omitempty"`
}

type IntroSettingsResponse struct {
	MaxDailyIntros uint16 `json:"max_daily_intros"`
	MinBid         string `json:"min_bid"`
	NextCheck      string `json:"next_check"`
	LastCheck      string `json:"last_check"`
}

type ReaperStatsResponse struct {
	Resolved      int    `json:"resolved"`
	Failed        int    `json:"failed"`
	Won           int    `json:"won"`
	Lost          int    `json:"lost"`
	TimedOut      int    `json:"timed_out"`
	RefundedTotal string `json:"refunded_total"`
	SettledTotal  string `json:"settled_total"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func ToConversationResponse(c *domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:                c.ID.String(),
		SenderID:          c.SenderID.String(),
		RecipientID:       c.RecipientID.String(),
		BidPrice:          c.BidPrice.String(),
		BidStatus:         string(c.BidStatus),
		SenderStatus:      string(c.SenderStatus),
		RecipientStatus:   string(c.RecipientStatus),
		LastMessageSender: c.LastMessageSender.String(),
		LastUpdate:        formatTime(c.LastUpdate),
		CreatedAt:         formatTime(c.CreatedAt),
	}
}

func ToAccountResponse(a *domain.TokenAccount) AccountResponse {
	return AccountResponse{
		ID:        a.ID.String(),
		UserID:    a.UserID.String(),
		Confirmed: a.Confirmed.String(),
		CreatedAt: formatTime(a.CreatedAt),
	}
}

func ToBalanceResponse(b *ports.Balance) BalanceResponse {
	return BalanceResponse{Confirmed: b.Confirmed.String(), Unconfirmed: b.Unconfirmed.String()}
}

// ToJournalEntryResponse omits the zero uuid on the side a bridge entry does not have.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		ID:           e.ID.String(),
		Kind:         string(e.Kind),
		Amount:       e.Amount.String(),
		Fee:          e.Fee.String(),
		Net:          e.Net.String(),
		Reason:       string(e.Reason),
		DestAddress:  e.DestAddress,
		ExternalTxID: e.ExternalTxID,
		CreatedAt:    formatTime(e.CreatedAt),
	}
	if e.Kind != domain.JournalBridgeIn {
		resp.SourceID = e.SourceID.String()
	}
	if e.Kind != domain.JournalBridgeOut {
		resp.TargetID = e.TargetID.String()
	}
	if e.ConversationID != nil {
		s := e.ConversationID.String()
		resp.ConversationID = &s
	}
	return resp
}

func ToIntroSettingsResponse(s *domain.IntroSettings) IntroSettingsResponse {
	return IntroSettingsResponse{
		MaxDailyIntros: s.MaxDailyIntros,
		MinBid:         s.MinBid.String(),
		NextCheck:      formatTime(s.NextCheck),
		LastCheck:      formatTime(s.LastCheck),
	}
}

func ToReaperStatsResponse(s *ports.ReaperStats) ReaperStatsResponse {
	return ReaperStatsResponse{
		Resolved:      s.Resolved,
		Failed:        s.Failed,
		Won:           s.Won,
		Lost:          s.Lost,
		TimedOut:      s.TimedOut,
		RefundedTotal: s.RefundedTotal.String(),
		SettledTotal:  s.SettledTotal.String(),
	}
}
