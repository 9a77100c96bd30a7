package dto

import (
	"testing"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/pkg/money"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMoneyValidator(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"0", true},
		{"1.5", true},
		{"0.00000001", true},
		{"12345678.12345678", true},
		{"0.000000001", false},
		{"-1", false},
		{"1e400", false},
		{"abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&CreateConversationRequest{
				RecipientID: uuid.NewString(),
				BidPrice:    tt.amount,
			})
			assert.Equal(t, tt.valid, err == nil, "%v", err)
		})
	}
}

func TestCreateConversationRequest_RequiresUUID(t *testing.T) {
	err := binding.Validator.ValidateStruct(&CreateConversationRequest{RecipientID: "bob", BidPrice: "1"})
	assert.Error(t, err)
}

func TestWithdrawRequest_DestAddress(t *testing.T) {
	ok := binding.Validator.ValidateStruct(&WithdrawRequest{Amount: "1", DestAddress: "qc1-dest_address.01"})
	assert.NoError(t, ok)

	for _, dest := range []string{"", "bad address", "<script>", "a/b"} {
		err := binding.Validator.ValidateStruct(&WithdrawRequest{Amount: "1", DestAddress: dest})
		assert.Error(t, err, dest)
	}
}

func TestRunReaperRequest_Bounds(t *testing.T) {
	assert.NoError(t, binding.Validator.ValidateStruct(&RunReaperRequest{}))
	assert.NoError(t, binding.Validator.ValidateStruct(&RunReaperRequest{MaxRecipients: 50}))
	assert.Error(t, binding.Validator.ValidateStruct(&RunReaperRequest{MaxRecipients: -1}))
}

func TestToJournalEntryResponse_BridgeSides(t *testing.T) {
	user := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	in := &domain.JournalEntry{ID: uuid.New(), Kind: domain.JournalBridgeIn, TargetID: user, Amount: money.MustParse("1"), Net: money.MustParse("1"), CreatedAt: now}
	resp := ToJournalEntryResponse(in)
	assert.Empty(t, resp.SourceID)
	assert.Equal(t, user.String(), resp.TargetID)
	assert.Equal(t, "2026-03-01T12:00:00Z", resp.CreatedAt)

	convID := uuid.New()
	transfer := &domain.JournalEntry{ID: uuid.New(), Kind: domain.JournalUserToUser, SourceID: uuid.New(), TargetID: user, ConversationID: &convID, Reason: domain.ReasonRefund}
	resp = ToJournalEntryResponse(transfer)
	assert.NotEmpty(t, resp.SourceID)
	assert.Equal(t, convID.String(), *resp.ConversationID)
	assert.Equal(t, "REFUND", resp.Reason)
	assert.Equal(t, "0.00000000", resp.Fee)
}
