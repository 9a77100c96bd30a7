package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/internal/core/ports/mocks"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testRouter struct {
	engine  *gin.Engine
	ledger  *mocks.MockLedgerService
	auction *mocks.MockAuctionService
	reaper  *mocks.MockReaperService
	health  *mocks.MockHealthChecker
	userID  uuid.UUID
}

// newTestRouter wires SetupRouter to mocks. Token "user" authenticates userID,
// token "root" an operator.
func newTestRouter(t *testing.T) *testRouter {
	ctrl := gomock.NewController(t)
	tr := &testRouter{
		ledger:  mocks.NewMockLedgerService(ctrl),
		auction: mocks.NewMockAuctionService(ctrl),
		reaper:  mocks.NewMockReaperService(ctrl),
		health:  mocks.NewMockHealthChecker(ctrl),
		userID:  uuid.New(),
	}
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("user").Return(&ports.TokenClaims{UserID: tr.userID}, nil).AnyTimes()
	tokenSvc.EXPECT().Validate("root").Return(&ports.TokenClaims{UserID: tr.userID, Root: true}, nil).AnyTimes()
	tokenSvc.EXPECT().Validate(gomock.Any()).Return(nil, errors.New("invalid")).AnyTimes()

	tr.engine = SetupRouter(RouterDeps{
		LedgerSvc:       tr.ledger,
		AuctionSvc:      tr.auction,
		ReaperSvc:       tr.reaper,
		TokenSvc:        tokenSvc,
		HealthCheckers:  []ports.HealthChecker{tr.health},
		ReaperBatchSize: 500,
		Logger:          zerolog.Nop(),
	})
	return tr
}

func (tr *testRouter) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

// --- Conversations ---

func TestCreateConversation_Success(t *testing.T) {
	tr := newTestRouter(t)
	recipient := uuid.New()
	convID := uuid.New()

	tr.auction.EXPECT().CreateConversation(gomock.Any(), ports.CreateConversationRequest{
		SenderID:       tr.userID,
		RecipientID:    recipient,
		BidPrice:       money.MustParse("1.5"),
		IdempotencyKey: "",
	}).Return(&domain.CreateConversationResult{ConversationID: convID, BidStatus: domain.BidWinning}, nil)

	w := tr.do(http.MethodPost, "/api/v1/conversations", "user", map[string]string{
		"recipient_id": recipient.String(),
		"bid_price":    "1.5",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, convID.String(), data["conversation_id"])
	assert.Equal(t, "WINNING", data["bid_status"])
}

func TestCreateConversation_PassesIdempotencyKey(t *testing.T) {
	tr := newTestRouter(t)
	tr.auction.EXPECT().CreateConversation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.CreateConversationRequest) (*domain.CreateConversationResult, error) {
			assert.Equal(t, "client-key-1", req.IdempotencyKey)
			return &domain.CreateConversationResult{ConversationID: uuid.New(), BidStatus: domain.BidWon}, nil
		})

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(map[string]string{"recipient_id": uuid.NewString(), "bid_price": "0"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", &buf)
	req.Header.Set("Authorization", "Bearer user")
	req.Header.Set(HeaderIdempotencyKey, "client-key-1")
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateConversation_ValidationError(t *testing.T) {
	tr := newTestRouter(t)

	for _, body := range []map[string]string{
		{},
		{"recipient_id": "bob", "bid_price": "1"},
		{"recipient_id": uuid.NewString(), "bid_price": "1.000000001"},
		{"recipient_id": uuid.NewString(), "bid_price": "-2"},
	} {
		w := tr.do(http.MethodPost, "/api/v1/conversations", "user", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
		assert.Equal(t, "LEDGER_002", errorCode(t, w))
	}
}

func TestCreateConversation_PolicyErrors(t *testing.T) {
	tests := []struct {
		err    *apperror.AppError
		status int
	}{
		{apperror.ErrConversationExists(), http.StatusConflict},
		{apperror.ErrSelfConversation(), http.StatusBadRequest},
		{apperror.ErrInsufficientBalance(), http.StatusPaymentRequired},
		{apperror.ErrBidTooLow(), http.StatusUnprocessableEntity},
		{apperror.ErrLockTimeout(errors.New("deadlock")), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			tr := newTestRouter(t)
			tr.auction.EXPECT().CreateConversation(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := tr.do(http.MethodPost, "/api/v1/conversations", "user", map[string]string{
				"recipient_id": uuid.NewString(),
				"bid_price":    "1",
			})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.err.Code, errorCode(t, w))
		})
	}
}

func TestCreateConversation_Unauthorized(t *testing.T) {
	tr := newTestRouter(t)
	w := tr.do(http.MethodPost, "/api/v1/conversations", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = tr.do(http.MethodPost, "/api/v1/conversations", "forged", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOpenConversation(t *testing.T) {
	tr := newTestRouter(t)
	convID := uuid.New()
	conv := &domain.Conversation{
		ID:                convID,
		SenderID:          uuid.New(),
		RecipientID:       tr.userID,
		BidPrice:          money.MustParse("2"),
		BidStatus:         domain.BidAccepted,
		SenderStatus:      domain.ReadCurrent,
		RecipientStatus:   domain.ReadCurrent,
		LastMessageSender: tr.userID,
		LastUpdate:        testNow,
		CreatedAt:         testNow,
	}
	tr.auction.EXPECT().AcceptConversation(gomock.Any(), convID, tr.userID).Return(conv, nil)

	w := tr.do(http.MethodPost, "/api/v1/conversations/"+convID.String()+"/open", "user", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "ACCEPTED", data["bid_status"])
	assert.Equal(t, "2.00000000", data["bid_price"])
	assert.Equal(t, "2026-03-01T12:00:00Z", data["last_update"])
}

func TestOpenConversation_BadID(t *testing.T) {
	tr := newTestRouter(t)
	w := tr.do(http.MethodPost, "/api/v1/conversations/not-a-uuid/open", "user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "AUCTION_005", errorCode(t, w))
}

func TestOpenConversation_NotDelivered(t *testing.T) {
	tr := newTestRouter(t)
	tr.auction.EXPECT().AcceptConversation(gomock.Any(), gomock.Any(), tr.userID).Return(nil, apperror.ErrNotDelivered())

	w := tr.do(http.MethodPost, "/api/v1/conversations/"+uuid.NewString()+"/open", "user", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AUCTION_007", errorCode(t, w))
}

func TestReply(t *testing.T) {
	tr := newTestRouter(t)
	convID := uuid.New()
	tr.auction.EXPECT().PostReply(gomock.Any(), convID, tr.userID).Return(&domain.Conversation{
		ID:        convID,
		BidStatus: domain.BidAccepted,
	}, nil)

	w := tr.do(http.MethodPost, "/api/v1/conversations/"+convID.String()+"/replies", "user", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReply_IntegrityFailureHidesReference(t *testing.T) {
	tr := newTestRouter(t)
	tr.auction.EXPECT().PostReply(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrSignatureMismatch("conversation:1234"))

	w := tr.do(http.MethodPost, "/api/v1/conversations/"+uuid.NewString()+"/replies", "user", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTEGRITY_001", errorCode(t, w))
	assert.NotContains(t, w.Body.String(), "conversation:1234")
}

// --- Accounts ---

func TestOpenAccount(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().OpenAccount(gomock.Any(), tr.userID).Return(&domain.TokenAccount{
		ID:        uuid.New(),
		UserID:    tr.userID,
		CreatedAt: testNow,
	}, nil)

	w := tr.do(http.MethodPost, "/api/v1/accounts/me", "user", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.00000000", decodeData(t, w)["confirmed"])
}

func TestGetBalance(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().GetBalance(gomock.Any(), tr.userID).Return(&ports.Balance{
		Confirmed:   money.MustParse("12.5"),
		Unconfirmed: money.Zero,
	}, nil)

	w := tr.do(http.MethodGet, "/api/v1/accounts/me/balance", "user", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "12.50000000", data["confirmed"])
	assert.Equal(t, "0.00000000", data["unconfirmed"])
}

func TestGetBalance_NotFound(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().GetBalance(gomock.Any(), tr.userID).Return(nil, apperror.ErrAccountNotFound())

	w := tr.do(http.MethodGet, "/api/v1/accounts/me/balance", "user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListJournal(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().ListJournal(gomock.Any(), tr.userID, 10).Return([]*domain.JournalEntry{
		{ID: uuid.New(), Kind: domain.JournalBridgeIn, TargetID: tr.userID, Amount: money.MustParse("1"), Net: money.MustParse("1"), ExternalTxID: "0xabc"},
	}, nil)

	w := tr.do(http.MethodGet, "/api/v1/accounts/me/journal?limit=10", "user", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	entries := decodeData(t, w)["entries"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "0xabc", entries[0].(map[string]interface{})["external_txid"])
}

func TestListJournal_BadLimit(t *testing.T) {
	tr := newTestRouter(t)
	w := tr.do(http.MethodGet, "/api/v1/accounts/me/journal?limit=-3", "user", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweep(t *testing.T) {
	tr := newTestRouter(t)
	gomock.InOrder(
		tr.ledger.EXPECT().CreditDeposit(gomock.Any(), tr.userID).Return(nil, nil),
		tr.ledger.EXPECT().CreditDeposit(gomock.Any(), tr.userID).Return(&domain.JournalEntry{
			ID: uuid.New(), Kind: domain.JournalBridgeIn, TargetID: tr.userID, Amount: money.MustParse("3"), Net: money.MustParse("3"),
		}, nil),
	)

	w := tr.do(http.MethodPost, "/api/v1/accounts/me/deposits/sweep", "user", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeData(t, w)["credited"])

	w = tr.do(http.MethodPost, "/api/v1/accounts/me/deposits/sweep", "user", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["credited"])
	assert.Equal(t, "3.00000000", data["entry"].(map[string]interface{})["net"])
}

func TestWithdraw(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().Withdraw(gomock.Any(), ports.WithdrawRequest{
		UserID:      tr.userID,
		Amount:      money.MustParse("4"),
		DestAddress: "qc1dest",
	}).Return(&domain.JournalEntry{ID: uuid.New(), Kind: domain.JournalBridgeOut, SourceID: tr.userID, Amount: money.MustParse("4")}, nil)

	w := tr.do(http.MethodPost, "/api/v1/accounts/me/withdrawals", "user", map[string]string{
		"amount":       "4",
		"dest_address": "qc1dest",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "BRIDGE_OUT", decodeData(t, w)["kind"])
}

func TestWithdraw_BridgeFailure(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().Withdraw(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrBridgeFailure(errors.New("rpc down")))

	w := tr.do(http.MethodPost, "/api/v1/accounts/me/withdrawals", "user", map[string]string{
		"amount":       "4",
		"dest_address": "qc1dest",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "SYS_004", errorCode(t, w))
}

// --- Settings ---

func TestUpdateDailyLimit(t *testing.T) {
	tr := newTestRouter(t)
	tr.auction.EXPECT().UpdateDailyLimit(gomock.Any(), tr.userID, 2).Return(&domain.IntroSettings{
		UserID:         tr.userID,
		MaxDailyIntros: 2,
		NextCheck:      testNow.Add(24 * time.Hour),
		LastCheck:      testNow,
	}, nil)

	w := tr.do(http.MethodPut, "/api/v1/intro-settings/daily-limit", "user", map[string]int{"limit": 2})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeData(t, w)["max_daily_intros"])
}

func TestUpdateDailyLimit_OutOfRange(t *testing.T) {
	tr := newTestRouter(t)
	tr.auction.EXPECT().UpdateDailyLimit(gomock.Any(), tr.userID, 0).Return(nil, apperror.ErrInvalidDailyLimit())

	w := tr.do(http.MethodPut, "/api/v1/intro-settings/daily-limit", "user", map[string]int{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUCTION_003", errorCode(t, w))
}

// --- Admin ---

func TestRunReaper_RequiresRoot(t *testing.T) {
	tr := newTestRouter(t)
	w := tr.do(http.MethodPost, "/api/v1/admin/reaper/run", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRunReaper_DefaultBatch(t *testing.T) {
	tr := newTestRouter(t)
	tr.reaper.EXPECT().RunCycle(gomock.Any(), 500).Return(&ports.ReaperStats{
		Resolved:      3,
		Won:           1,
		Lost:          1,
		TimedOut:      1,
		RefundedTotal: money.MustParse("2"),
		SettledTotal:  money.MustParse("1.5"),
	}, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/reaper/run", "root", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(3), data["resolved"])
	assert.Equal(t, "2.00000000", data["refunded_total"])
}

func TestRunReaper_ExplicitBatch(t *testing.T) {
	tr := newTestRouter(t)
	tr.reaper.EXPECT().RunCycle(gomock.Any(), 25).Return(&ports.ReaperStats{}, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/reaper/run", "root", map[string]int{"max_recipients": 25})
	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Health & metrics ---

func TestHealthCheck(t *testing.T) {
	tr := newTestRouter(t)
	gomock.InOrder(
		tr.health.EXPECT().Ping(gomock.Any()).Return(nil),
		tr.health.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")),
	)
	tr.health.EXPECT().Name().Return("postgresql").AnyTimes()

	w := tr.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	w = tr.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	tr := newTestRouter(t)
	tr.do(http.MethodGet, "/api/v1/accounts/me/balance", "", nil)

	w := tr.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "intro_http_requests_total")
}
