package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"intro-auction/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(requestID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if requestID != "" {
		c.Set(CtxRequestID, requestID)
	}
	return c, w
}

func TestSuccessEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		write  func(*gin.Context, interface{})
		status int
	}{
		{"ok", OK, http.StatusOK},
		{"created", Created, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext("req-1")
			tt.write(c, map[string]string{"bid_status": "WON"})

			assert.Equal(t, tt.status, w.Code)
			var resp SuccessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "req-1", resp.RequestID)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Equal(t, map[string]interface{}{"bid_status": "WON"}, resp.Data)
		})
	}
}

func TestSuccessEnvelope_FreshRequestID(t *testing.T) {
	c, w := newContext("")
	OK(c, nil)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.RequestID, 36)
}

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"policy", apperror.ErrInsufficientBalance(), http.StatusPaymentRequired, "LEDGER_001", "Insufficient confirmed balance"},
		{"wrapped", fmt.Errorf("create: %w", apperror.ErrConversationExists()), http.StatusConflict, "AUCTION_001", apperror.ErrConversationExists().Message},
		{"integrity", apperror.ErrSignatureMismatch("token_account:42"), http.StatusInternalServerError, "INTEGRITY_001", integrityMessage},
		{"unknown", fmt.Errorf("something unexpected"), http.StatusInternalServerError, "SYS_000", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext("req-2")
			Error(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.ErrorCode)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, "req-2", resp.RequestID)
			assert.NotContains(t, w.Body.String(), "token_account")
		})
	}
}
