// Package bridge talks to the on-chain bridge daemon over its JSON HTTP API.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"intro-auction/internal/core/ports"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPClient abstracts http.Client for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type sweepRequest struct {
	UserID string `json:"user_id"`
}

type sendRequest struct {
	Reference   string      `json:"reference"`
	DestAddress string      `json:"dest_address"`
	Amount      money.Money `json:"amount"`
}

type receipt struct {
	TxID   string      `json:"txid"`
	Amount money.Money `json:"amount"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client implements ports.OnChainBridge.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	log        zerolog.Logger
}

func NewClient(baseURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log.With().Str("component", "bridge").Logger(),
	}
}

// Sweep collects the user's pending deposit. A 204 means nothing is pending.
func (c *Client) Sweep(ctx context.Context, userID uuid.UUID) (*ports.BridgeReceipt, error) {
	r, err := c.post(ctx, "/v1/deposits/sweep", sweepRequest{UserID: userID.String()})
	if err != nil {
		return nil, fmt.Errorf("sweep deposit: %w", err)
	}
	if r == nil {
		return nil, nil
	}
	if !r.Amount.IsPositive() {
		return nil, fmt.Errorf("sweep deposit: non-positive amount %s in %s", r.Amount, r.TxID)
	}

	c.log.Info().
		Str("user_id", userID.String()).
		Str("external_txid", r.TxID).
		Str("amount", r.Amount.String()).
		Msg("deposit swept")
	return &ports.BridgeReceipt{ExternalTxID: r.TxID, Amount: r.Amount}, nil
}

// Send broadcasts a withdrawal. The daemon treats reference as an idempotency key,
// so resending a failed withdrawal with the same reference cannot pay twice.
func (c *Client) Send(ctx context.Context, reference, dest string, amount money.Money) (*ports.BridgeReceipt, error) {
	r, err := c.post(ctx, "/v1/withdrawals", sendRequest{Reference: reference, DestAddress: dest, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("send withdrawal %s: %w", reference, err)
	}
	if r == nil {
		return nil, fmt.Errorf("send withdrawal %s: empty response", reference)
	}
	return &ports.BridgeReceipt{ExternalTxID: r.TxID, Amount: r.Amount}, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*receipt, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			return nil, fmt.Errorf("bridge returned %d: %s", resp.StatusCode, eb.Error)
		}
		return nil, fmt.Errorf("bridge returned %d", resp.StatusCode)
	}

	var r receipt
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	if r.TxID == "" {
		return nil, fmt.Errorf("receipt without txid")
	}
	return &r, nil
}

// HealthCheck pings the bridge daemon.
type HealthCheck struct {
	baseURL    string
	httpClient HTTPClient
}

func NewHealthCheck(baseURL string, httpClient HTTPClient) *HealthCheck {
	return &HealthCheck{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge health returned %d", resp.StatusCode)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "bridge"
}
