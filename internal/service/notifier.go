package service

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/internal/metrics"

	"github.com/rs/zerolog"
)

// notifyRetryIntervals is the wait before each redelivery attempt.
var notifyRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NotifierConfig configures webhook delivery. An empty URL logs events instead.
type NotifierConfig struct {
	URL       string
	Secret    string
	Workers   int
	QueueSize int
}

// NotifyPayload is the JSON body posted to the notification webhook.
type NotifyPayload struct {
	EventType string              `json:"event_type"`
	Data      domain.Notification `json:"data"`
	Signature string              `json:"signature"`
}

// Notifier implements ports.NotificationSink. Events are sharded by user id so
// one user's events are delivered in order; a full shard drops the event.
type Notifier struct {
	cfg        NotifierConfig
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	retries    []time.Duration
	shards     []chan domain.Notification
	log        zerolog.Logger

	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier. Call Start before Notify.
func NewNotifier(cfg NotifierConfig, sigSvc ports.SignatureService, httpClient HTTPClient, log zerolog.Logger) *Notifier {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	shards := make([]chan domain.Notification, cfg.Workers)
	for i := range shards {
		shards[i] = make(chan domain.Notification, cfg.QueueSize)
	}
	return &Notifier{
		cfg:        cfg,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		retries:    notifyRetryIntervals,
		shards:     shards,
		log:        log,
	}
}

// Start launches one worker per shard.
func (n *Notifier) Start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)
	for _, ch := range n.shards {
		n.wg.Add(1)
		go n.work(ctx, ch)
	}
}

// Close stops accepting events, cancels in-flight deliveries and waits for
// the workers to exit. Events still queued are abandoned.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	for _, ch := range n.shards {
		close(ch)
	}
	n.mu.Unlock()

	if n.cancel != nil {
		n.cancel()
	}
	n.wg.Wait()
}

// Notify enqueues ev without blocking.
func (n *Notifier) Notify(ev domain.Notification) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		metrics.RecordNotification(string(ev.Kind), "dropped")
		return
	}

	select {
	case n.shards[n.shardFor(ev)] <- ev:
		metrics.NotificationQueueLength.Inc()
	default:
		metrics.RecordNotification(string(ev.Kind), "dropped")
		n.log.Warn().
			Str("kind", string(ev.Kind)).
			Str("user_id", ev.UserID.String()).
			Msg("notification queue full, dropping event")
	}
}

func (n *Notifier) shardFor(ev domain.Notification) int {
	h := fnv.New32a()
	h.Write(ev.UserID[:])
	return int(h.Sum32() % uint32(len(n.shards)))
}

func (n *Notifier) work(ctx context.Context, ch <-chan domain.Notification) {
	defer n.wg.Done()
	for ev := range ch {
		metrics.NotificationQueueLength.Dec()
		n.deliver(ctx, ev)
	}
}

func (n *Notifier) deliver(ctx context.Context, ev domain.Notification) {
	if n.cfg.URL == "" {
		metrics.RecordNotification(string(ev.Kind), "logged")
		n.log.Info().
			Str("kind", string(ev.Kind)).
			Str("user_id", ev.UserID.String()).
			Str("conversation_id", ev.ConversationID.String()).
			Msg("notification")
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		n.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("notify: failed to marshal event")
		return
	}
	body, err := json.Marshal(NotifyPayload{
		EventType: string(ev.Kind),
		Data:      ev,
		Signature: n.sigSvc.Sign(n.cfg.Secret, string(data)),
	})
	if err != nil {
		n.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("notify: failed to marshal payload")
		return
	}

	for attempt := 0; attempt <= len(n.retries); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				metrics.RecordNotification(string(ev.Kind), "abandoned")
				return
			case <-time.After(n.retries[attempt-1]):
			}
		}
		if n.post(ctx, body, ev, attempt+1) {
			metrics.RecordNotification(string(ev.Kind), "delivered")
			return
		}
	}

	metrics.RecordNotification(string(ev.Kind), "failed")
	n.log.Error().Str("kind", string(ev.Kind)).Str("user_id", ev.UserID.String()).Msg("notify: all retry attempts exhausted")
}

func (n *Notifier) post(ctx context.Context, body []byte, ev domain.Notification, attempt int) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Int("attempt", attempt).Msg("notify: failed to create request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("kind", string(ev.Kind)).Int("attempt", attempt).Msg("notify: delivery failed")
		return false
	}
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		n.log.Debug().Str("kind", string(ev.Kind)).Int("attempt", attempt).Msg("notify: delivered")
		return true
	}
	n.log.Warn().Str("kind", string(ev.Kind)).Int("attempt", attempt).Int("status", resp.StatusCode).Msg("notify: non-2xx response, retrying")
	return false
}
