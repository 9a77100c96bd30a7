package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"intro-auction/internal/adapter/storage/memory"
	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	if assert.True(t, errors.As(err, &appErr), "expected AppError, got %v", err) {
		assert.Equal(t, expectedCode, appErr.Code)
	}
}

func testSigner(t *testing.T) *Blake2bRecordSigner {
	t.Helper()
	signer, err := NewBlake2bRecordSigner([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return signer
}

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a settable ports.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingSink collects notifications in order.
type recordingSink struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (r *recordingSink) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingSink) kinds(userID uuid.UUID) []domain.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NotificationKind
	for _, n := range r.notes {
		if n.UserID == userID {
			out = append(out, n.Kind)
		}
	}
	return out
}

// fakeBridge is an in-process ports.OnChainBridge.
type fakeBridge struct {
	mu       sync.Mutex
	pending  map[uuid.UUID]*ports.BridgeReceipt
	sendErr  error
	sent     []money.Money
	sentRefs []string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{pending: make(map[uuid.UUID]*ports.BridgeReceipt)}
}

func (b *fakeBridge) deposit(userID uuid.UUID, txid string, amount money.Money) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[userID] = &ports.BridgeReceipt{ExternalTxID: txid, Amount: amount}
}

func (b *fakeBridge) Sweep(_ context.Context, userID uuid.UUID) (*ports.BridgeReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[userID], nil
}

func (b *fakeBridge) Send(_ context.Context, reference, _ string, amount money.Money) (*ports.BridgeReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return nil, b.sendErr
	}
	b.sent = append(b.sent, amount)
	b.sentRefs = append(b.sentRefs, reference)
	return &ports.BridgeReceipt{ExternalTxID: reference, Amount: amount}, nil
}

// testEnv wires the services to one in-memory store.
type testEnv struct {
	store   *memory.Store
	clock   *fakeClock
	sink    *recordingSink
	bridge  *fakeBridge
	signer  *Blake2bRecordSigner
	ledger  *LedgerServiceImpl
	auction *AuctionServiceImpl
	reaper  *ReaperServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	clock := &fakeClock{now: testStart}
	sink := &recordingSink{}
	bridge := newFakeBridge()
	signer := testSigner(t)
	log := newTestLogger()

	accounts := memory.NewAccountRepo(store)
	settings := memory.NewIntroSettingsRepo(store)
	convs := memory.NewConversationRepo(store)
	journal := memory.NewJournalRepo(store)

	env := &testEnv{store: store, clock: clock, sink: sink, bridge: bridge, signer: signer}
	env.ledger = NewLedgerService(accounts, settings, journal, bridge, signer, clock, store, LedgerConfig{
		InboundFee:  decimal.Zero,
		OutboundFee: decimal.NewFromInt(1),
		DailyIntros: domain.DefaultDailyIntros,
		Cycle:       24 * time.Hour,
	}, log)
	env.auction = NewAuctionService(convs, settings, accounts, journal, nil, sink, signer, clock, store, AuctionPolicy{
		FeePercent:     decimal.NewFromInt(25),
		BiddingEnabled: true,
	}, log)
	env.reaper = NewReaperService(convs, settings, accounts, journal, sink, signer, clock, store, ReaperPolicy{
		Cycle:  24 * time.Hour,
		Jitter: 3 * time.Hour,
	}, log)
	env.reaper.jitter = func() time.Duration { return 0 }
	return env
}

// user opens an account funded with amount through a deposit sweep.
func (e *testEnv) user(t *testing.T, amount string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := e.ledger.OpenAccount(context.Background(), id)
	require.NoError(t, err)
	if amount != "0" {
		e.bridge.deposit(id, "seed-"+id.String(), money.MustParse(amount))
		_, err = e.ledger.CreditDeposit(context.Background(), id)
		require.NoError(t, err)
	}
	return id
}

func (e *testEnv) balance(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	b, err := e.ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b.Confirmed.String()
}

func (e *testEnv) conversation(t *testing.T, id uuid.UUID) *domain.Conversation {
	t.Helper()
	for _, c := range e.store.Conversations() {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("conversation %s not found", id)
	return nil
}

func (e *testEnv) bid(t *testing.T, sender, recipient uuid.UUID, price string) *domain.CreateConversationResult {
	t.Helper()
	res, err := e.auction.CreateConversation(context.Background(), ports.CreateConversationRequest{
		SenderID:    sender,
		RecipientID: recipient,
		BidPrice:    money.MustParse(price),
	})
	require.NoError(t, err)
	return res
}

// makeDue moves the clock past every recipient's next check.
func (e *testEnv) makeDue() {
	e.clock.Advance(24*time.Hour + time.Minute)
}

// total is confirmed balances plus the escrow held by open bids.
func (e *testEnv) total(t *testing.T) money.Money {
	t.Helper()
	sum := money.Zero
	var err error
	for _, a := range e.store.Accounts() {
		sum, err = sum.CheckedAdd(a.Confirmed)
		require.NoError(t, err)
	}
	for _, c := range e.store.Conversations() {
		if c.BidStatus.HoldsEscrow() {
			sum, err = sum.CheckedAdd(c.BidPrice)
			require.NoError(t, err)
		}
	}
	return sum
}

// fees is what settlements withheld from recipients.
func (e *testEnv) fees(t *testing.T) money.Money {
	t.Helper()
	sum := money.Zero
	var err error
	for _, j := range e.store.Journal() {
		if j.Kind == domain.JournalUserToUser {
			sum, err = sum.CheckedAdd(j.Fee)
			require.NoError(t, err)
		}
	}
	return sum
}

// tamperAccount rewrites the stored balance without re-signing.
func (e *testEnv) tamperAccount(t *testing.T, userID uuid.UUID, confirmed string) {
	t.Helper()
	ctx := context.Background()
	tx, err := e.store.Begin(ctx)
	require.NoError(t, err)
	repo := memory.NewAccountRepo(e.store)
	rows, err := repo.LockByUserIDs(ctx, tx, []uuid.UUID{userID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	rows[0].Confirmed = money.MustParse(confirmed)
	require.NoError(t, repo.Update(ctx, tx, rows[0]))
	require.NoError(t, tx.Commit(ctx))
}

// tamperConversationStatus rewrites the stored bid status without re-signing.
func (e *testEnv) tamperConversationStatus(t *testing.T, id uuid.UUID, status domain.BidStatus) {
	t.Helper()
	ctx := context.Background()
	tx, err := e.store.Begin(ctx)
	require.NoError(t, err)
	repo := memory.NewConversationRepo(e.store)
	conv, err := repo.LockByID(ctx, tx, id)
	require.NoError(t, err)
	require.NotNil(t, conv)
	conv.BidStatus = status
	require.NoError(t, repo.Update(ctx, tx, conv))
	require.NoError(t, tx.Commit(ctx))
}
