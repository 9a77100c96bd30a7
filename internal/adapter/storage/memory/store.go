// Package memory is a single-process store with the same contracts as the
// postgres adapter. Transactions are serialized, so every lock is trivially
// held; rollback restores a snapshot taken at Begin.
package memory

import (
	"context"
	"sync"

	"intro-auction/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store holds all tables.
type Store struct {
	txMu sync.Mutex   // one transaction at a time
	mu   sync.RWMutex // guards the tables

	accounts      map[uuid.UUID]*domain.TokenAccount  // by user id
	settings      map[uuid.UUID]*domain.IntroSettings // by user id
	conversations map[uuid.UUID]*domain.Conversation
	journal       []*domain.JournalEntry

	faultMu sync.Mutex
	faults  map[string][]error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts:      make(map[uuid.UUID]*domain.TokenAccount),
		settings:      make(map[uuid.UUID]*domain.IntroSettings),
		conversations: make(map[uuid.UUID]*domain.Conversation),
		faults:        make(map[string][]error),
	}
}

// FailNext makes the next call of op return err. Ops are named
// "<table>.<Method>", e.g. "conversations.LockByRecipient".
func (s *Store) FailNext(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = append(s.faults[op], err)
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	queue := s.faults[op]
	if len(queue) == 0 {
		return nil
	}
	s.faults[op] = queue[1:]
	return queue[0]
}

// Begin starts a transaction, blocking until the previous one finishes.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := s.fault("tx.Begin"); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	if err := ctx.Err(); err != nil {
		s.txMu.Unlock()
		return nil, err
	}
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()
	return &Tx{store: s, snap: snap}, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Name returns the dependency name.
func (s *Store) Name() string { return "memory" }

// Accounts returns every account, for reconciliation.
func (s *Store) Accounts() []*domain.TokenAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TokenAccount, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, cloneAccount(a))
	}
	return out
}

// Conversations returns every conversation, for reconciliation.
func (s *Store) Conversations() []*domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, cloneConversation(c))
	}
	return out
}

// Journal returns every entry in insertion order.
func (s *Store) Journal() []*domain.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.JournalEntry, len(s.journal))
	for i, e := range s.journal {
		out[i] = cloneEntry(e)
	}
	return out
}

type snapshot struct {
	accounts      map[uuid.UUID]*domain.TokenAccount
	settings      map[uuid.UUID]*domain.IntroSettings
	conversations map[uuid.UUID]*domain.Conversation
	journalLen    int
}

// snapshot requires s.mu held. Journal entries are append-only, so its length suffices.
func (s *Store) snapshot() *snapshot {
	snap := &snapshot{
		accounts:      make(map[uuid.UUID]*domain.TokenAccount, len(s.accounts)),
		settings:      make(map[uuid.UUID]*domain.IntroSettings, len(s.settings)),
		conversations: make(map[uuid.UUID]*domain.Conversation, len(s.conversations)),
		journalLen:    len(s.journal),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = cloneAccount(v)
	}
	for k, v := range s.settings {
		snap.settings[k] = cloneSettings(v)
	}
	for k, v := range s.conversations {
		snap.conversations[k] = cloneConversation(v)
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snap.accounts
	s.settings = snap.settings
	s.conversations = snap.conversations
	s.journal = s.journal[:snap.journalLen]
}

// Tx is a memory transaction. Only Commit and Rollback are implemented;
// repositories never issue SQL through it.
type Tx struct {
	pgx.Tx
	store *Store
	snap  *snapshot
	done  bool
}

// Commit keeps the changes and releases the store.
func (t *Tx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	if err := t.store.fault("tx.Commit"); err != nil {
		t.store.restore(t.snap)
		t.finish()
		return err
	}
	t.finish()
	return nil
}

// Rollback discards the changes. Calling it after Commit is a no-op returning ErrTxClosed.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.restore(t.snap)
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.store.txMu.Unlock()
}

func cloneAccount(a *domain.TokenAccount) *domain.TokenAccount {
	c := *a
	c.Signature = append([]byte(nil), a.Signature...)
	return &c
}

func cloneSettings(s *domain.IntroSettings) *domain.IntroSettings {
	c := *s
	return &c
}

func cloneConversation(v *domain.Conversation) *domain.Conversation {
	c := *v
	c.Signature = append([]byte(nil), v.Signature...)
	return &c
}

func cloneEntry(e *domain.JournalEntry) *domain.JournalEntry {
	c := *e
	c.Signature = append([]byte(nil), e.Signature...)
	if e.ConversationID != nil {
		id := *e.ConversationID
		c.ConversationID = &id
	}
	return &c
}
