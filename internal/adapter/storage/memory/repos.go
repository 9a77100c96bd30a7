package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"intro-auction/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct{ s *Store }

// IntroSettingsRepo implements ports.IntroSettingsRepository.
type IntroSettingsRepo struct{ s *Store }

// ConversationRepo implements ports.ConversationRepository.
type ConversationRepo struct{ s *Store }

// JournalRepo implements ports.JournalRepository.
type JournalRepo struct{ s *Store }

func NewAccountRepo(s *Store) *AccountRepo             { return &AccountRepo{s: s} }
func NewIntroSettingsRepo(s *Store) *IntroSettingsRepo { return &IntroSettingsRepo{s: s} }
func NewConversationRepo(s *Store) *ConversationRepo   { return &ConversationRepo{s: s} }
func NewJournalRepo(s *Store) *JournalRepo             { return &JournalRepo{s: s} }

// ==================== accounts ====================

func (r *AccountRepo) Create(_ context.Context, _ pgx.Tx, a *domain.TokenAccount) error {
	if err := r.s.fault("accounts.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.UserID]; ok {
		return fmt.Errorf("insert token account: duplicate user %s", a.UserID)
	}
	r.s.accounts[a.UserID] = cloneAccount(a)
	return nil
}

func (r *AccountRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.TokenAccount, error) {
	if err := r.s.fault("accounts.GetByUserID"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[userID]
	if !ok {
		return nil, nil
	}
	return cloneAccount(a), nil
}

func (r *AccountRepo) LockByUserIDs(_ context.Context, _ pgx.Tx, userIDs []uuid.UUID) ([]*domain.TokenAccount, error) {
	if err := r.s.fault("accounts.LockByUserIDs"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := append([]uuid.UUID(nil), userIDs...)
	domain.SortIDs(ids)
	var out []*domain.TokenAccount
	for _, id := range ids {
		if a, ok := r.s.accounts[id]; ok {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

func (r *AccountRepo) Update(_ context.Context, _ pgx.Tx, a *domain.TokenAccount) error {
	if err := r.s.fault("accounts.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.UserID]; !ok {
		return fmt.Errorf("token account not found: %s", a.ID)
	}
	r.s.accounts[a.UserID] = cloneAccount(a)
	return nil
}

// ==================== intro settings ====================

func (r *IntroSettingsRepo) Create(_ context.Context, _ pgx.Tx, s *domain.IntroSettings) error {
	if err := r.s.fault("intro_settings.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.settings[s.UserID]; ok {
		return fmt.Errorf("insert intro settings: duplicate user %s", s.UserID)
	}
	r.s.settings[s.UserID] = cloneSettings(s)
	return nil
}

func (r *IntroSettingsRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.IntroSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.settings[userID]
	if !ok {
		return nil, nil
	}
	return cloneSettings(s), nil
}

func (r *IntroSettingsRepo) LockByUserIDs(_ context.Context, _ pgx.Tx, userIDs []uuid.UUID) ([]*domain.IntroSettings, error) {
	if err := r.s.fault("intro_settings.LockByUserIDs"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := append([]uuid.UUID(nil), userIDs...)
	domain.SortIDs(ids)
	var out []*domain.IntroSettings
	for _, id := range ids {
		if s, ok := r.s.settings[id]; ok {
			out = append(out, cloneSettings(s))
		}
	}
	return out, nil
}

func (r *IntroSettingsRepo) LockNextDue(_ context.Context, _ pgx.Tx, now time.Time, exclude []uuid.UUID) (*domain.IntroSettings, error) {
	if err := r.s.fault("intro_settings.LockNextDue"); err != nil {
		return nil, err
	}
	skip := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var due []*domain.IntroSettings
	for id, s := range r.s.settings {
		if !skip[id] && s.IsDue(now) {
			due = append(due, s)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextCheck.Equal(due[j].NextCheck) {
			return due[i].NextCheck.Before(due[j].NextCheck)
		}
		return due[i].UserID.String() < due[j].UserID.String()
	})
	return cloneSettings(due[0]), nil
}

func (r *IntroSettingsRepo) Update(_ context.Context, _ pgx.Tx, s *domain.IntroSettings) error {
	if err := r.s.fault("intro_settings.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.settings[s.UserID]; !ok {
		return fmt.Errorf("intro settings not found: %s", s.UserID)
	}
	r.s.settings[s.UserID] = cloneSettings(s)
	return nil
}

// ==================== conversations ====================

func (r *ConversationRepo) Create(_ context.Context, _ pgx.Tx, c *domain.Conversation) error {
	if err := r.s.fault("conversations.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lo, hi := domain.PairKey(c.SenderID, c.RecipientID)
	for _, existing := range r.s.conversations {
		elo, ehi := domain.PairKey(existing.SenderID, existing.RecipientID)
		if elo == lo && ehi == hi {
			return fmt.Errorf("insert conversation: %w", domain.ErrDuplicatePair)
		}
	}
	r.s.conversations[c.ID] = cloneConversation(c)
	return nil
}

func (r *ConversationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	if err := r.s.fault("conversations.GetByID"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return nil, nil
	}
	return cloneConversation(c), nil
}

func (r *ConversationRepo) LockByID(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Conversation, error) {
	if err := r.s.fault("conversations.LockByID"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ConversationRepo) LockByPair(_ context.Context, _ pgx.Tx, a, b uuid.UUID) (*domain.Conversation, error) {
	if err := r.s.fault("conversations.LockByPair"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lo, hi := domain.PairKey(a, b)
	for _, c := range r.s.conversations {
		clo, chi := domain.PairKey(c.SenderID, c.RecipientID)
		if clo == lo && chi == hi {
			return cloneConversation(c), nil
		}
	}
	return nil, nil
}

func (r *ConversationRepo) LockByRecipient(_ context.Context, _ pgx.Tx, recipientID uuid.UUID, statuses []domain.BidStatus) ([]*domain.Conversation, error) {
	if err := r.s.fault("conversations.LockByRecipient"); err != nil {
		return nil, err
	}
	want := make(map[domain.BidStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Conversation
	for _, c := range r.s.conversations {
		if c.RecipientID == recipientID && want[c.BidStatus] {
			out = append(out, cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *ConversationRepo) Update(_ context.Context, _ pgx.Tx, c *domain.Conversation) error {
	if err := r.s.fault("conversations.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.conversations[c.ID]
	if !ok {
		return fmt.Errorf("conversation not found: %s", c.ID)
	}
	stored.BidStatus = c.BidStatus
	stored.SenderStatus = c.SenderStatus
	stored.RecipientStatus = c.RecipientStatus
	stored.LastMessageSender = c.LastMessageSender
	stored.LastUpdate = c.LastUpdate
	stored.Signature = append([]byte(nil), c.Signature...)
	return nil
}

// ==================== journal ====================

func (r *JournalRepo) Create(_ context.Context, _ pgx.Tx, e *domain.JournalEntry) error {
	if err := r.s.fault("journal.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ExternalTxID != "" {
		for _, have := range r.s.journal {
			if have.Kind == e.Kind && have.ExternalTxID == e.ExternalTxID {
				return fmt.Errorf("insert journal entry: %w", domain.ErrDuplicateExternalTx)
			}
		}
	}
	r.s.journal = append(r.s.journal, cloneEntry(e))
	return nil
}

func (r *JournalRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.JournalEntry
	for i := len(r.s.journal) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.s.journal[i]
		if e.SourceID == userID || e.TargetID == userID {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (r *JournalRepo) ExistsExternalTx(_ context.Context, _ pgx.Tx, kind domain.JournalKind, externalTxID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.journal {
		if e.Kind == kind && e.ExternalTxID == externalTxID {
			return true, nil
		}
	}
	return false, nil
}
