package domain

import (
	"errors"
	"time"

	"intro-auction/pkg/money"

	"github.com/google/uuid"
)

// JournalKind distinguishes the three settlement event shapes.
type JournalKind string

const (
	JournalUserToUser JournalKind = "USER_TO_USER"
	JournalBridgeIn   JournalKind = "BRIDGE_IN"
	JournalBridgeOut  JournalKind = "BRIDGE_OUT"
)

// TransferReason says why tokens moved between two users.
type TransferReason string

const (
	ReasonSettlement TransferReason = "SETTLEMENT"
	ReasonRefund     TransferReason = "REFUND"
)

var (
	// ErrUnbalancedEntry is returned when amount != fee + net or a part is negative.
	ErrUnbalancedEntry = errors.New("journal entry does not balance")
	// ErrDuplicateExternalTx is returned by storage when a bridge txid was already journaled.
	ErrDuplicateExternalTx = errors.New("external transaction already journaled")
)

// JournalEntry is an immutable, signed record of one transfer.
//
//	USER_TO_USER: SourceID -> TargetID, optional ConversationID and Reason
//	BRIDGE_IN:    TargetID receives an external deposit (ExternalTxID)
//	BRIDGE_OUT:   SourceID sends to DestAddress (ExternalTxID)
type JournalEntry struct {
	ID             uuid.UUID      `json:"id"`
	Kind           JournalKind    `json:"kind"`
	SourceID       uuid.UUID      `json:"source_id"`
	TargetID       uuid.UUID      `json:"target_id"`
	Amount         money.Money    `json:"amount"`
	Fee            money.Money    `json:"fee"`
	Net            money.Money    `json:"net"`
	ConversationID *uuid.UUID     `json:"conversation_id,omitempty"`
	Reason         TransferReason `json:"reason,omitempty"`
	DestAddress    string         `json:"dest_address,omitempty"`
	ExternalTxID   string         `json:"external_txid,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	Signature      []byte         `json:"-"`
}

// NewUserTransfer records tokens moving from source to target.
func NewUserTransfer(source, target uuid.UUID, amount, fee money.Money, conversationID uuid.UUID, reason TransferReason, now time.Time, signer RecordSigner) (*JournalEntry, error) {
	net, err := splitAmount(amount, fee)
	if err != nil {
		return nil, err
	}
	convID := conversationID
	e := &JournalEntry{
		ID:             uuid.New(),
		Kind:           JournalUserToUser,
		SourceID:       source,
		TargetID:       target,
		Amount:         amount,
		Fee:            fee,
		Net:            net,
		ConversationID: &convID,
		Reason:         reason,
		CreatedAt:      now,
	}
	Seal(e, signer)
	return e, nil
}

// NewBridgeIn records an external deposit credited to user.
func NewBridgeIn(user uuid.UUID, amount, fee money.Money, externalTxID string, now time.Time, signer RecordSigner) (*JournalEntry, error) {
	net, err := splitAmount(amount, fee)
	if err != nil {
		return nil, err
	}
	e := &JournalEntry{
		ID:           uuid.New(),
		Kind:         JournalBridgeIn,
		TargetID:     user,
		Amount:       amount,
		Fee:          fee,
		Net:          net,
		ExternalTxID: externalTxID,
		CreatedAt:    now,
	}
	Seal(e, signer)
	return e, nil
}

// NewBridgeOut records a withdrawal debited from user.
func NewBridgeOut(user uuid.UUID, amount, fee money.Money, destAddress, externalTxID string, now time.Time, signer RecordSigner) (*JournalEntry, error) {
	net, err := splitAmount(amount, fee)
	if err != nil {
		return nil, err
	}
	e := &JournalEntry{
		ID:           uuid.New(),
		Kind:         JournalBridgeOut,
		SourceID:     user,
		Amount:       amount,
		Fee:          fee,
		Net:          net,
		DestAddress:  destAddress,
		ExternalTxID: externalTxID,
		CreatedAt:    now,
	}
	Seal(e, signer)
	return e, nil
}

func splitAmount(amount, fee money.Money) (money.Money, error) {
	if amount.IsNegative() || fee.IsNegative() {
		return money.Zero, ErrUnbalancedEntry
	}
	net, err := amount.CheckedSub(fee)
	if err != nil {
		return money.Zero, err
	}
	if net.IsNegative() {
		return money.Zero, ErrUnbalancedEntry
	}
	return net, nil
}

// UserID returns the account owner for bridge entries.
func (e *JournalEntry) UserID() uuid.UUID {
	if e.Kind == JournalBridgeIn {
		return e.TargetID
	}
	return e.SourceID
}

func (e *JournalEntry) CanonicalBytes() []byte {
	return newCanonical("journal_entry").
		id(e.ID).
		text(string(e.Kind)).
		id(e.SourceID).
		id(e.TargetID).
		amount(e.Amount).
		amount(e.Fee).
		amount(e.Net).
		optID(e.ConversationID).
		text(string(e.Reason)).
		text(e.DestAddress).
		text(e.ExternalTxID).
		at(e.CreatedAt).
		bytes()
}

func (e *JournalEntry) SetSignature(sig []byte) { e.Signature = sig }
func (e *JournalEntry) RecordSignature() []byte { return e.Signature }
func (e *JournalEntry) RecordRef() string       { return "journal_entry:" + e.ID.String() }
