package domain

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"intro-auction/pkg/money"

	"github.com/google/uuid"
)

// BidStatus is the auction state of a conversation's bid.
type BidStatus string

const (
	BidWinning  BidStatus = "WINNING"
	BidLosing   BidStatus = "LOSING"
	BidWon      BidStatus = "WON"
	BidLost     BidStatus = "LOST"
	BidAccepted BidStatus = "ACCEPTED"
	BidTimedOut BidStatus = "TIMED_OUT"
)

// ReadStatus is a participant's unread-reply flag.
type ReadStatus string

const (
	ReadPending ReadStatus = "PENDING"
	ReadCurrent ReadStatus = "CURRENT"
)

var (
	// ErrInvalidTransition is returned for any edge outside the bid state machine.
	ErrInvalidTransition = errors.New("invalid bid status transition")
	// ErrDuplicatePair is returned by storage when the pair already has a conversation.
	ErrDuplicatePair = errors.New("conversation already exists for pair")
)

var bidTransitions = map[BidStatus][]BidStatus{
	BidWinning: {BidWon, BidLosing},
	BidLosing:  {BidLost},
	BidWon:     {BidAccepted, BidTimedOut},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s BidStatus) CanTransitionTo(next BidStatus) bool {
	for _, allowed := range bidTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true for states with no outgoing transition.
func (s BidStatus) IsTerminal() bool {
	return s == BidAccepted || s == BidLost || s == BidTimedOut
}

// HoldsEscrow returns true while the bid amount is held out of the sender's balance.
func (s BidStatus) HoldsEscrow() bool {
	return s == BidWinning || s == BidLosing || s == BidWon
}

// Conversation is a paid introduction from Sender to Recipient.
// Only one conversation may exist per unordered {Sender, Recipient} pair.
type Conversation struct {
	ID                uuid.UUID   `json:"id"`
	SenderID          uuid.UUID   `json:"sender_id"`
	RecipientID       uuid.UUID   `json:"recipient_id"`
	BidPrice          money.Money `json:"bid_price"`
	BidStatus         BidStatus   `json:"bid_status"`
	SenderStatus      ReadStatus  `json:"sender_status"`
	RecipientStatus   ReadStatus  `json:"recipient_status"`
	LastMessageSender uuid.UUID   `json:"last_message_sender"`
	CreatedAt         time.Time   `json:"created_at"`
	LastUpdate        time.Time   `json:"last_update"`
	Signature         []byte      `json:"-"`
}

// NewConversation builds a signed conversation in the given initial status.
func NewConversation(sender, recipient uuid.UUID, bid money.Money, status BidStatus, now time.Time, signer RecordSigner) (*Conversation, error) {
	if status != BidWon && status != BidWinning {
		return nil, fmt.Errorf("%w: initial status %s", ErrInvalidTransition, status)
	}
	c := &Conversation{
		ID:                uuid.New(),
		SenderID:          sender,
		RecipientID:       recipient,
		BidPrice:          bid,
		BidStatus:         status,
		SenderStatus:      ReadCurrent,
		RecipientStatus:   ReadPending,
		LastMessageSender: sender,
		CreatedAt:         now,
		LastUpdate:        now,
	}
	Seal(c, signer)
	return c, nil
}

// Transition moves the bid to next, rejecting edges outside the state machine,
// and reseals the record since the status is part of the signed bytes.
func (c *Conversation) Transition(next BidStatus, signer RecordSigner) error {
	if !c.BidStatus.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.BidStatus, next)
	}
	c.BidStatus = next
	Seal(c, signer)
	return nil
}

// IsParticipant reports whether userID is the sender or the recipient.
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return c.SenderID == userID || c.RecipientID == userID
}

// Counterpart returns the other participant.
func (c *Conversation) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.SenderID == userID {
		return c.RecipientID
	}
	return c.SenderID
}

// CanonicalBytes covers the fields that decide money moves. Read flags and
// last_update are left out.
func (c *Conversation) CanonicalBytes() []byte {
	return newCanonical("conversation").
		id(c.ID).
		at(c.CreatedAt).
		amount(c.BidPrice).
		id(c.SenderID).
		id(c.RecipientID).
		text(string(c.BidStatus)).
		bytes()
}

func (c *Conversation) SetSignature(sig []byte) { c.Signature = sig }
func (c *Conversation) RecordSignature() []byte { return c.Signature }
func (c *Conversation) RecordRef() string       { return "conversation:" + c.ID.String() }

// RankBids orders bids best first: price descending, then earliest created,
// then id for a total order.
func RankBids(convs []*Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i], convs[j]
		if cmp := a.BidPrice.Cmp(b.BidPrice); cmp != 0 {
			return cmp > 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
}

// PairKey returns the participants in ascending order.
func PairKey(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}
