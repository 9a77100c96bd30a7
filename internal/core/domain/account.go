package domain

import (
	"time"

	"intro-auction/pkg/money"

	"github.com/google/uuid"
)

// TokenAccount holds a user's token balance. Rows are locked by the caller
// before any Adjust call; the type itself does not lock.
type TokenAccount struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Confirmed   money.Money `json:"confirmed_balance"`
	Unconfirmed money.Money `json:"unconfirmed_balance"`
	Revision    uint64      `json:"revision"`
	Signature   []byte      `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewTokenAccount returns a signed, empty account for userID.
func NewTokenAccount(userID uuid.UUID, now time.Time, signer RecordSigner) *TokenAccount {
	a := &TokenAccount{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	Seal(a, signer)
	return a
}

// AdjustConfirmed applies delta to the confirmed balance. A result below zero
// fails with money.ErrWouldBeNegative and leaves the account unchanged.
func (a *TokenAccount) AdjustConfirmed(delta money.Money, now time.Time, signer RecordSigner) error {
	next, err := a.Confirmed.CheckedAdd(delta)
	if err != nil {
		return err
	}
	if next.IsNegative() {
		return money.ErrWouldBeNegative
	}
	a.Confirmed = next
	a.touch(now, signer)
	return nil
}

// AdjustUnconfirmed applies delta to the unconfirmed balance, which may go negative.
func (a *TokenAccount) AdjustUnconfirmed(delta money.Money, now time.Time, signer RecordSigner) error {
	next, err := a.Unconfirmed.CheckedAdd(delta)
	if err != nil {
		return err
	}
	a.Unconfirmed = next
	a.touch(now, signer)
	return nil
}

func (a *TokenAccount) touch(now time.Time, signer RecordSigner) {
	a.Revision++
	a.UpdatedAt = now
	Seal(a, signer)
}

func (a *TokenAccount) CanonicalBytes() []byte {
	return newCanonical("token_account").
		id(a.ID).
		id(a.UserID).
		amount(a.Confirmed).
		amount(a.Unconfirmed).
		uint(a.Revision).
		at(a.UpdatedAt).
		bytes()
}

func (a *TokenAccount) SetSignature(sig []byte) { a.Signature = sig }
func (a *TokenAccount) RecordSignature() []byte { return a.Signature }
func (a *TokenAccount) RecordRef() string       { return "token_account:" + a.ID.String() }
