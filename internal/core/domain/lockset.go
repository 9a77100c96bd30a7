package domain

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// LockSet names the rows a transactional operation locks.
//
// Rows are acquired class by class: recipient auction rows (intro_settings),
// then conversations, then token accounts. Within a class rows are locked in
// ascending id order. No operation acquires a class after a later one, so the
// interactive path and the reaper can never wait on each other in a cycle.
//
// Conversation rows are always reached through their recipient's auction row,
// which the same transaction already holds.
type LockSet struct {
	auctions []uuid.UUID
	accounts []uuid.UUID
}

// LockAuctions adds recipient auction rows.
func (l *LockSet) LockAuctions(userIDs ...uuid.UUID) *LockSet {
	l.auctions = appendUnique(l.auctions, userIDs)
	return l
}

// LockAccounts adds token account rows, keyed by owner.
func (l *LockSet) LockAccounts(userIDs ...uuid.UUID) *LockSet {
	l.accounts = appendUnique(l.accounts, userIDs)
	return l
}

// Auctions returns the auction rows in acquisition order.
func (l *LockSet) Auctions() []uuid.UUID { return sortedIDs(l.auctions) }

// Accounts returns the account rows in acquisition order.
func (l *LockSet) Accounts() []uuid.UUID { return sortedIDs(l.accounts) }

func appendUnique(dst, ids []uuid.UUID) []uuid.UUID {
	for _, id := range ids {
		seen := false
		for _, have := range dst {
			if have == id {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, id)
		}
	}
	return dst
}

func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	SortIDs(out)
	return out
}

// SortIDs sorts ids ascending by their byte representation, which matches
// PostgreSQL's ordering of the uuid type.
func SortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}
