package domain

import (
	"time"

	"intro-auction/pkg/money"

	"github.com/google/uuid"
)

const (
	DefaultDailyIntros uint16 = 4
	MinDailyIntros     uint16 = 1
	MaxDailyIntros     uint16 = 9
)

// IntroSettings is a recipient's auction configuration. The row doubles as the
// recipient lock: every operation touching the recipient's auction locks it first.
type IntroSettings struct {
	UserID         uuid.UUID   `json:"user_id"`
	MinBid         money.Money `json:"min_bid"`
	MaxDailyIntros uint16      `json:"max_daily_intros"`
	NextCheck      time.Time   `json:"next_check"`
	LastCheck      time.Time   `json:"last_check"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewIntroSettings schedules the first auction check one cycle after now.
func NewIntroSettings(userID uuid.UUID, maxDaily uint16, now time.Time, cycle time.Duration) *IntroSettings {
	return &IntroSettings{
		UserID:         userID,
		MinBid:         money.Zero,
		MaxDailyIntros: maxDaily,
		NextCheck:      now.Add(cycle),
		LastCheck:      now,
		UpdatedAt:      now,
	}
}

// ValidDailyIntros reports whether n is an accepted daily limit.
func ValidDailyIntros(n int) bool {
	return n >= int(MinDailyIntros) && n <= int(MaxDailyIntros)
}

// IsDue reports whether the reaper should resolve this recipient at now.
func (s *IntroSettings) IsDue(now time.Time) bool {
	return !s.NextCheck.After(now)
}

// Reschedule records a resolved cycle and sets the next check.
func (s *IntroSettings) Reschedule(now time.Time, cycle, jitter time.Duration) {
	s.LastCheck = now
	s.NextCheck = now.Add(cycle + jitter)
	s.MinBid = money.Zero
	s.UpdatedAt = now
}

// HasFreeSlot reports whether a new intro is delivered straight away: fewer
// than MaxDailyIntros conversations were delivered this cycle or are bidding.
func (s *IntroSettings) HasFreeSlot(wonThisCycle, winning int) bool {
	return wonThisCycle+winning < int(s.MaxDailyIntros)
}

// WinningSlots is how many bids may hold WINNING at once.
func (s *IntroSettings) WinningSlots() int {
	return int(s.MaxDailyIntros)
}
