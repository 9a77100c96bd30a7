package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/internal/metrics"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var reapStatuses = []domain.BidStatus{domain.BidWon, domain.BidLosing, domain.BidWinning}

// ReaperPolicy sets the auction cycle length and the per-recipient jitter bound.
type ReaperPolicy struct {
	Cycle  time.Duration
	Jitter time.Duration
}

// ReaperServiceImpl implements ports.ReaperService.
type ReaperServiceImpl struct {
	convRepo     ports.ConversationRepository
	settingsRepo ports.IntroSettingsRepository
	journalRepo  ports.JournalRepository
	notifier     ports.NotificationSink
	signer       domain.RecordSigner
	clock        ports.Clock
	transactor   ports.DBTransactor
	policy       ReaperPolicy
	accounts     accountLocker
	jitter       func() time.Duration
	log          zerolog.Logger
}

// NewReaperService creates a new ReaperServiceImpl.
func NewReaperService(
	convRepo ports.ConversationRepository,
	settingsRepo ports.IntroSettingsRepository,
	accountRepo ports.AccountRepository,
	journalRepo ports.JournalRepository,
	notifier ports.NotificationSink,
	signer domain.RecordSigner,
	clock ports.Clock,
	transactor ports.DBTransactor,
	policy ReaperPolicy,
	log zerolog.Logger,
) *ReaperServiceImpl {
	return &ReaperServiceImpl{
		convRepo:     convRepo,
		settingsRepo: settingsRepo,
		journalRepo:  journalRepo,
		notifier:     notifier,
		signer:       signer,
		clock:        clock,
		transactor:   transactor,
		policy:       policy,
		accounts:     accountLocker{repo: accountRepo, signer: signer, log: log},
		jitter:       uniformJitter(policy.Jitter),
		log:          log,
	}
}

// uniformJitter returns offsets drawn uniformly from [-bound, +bound].
func uniformJitter(bound time.Duration) func() time.Duration {
	return func() time.Duration {
		if bound <= 0 {
			return 0
		}
		return time.Duration(rand.Int64N(int64(2*bound)+1)) - bound
	}
}

// recipientOutcome is what resolving one recipient changed.
type recipientOutcome struct {
	recipient uuid.UUID
	won       int
	lost      int
	timedOut  int
	refunded  money.Money
	settled   money.Money
	notes     []domain.Notification
}

// RunCycle resolves up to maxRecipients due auctions, one transaction each.
// A recipient that fails is rolled back, counted and skipped for the rest of
// the call; the others still resolve.
func (s *ReaperServiceImpl) RunCycle(ctx context.Context, maxRecipients int) (*ports.ReaperStats, error) {
	if maxRecipients <= 0 {
		return nil, apperror.Validation("max_recipients must be positive")
	}

	start := time.Now()
	defer func() { metrics.RecordReaperCycle(time.Since(start).Seconds()) }()

	stats := &ports.ReaperStats{}
	var failed []uuid.UUID
	// Failed recipients are excluded for the rest of the batch and do not
	// count against the cap, so a run of broken rows cannot starve the ones
	// due behind them.
	for stats.Resolved < maxRecipients {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		out, err := s.resolveNext(ctx, failed)
		if err != nil {
			if out.recipient == uuid.Nil {
				// Nothing was picked, so there is no recipient to skip.
				return stats, err
			}
			stats.Failed++
			failed = append(failed, out.recipient)
			metrics.RecordReaperRecipient("failed")
			s.log.Error().Err(err).Str("recipient_id", out.recipient.String()).Msg("failed to resolve auction, skipping recipient")
			continue
		}
		if out.recipient == uuid.Nil {
			break
		}

		stats.Resolved++
		stats.Won += out.won
		stats.Lost += out.lost
		stats.TimedOut += out.timedOut
		stats.RefundedTotal = sumOrKeep(s.log, stats.RefundedTotal, out.refunded)
		stats.SettledTotal = sumOrKeep(s.log, stats.SettledTotal, out.settled)
		metrics.RecordReaperRecipient("resolved")
		metrics.RecordReaperTransitions(string(domain.BidWon), out.won)
		metrics.RecordReaperTransitions(string(domain.BidLost), out.lost)
		metrics.RecordReaperTransitions(string(domain.BidTimedOut), out.timedOut)
		dispatch(s.notifier, out.notes)
	}

	if stats.Resolved+stats.Failed > 0 {
		s.log.Info().
			Int("resolved", stats.Resolved).
			Int("failed", stats.Failed).
			Int("won", stats.Won).
			Int("lost", stats.Lost).
			Int("timed_out", stats.TimedOut).
			Str("refunded", stats.RefundedTotal.String()).
			Str("settled", stats.SettledTotal.String()).
			Msg("reaper cycle finished")
	}
	return stats, nil
}

// resolveNext locks the oldest due recipient not in exclude and closes its
// cycle. A zero recipient in the outcome means none was due, or that no row
// could be locked when err is set.
func (s *ReaperServiceImpl) resolveNext(ctx context.Context, exclude []uuid.UUID) (recipientOutcome, error) {
	var out recipientOutcome
	err := runInTx(ctx, s.transactor, s.log, "reaper_resolve", func(tx pgx.Tx) error {
		out = recipientOutcome{}
		now := txNow(s.clock)

		settings, err := s.settingsRepo.LockNextDue(ctx, tx, now, exclude)
		if err != nil {
			return fmt.Errorf("lock next due: %w", err)
		}
		if settings == nil {
			return nil
		}
		out.recipient = settings.UserID

		convs, err := s.convRepo.LockByRecipient(ctx, tx, settings.UserID, reapStatuses)
		if err != nil {
			return fmt.Errorf("lock conversations: %w", err)
		}
		for _, c := range convs {
			if err := verifyRecord(s.log, s.signer, c); err != nil {
				return err
			}
		}

		var refunds []*domain.Conversation
		for _, c := range convs {
			var next domain.BidStatus
			switch c.BidStatus {
			case domain.BidWon:
				next = domain.BidTimedOut
				out.timedOut++
				refunds = append(refunds, c)
				out.notes = append(out.notes, noteFor(domain.NotifyBidExpired, c.SenderID, c))
			case domain.BidLosing:
				next = domain.BidLost
				out.lost++
				refunds = append(refunds, c)
				out.notes = append(out.notes, noteFor(domain.NotifyBidLost, c.SenderID, c))
			case domain.BidWinning:
				next = domain.BidWon
				out.won++
				if out.settled, err = out.settled.CheckedAdd(c.BidPrice); err != nil {
					return moneyError(err)
				}
				out.notes = append(out.notes, noteFor(domain.NotifyBidWon, c.SenderID, c))
			}
			if err := c.Transition(next, s.signer); err != nil {
				return apperror.InternalError(err)
			}
			c.LastUpdate = now
			if err := s.convRepo.Update(ctx, tx, c); err != nil {
				return fmt.Errorf("update conversation: %w", err)
			}
		}

		if len(refunds) > 0 {
			senders := make([]uuid.UUID, 0, len(refunds))
			for _, c := range refunds {
				senders = append(senders, c.SenderID)
			}
			locked, err := s.accounts.lock(ctx, tx, senders...)
			if err != nil {
				return err
			}
			for _, c := range refunds {
				entry, err := domain.NewUserTransfer(c.RecipientID, c.SenderID, c.BidPrice, money.Zero, c.ID, domain.ReasonRefund, now, s.signer)
				if err != nil {
					return moneyError(err)
				}
				if err := s.accounts.adjust(ctx, tx, locked[c.SenderID], c.BidPrice, now); err != nil {
					return err
				}
				if err := s.journalRepo.Create(ctx, tx, entry); err != nil {
					return fmt.Errorf("create journal entry: %w", err)
				}
				if out.refunded, err = out.refunded.CheckedAdd(c.BidPrice); err != nil {
					return moneyError(err)
				}
			}
		}

		settings.Reschedule(now, s.policy.Cycle, s.jitter())
		if err := s.settingsRepo.Update(ctx, tx, settings); err != nil {
			return fmt.Errorf("update intro settings: %w", err)
		}
		return nil
	})
	return out, err
}

func sumOrKeep(log zerolog.Logger, total, add money.Money) money.Money {
	sum, err := total.CheckedAdd(add)
	if err != nil {
		log.Warn().Err(err).Msg("reaper stats total overflowed")
		return total
	}
	return sum
}
