package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/internal/metrics"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const idempotencyTTL = 24 * time.Hour

var activeStatuses = []domain.BidStatus{domain.BidWon, domain.BidWinning}

// AuctionPolicy carries the auction settings read from config.
type AuctionPolicy struct {
	FeePercent     decimal.Decimal
	BiddingEnabled bool
}

// AuctionServiceImpl implements ports.AuctionService.
type AuctionServiceImpl struct {
	convRepo     ports.ConversationRepository
	settingsRepo ports.IntroSettingsRepository
	journalRepo  ports.JournalRepository
	idempCache   ports.IdempotencyCache
	notifier     ports.NotificationSink
	signer       domain.RecordSigner
	clock        ports.Clock
	transactor   ports.DBTransactor
	policy       AuctionPolicy
	accounts     accountLocker
	log          zerolog.Logger
}

// NewAuctionService creates a new AuctionServiceImpl. idempCache may be nil.
func NewAuctionService(
	convRepo ports.ConversationRepository,
	settingsRepo ports.IntroSettingsRepository,
	accountRepo ports.AccountRepository,
	journalRepo ports.JournalRepository,
	idempCache ports.IdempotencyCache,
	notifier ports.NotificationSink,
	signer domain.RecordSigner,
	clock ports.Clock,
	transactor ports.DBTransactor,
	policy AuctionPolicy,
	log zerolog.Logger,
) *AuctionServiceImpl {
	return &AuctionServiceImpl{
		convRepo:     convRepo,
		settingsRepo: settingsRepo,
		journalRepo:  journalRepo,
		idempCache:   idempCache,
		notifier:     notifier,
		signer:       signer,
		clock:        clock,
		transactor:   transactor,
		policy:       policy,
		accounts:     accountLocker{repo: accountRepo, signer: signer, log: log},
		log:          log,
	}
}

// CreateConversation escrows the bid and places the conversation in the
// recipient's auction.
//
// Lock order: both participants' settings rows, the recipient's active
// conversations, then the sender's account.
func (s *AuctionServiceImpl) CreateConversation(ctx context.Context, req ports.CreateConversationRequest) (*domain.CreateConversationResult, error) {
	if req.SenderID == req.RecipientID {
		return nil, apperror.ErrSelfConversation()
	}
	if req.BidPrice.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}

	var idempKey string
	if req.IdempotencyKey != "" && s.idempCache != nil {
		idempKey = domain.BuildCreateIdempotencyKey(req.SenderID, req.IdempotencyKey)
		if cached := s.cachedResult(ctx, idempKey); cached != nil {
			return cached, nil
		}
	}

	var (
		conv      *domain.Conversation
		displaced []*domain.Conversation
	)
	err := runInTx(ctx, s.transactor, s.log, "create_conversation", func(tx pgx.Tx) error {
		conv, displaced = nil, nil
		now := txNow(s.clock)

		var ls domain.LockSet
		ls.LockAuctions(req.SenderID, req.RecipientID)
		settingsRows, err := s.settingsRepo.LockByUserIDs(ctx, tx, ls.Auctions())
		if err != nil {
			return fmt.Errorf("lock intro settings: %w", err)
		}
		settings := findSettings(settingsRows, req.RecipientID)
		if settings == nil || findSettings(settingsRows, req.SenderID) == nil {
			return apperror.ErrAccountNotFound()
		}

		existing, err := s.convRepo.LockByPair(ctx, tx, req.SenderID, req.RecipientID)
		if err != nil {
			return fmt.Errorf("lock pair: %w", err)
		}
		if existing != nil {
			return apperror.ErrConversationExists()
		}

		active, err := s.convRepo.LockByRecipient(ctx, tx, req.RecipientID, activeStatuses)
		if err != nil {
			return fmt.Errorf("lock active conversations: %w", err)
		}
		for _, c := range active {
			if err := verifyRecord(s.log, s.signer, c); err != nil {
				return err
			}
		}

		locked, err := s.accounts.lock(ctx, tx, req.SenderID)
		if err != nil {
			return err
		}
		sender := locked[req.SenderID]
		if sender.Confirmed.LessThan(req.BidPrice) {
			return apperror.ErrInsufficientBalance()
		}

		wonThisCycle, winning := splitActive(active, settings.LastCheck)
		status := domain.BidWon
		if s.policy.BiddingEnabled && !settings.HasFreeSlot(wonThisCycle, len(winning)) {
			status = domain.BidWinning
		}
		conv, err = domain.NewConversation(req.SenderID, req.RecipientID, req.BidPrice, status, now, s.signer)
		if err != nil {
			return err
		}

		if status == domain.BidWinning {
			ranked := append(append([]*domain.Conversation{}, winning...), conv)
			domain.RankBids(ranked)
			slots := min(settings.WinningSlots(), len(ranked))
			if !containsConversation(ranked[:slots], conv.ID) {
				return apperror.ErrBidTooLow()
			}
			displaced = ranked[slots:]
			for _, d := range displaced {
				if err := s.demote(ctx, tx, d, now); err != nil {
					return err
				}
			}
			settings.MinBid = lowestPrice(ranked[:slots])
			settings.UpdatedAt = now
			if err := s.settingsRepo.Update(ctx, tx, settings); err != nil {
				return fmt.Errorf("update intro settings: %w", err)
			}
		}

		debit, err := req.BidPrice.Neg()
		if err != nil {
			return moneyError(err)
		}
		if err := s.accounts.adjust(ctx, tx, sender, debit, now); err != nil {
			return err
		}

		if err := s.convRepo.Create(ctx, tx, conv); err != nil {
			if errors.Is(err, domain.ErrDuplicatePair) {
				return apperror.ErrConversationExists()
			}
			return fmt.Errorf("create conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordConversationCreated(string(conv.BidStatus))
	metrics.RecordBidsDisplaced(len(displaced))

	notes := make([]domain.Notification, 0, len(displaced)+1)
	if conv.BidStatus == domain.BidWon {
		notes = append(notes, noteFor(domain.NotifyIntroReceived, conv.RecipientID, conv))
	}
	for _, d := range displaced {
		notes = append(notes, noteFor(domain.NotifyBidLosing, d.SenderID, d))
	}
	dispatch(s.notifier, notes)

	result := &domain.CreateConversationResult{ConversationID: conv.ID, BidStatus: conv.BidStatus}
	if idempKey != "" {
		s.cacheResult(ctx, idempKey, result)
	}

	s.log.Info().
		Str("conversation_id", conv.ID.String()).
		Str("sender_id", req.SenderID.String()).
		Str("recipient_id", req.RecipientID.String()).
		Str("bid", req.BidPrice.String()).
		Str("status", string(conv.BidStatus)).
		Int("displaced", len(displaced)).
		Msg("conversation created")
	return result, nil
}

// AcceptConversation records the opener reading the conversation. The
// recipient's first open of a WON bid settles it.
func (s *AuctionServiceImpl) AcceptConversation(ctx context.Context, conversationID, openerID uuid.UUID) (*domain.Conversation, error) {
	recipientID, err := s.participantRecipient(ctx, conversationID, openerID)
	if err != nil {
		return nil, err
	}

	var (
		conv    *domain.Conversation
		settled *domain.JournalEntry
	)
	err = runInTx(ctx, s.transactor, s.log, "accept_conversation", func(tx pgx.Tx) error {
		settled = nil
		now := txNow(s.clock)

		var err error
		conv, err = s.lockConversation(ctx, tx, recipientID, conversationID)
		if err != nil {
			return err
		}

		if openerID == conv.SenderID {
			if conv.SenderStatus == domain.ReadCurrent {
				return nil
			}
			conv.SenderStatus = domain.ReadCurrent
			return s.updateConversation(ctx, tx, conv)
		}

		switch conv.BidStatus {
		case domain.BidWon:
		case domain.BidAccepted:
			if conv.RecipientStatus == domain.ReadCurrent {
				return nil
			}
			conv.RecipientStatus = domain.ReadCurrent
			return s.updateConversation(ctx, tx, conv)
		case domain.BidTimedOut:
			return nil
		default:
			return apperror.ErrNotDelivered()
		}

		fee, err := conv.BidPrice.Percent(s.policy.FeePercent)
		if err != nil {
			return moneyError(err)
		}
		settled, err = domain.NewUserTransfer(conv.SenderID, conv.RecipientID, conv.BidPrice, fee, conv.ID, domain.ReasonSettlement, now, s.signer)
		if err != nil {
			return moneyError(err)
		}
		locked, err := s.accounts.lock(ctx, tx, conv.RecipientID)
		if err != nil {
			return err
		}
		if err := s.accounts.adjust(ctx, tx, locked[conv.RecipientID], settled.Net, now); err != nil {
			return err
		}

		if err := conv.Transition(domain.BidAccepted, s.signer); err != nil {
			return apperror.InternalError(err)
		}
		conv.RecipientStatus = domain.ReadCurrent
		conv.LastUpdate = now
		if err := s.updateConversation(ctx, tx, conv); err != nil {
			return err
		}
		if err := s.journalRepo.Create(ctx, tx, settled); err != nil {
			return fmt.Errorf("create journal entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled != nil {
		metrics.RecordSettlement()
		dispatch(s.notifier, []domain.Notification{noteFor(domain.NotifyBidAccepted, conv.SenderID, conv)})
		s.log.Info().
			Str("conversation_id", conv.ID.String()).
			Str("amount", settled.Amount.String()).
			Str("fee", settled.Fee.String()).
			Str("net", settled.Net.String()).
			Msg("bid settled")
	}
	return conv, nil
}

// PostReply records a reply on an accepted conversation.
func (s *AuctionServiceImpl) PostReply(ctx context.Context, conversationID, authorID uuid.UUID) (*domain.Conversation, error) {
	recipientID, err := s.participantRecipient(ctx, conversationID, authorID)
	if err != nil {
		return nil, err
	}

	var conv *domain.Conversation
	err = runInTx(ctx, s.transactor, s.log, "post_reply", func(tx pgx.Tx) error {
		now := txNow(s.clock)

		var err error
		conv, err = s.lockConversation(ctx, tx, recipientID, conversationID)
		if err != nil {
			return err
		}
		if conv.BidStatus != domain.BidAccepted {
			return apperror.ErrConversationNotOpen()
		}

		conv.LastMessageSender = authorID
		conv.LastUpdate = now
		if authorID == conv.SenderID {
			conv.SenderStatus, conv.RecipientStatus = domain.ReadCurrent, domain.ReadPending
		} else {
			conv.RecipientStatus, conv.SenderStatus = domain.ReadCurrent, domain.ReadPending
		}
		return s.updateConversation(ctx, tx, conv)
	})
	if err != nil {
		return nil, err
	}

	dispatch(s.notifier, []domain.Notification{noteFor(domain.NotifyMessageNew, conv.Counterpart(authorID), conv)})
	return conv, nil
}

// UpdateDailyLimit changes how many intros the recipient takes per cycle.
// Lowering it demotes the WINNING bids that no longer fit.
func (s *AuctionServiceImpl) UpdateDailyLimit(ctx context.Context, recipientID uuid.UUID, limit int) (*domain.IntroSettings, error) {
	if !domain.ValidDailyIntros(limit) {
		return nil, apperror.ErrInvalidDailyLimit()
	}

	var (
		settings  *domain.IntroSettings
		displaced []*domain.Conversation
	)
	err := runInTx(ctx, s.transactor, s.log, "update_daily_limit", func(tx pgx.Tx) error {
		displaced = nil
		now := txNow(s.clock)

		rows, err := s.settingsRepo.LockByUserIDs(ctx, tx, []uuid.UUID{recipientID})
		if err != nil {
			return fmt.Errorf("lock intro settings: %w", err)
		}
		settings = findSettings(rows, recipientID)
		if settings == nil {
			return apperror.ErrAccountNotFound()
		}

		decreasing := limit < int(settings.MaxDailyIntros)
		settings.MaxDailyIntros = uint16(limit)
		settings.UpdatedAt = now

		if decreasing && s.policy.BiddingEnabled {
			active, err := s.convRepo.LockByRecipient(ctx, tx, recipientID, activeStatuses)
			if err != nil {
				return fmt.Errorf("lock active conversations: %w", err)
			}
			for _, c := range active {
				if err := verifyRecord(s.log, s.signer, c); err != nil {
					return err
				}
			}
			_, winning := splitActive(active, settings.LastCheck)
			slots := settings.WinningSlots()
			if len(winning) > slots {
				domain.RankBids(winning)
				displaced = winning[slots:]
				for _, d := range displaced {
					if err := s.demote(ctx, tx, d, now); err != nil {
						return err
					}
				}
				settings.MinBid = lowestPrice(winning[:slots])
			}
		}

		if err := s.settingsRepo.Update(ctx, tx, settings); err != nil {
			return fmt.Errorf("update intro settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBidsDisplaced(len(displaced))
	notes := make([]domain.Notification, 0, len(displaced))
	for _, d := range displaced {
		notes = append(notes, noteFor(domain.NotifyBidLosing, d.SenderID, d))
	}
	dispatch(s.notifier, notes)

	s.log.Info().
		Str("user_id", recipientID.String()).
		Int("max_daily_intros", limit).
		Int("displaced", len(displaced)).
		Msg("daily intro limit updated")
	return settings, nil
}

// participantRecipient reads the conversation unlocked to find which auction
// row to lock, and rejects non-participants early.
func (s *AuctionServiceImpl) participantRecipient(ctx context.Context, conversationID, userID uuid.UUID) (uuid.UUID, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("get conversation: %w", err))
	}
	if conv == nil {
		return uuid.Nil, apperror.ErrConversationNotFound()
	}
	if !conv.IsParticipant(userID) {
		return uuid.Nil, apperror.ErrNotParticipant()
	}
	return conv.RecipientID, nil
}

// lockConversation locks the recipient's auction row, then the conversation.
func (s *AuctionServiceImpl) lockConversation(ctx context.Context, tx pgx.Tx, recipientID, conversationID uuid.UUID) (*domain.Conversation, error) {
	if _, err := s.settingsRepo.LockByUserIDs(ctx, tx, []uuid.UUID{recipientID}); err != nil {
		return nil, fmt.Errorf("lock intro settings: %w", err)
	}
	conv, err := s.convRepo.LockByID(ctx, tx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("lock conversation: %w", err)
	}
	if conv == nil {
		return nil, apperror.ErrConversationNotFound()
	}
	if err := verifyRecord(s.log, s.signer, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *AuctionServiceImpl) demote(ctx context.Context, tx pgx.Tx, c *domain.Conversation, now time.Time) error {
	if err := c.Transition(domain.BidLosing, s.signer); err != nil {
		return apperror.InternalError(err)
	}
	c.LastUpdate = now
	return s.updateConversation(ctx, tx, c)
}

func (s *AuctionServiceImpl) updateConversation(ctx context.Context, tx pgx.Tx, c *domain.Conversation) error {
	if err := s.convRepo.Update(ctx, tx, c); err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return nil
}

func (s *AuctionServiceImpl) cachedResult(ctx context.Context, key string) *domain.CreateConversationResult {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, creating normally")
		return nil
	}
	if cached == nil {
		return nil
	}
	var result domain.CreateConversationResult
	if err := json.Unmarshal(cached, &result); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable idempotency entry")
		return nil
	}
	return &result
}

func (s *AuctionServiceImpl) cacheResult(ctx context.Context, key string, result *domain.CreateConversationResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.idempCache.Set(ctx, key, payload, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache create result")
	}
}

// splitActive counts WON conversations delivered since the cycle started and
// returns the WINNING ones.
func splitActive(active []*domain.Conversation, cycleStart time.Time) (int, []*domain.Conversation) {
	won := 0
	var winning []*domain.Conversation
	for _, c := range active {
		switch c.BidStatus {
		case domain.BidWon:
			if !c.CreatedAt.Before(cycleStart) {
				won++
			}
		case domain.BidWinning:
			winning = append(winning, c)
		}
	}
	return won, winning
}

// lowestPrice returns the last bid of a ranked, non-empty slice.
func lowestPrice(ranked []*domain.Conversation) money.Money {
	return ranked[len(ranked)-1].BidPrice
}

func findSettings(rows []*domain.IntroSettings, userID uuid.UUID) *domain.IntroSettings {
	for _, r := range rows {
		if r.UserID == userID {
			return r
		}
	}
	return nil
}

func containsConversation(convs []*domain.Conversation, id uuid.UUID) bool {
	for _, c := range convs {
		if c.ID == id {
			return true
		}
	}
	return false
}

func noteFor(kind domain.NotificationKind, userID uuid.UUID, c *domain.Conversation) domain.Notification {
	return domain.Notification{
		Kind:           kind,
		UserID:         userID,
		ConversationID: c.ID,
		Amount:         c.BidPrice,
		CreatedAt:      c.LastUpdate,
	}
}

// dispatch hands notes to the sink once the transaction has committed.
func dispatch(sink ports.NotificationSink, notes []domain.Notification) {
	if sink == nil {
		return
	}
	for _, n := range notes {
		sink.Notify(n)
	}
}
