package service

import (
	"context"
	"fmt"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/internal/metrics"
	"intro-auction/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// LedgerConfig carries the fee and scheduling values the ledger needs.
type LedgerConfig struct {
	InboundFee  decimal.Decimal
	OutboundFee decimal.Decimal
	DailyIntros uint16
	Cycle       time.Duration
}

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	accountRepo  ports.AccountRepository
	settingsRepo ports.IntroSettingsRepository
	journalRepo  ports.JournalRepository
	bridge       ports.OnChainBridge
	signer       domain.RecordSigner
	clock        ports.Clock
	transactor   ports.DBTransactor
	cfg          LedgerConfig
	accounts     accountLocker
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	settingsRepo ports.IntroSettingsRepository,
	journalRepo ports.JournalRepository,
	bridge ports.OnChainBridge,
	signer domain.RecordSigner,
	clock ports.Clock,
	transactor ports.DBTransactor,
	cfg LedgerConfig,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		journalRepo:  journalRepo,
		bridge:       bridge,
		signer:       signer,
		clock:        clock,
		transactor:   transactor,
		cfg:          cfg,
		accounts:     accountLocker{repo: accountRepo, signer: signer, log: log},
		log:          log,
	}
}

// OpenAccount creates the token account and default intro settings for userID.
// Opening an existing account returns it unchanged.
func (s *LedgerServiceImpl) OpenAccount(ctx context.Context, userID uuid.UUID) (*domain.TokenAccount, error) {
	existing, err := s.readAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	var account *domain.TokenAccount
	err = runInTx(ctx, s.transactor, s.log, "open_account", func(tx pgx.Tx) error {
		now := txNow(s.clock)
		account = domain.NewTokenAccount(userID, now, s.signer)
		if err := s.accountRepo.Create(ctx, tx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		settings := domain.NewIntroSettings(userID, s.cfg.DailyIntros, now, s.cfg.Cycle)
		if err := s.settingsRepo.Create(ctx, tx, settings); err != nil {
			return fmt.Errorf("create intro settings: %w", err)
		}
		return nil
	})
	if err != nil {
		// A concurrent open may have won the unique user_id race.
		if existing, readErr := s.readAccount(ctx, userID); readErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	s.log.Info().Str("user_id", userID.String()).Msg("token account opened")
	return account, nil
}

// GetBalance returns the verified balances of userID.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*ports.Balance, error) {
	account, err := s.readAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	return &ports.Balance{Confirmed: account.Confirmed, Unconfirmed: account.Unconfirmed}, nil
}

func (s *LedgerServiceImpl) readAccount(ctx context.Context, userID uuid.UUID) (*domain.TokenAccount, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, nil
	}
	if err := verifyRecord(s.log, s.signer, account); err != nil {
		return nil, err
	}
	return account, nil
}

// CreditDeposit sweeps pending on-chain deposits for userID and credits the
// net amount. The bridge is called before the transaction opens; a receipt
// whose external txid is already journaled is not credited twice.
// Returns nil when there was nothing to sweep.
func (s *LedgerServiceImpl) CreditDeposit(ctx context.Context, userID uuid.UUID) (*domain.JournalEntry, error) {
	account, err := s.readAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	receipt, err := s.bridge.Sweep(ctx, userID)
	if err != nil {
		metrics.RecordBridgeTransfer("in", "failed")
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("deposit sweep failed")
		return nil, apperror.ErrBridgeFailure(err)
	}
	if receipt == nil || !receipt.Amount.IsPositive() {
		return nil, nil
	}

	var entry *domain.JournalEntry
	replayed := false
	err = runInTx(ctx, s.transactor, s.log, "credit_deposit", func(tx pgx.Tx) error {
		entry, replayed = nil, false
		now := txNow(s.clock)

		locked, err := s.accounts.lock(ctx, tx, userID)
		if err != nil {
			return err
		}

		seen, err := s.journalRepo.ExistsExternalTx(ctx, tx, domain.JournalBridgeIn, receipt.ExternalTxID)
		if err != nil {
			return fmt.Errorf("check external tx: %w", err)
		}
		if seen {
			replayed = true
			return nil
		}

		fee, err := receipt.Amount.Percent(s.cfg.InboundFee)
		if err != nil {
			return moneyError(err)
		}
		entry, err = domain.NewBridgeIn(userID, receipt.Amount, fee, receipt.ExternalTxID, now, s.signer)
		if err != nil {
			return moneyError(err)
		}
		if err := s.accounts.adjust(ctx, tx, locked[userID], entry.Net, now); err != nil {
			return err
		}
		if err := s.journalRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("create journal entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		s.log.Info().Str("user_id", userID.String()).Str("external_txid", receipt.ExternalTxID).Msg("deposit already credited")
		return nil, nil
	}

	metrics.RecordBridgeTransfer("in", "success")
	s.log.Info().
		Str("user_id", userID.String()).
		Str("external_txid", entry.ExternalTxID).
		Str("net", entry.Net.String()).
		Msg("deposit credited")
	return entry, nil
}

// Withdraw debits amount from userID and pays amount minus the outbound fee to
// the destination address. The debit and its journal entry commit before the
// bridge is called; the entry's external txid is the bridge reference.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.JournalEntry, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.DestAddress == "" {
		return nil, apperror.Validation("Destination address is required")
	}

	reference := uuid.NewString()
	var entry *domain.JournalEntry
	err := runInTx(ctx, s.transactor, s.log, "withdraw", func(tx pgx.Tx) error {
		now := txNow(s.clock)

		locked, err := s.accounts.lock(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		fee, err := req.Amount.Percent(s.cfg.OutboundFee)
		if err != nil {
			return moneyError(err)
		}
		entry, err = domain.NewBridgeOut(req.UserID, req.Amount, fee, req.DestAddress, reference, now, s.signer)
		if err != nil {
			return moneyError(err)
		}
		debit, err := req.Amount.Neg()
		if err != nil {
			return moneyError(err)
		}
		if err := s.accounts.adjust(ctx, tx, locked[req.UserID], debit, now); err != nil {
			return err
		}
		if err := s.journalRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("create journal entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.bridge.Send(ctx, reference, req.DestAddress, entry.Net); err != nil {
		metrics.RecordBridgeTransfer("out", "failed")
		// The debit is committed; the reference lets an operator resend.
		s.log.Error().Err(err).
			Str("channel", "operator").
			Str("user_id", req.UserID.String()).
			Str("reference", reference).
			Str("net", entry.Net.String()).
			Msg("withdrawal debited but bridge send failed")
		return nil, apperror.ErrBridgeFailure(err)
	}

	metrics.RecordBridgeTransfer("out", "success")
	s.log.Info().
		Str("user_id", req.UserID.String()).
		Str("reference", reference).
		Str("net", entry.Net.String()).
		Msg("withdrawal sent")
	return entry, nil
}

// ListJournal returns the newest entries involving userID.
func (s *LedgerServiceImpl) ListJournal(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	if limit > maxJournalLimit {
		limit = maxJournalLimit
	}
	entries, err := s.journalRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list journal: %w", err))
	}
	for _, e := range entries {
		if err := verifyRecord(s.log, s.signer, e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
