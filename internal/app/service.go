/**
 * @description
 * This file contains the core business logic for the ledger service. The `Service`
 * struct orchestrates all money movement operations, coordinating between the
 * database repository and the message broker.
 *
 * Key features:
 * - Implements the main use cases: deposits, withdrawals, transfer policy,
 *   transaction history, and account provisioning.
 * - Enforces ownership on every operation that touches an account.
 * - Ensures transactional integrity: the balance projection and the appended
 *   transaction record always commit as one atomic unit.
 * - Publishes events to RabbitMQ for asynchronous processing by other services.
 *
 * @dependencies
 * - context, errors, fmt, log: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publication.
 */

package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/google/uuid"
	"github.com/dacreathor101/simplebank-new/internal/domain"
	"github.com/dacreathor101/simplebank-new/internal/store"
	"github.com/dacreathor101/simplebank-new/pkg/rabbitmq"
)

const (
	depositDescription  = "Deposit"
	withdrawDescription = "Withdrawal"
	openingDescription  = "Opening balance"

	// accountNumberAttempts bounds the retry loop on account-number
	// collisions before the duplicate error surfaces to the caller.
	accountNumberAttempts = 5

	ledgerEventExchange   = "bank.events"
	ledgerEventRoutingKey = "ledger.transaction.created"
)

// ErrUnauthorized is returned when the acting user does not own the account an
// operation targets. The operation performs no mutation in that case.
var ErrUnauthorized = errors.New("account not owned by caller")

// Service provides the core ledger operations. All methods take the
// authenticated caller's user ID explicitly; the service never reads ambient
// session state.
type Service struct {
	repo          store.Repository
	eventProducer rabbitmq.Publisher
	routingNumber string

	jwtSecret  []byte
	tokenTTL   int // minutes
	bcryptCost int
}

// NewService creates a new ledger service instance. The producer may be nil
// when no broker is configured; event publication then becomes a no-op.
func NewService(repo store.Repository, producer rabbitmq.Publisher, routingNumber string, jwtSecret string, tokenTTLMinutes int, bcryptCost int) *Service {
	return &Service{
		repo:          repo,
		eventProducer: producer,
		routingNumber: routingNumber,
		jwtSecret:     []byte(jwtSecret),
		tokenTTL:      tokenTTLMinutes,
		bcryptCost:    bcryptCost,
	}
}

// authorize is the ownership guard used by every account-scoped operation.
func authorize(account *domain.Account, userID uuid.UUID) error {
	if account == nil || account.UserID != userID {
		return ErrUnauthorized
	}
	return nil
}

// Deposit credits an account owned by userID. The balance update and the
// appended credit transaction commit atomically; the created transaction is
// returned.
func (s *Service) Deposit(ctx context.Context, accountID, userID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := authorize(account, userID); err != nil {
		return nil, err
	}

	record, err := s.repo.ApplyCredit(ctx, accountID, amount, depositDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to apply credit: %w", err)
	}

	s.publishLedgerEvent(ctx, record)
	return record, nil
}

// Withdraw debits an account owned by userID. The balance check runs inside
// the same per-account critical section that applies the debit, so concurrent
// withdrawals can never overdraw the account.
func (s *Service) Withdraw(ctx context.Context, accountID, userID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := authorize(account, userID); err != nil {
		return nil, err
	}

	record, err := s.repo.ApplyDebit(ctx, accountID, amount, withdrawDescription)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply debit: %w", err)
	}

	s.publishLedgerEvent(ctx, record)
	return record, nil
}

// Transfer applies the transfer policy for the source account. Outgoing
// transfers are suspended across the board: every submitted request yields the
// frozen outcome with no balance or ledger change on any account. Ownership of
// the source account is still enforced.
func (s *Service) Transfer(ctx context.Context, fromAccountID, userID uuid.UUID, req domain.TransferRequest) (*domain.TransferOutcome, error) {
	account, err := s.repo.FindAccountByID(ctx, fromAccountID)
	if err != nil {
		return nil, err
	}
	if err := authorize(account, userID); err != nil {
		return nil, err
	}

	return &domain.TransferOutcome{
		Status:        domain.TransferStatusFrozen,
		SourceAccount: account,
	}, nil
}

// ListTransactions returns the account's transaction history, most recent
// first, ties broken by insertion order. Pure query, ownership enforced.
func (s *Service) ListTransactions(ctx context.Context, accountID, userID uuid.UUID) ([]domain.Transaction, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := authorize(account, userID); err != nil {
		return nil, err
	}

	return s.repo.FindTransactionsByAccountID(ctx, accountID)
}

// GetAccount returns a single account owned by userID.
func (s *Service) GetAccount(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := authorize(account, userID); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all accounts owned by userID, oldest first.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.FindAccountsByUserID(ctx, userID)
}

// CreateAccount provisions a new account for userID with a unique 10-digit
// account number and the institution's routing number. A non-zero initial
// balance is materialized as an explicit opening-balance credit transaction in
// the same atomic unit, so the projection invariant holds from the start.
// Account-number collisions are detected via the unique index and retried.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, name string, initialBalance int64) (*domain.Account, error) {
	if initialBalance < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		number, err := generateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}

		account := &domain.Account{
			ID:            uuid.New(),
			UserID:        userID,
			Name:          name,
			Balance:       initialBalance,
			AccountNumber: number,
			RoutingNumber: s.routingNumber,
		}

		var opening *domain.Transaction
		if initialBalance > 0 {
			opening = &domain.Transaction{
				ID:          uuid.New(),
				AccountID:   account.ID,
				Kind:        domain.TransactionCredit,
				Amount:      initialBalance,
				Description: openingDescription,
			}
		}

		err = s.repo.CreateAccount(ctx, account, opening)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, store.ErrDuplicateAccountNumber) {
			return nil, err
		}
		log.Printf("level=warn component=ledger msg=\"account number collision; retrying\" attempt=%d", attempt+1)
		lastErr = err
	}

	return nil, lastErr
}

// VerifyLedger recomputes the account balance from its transaction log and
// compares it against the cached projection. The two must always agree.
func (s *Service) VerifyLedger(ctx context.Context, accountID uuid.UUID) (bool, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	replayed, err := s.repo.RecomputeBalance(ctx, accountID)
	if err != nil {
		return false, err
	}
	return replayed == account.Balance, nil
}

func (s *Service) publishLedgerEvent(ctx context.Context, record *domain.Transaction) {
	if s.eventProducer == nil {
		return
	}
	event := domain.LedgerEvent{
		TransactionID: record.ID,
		AccountID:     record.AccountID,
		Kind:          record.Kind,
		Amount:        record.Amount,
		Description:   record.Description,
		CreatedAt:     record.CreatedAt,
	}
	if err := s.eventProducer.Publish(ctx, ledgerEventExchange, ledgerEventRoutingKey, event); err != nil {
		// Event fan-out is best effort; the ledger state has already committed.
		log.Printf("level=warn component=ledger msg=\"ledger event publish failed\" transaction_id=%s err=%v", record.ID, err)
	}
}

// generateAccountNumber produces a 10-digit numeric string with a non-zero
// leading digit.
func generateAccountNumber() (string, error) {
	// Range [1000000000, 9999999999].
	n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1_000_000_000), nil
}
