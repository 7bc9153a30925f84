/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the ledger engine. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/dacreathor101/simplebank-new/internal/domain"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrAccountNotFound        = errors.New("account not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrDuplicateUsername      = errors.New("username already exists")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
)

// Repository defines the set of methods for interacting with the database.
//
// ApplyCredit and ApplyDebit are the only balance-mutating operations besides
// CreateAccount; each one appends the transaction record and updates the
// cached balance as a single atomic unit, serialized per account. ApplyDebit
// performs its balance check inside that critical section, so concurrent
// debits can never overdraw an account.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Account methods. CreateAccount persists the account row and, when
	// opening is non-nil, the opening-balance transaction atomically.
	CreateAccount(ctx context.Context, account *domain.Account, opening *domain.Transaction) error
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	FindAccountsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)

	// Ledger methods
	ApplyCredit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.Transaction, error)
	ApplyDebit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.Transaction, error)
	FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)

	// RecomputeBalance replays the account's transaction log and returns the
	// resulting balance, without touching the cached projection.
	RecomputeBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
}
