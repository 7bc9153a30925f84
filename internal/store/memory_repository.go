/**
 * @description
 * This file provides an in-memory implementation of the `Repository` interface.
 * It honors the same transactional contract as the PostgreSQL implementation:
 * ledger operations serialize per account, and a failed operation leaves no
 * partial state behind. It backs the unit tests and dev-mode runs that have no
 * database available.
 */

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/dacreathor101/simplebank-new/internal/domain"
)

type memoryAccount struct {
	mu      sync.Mutex
	account domain.Account
	ledger  []domain.Transaction
}

// MemoryRepository keeps all entities in process memory. A global lock guards
// the entity maps; each account additionally carries its own mutex so ledger
// operations on different accounts never block each other.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]domain.User
	byUsername map[string]uuid.UUID
	byNumber   map[string]uuid.UUID
	accounts   map[uuid.UUID]*memoryAccount
	nextSeq    int64

	commitHook func(operation string) error
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[uuid.UUID]domain.User),
		byUsername: make(map[string]uuid.UUID),
		byNumber:   make(map[string]uuid.UUID),
		accounts:   make(map[uuid.UUID]*memoryAccount),
	}
}

// SetCommitHook installs a hook invoked immediately before a ledger operation
// commits. A non-nil return aborts the operation with no state change; tests
// use this to simulate a fault mid-operation.
func (r *MemoryRepository) SetCommitHook(hook func(operation string) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitHook = hook
}

func (r *MemoryRepository) runCommitHook(operation string) error {
	r.mu.RLock()
	hook := r.commitHook
	r.mu.RUnlock()
	if hook == nil {
		return nil
	}
	return hook(operation)
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.TrimSpace(user.Username)
	if _, exists := r.byUsername[key]; exists {
		return ErrDuplicateUsername
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = *user
	r.byUsername[key] = user.ID
	return nil
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[strings.TrimSpace(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account, opening *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[account.UserID]; !ok {
		return ErrUserNotFound
	}
	if _, exists := r.byNumber[account.AccountNumber]; exists {
		return ErrDuplicateAccountNumber
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	entry := &memoryAccount{account: *account}
	if opening != nil {
		r.nextSeq++
		opening.Seq = r.nextSeq
		if opening.CreatedAt.IsZero() {
			opening.CreatedAt = time.Now()
		}
		entry.ledger = append(entry.ledger, *opening)
	}

	r.accounts[account.ID] = entry
	r.byNumber[account.AccountNumber] = account.ID
	return nil
}

func (r *MemoryRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	entry, err := r.lookupAccount(accountID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	account := entry.account
	return &account, nil
}

func (r *MemoryRepository) FindAccountsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	r.mu.RLock()
	entries := make([]*memoryAccount, 0, len(r.accounts))
	for _, entry := range r.accounts {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	var accounts []domain.Account
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.account.UserID == userID {
			accounts = append(accounts, entry.account)
		}
		entry.mu.Unlock()
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].AccountNumber < accounts[j].AccountNumber
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *MemoryRepository) lookupAccount(accountID uuid.UUID) (*memoryAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return entry, nil
}

func (r *MemoryRepository) ApplyCredit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.Transaction, error) {
	entry, err := r.lookupAccount(accountID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	record := domain.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Kind:        domain.TransactionCredit,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}

	// Nothing below may mutate state until the commit hook has passed.
	if err := r.runCommitHook("credit"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.nextSeq++
	record.Seq = r.nextSeq
	r.mu.Unlock()

	entry.account.Balance += amount
	entry.ledger = append(entry.ledger, record)
	return &record, nil
}

func (r *MemoryRepository) ApplyDebit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.Transaction, error) {
	entry, err := r.lookupAccount(accountID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.account.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	record := domain.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Kind:        domain.TransactionDebit,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := r.runCommitHook("debit"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.nextSeq++
	record.Seq = r.nextSeq
	r.mu.Unlock()

	entry.account.Balance -= amount
	entry.ledger = append(entry.ledger, record)
	return &record, nil
}

func (r *MemoryRepository) FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	entry, err := r.lookupAccount(accountID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	transactions := make([]domain.Transaction, len(entry.ledger))
	copy(transactions, entry.ledger)

	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].CreatedAt.Equal(transactions[j].CreatedAt) {
			return transactions[i].Seq > transactions[j].Seq
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}

func (r *MemoryRepository) RecomputeBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	entry, err := r.lookupAccount(accountID)
	if err != nil {
		return 0, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	var balance int64
	for _, txn := range entry.ledger {
		if txn.Kind == domain.TransactionCredit {
			balance += txn.Amount
		} else {
			balance -= txn.Amount
		}
	}
	return balance, nil
}
