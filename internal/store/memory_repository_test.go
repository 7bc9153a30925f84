package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/dacreathor101/simplebank-new/internal/domain"
)

func newTestRepo(t *testing.T) (*MemoryRepository, *domain.Account) {
	t.Helper()
	repo := NewMemoryRepository()

	user := &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: "x"}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        user.ID,
		Name:          "Checking",
		AccountNumber: "1234567890",
		RoutingNumber: "000138582",
	}
	if err := repo.CreateAccount(context.Background(), account, nil); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return repo, account
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.CreateUser(ctx, &domain.User{ID: uuid.New(), Username: "bob"}); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}
	err := repo.CreateUser(ctx, &domain.User{ID: uuid.New(), Username: "bob"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestCreateAccount_DuplicateAccountNumber(t *testing.T) {
	repo, account := newTestRepo(t)
	ctx := context.Background()

	clash := &domain.Account{
		ID:            uuid.New(),
		UserID:        account.UserID,
		Name:          "Savings",
		AccountNumber: account.AccountNumber,
		RoutingNumber: account.RoutingNumber,
	}
	err := repo.CreateAccount(ctx, clash, nil)
	if !errors.Is(err, ErrDuplicateAccountNumber) {
		t.Fatalf("expected ErrDuplicateAccountNumber, got %v", err)
	}
}

func TestCreateAccount_OpeningTransactionIsAtomic(t *testing.T) {
	repo, account := newTestRepo(t)
	ctx := context.Background()

	opening := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   uuid.New(),
		Kind:        domain.TransactionCredit,
		Amount:      10000,
		Description: "Opening balance",
	}
	second := &domain.Account{
		ID:            opening.AccountID,
		UserID:        account.UserID,
		Name:          "Savings",
		Balance:       10000,
		AccountNumber: "2222222222",
		RoutingNumber: account.RoutingNumber,
	}
	if err := repo.CreateAccount(ctx, second, opening); err != nil {
		t.Fatalf("CreateAccount with opening transaction failed: %v", err)
	}

	transactions, err := repo.FindTransactionsByAccountID(ctx, second.ID)
	if err != nil {
		t.Fatalf("FindTransactionsByAccountID failed: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("expected 1 opening transaction, got %d", len(transactions))
	}
	if transactions[0].Amount != 10000 || transactions[0].Kind != domain.TransactionCredit {
		t.Fatalf("unexpected opening transaction: %+v", transactions[0])
	}

	replayed, err := repo.RecomputeBalance(ctx, second.ID)
	if err != nil {
		t.Fatalf("RecomputeBalance failed: %v", err)
	}
	if replayed != 10000 {
		t.Fatalf("expected replayed balance 10000, got %d", replayed)
	}
}

func TestApplyDebit_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	repo, account := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ApplyCredit(ctx, account.ID, 500, "Deposit"); err != nil {
		t.Fatalf("ApplyCredit failed: %v", err)
	}

	_, err := repo.ApplyDebit(ctx, account.ID, 600, "Withdrawal")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	found, err := repo.FindAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("FindAccountByID failed: %v", err)
	}
	if found.Balance != 500 {
		t.Fatalf("balance changed after rejected debit: got %d, want 500", found.Balance)
	}
	transactions, _ := repo.FindTransactionsByAccountID(ctx, account.ID)
	if len(transactions) != 1 {
		t.Fatalf("rejected debit appended a transaction: got %d records", len(transactions))
	}
}

func TestCommitHook_AbortLeavesNoPartialState(t *testing.T) {
	repo, account := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ApplyCredit(ctx, account.ID, 1000, "Deposit"); err != nil {
		t.Fatalf("ApplyCredit failed: %v", err)
	}

	boom := errors.New("simulated fault")
	repo.SetCommitHook(func(operation string) error { return boom })

	if _, err := repo.ApplyCredit(ctx, account.ID, 250, "Deposit"); !errors.Is(err, boom) {
		t.Fatalf("expected simulated fault from credit, got %v", err)
	}
	if _, err := repo.ApplyDebit(ctx, account.ID, 250, "Withdrawal"); !errors.Is(err, boom) {
		t.Fatalf("expected simulated fault from debit, got %v", err)
	}

	repo.SetCommitHook(nil)

	found, err := repo.FindAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("FindAccountByID failed: %v", err)
	}
	if found.Balance != 1000 {
		t.Fatalf("aborted operations changed the balance: got %d, want 1000", found.Balance)
	}
	transactions, _ := repo.FindTransactionsByAccountID(ctx, account.ID)
	if len(transactions) != 1 {
		t.Fatalf("aborted operations appended transactions: got %d records", len(transactions))
	}

	replayed, _ := repo.RecomputeBalance(ctx, account.ID)
	if replayed != found.Balance {
		t.Fatalf("projection diverged from ledger after aborts: replayed=%d cached=%d", replayed, found.Balance)
	}
}

func TestFindTransactions_MostRecentFirstWithSeqTieBreak(t *testing.T) {
	repo, account := newTestRepo(t)
	ctx := context.Background()

	// Apply several operations back to back; wall-clock timestamps may be
	// identical, so ordering must fall back to insertion order.
	amounts := []int64{100, 200, 300, 400}
	for _, amount := range amounts {
		if _, err := repo.ApplyCredit(ctx, account.ID, amount, "Deposit"); err != nil {
			t.Fatalf("ApplyCredit failed: %v", err)
		}
	}

	transactions, err := repo.FindTransactionsByAccountID(ctx, account.ID)
	if err != nil {
		t.Fatalf("FindTransactionsByAccountID failed: %v", err)
	}
	if len(transactions) != len(amounts) {
		t.Fatalf("expected %d transactions, got %d", len(amounts), len(transactions))
	}
	for i := range transactions {
		want := amounts[len(amounts)-1-i]
		if transactions[i].Amount != want {
			t.Fatalf("position %d: expected amount %d, got %d", i, want, transactions[i].Amount)
		}
	}

	// A second read must return the same ordering.
	again, err := repo.FindTransactionsByAccountID(ctx, account.ID)
	if err != nil {
		t.Fatalf("second FindTransactionsByAccountID failed: %v", err)
	}
	for i := range again {
		if again[i].ID != transactions[i].ID {
			t.Fatalf("history ordering not stable at position %d", i)
		}
	}
}

func TestFindAccountsByUserID_ReturnsOnlyOwnAccounts(t *testing.T) {
	repo, account := newTestRepo(t)
	ctx := context.Background()

	other := &domain.User{ID: uuid.New(), Username: "mallory", PasswordHash: "x"}
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	otherAccount := &domain.Account{
		ID:            uuid.New(),
		UserID:        other.ID,
		Name:          "Other",
		AccountNumber: "9999999999",
		RoutingNumber: account.RoutingNumber,
	}
	if err := repo.CreateAccount(ctx, otherAccount, nil); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	accounts, err := repo.FindAccountsByUserID(ctx, account.UserID)
	if err != nil {
		t.Fatalf("FindAccountsByUserID failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != account.ID {
		t.Fatalf("expected only the owner's account, got %+v", accounts)
	}
}
