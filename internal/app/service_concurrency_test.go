package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dacreathor101/simplebank-new/internal/store"
)

// Ten concurrent withdrawals of 3000 against a balance of 10000: exactly three
// may succeed, the rest must fail with ErrInsufficientFunds, and the balance
// must land on 1000 without ever going negative.
func TestConcurrentWithdrawals_NeverOverdraw(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := signupTestUser(t, svc, "diane")

	account, err := svc.CreateAccount(ctx, userID, "Checking", 10000)
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	const workers = 10
	const amount = 3000

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, account.ID, userID, amount)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, store.ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("unexpected error from concurrent withdrawal: %v", err)
		}
	}
	if succeeded != 3 || rejected != 7 {
		t.Fatalf("expected 3 successes and 7 rejections, got %d/%d", succeeded, rejected)
	}

	account, err = svc.GetAccount(ctx, account.ID, userID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account.Balance != 1000 {
		t.Fatalf("expected final balance 1000, got %d", account.Balance)
	}

	ok, err := svc.VerifyLedger(ctx, account.ID)
	if err != nil {
		t.Fatalf("VerifyLedger failed: %v", err)
	}
	if !ok {
		t.Fatal("ledger replay disagrees with cached balance after concurrent withdrawals")
	}
}

func TestConcurrentDeposits_AllApply(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := signupTestUser(t, svc, "diane")

	account, err := svc.CreateAccount(ctx, userID, "Checking", 0)
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	const workers = 20
	const amount = 125

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Deposit(ctx, account.ID, userID, amount); err != nil {
				t.Errorf("concurrent deposit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	account, err = svc.GetAccount(ctx, account.ID, userID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account.Balance != workers*amount {
		t.Fatalf("expected balance %d, got %d", workers*amount, account.Balance)
	}

	history, err := svc.ListTransactions(ctx, account.ID, userID)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(history) != workers {
		t.Fatalf("expected %d ledger records, got %d", workers, len(history))
	}
}
