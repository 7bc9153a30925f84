/**
 * @description
 * This package bulk-loads demo data through the core service APIs. It behaves
 * like any other authenticated caller: it signs up the demo user, provisions
 * accounts with opening balances, and replays sample activity as ordinary
 * deposits and withdrawals. It never touches the repository directly.
 *
 * Seeding is idempotent: if the demo user already exists the run is a no-op.
 *
 * @dependencies
 * - internal/app: The core service whose public APIs are exercised.
 * - internal/store: For duplicate-username detection.
 */

package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dacreathor101/simplebank-new/internal/app"
	"github.com/dacreathor101/simplebank-new/internal/store"
)

const (
	demoUsername = "Melodee"
	demoPassword = "Goodluck60!"
)

type seedAccount struct {
	name    string
	opening int64 // cents
	// Positive amounts are deposits, negative amounts withdrawals, replayed
	// in order through the public ledger operations.
	activity []int64
}

var demoAccounts = []seedAccount{
	{
		name:    "Diane Nowell (Personal)",
		opening: 7500065,
		activity: []int64{
			200000, -45000, -12000, 150000, -30000, -25000, 80000, -100000,
			-60000, 220000, -20000, -35000, 95000, -42000, 150000, -75000,
			-9000, 100000, -60000, -15000, 120000, -20000, -30000,
		},
	},
	{
		name:    "Danowell LLC",
		opening: 375000000,
		activity: []int64{
			50000000, -1500000, -2200000, 12000000, -1250000, 25000000,
			-800000, 7500000, -1100000, 9700000, -500000, 18000000,
			-320000, 6500000, 250000000, -1028200, -780000, 42000000,
			-930000, -600000,
		},
	},
}

// Run loads the demo dataset. It returns without error when the data is
// already present.
func Run(ctx context.Context, svc *app.Service) error {
	user, err := svc.Signup(ctx, demoUsername, demoPassword)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			log.Printf("level=info component=seed msg=\"demo data already present; skipping\"")
			return nil
		}
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	for _, demo := range demoAccounts {
		account, err := svc.CreateAccount(ctx, user.ID, demo.name, demo.opening)
		if err != nil {
			return fmt.Errorf("failed to create demo account %q: %w", demo.name, err)
		}

		for _, amount := range demo.activity {
			if amount > 0 {
				_, err = svc.Deposit(ctx, account.ID, user.ID, amount)
			} else {
				_, err = svc.Withdraw(ctx, account.ID, user.ID, -amount)
			}
			if err != nil {
				return fmt.Errorf("failed to replay demo activity on %q: %w", demo.name, err)
			}
		}

		ok, err := svc.VerifyLedger(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("failed to verify demo ledger for %q: %w", demo.name, err)
		}
		if !ok {
			return fmt.Errorf("demo ledger for %q does not replay to its balance", demo.name)
		}
		log.Printf("level=info component=seed msg=\"demo account loaded\" name=%q account_number=%s", demo.name, account.AccountNumber)
	}

	log.Printf("level=info component=seed msg=\"demo data created\" user=%s", demoUsername)
	return nil
}
