/**
 * @description
 * This file defines the core domain models for the ledger service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are stored as `int64` to represent the value in the smallest currency
 *   unit (cents), which avoids floating-point inaccuracies with financial data.
 * - Transactions are append-only: once created they are never updated or deleted,
 *   and an account's balance is always the projection of its transaction log.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind distinguishes balance increases from decreases.
type TransactionKind string

const (
	TransactionCredit TransactionKind = "credit"
	TransactionDebit  TransactionKind = "debit"
)

// Transaction is one immutable entry in an account's ledger.
// This struct maps directly to the `transactions` table in the database.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Seq         int64           `json:"-"` // insertion order, breaks created_at ties
	AccountID   uuid.UUID       `json:"account_id"`
	Kind        TransactionKind `json:"kind"`
	Amount      int64           `json:"amount"` // in cents, always positive
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransferStatus is the policy outcome of a transfer request.
type TransferStatus string

// TransferStatusFrozen is the only outcome the transfer policy currently
// produces: all outgoing transfers are suspended and no ledger state changes.
const TransferStatusFrozen TransferStatus = "frozen"

// TransferRequest is the DTO for an incoming transfer submission.
type TransferRequest struct {
	DestinationAccountNumber string `json:"destination_account_number"`
	DestinationRoutingNumber string `json:"destination_routing_number"`
	Amount                   int64  `json:"amount"` // in cents
	Description              string `json:"description"`
}

// TransferOutcome reports the policy decision for a transfer request together
// with the current state of the source account, so the caller can redisplay it.
// A frozen outcome is a defined business result, not an error.
type TransferOutcome struct {
	Status        TransferStatus `json:"status"`
	SourceAccount *Account       `json:"source_account"`
}
