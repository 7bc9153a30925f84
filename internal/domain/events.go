package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEvent is the message payload published to RabbitMQ after a ledger
// transaction has committed. Consumers (notifications, analytics) receive it
// best-effort; the ledger itself never depends on delivery.
type LedgerEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Kind          TransactionKind `json:"kind"`
	Amount        int64           `json:"amount"` // in cents
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}
