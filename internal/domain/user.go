package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns zero or more accounts. Only the bcrypt hash of the credential is
// ever stored; the hash never serializes into API responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account is a user's ledger account. Balance is a cached projection of the
// account's transaction log and is mutated only by the ledger engine.
type Account struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Balance       int64     `json:"balance"` // in cents
	AccountNumber string    `json:"account_number"`
	RoutingNumber string    `json:"routing_number"`
	CreatedAt     time.Time `json:"created_at"`
}
