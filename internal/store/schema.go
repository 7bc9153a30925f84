package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the logical layout of the ledger: users own accounts, accounts own
// an append-only transaction log. Referential integrity is enforced by the
// database so no orphan accounts or transactions can exist.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS accounts (
	id             UUID PRIMARY KEY,
	user_id        UUID NOT NULL REFERENCES users (id),
	name           TEXT NOT NULL,
	balance        BIGINT NOT NULL DEFAULT 0,
	account_number CHAR(10) NOT NULL UNIQUE,
	routing_number TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
	id          UUID PRIMARY KEY,
	seq         BIGSERIAL,
	account_id  UUID NOT NULL REFERENCES accounts (id),
	kind        TEXT NOT NULL CHECK (kind IN ('credit', 'debit')),
	amount      BIGINT NOT NULL CHECK (amount > 0),
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_created
	ON transactions (account_id, created_at DESC, seq DESC);
`

// EnsureSchema creates the ledger tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
