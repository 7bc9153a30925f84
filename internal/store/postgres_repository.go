/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * for users, accounts, and transactions.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/dacreathor101/simplebank-new/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
}

// CreateUser inserts a new user record into the database.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.Username, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByUsername retrieves a user from the database by their username.
func (r *PostgresRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := r.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateAccount inserts an account row and, when provided, its opening-balance
// transaction in one database transaction. An account-number collision maps to
// ErrDuplicateAccountNumber so the caller can retry with a fresh number.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account, opening *domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accountQuery := `
		INSERT INTO accounts (id, user_id, name, balance, account_number, routing_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, accountQuery,
		account.ID,
		account.UserID,
		account.Name,
		account.Balance,
		account.AccountNumber,
		account.RoutingNumber,
	).Scan(&account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "accounts_account_number_key") {
			return ErrDuplicateAccountNumber
		}
		return err
	}

	if opening != nil {
		txnQuery := `
			INSERT INTO transactions (id, account_id, kind, amount, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING seq, created_at
		`
		err = tx.QueryRow(ctx, txnQuery,
			opening.ID,
			opening.AccountID,
			opening.Kind,
			opening.Amount,
			opening.Description,
		).Scan(&opening.Seq, &opening.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FindAccountByID retrieves an account from the database by its ID.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, name, balance, account_number, routing_number, created_at FROM accounts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&account.ID, &account.UserID, &account.Name, &account.Balance,
		&account.AccountNumber, &account.RoutingNumber, &account.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountsByUserID retrieves all accounts owned by a user, oldest first.
func (r *PostgresRepository) FindAccountsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	query := `
		SELECT id, user_id, name, balance, account_number, routing_number, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		err := rows.Scan(
			&account.ID, &account.UserID, &account.Name, &account.Balance,
			&account.AccountNumber, &account.RoutingNumber, &account.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// ApplyCredit atomically increments the account balance and appends the credit
// transaction. The account row is locked with FOR UPDATE so concurrent ledger
// operations on the same account serialize.
func (r *PostgresRepository) ApplyCredit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, "SELECT balance FROM accounts WHERE id = $1 FOR UPDATE", accountID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, "UPDATE accounts SET balance = balance + $1 WHERE id = $2", amount, accountID); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Kind:        domain.TransactionCredit,
		Amount:      amount,
		Description: description,
	}
	err = tx.QueryRow(ctx,
		"INSERT INTO transactions (id, account_id, kind, amount, description) VALUES ($1, $2, $3, $4, $5) RETURNING seq, created_at",
		record.ID, record.AccountID, record.Kind, record.Amount, record.Description,
	).Scan(&record.Seq, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// ApplyDebit atomically checks the balance, decrements it, and appends the
// debit transaction. The check runs under the same row lock as the update, so
// two concurrent debits can never both pass against a stale balance.
func (r *PostgresRepository) ApplyDebit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, "SELECT balance FROM accounts WHERE id = $1 FOR UPDATE", accountID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if balance < amount {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, "UPDATE accounts SET balance = balance - $1 WHERE id = $2", amount, accountID); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Kind:        domain.TransactionDebit,
		Amount:      amount,
		Description: description,
	}
	err = tx.QueryRow(ctx,
		"INSERT INTO transactions (id, account_id, kind, amount, description) VALUES ($1, $2, $3, $4, $5) RETURNING seq, created_at",
		record.ID, record.AccountID, record.Kind, record.Amount, record.Description,
	).Scan(&record.Seq, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// FindTransactionsByAccountID retrieves an account's transactions, most recent
// first. Equal timestamps resolve by insertion order (seq), newest first.
func (r *PostgresRepository) FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, seq, account_id, kind, amount, description, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		err := rows.Scan(&txn.ID, &txn.Seq, &txn.AccountID, &txn.Kind, &txn.Amount, &txn.Description, &txn.CreatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// RecomputeBalance replays the full transaction log for an account.
func (r *PostgresRepository) RecomputeBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)", accountID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrAccountNotFound
	}

	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'credit' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE account_id = $1
	`
	var balance int64
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}
