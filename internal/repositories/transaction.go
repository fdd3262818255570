package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

const uniqueViolation = "23505"

const transactionColumns = `transaction_id, idempotency_key, amount, currency, from_account, to_account, status, created_at, updated_at`

// TransactionWriteRepository handles transaction write operations.
type TransactionWriteRepository struct {
	db *sqlx.DB
}

func NewTransactionWriteRepository(db *sqlx.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

// Save inserts a new transaction. A second row with the same idempotency key
// yields errs.ErrDuplicateKey.
func (r *TransactionWriteRepository) Save(ctx context.Context, txn *models.Transaction) error {
	const query = `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	args := []any{
		txn.TransactionID, txn.IdempotencyKey, txn.Amount, txn.Currency,
		txn.FromAccount, txn.ToAccount, txn.Status, txn.CreatedAt, txn.UpdatedAt,
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errs.ErrDuplicateKey
	}
	return errs.Store("insert transaction", err)
}

// UpdateStatus overwrites the status and bumps updated_at. When the update is
// guarded the row is only changed if its status equals ExpectedStatus; a
// mismatch yields *errs.ConflictError carrying the stored status.
func (r *TransactionWriteRepository) UpdateStatus(
	ctx context.Context,
	transactionID string,
	update models.StatusUpdate,
	updatedAt time.Time,
) (*models.Transaction, error) {
	query := `
		UPDATE transactions SET status = $2, updated_at = $3
		WHERE transaction_id = $1
		RETURNING ` + transactionColumns
	args := []any{transactionID, update.Status, updatedAt}
	if update.Guarded() {
		query = `
		UPDATE transactions SET status = $2, updated_at = $3
		WHERE transaction_id = $1 AND status = $4
		RETURNING ` + transactionColumns
		args = append(args, update.ExpectedStatus)
	}

	var txn models.Transaction
	err := sqlx.GetContext(ctx, r.db, &txn, query, args...)
	logQuery(query, args, txn.Status, err)

	if errors.Is(err, sql.ErrNoRows) {
		if !update.Guarded() {
			return nil, errs.ErrNotFound
		}
		return nil, r.conflictOrNotFound(ctx, transactionID, update.ExpectedStatus)
	}
	if err != nil {
		return nil, errs.Store("update transaction status", err)
	}
	return &txn, nil
}

func (r *TransactionWriteRepository) conflictOrNotFound(ctx context.Context, transactionID, expected string) error {
	const query = `SELECT status FROM transactions WHERE transaction_id = $1`

	var current string
	err := sqlx.GetContext(ctx, r.db, &current, query, transactionID)
	logQuery(query, []any{transactionID}, current, err)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errs.ErrNotFound
	case err != nil:
		return errs.Store("select transaction status", err)
	}
	return &errs.ConflictError{TransactionID: transactionID, Expected: expected, Actual: current}
}

// TransactionReadRepository handles transaction read operations.
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// GetByID returns the transaction or errs.ErrNotFound.
func (r *TransactionReadRepository) GetByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	return r.getOne(ctx, query, transactionID)
}

// GetByIdempotencyKey returns the transaction created with key or errs.ErrNotFound.
func (r *TransactionReadRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`
	return r.getOne(ctx, query, key)
}

func (r *TransactionReadRepository) getOne(ctx context.Context, query string, arg string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.GetContext(ctx, &txn, query, arg)
	logQuery(query, []any{arg}, txn.TransactionID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Store("select transaction", err)
	}
	return &txn, nil
}

// List returns all transactions, newest first.
func (r *TransactionReadRepository) List(ctx context.Context) ([]models.Transaction, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC, transaction_id DESC
	`

	txns := []models.Transaction{}
	err := r.db.SelectContext(ctx, &txns, query)
	logQuery(query, nil, len(txns), err)

	if err != nil {
		return nil, errs.Store("list transactions", err)
	}
	return txns, nil
}
