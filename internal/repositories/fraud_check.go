package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

// FraudCheckWriteRepository appends fraud checks. Existing rows are never updated.
type FraudCheckWriteRepository struct {
	db *sqlx.DB
}

func NewFraudCheckWriteRepository(db *sqlx.DB) *FraudCheckWriteRepository {
	return &FraudCheckWriteRepository{db: db}
}

// Save inserts check and sets its generated ID.
func (r *FraudCheckWriteRepository) Save(ctx context.Context, check *models.FraudCheck) error {
	const query = `
		INSERT INTO fraud_checks (transaction_id, fraud_status, reason, checked_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	args := []any{check.TransactionID, check.FraudStatus, check.Reason, check.CheckedAt}

	var id int64
	err := sqlx.GetContext(ctx, r.db, &id, query, args...)
	logQuery(query, args, id, err)

	if err != nil {
		return errs.Store("insert fraud check", err)
	}
	check.ID = id
	return nil
}

// FraudCheckReadRepository handles fraud check read operations.
type FraudCheckReadRepository struct {
	db *sqlx.DB
}

func NewFraudCheckReadRepository(db *sqlx.DB) *FraudCheckReadRepository {
	return &FraudCheckReadRepository{db: db}
}

// GetLatestByTransactionID returns the most recently checked record or errs.ErrNotFound.
func (r *FraudCheckReadRepository) GetLatestByTransactionID(ctx context.Context, transactionID string) (*models.FraudCheck, error) {
	const query = `
		SELECT id, transaction_id, fraud_status, reason, checked_at
		FROM fraud_checks
		WHERE transaction_id = $1
		ORDER BY checked_at DESC, id DESC
		LIMIT 1
	`

	var check models.FraudCheck
	err := r.db.GetContext(ctx, &check, query, transactionID)
	logQuery(query, []any{transactionID}, check.FraudStatus, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Store("select fraud check", err)
	}
	return &check, nil
}

// List returns all fraud checks, most recent first.
func (r *FraudCheckReadRepository) List(ctx context.Context) ([]models.FraudCheck, error) {
	const query = `
		SELECT id, transaction_id, fraud_status, reason, checked_at
		FROM fraud_checks
		ORDER BY checked_at DESC, id DESC
	`

	checks := []models.FraudCheck{}
	err := r.db.SelectContext(ctx, &checks, query)
	logQuery(query, nil, len(checks), err)

	if err != nil {
		return nil, errs.Store("list fraud checks", err)
	}
	return checks, nil
}
