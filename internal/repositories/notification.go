package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

// NotificationWriteRepository appends notifications.
type NotificationWriteRepository struct {
	db *sqlx.DB
}

func NewNotificationWriteRepository(db *sqlx.DB) *NotificationWriteRepository {
	return &NotificationWriteRepository{db: db}
}

// Save inserts n and sets its generated ID. Identical notifications are
// stored as distinct rows.
func (r *NotificationWriteRepository) Save(ctx context.Context, n *models.Notification) error {
	const query = `
		INSERT INTO notifications (transaction_id, notification_type, status, message, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	args := []any{n.TransactionID, n.NotificationType, n.Status, n.Message, n.SentAt}

	var id int64
	err := sqlx.GetContext(ctx, r.db, &id, query, args...)
	logQuery(query, args, id, err)

	if err != nil {
		return errs.Store("insert notification", err)
	}
	n.ID = id
	return nil
}

// NotificationReadRepository handles notification read operations.
type NotificationReadRepository struct {
	db *sqlx.DB
}

func NewNotificationReadRepository(db *sqlx.DB) *NotificationReadRepository {
	return &NotificationReadRepository{db: db}
}

// ListByTransactionID returns notifications of one transaction in insertion order.
func (r *NotificationReadRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]models.Notification, error) {
	const query = `
		SELECT id, transaction_id, notification_type, status, message, sent_at
		FROM notifications
		WHERE transaction_id = $1
		ORDER BY id
	`
	return r.selectAll(ctx, query, transactionID)
}

// List returns all notifications, most recently sent first.
func (r *NotificationReadRepository) List(ctx context.Context) ([]models.Notification, error) {
	const query = `
		SELECT id, transaction_id, notification_type, status, message, sent_at
		FROM notifications
		ORDER BY sent_at DESC, id DESC
	`
	return r.selectAll(ctx, query)
}

func (r *NotificationReadRepository) selectAll(ctx context.Context, query string, args ...any) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, args...)
	logQuery(query, args, len(notifications), err)

	if err != nil {
		return nil, errs.Store("list notifications", err)
	}
	return notifications, nil
}
