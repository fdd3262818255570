package services

import (
	"context"
	"strings"
	"time"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

//go:generate mockgen -source=notification.go -destination=mock_notification.go -package=services

// NotificationWriter appends notifications.
type NotificationWriter interface {
	Save(ctx context.Context, n *models.Notification) error
}

// NotificationReader reads notifications.
type NotificationReader interface {
	ListByTransactionID(ctx context.Context, transactionID string) ([]models.Notification, error)
	List(ctx context.Context) ([]models.Notification, error)
}

// NotificationService records notifications per audience. Delivery is
// simulated and always succeeds; repeated dispatches are not deduplicated.
type NotificationService struct {
	writer    NotificationWriter
	reader    NotificationReader
	publisher EventPublisher
	now       func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(writer NotificationWriter, reader NotificationReader, publisher EventPublisher) *NotificationService {
	return &NotificationService{
		writer:    writer,
		reader:    reader,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Dispatch records a SENT notification for audience.
func (s *NotificationService) Dispatch(ctx context.Context, transactionID, audience, message string) (*models.Notification, error) {
	log := logger.FromContext(ctx)

	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, errs.Invalid("transactionId", "is required")
	}
	if len(transactionID) > models.MaxTransactionIDLen {
		return nil, errs.Invalid("transactionId", "is too long")
	}
	aud, ok := models.ParseAudience(audience)
	if !ok {
		return nil, errs.Invalid("audience", "must be one of CUSTOMER, COMPLIANCE, LEDGER")
	}
	if strings.TrimSpace(message) == "" {
		return nil, errs.Invalid("message", "is required")
	}

	n := &models.Notification{
		TransactionID:    transactionID,
		NotificationType: aud,
		Status:           models.NotificationSent,
		Message:          message,
		SentAt:           s.now(),
	}
	if err := s.writer.Save(ctx, n); err != nil {
		log.Errorw("failed to save notification", "transaction_id", transactionID, "audience", aud, "error", err)
		return nil, err
	}

	log.Infow("notification sent", "transaction_id", transactionID, "audience", aud, "notification_id", n.ID)
	s.publisher.Publish(ctx, models.LifecycleEvent{
		Type:          models.EventNotificationDispatched,
		TransactionID: transactionID,
		Audience:      aud,
		Status:        n.Status,
	})
	return n, nil
}

// ListByTransaction returns the notifications of one transaction in
// insertion order. A transaction without notifications is errs.ErrNotFound:
// the dispatcher only knows transaction ids through its own records.
func (s *NotificationService) ListByTransaction(ctx context.Context, transactionID string) ([]models.Notification, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, errs.Invalid("transactionId", "is required")
	}
	ns, err := s.reader.ListByTransactionID(ctx, transactionID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list notifications", "transaction_id", transactionID, "error", err)
		return nil, err
	}
	if len(ns) == 0 {
		return nil, errs.ErrNotFound
	}
	return ns, nil
}

// List returns all notifications, most recently sent first.
func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	ns, err := s.reader.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list notifications", "error", err)
		return nil, err
	}
	return ns, nil
}
