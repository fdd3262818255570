package facades

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

const notificationService = "notifications"

// NotificationFacade calls the notification dispatcher.
type NotificationFacade struct {
	client *resty.Client
}

// NewNotificationFacade creates a new NotificationFacade.
func NewNotificationFacade(client *resty.Client) *NotificationFacade {
	return &NotificationFacade{client: client}
}

// Dispatch sends a notification to audience.
func (f *NotificationFacade) Dispatch(ctx context.Context, transactionID, audience, message string) (*models.Notification, error) {
	var n models.Notification
	resp, err := request(ctx, f.client).
		SetPathParam("audience", audience).
		SetBody(models.NotifyRequest{TransactionID: transactionID, Message: message}).
		SetResult(&n).
		Post("/notify/{audience}")
	if err := responseError(notificationService, resp, err); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByTransaction fetches the notifications of one transaction.
func (f *NotificationFacade) ListByTransaction(ctx context.Context, transactionID string) ([]models.Notification, error) {
	var list models.NotificationList
	resp, err := request(ctx, f.client).
		SetPathParam("transactionId", transactionID).
		SetResult(&list).
		Get("/notifications/{transactionId}")
	if err := responseError(notificationService, resp, err); err != nil {
		return nil, err
	}
	return list.Items, nil
}
