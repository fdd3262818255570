package models

import "time"

// Lifecycle event types published after a successful write.
const (
	EventTransactionCreated       = "transaction.created"
	EventTransactionStatusChanged = "transaction.status_changed"
	EventFraudChecked             = "fraud.checked"
	EventNotificationDispatched   = "notification.dispatched"
)

// LifecycleEvent is the message published to Kafka, keyed by TransactionID.
type LifecycleEvent struct {
	EventID        string    `json:"eventId"`
	Type           string    `json:"type"`
	TransactionID  string    `json:"transactionId"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	FraudStatus    string    `json:"fraudStatus,omitempty"`
	Audience       string    `json:"audience,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}
