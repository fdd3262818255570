package models

import (
	"strings"
	"time"
)

// Notification audiences.
const (
	AudienceCustomer   = "CUSTOMER"
	AudienceCompliance = "COMPLIANCE"
	AudienceLedger     = "LEDGER"
)

// Notification delivery statuses.
const (
	NotificationSent   = "SENT"
	NotificationFailed = "FAILED"
)

// ParseAudience normalizes an audience name such as "customer" or "LEDGER".
func ParseAudience(s string) (string, bool) {
	a := strings.ToUpper(strings.TrimSpace(s))
	switch a {
	case AudienceCustomer, AudienceCompliance, AudienceLedger:
		return a, true
	}
	return "", false
}

// Notification represents a notifications row. Duplicates per
// (transaction, audience) are allowed and rows are never deleted.
type Notification struct {
	ID               int64     `json:"id" db:"id"`
	TransactionID    string    `json:"transactionId" db:"transaction_id"`
	NotificationType string    `json:"notificationType" db:"notification_type"`
	Status           string    `json:"status" db:"status"`
	Message          string    `json:"message" db:"message"`
	SentAt           time.Time `json:"sentAt" db:"sent_at"`
}
