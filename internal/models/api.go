package models

import (
	"encoding/json"
	"strings"
)

// Error codes carried in ErrorResponse.Code. Facades map them back to the
// errs taxonomy.
const (
	CodeValidation            = "validation"
	CodeNotFound              = "not_found"
	CodeStatusConflict        = "status_conflict"
	CodeIdempotencyInProgress = "idempotency_in_progress"
	CodeIdempotencyKeyReused  = "idempotency_key_reused"
	CodeStoreUnavailable      = "store_unavailable"
	CodeRemoteFailure         = "remote_failure"
	CodeUnauthorized          = "unauthorized"
	CodeInternal              = "internal"
)

// CreateTransactionRequest represents the JSON body for creating a transaction
// swagger:model CreateTransactionRequest
type CreateTransactionRequest struct {
	// Optional idempotency key; the Idempotency-Key header takes precedence
	IdempotencyKey string `json:"idempotencyKey,omitempty" example:"order-42"`

	// Amount as a JSON number or a numeric string
	// required: true
	Amount json.RawMessage `json:"amount" swaggertype:"string" example:"7000"`

	// Currency code, defaults to USD
	Currency string `json:"currency,omitempty" example:"USD"`

	// required: true
	FromAccount string `json:"fromAccount" example:"acc-1"`

	// required: true
	ToAccount string `json:"toAccount" example:"acc-2"`
}

// Input converts the body into a creation request. A non-empty headerKey
// overrides the key from the body.
func (r CreateTransactionRequest) Input(headerKey string) CreateTransactionInput {
	key := r.IdempotencyKey
	if strings.TrimSpace(headerKey) != "" {
		key = headerKey
	}
	return CreateTransactionInput{
		IdempotencyKey: key,
		Amount:         AmountText(r.Amount),
		Currency:       r.Currency,
		FromAccount:    r.FromAccount,
		ToAccount:      r.ToAccount,
	}
}

// AmountText returns the textual amount of a JSON number or string.
func AmountText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return s
		}
		return text
	}
	return s
}

// AmountJSON encodes an amount as a JSON string.
func AmountJSON(amount string) json.RawMessage {
	b, _ := json.Marshal(amount)
	return b
}

// SetStatusRequest represents the JSON body for a status transition
// swagger:model SetStatusRequest
type SetStatusRequest struct {
	// New status, any non-empty value
	// required: true
	Status string `json:"status" example:"BLOCKED"`

	// Expected prior status; when set the update is guarded
	ExpectedStatus string `json:"expectedStatus,omitempty" example:"PENDING"`
}

// FraudCheckRequest represents the JSON body for a fraud evaluation
// swagger:model FraudCheckRequest
type FraudCheckRequest struct {
	// required: true
	TransactionID string `json:"transactionId" example:"tx-0b6f1c1e"`

	// required: true
	Amount json.RawMessage `json:"amount" swaggertype:"string" example:"7000"`

	// required: true
	FromAccount string `json:"fromAccount" example:"acc-1"`
}

// NotifyRequest represents the JSON body for dispatching a notification
// swagger:model NotifyRequest
type NotifyRequest struct {
	// required: true
	TransactionID string `json:"transactionId" example:"tx-0b6f1c1e"`

	// required: true
	Message string `json:"message" example:"Your transfer is COMPLETED"`
}

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`

	// Set when repeating the same request may succeed
	Retryable bool `json:"retryable,omitempty"`
}

// TransactionList is the body of GET /transactions
type TransactionList struct {
	Items []Transaction `json:"items"`
	Count int           `json:"count"`
}

// FraudCheckList is the body of GET /fraud-checks
type FraudCheckList struct {
	Items []FraudCheck `json:"items"`
	Count int          `json:"count"`
}

// NotificationList is the body of the notification listings
type NotificationList struct {
	Items []Notification `json:"items"`
	Count int            `json:"count"`
}

// ReconcileResponse is the body of POST /reconcile
type ReconcileResponse struct {
	Report ReconcileReport `json:"report"`
	Errors []string        `json:"errors,omitempty"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status     string   `json:"status" example:"ok"`
	Components []string `json:"components"`
}
