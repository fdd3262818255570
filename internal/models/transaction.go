package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
)

// Column limits of the record store.
const (
	MaxTransactionIDLen = 64
	MaxAccountLen       = 128
)

// Amount bounds. Comparing decimals rescales them to a common exponent, so
// unbounded exponents would make classification arbitrarily expensive.
const (
	MaxAmountIntegerDigits = 20
	MaxAmountScale         = 18
)

// ParseAmount parses a non-negative decimal amount within the amount bounds.
// Failures are validation errors on the amount field.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errs.Invalid("amount", "is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errs.Invalid("amount", "must be a number")
	}
	if amount.IsNegative() {
		return decimal.Zero, errs.Invalid("amount", "must not be negative")
	}
	if !AmountInRange(amount) {
		return decimal.Zero, errs.Invalid("amount", "out of range")
	}
	return amount, nil
}

// AmountInRange reports whether amount has at most MaxAmountIntegerDigits
// integer digits and at most MaxAmountScale fractional digits.
func AmountInRange(amount decimal.Decimal) bool {
	exp := amount.Exponent()
	if exp < -MaxAmountScale || exp > MaxAmountIntegerDigits {
		return false
	}
	digits := len(amount.Coefficient().String())
	if amount.IsNegative() {
		digits--
	}
	return digits+int(exp) <= MaxAmountIntegerDigits
}

// Canonical transaction statuses. Any other non-empty status is a manual
// override set through SetStatus.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusBlocked   = "BLOCKED"
)

// IsCanonicalStatus reports whether status is one of PENDING, COMPLETED, BLOCKED.
func IsCanonicalStatus(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// Transaction represents a transactions row. TransactionID is the correlation
// key shared with fraud checks and notifications.
type Transaction struct {
	TransactionID  string          `json:"transactionId" db:"transaction_id"`                      // Assigned once at creation
	IdempotencyKey *string         `json:"idempotencyKey,omitempty" db:"idempotency_key"`          // Client supplied key, optional
	Amount         decimal.Decimal `json:"amount" db:"amount" swaggertype:"string" example:"7000"` // Non-negative amount
	Currency       string          `json:"currency" db:"currency"`                                 // ISO-style currency code
	FromAccount    string          `json:"fromAccount" db:"from_account"`                          // Debited account
	ToAccount      string          `json:"toAccount" db:"to_account"`                              // Credited account
	Status         string          `json:"status" db:"status"`                                     // Canonical or override status
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`                              // Immutable
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`                              // Bumped on every status change
}

// CreateTransactionInput carries a creation request before validation.
// Amount is kept as text so that a non-numeric value is reported as a
// validation error on the amount field.
type CreateTransactionInput struct {
	IdempotencyKey string
	Amount         string
	Currency       string
	FromAccount    string
	ToAccount      string
}

// StatusUpdate is a status transition request. An empty ExpectedStatus means
// an unconditional (last writer wins) update.
type StatusUpdate struct {
	Status         string
	ExpectedStatus string
}

// Guarded reports whether the update carries an expected prior status.
func (u StatusUpdate) Guarded() bool {
	return u.ExpectedStatus != ""
}
