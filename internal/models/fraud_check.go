package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fraud verdicts.
const (
	FraudClear      = "CLEAR"
	FraudSuspicious = "SUSPICIOUS"
	FraudBlocked    = "BLOCKED"
)

// FraudCheck represents an append-only fraud_checks row. Several checks may
// exist for one transaction; the latest by CheckedAt is authoritative.
type FraudCheck struct {
	ID            int64     `json:"id" db:"id"`
	TransactionID string    `json:"transactionId" db:"transaction_id"`
	FraudStatus   string    `json:"fraudStatus" db:"fraud_status"`
	Reason        string    `json:"reason" db:"reason"`
	CheckedAt     time.Time `json:"checkedAt" db:"checked_at"`
}

// EvaluateInput is the transaction snapshot a fraud evaluation is run on.
type EvaluateInput struct {
	TransactionID string
	Amount        decimal.Decimal
	FromAccount   string
}
