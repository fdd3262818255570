package models

// Workflow steps reported in PaymentResult.FailedStep.
const (
	StepCreate    = "create"
	StepEvaluate  = "evaluate"
	StepPropagate = "propagate"
	StepNotify    = "notify"
)

// PaymentResult is the outcome of one pass of the payment workflow. When
// Complete is false the steps after FailedStep did not run; the caller may
// repeat the request with the same idempotency key.
type PaymentResult struct {
	Transaction   *Transaction   `json:"transaction"`
	FraudCheck    *FraudCheck    `json:"fraudCheck,omitempty"`
	Notifications []Notification `json:"notifications"`
	Replayed      bool           `json:"replayed"`
	Complete      bool           `json:"complete"`
	FailedStep    string         `json:"failedStep,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// PaymentSummary is the cross-component view of one transaction.
// Consistent is false while the latest fraud verdict is not yet reflected in
// the transaction status.
type PaymentSummary struct {
	Transaction   *Transaction   `json:"transaction"`
	FraudCheck    *FraudCheck    `json:"fraudCheck,omitempty"`
	Notifications []Notification `json:"notifications"`
	Consistent    bool           `json:"consistent"`
	PendingStatus string         `json:"pendingStatus,omitempty"`
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Updated   int `json:"updated"`
	Conflicts int `json:"conflicts"`
	Missing   int `json:"missing"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
