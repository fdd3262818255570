// Package rules declares the ordered, first-match classification policies
// used by the orchestrator (initial status) and the fraud evaluator
// (verdict), and the rule that maps a verdict onto a transaction status.
package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

// Reasons recorded on fraud checks.
const (
	ReasonAccountBlocked     = "account is blocked"
	ReasonExceedsThreshold   = "amount exceeds threshold"
	ReasonRequiresReview     = "amount requires manual review"
	ReasonNoFraudDetected    = "no fraud detected"
	ReasonHighValue          = "amount above high-value threshold"
	ReasonWithinLimits       = "within limits"
	fallbackRuleName         = "fallback"
	ruleBlockedAccount       = "blocked-account"
	ruleAmountExceedsHigh    = "amount-exceeds-threshold"
	ruleAmountRequiresReview = "amount-requires-review"
	ruleHighValue            = "high-value"
)

// Input is the snapshot a policy classifies.
type Input struct {
	Amount      decimal.Decimal
	FromAccount string
	ToAccount   string
}

// Verdict is the outcome of a rule.
type Verdict struct {
	Status string
	Reason string
}

// Rule yields Then when When matches.
type Rule struct {
	Name string
	When func(Input) bool
	Then Verdict
}

// Policy is an ordered rule list. The first matching rule decides; later
// rules are never consulted. Fallback applies when nothing matches.
type Policy struct {
	Rules    []Rule
	Fallback Verdict
}

// Evaluate returns the verdict and the name of the rule that produced it.
func (p Policy) Evaluate(in Input) (Verdict, string) {
	for _, r := range p.Rules {
		if r.When(in) {
			return r.Then, r.Name
		}
	}
	return p.Fallback, fallbackRuleName
}

// AccountPredicate reports whether an account is blocked.
type AccountPredicate func(account string) bool

// BlockedAccounts matches accounts that contain marker (case-insensitive) or
// equal one of accounts. An empty marker disables substring matching.
func BlockedAccounts(marker string, accounts []string) AccountPredicate {
	marker = strings.ToUpper(strings.TrimSpace(marker))
	exact := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if a = strings.TrimSpace(a); a != "" {
			exact[a] = struct{}{}
		}
	}
	return func(account string) bool {
		if _, ok := exact[account]; ok {
			return true
		}
		return marker != "" && strings.Contains(strings.ToUpper(account), marker)
	}
}

// Thresholds parameterizes both policies.
type Thresholds struct {
	Blocked   AccountPredicate
	HighValue decimal.Decimal // creation: above it the transaction stays PENDING
	Review    decimal.Decimal // fraud: above it the amount needs manual review
	High      decimal.Decimal // fraud: above it the amount exceeds the threshold
}

// DefaultThresholds returns the production defaults: marker "BLOCKED",
// high value 5000, review 5000, high 10000.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Blocked:   BlockedAccounts("BLOCKED", nil),
		HighValue: decimal.NewFromInt(5000),
		Review:    decimal.NewFromInt(5000),
		High:      decimal.NewFromInt(10000),
	}
}

func (t Thresholds) blocked(in Input) bool {
	return t.Blocked != nil && t.Blocked(in.FromAccount)
}

// FraudPolicy: blocked account, then amount > High, then amount > Review.
func FraudPolicy(t Thresholds) Policy {
	return Policy{
		Rules: []Rule{
			{
				Name: ruleBlockedAccount,
				When: t.blocked,
				Then: Verdict{Status: models.FraudBlocked, Reason: ReasonAccountBlocked},
			},
			{
				Name: ruleAmountExceedsHigh,
				When: func(in Input) bool { return in.Amount.GreaterThan(t.High) },
				Then: Verdict{Status: models.FraudSuspicious, Reason: ReasonExceedsThreshold},
			},
			{
				Name: ruleAmountRequiresReview,
				When: func(in Input) bool { return in.Amount.GreaterThan(t.Review) },
				Then: Verdict{Status: models.FraudSuspicious, Reason: ReasonRequiresReview},
			},
		},
		Fallback: Verdict{Status: models.FraudClear, Reason: ReasonNoFraudDetected},
	}
}

// ClassificationPolicy assigns the initial transaction status.
func ClassificationPolicy(t Thresholds) Policy {
	return Policy{
		Rules: []Rule{
			{
				Name: ruleBlockedAccount,
				When: t.blocked,
				Then: Verdict{Status: models.StatusBlocked, Reason: ReasonAccountBlocked},
			},
			{
				Name: ruleHighValue,
				When: func(in Input) bool { return in.Amount.GreaterThan(t.HighValue) },
				Then: Verdict{Status: models.StatusPending, Reason: ReasonHighValue},
			},
		},
		Fallback: Verdict{Status: models.StatusCompleted, Reason: ReasonWithinLimits},
	}
}

// PropagatedStatus returns the transaction status a fraud verdict calls for,
// and false when the current status already reflects it. A BLOCKED verdict
// blocks; a SUSPICIOUS verdict holds a COMPLETED transaction as PENDING.
// CLEAR never changes anything, and manual-override statuses are left alone.
func PropagatedStatus(fraudStatus, currentStatus string) (string, bool) {
	if !models.IsCanonicalStatus(currentStatus) {
		return "", false
	}
	switch fraudStatus {
	case models.FraudBlocked:
		if currentStatus != models.StatusBlocked {
			return models.StatusBlocked, true
		}
	case models.FraudSuspicious:
		if currentStatus == models.StatusCompleted {
			return models.StatusPending, true
		}
	}
	return "", false
}
