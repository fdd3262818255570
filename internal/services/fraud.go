package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
)

//go:generate mockgen -source=fraud.go -destination=mock_fraud.go -package=services

// FraudCheckWriter appends fraud checks.
type FraudCheckWriter interface {
	Save(ctx context.Context, check *models.FraudCheck) error
}

// FraudCheckReader reads fraud checks.
type FraudCheckReader interface {
	GetLatestByTransactionID(ctx context.Context, transactionID string) (*models.FraudCheck, error)
	List(ctx context.Context) ([]models.FraudCheck, error)
}

// FraudService classifies transaction snapshots. It never calls the
// orchestrator: propagating a verdict is the caller's job.
type FraudService struct {
	writer    FraudCheckWriter
	reader    FraudCheckReader
	publisher EventPublisher
	policy    rules.Policy
	now       func() time.Time
}

// NewFraudService creates a new FraudService.
func NewFraudService(writer FraudCheckWriter, reader FraudCheckReader, publisher EventPublisher, policy rules.Policy) *FraudService {
	return &FraudService{
		writer:    writer,
		reader:    reader,
		publisher: publisher,
		policy:    policy,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Evaluate applies the fraud policy and appends a new check.
func (s *FraudService) Evaluate(ctx context.Context, in models.EvaluateInput) (*models.FraudCheck, error) {
	log := logger.FromContext(ctx)

	in.TransactionID = strings.TrimSpace(in.TransactionID)
	in.FromAccount = strings.TrimSpace(in.FromAccount)
	if in.TransactionID == "" {
		return nil, errs.Invalid("transactionId", "is required")
	}
	if len(in.TransactionID) > models.MaxTransactionIDLen {
		return nil, errs.Invalid("transactionId", "is too long")
	}
	if in.FromAccount == "" {
		return nil, errs.Invalid("fromAccount", "is required")
	}
	if in.Amount.IsNegative() || !models.AmountInRange(in.Amount) {
		return nil, errs.Invalid("amount", "out of range")
	}

	verdict, rule := s.policy.Evaluate(rules.Input{Amount: in.Amount, FromAccount: in.FromAccount})

	check := &models.FraudCheck{
		TransactionID: in.TransactionID,
		FraudStatus:   verdict.Status,
		Reason:        verdict.Reason,
		CheckedAt:     s.now(),
	}
	if err := s.writer.Save(ctx, check); err != nil {
		log.Errorw("failed to save fraud check", "transaction_id", in.TransactionID, "error", err)
		return nil, err
	}

	log.Infow("fraud check recorded", "transaction_id", in.TransactionID, "fraud_status", check.FraudStatus, "rule", rule)
	s.publisher.Publish(ctx, models.LifecycleEvent{
		Type:          models.EventFraudChecked,
		TransactionID: in.TransactionID,
		FraudStatus:   check.FraudStatus,
	})
	return check, nil
}

// GetLatest returns the most recent check for transactionID or errs.ErrNotFound.
func (s *FraudService) GetLatest(ctx context.Context, transactionID string) (*models.FraudCheck, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, errs.Invalid("transactionId", "is required")
	}
	check, err := s.reader.GetLatestByTransactionID(ctx, transactionID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		logger.FromContext(ctx).Errorw("failed to get fraud check", "transaction_id", transactionID, "error", err)
	}
	return check, err
}

// List returns all checks, most recent first.
func (s *FraudService) List(ctx context.Context) ([]models.FraudCheck, error) {
	checks, err := s.reader.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list fraud checks", "error", err)
		return nil, err
	}
	return checks, nil
}
