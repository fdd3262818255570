package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
)

//go:generate mockgen -source=workflow.go -destination=mock_workflow.go -package=services

// Orchestrator is the transaction component as seen by the gateway.
type Orchestrator interface {
	Create(ctx context.Context, in models.CreateTransactionInput) (*models.Transaction, bool, error)
	Get(ctx context.Context, transactionID string) (*models.Transaction, error)
	SetStatus(ctx context.Context, transactionID string, update models.StatusUpdate) (*models.Transaction, error)
}

// Evaluator is the fraud component as seen by the gateway.
type Evaluator interface {
	Evaluate(ctx context.Context, in models.EvaluateInput) (*models.FraudCheck, error)
	GetLatest(ctx context.Context, transactionID string) (*models.FraudCheck, error)
	List(ctx context.Context) ([]models.FraudCheck, error)
}

// Dispatcher is the notification component as seen by the gateway.
type Dispatcher interface {
	Dispatch(ctx context.Context, transactionID, audience, message string) (*models.Notification, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]models.Notification, error)
}

// PaymentWorkflow drives a payment through create, evaluate, propagate and
// notify. Each step is a separate call to the owning component; nothing is
// rolled back when a later step fails.
type PaymentWorkflow struct {
	orchestrator Orchestrator
	evaluator    Evaluator
	dispatcher   Dispatcher
}

// NewPaymentWorkflow creates a new PaymentWorkflow.
func NewPaymentWorkflow(orchestrator Orchestrator, evaluator Evaluator, dispatcher Dispatcher) *PaymentWorkflow {
	return &PaymentWorkflow{
		orchestrator: orchestrator,
		evaluator:    evaluator,
		dispatcher:   dispatcher,
	}
}

// Process runs the workflow. A failed create is returned as an error. Later
// failures are reported in the result with Complete=false; repeating the
// request with the same idempotency key resumes from the recorded state.
func (w *PaymentWorkflow) Process(ctx context.Context, in models.CreateTransactionInput) (*models.PaymentResult, error) {
	log := logger.FromContext(ctx)

	txn, replayed, err := w.orchestrator.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	res := &models.PaymentResult{
		Transaction:   txn,
		Replayed:      replayed,
		Notifications: []models.Notification{},
	}

	check, err := w.evaluate(ctx, txn, replayed)
	if err != nil {
		return failed(ctx, res, models.StepEvaluate, err), nil
	}
	res.FraudCheck = check

	txn, err = propagate(ctx, w.orchestrator, txn, check.FraudStatus)
	if err != nil {
		return failed(ctx, res, models.StepPropagate, err), nil
	}
	res.Transaction = txn

	sent := map[string]bool{}
	if replayed {
		existing, err := w.dispatcher.ListByTransaction(ctx, txn.TransactionID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return failed(ctx, res, models.StepNotify, err), nil
		}
		for _, n := range existing {
			sent[n.NotificationType] = true
			res.Notifications = append(res.Notifications, n)
		}
	}

	for _, audience := range audiences(txn, check) {
		if sent[audience] {
			continue
		}
		n, err := w.dispatcher.Dispatch(ctx, txn.TransactionID, audience, message(audience, txn, check))
		if err != nil {
			return failed(ctx, res, models.StepNotify, err), nil
		}
		res.Notifications = append(res.Notifications, *n)
	}

	res.Complete = true
	log.Infow("payment processed", "transaction_id", txn.TransactionID, "status", txn.Status,
		"fraud_status", check.FraudStatus, "replayed", replayed)
	return res, nil
}

// evaluate reuses the recorded verdict of a replayed payment.
func (w *PaymentWorkflow) evaluate(ctx context.Context, txn *models.Transaction, replayed bool) (*models.FraudCheck, error) {
	if replayed {
		check, err := w.evaluator.GetLatest(ctx, txn.TransactionID)
		if err == nil {
			return check, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
	}
	return w.evaluator.Evaluate(ctx, models.EvaluateInput{
		TransactionID: txn.TransactionID,
		Amount:        txn.Amount,
		FromAccount:   txn.FromAccount,
	})
}

func failed(ctx context.Context, res *models.PaymentResult, step string, err error) *models.PaymentResult {
	logger.FromContext(ctx).Warnw("payment incomplete", "transaction_id", res.Transaction.TransactionID,
		"failed_step", step, "retryable", errs.IsRetryable(err), "error", err)
	res.Complete = false
	res.FailedStep = step
	res.Error = err.Error()
	return res
}

// Summary assembles the transaction, its latest verdict and notifications.
func (w *PaymentWorkflow) Summary(ctx context.Context, transactionID string) (*models.PaymentSummary, error) {
	txn, err := w.orchestrator.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	sum := &models.PaymentSummary{
		Transaction:   txn,
		Notifications: []models.Notification{},
		Consistent:    true,
	}

	check, err := w.evaluator.GetLatest(ctx, transactionID)
	switch {
	case err == nil:
		sum.FraudCheck = check
		if target, ok := rules.PropagatedStatus(check.FraudStatus, txn.Status); ok {
			sum.Consistent = false
			sum.PendingStatus = target
		}
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	ns, err := w.dispatcher.ListByTransaction(ctx, transactionID)
	switch {
	case err == nil:
		sum.Notifications = ns
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}
	return sum, nil
}

// PropagateVerdict applies fraudStatus to the transaction. It is used by the
// verdict consumer and reports whether the status changed.
func (w *PaymentWorkflow) PropagateVerdict(ctx context.Context, transactionID, fraudStatus string) (bool, error) {
	txn, err := w.orchestrator.Get(ctx, transactionID)
	if err != nil {
		return false, err
	}
	updated, err := propagate(ctx, w.orchestrator, txn, fraudStatus)
	if err != nil {
		return false, err
	}
	return updated.Status != txn.Status, nil
}

// propagate moves txn to the status implied by fraudStatus with a guarded
// update. When another writer changed the status first, its value stands
// and the current record is returned.
func propagate(ctx context.Context, o Orchestrator, txn *models.Transaction, fraudStatus string) (*models.Transaction, error) {
	target, ok := rules.PropagatedStatus(fraudStatus, txn.Status)
	if !ok {
		return txn, nil
	}

	updated, err := o.SetStatus(ctx, txn.TransactionID, models.StatusUpdate{
		Status:         target,
		ExpectedStatus: txn.Status,
	})
	if errors.Is(err, errs.ErrStatusConflict) {
		logger.FromContext(ctx).Infow("verdict not applied, status changed concurrently",
			"transaction_id", txn.TransactionID, "target", target, "error", err)
		return o.Get(ctx, txn.TransactionID)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// audiences lists who must hear about txn: the customer always, compliance
// when the verdict is not CLEAR and the ledger once the transfer completed.
func audiences(txn *models.Transaction, check *models.FraudCheck) []string {
	out := []string{models.AudienceCustomer}
	if check.FraudStatus != models.FraudClear {
		out = append(out, models.AudienceCompliance)
	}
	if txn.Status == models.StatusCompleted {
		out = append(out, models.AudienceLedger)
	}
	return out
}

func message(audience string, txn *models.Transaction, check *models.FraudCheck) string {
	switch audience {
	case models.AudienceCompliance:
		return fmt.Sprintf("Transaction %s flagged %s: %s", txn.TransactionID, check.FraudStatus, check.Reason)
	case models.AudienceLedger:
		return fmt.Sprintf("Post %s %s from %s to %s", txn.Amount.String(), txn.Currency, txn.FromAccount, txn.ToAccount)
	default:
		return fmt.Sprintf("Your transfer of %s %s to %s is %s", txn.Amount.String(), txn.Currency, txn.ToAccount, txn.Status)
	}
}
