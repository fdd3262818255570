package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
)

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeUpdated
	outcomeConflict
	outcomeMissing
	outcomeFailed
)

// Reconciler re-applies the latest fraud verdict of every transaction whose
// status does not reflect it yet. It repairs propagation steps lost to
// crashes or dropped events.
type Reconciler struct {
	orchestrator Orchestrator
	evaluator    Evaluator
	concurrency  int
}

// NewReconciler creates a new Reconciler. concurrency bounds the number of
// transactions repaired in parallel.
func NewReconciler(orchestrator Orchestrator, evaluator Evaluator, concurrency int) *Reconciler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Reconciler{
		orchestrator: orchestrator,
		evaluator:    evaluator,
		concurrency:  concurrency,
	}
}

// Run performs one pass. Per-transaction failures are counted in the report
// and combined into the returned error; they do not stop the pass.
func (r *Reconciler) Run(ctx context.Context) (models.ReconcileReport, error) {
	var report models.ReconcileReport

	checks, err := r.evaluator.List(ctx)
	if err != nil {
		return report, err
	}
	latest := latestPerTransaction(checks)
	report.Scanned = len(latest)

	var (
		mu     sync.Mutex
		result error
		g      errgroup.Group
	)
	g.SetLimit(r.concurrency)

	for _, check := range latest {
		g.Go(func() error {
			out, err := r.reconcile(ctx, check)

			mu.Lock()
			defer mu.Unlock()
			switch out {
			case outcomeUpdated:
				report.Updated++
			case outcomeConflict:
				report.Conflicts++
			case outcomeMissing:
				report.Missing++
			case outcomeSkipped:
				report.Skipped++
			case outcomeFailed:
				report.Failed++
				result = multierr.Append(result, fmt.Errorf("reconcile %s: %w", check.TransactionID, err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return report, result
}

func (r *Reconciler) reconcile(ctx context.Context, check models.FraudCheck) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcomeFailed, err
	}

	txn, err := r.orchestrator.Get(ctx, check.TransactionID)
	if errors.Is(err, errs.ErrNotFound) {
		return outcomeMissing, nil
	}
	if err != nil {
		return outcomeFailed, err
	}

	target, ok := rules.PropagatedStatus(check.FraudStatus, txn.Status)
	if !ok {
		return outcomeSkipped, nil
	}

	_, err = r.orchestrator.SetStatus(ctx, txn.TransactionID, models.StatusUpdate{
		Status:         target,
		ExpectedStatus: txn.Status,
	})
	switch {
	case errors.Is(err, errs.ErrStatusConflict):
		return outcomeConflict, nil
	case err != nil:
		return outcomeFailed, err
	}
	logger.FromContext(ctx).Infow("status reconciled", "transaction_id", txn.TransactionID,
		"from", txn.Status, "to", target, "fraud_status", check.FraudStatus)
	return outcomeUpdated, nil
}

// latestPerTransaction keeps the first check seen per transaction. checks
// are ordered most recent first.
func latestPerTransaction(checks []models.FraudCheck) []models.FraudCheck {
	seen := make(map[string]bool, len(checks))
	out := make([]models.FraudCheck, 0, len(checks))
	for _, c := range checks {
		if seen[c.TransactionID] {
			continue
		}
		seen[c.TransactionID] = true
		out = append(out, c)
	}
	return out
}

// Start runs a pass every interval until ctx is done.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Log.Infow("reconciler started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Log.Infow("reconciler stopped")
			return
		case <-ticker.C:
			report, err := r.Run(ctx)
			if err != nil {
				logger.Log.Errorw("reconcile pass finished with errors", "report", report, "error", err)
				continue
			}
			logger.Log.Infow("reconcile pass finished", "report", report)
		}
	}
}
