package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

func newTestReconciler(t *testing.T) (*Reconciler, *MockOrchestrator, *MockEvaluator) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	orchestrator := NewMockOrchestrator(ctrl)
	evaluator := NewMockEvaluator(ctrl)
	return NewReconciler(orchestrator, evaluator, 4), orchestrator, evaluator
}

func TestReconciler_Run(t *testing.T) {
	r, orchestrator, evaluator := newTestReconciler(t)
	ctx := context.Background()

	evaluator.EXPECT().List(ctx).Return([]models.FraudCheck{
		{ID: 9, TransactionID: "tx-update", FraudStatus: models.FraudBlocked},
		{ID: 8, TransactionID: "tx-clear", FraudStatus: models.FraudClear},
		{ID: 7, TransactionID: "tx-conflict", FraudStatus: models.FraudSuspicious},
		{ID: 6, TransactionID: "tx-missing", FraudStatus: models.FraudBlocked},
		{ID: 5, TransactionID: "tx-broken", FraudStatus: models.FraudBlocked},
		{ID: 4, TransactionID: "tx-update", FraudStatus: models.FraudClear},
	}, nil)

	orchestrator.EXPECT().Get(ctx, "tx-update").Return(&models.Transaction{TransactionID: "tx-update", Status: models.StatusPending}, nil)
	orchestrator.EXPECT().SetStatus(ctx, "tx-update", models.StatusUpdate{Status: models.StatusBlocked, ExpectedStatus: models.StatusPending}).
		Return(&models.Transaction{TransactionID: "tx-update", Status: models.StatusBlocked}, nil)

	orchestrator.EXPECT().Get(ctx, "tx-clear").Return(&models.Transaction{TransactionID: "tx-clear", Status: models.StatusCompleted}, nil)

	orchestrator.EXPECT().Get(ctx, "tx-conflict").Return(&models.Transaction{TransactionID: "tx-conflict", Status: models.StatusCompleted}, nil)
	orchestrator.EXPECT().SetStatus(ctx, "tx-conflict", gomock.Any()).
		Return(nil, &errs.ConflictError{TransactionID: "tx-conflict", Expected: models.StatusCompleted, Actual: "REFUNDED"})

	orchestrator.EXPECT().Get(ctx, "tx-missing").Return(nil, errs.ErrNotFound)

	orchestrator.EXPECT().Get(ctx, "tx-broken").Return(nil, &errs.RemoteError{Service: "transactions", Err: errors.New("timeout")})

	report, err := r.Run(ctx)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "tx-broken")
	assert.Equal(t, models.ReconcileReport{
		Scanned:   5,
		Updated:   1,
		Conflicts: 1,
		Missing:   1,
		Skipped:   1,
		Failed:    1,
	}, report)
}

func TestReconciler_Run_ListFails(t *testing.T) {
	r, _, evaluator := newTestReconciler(t)
	ctx := context.Background()

	evaluator.EXPECT().List(ctx).Return(nil, errors.New("fraud unavailable"))

	report, err := r.Run(ctx)
	assert.EqualError(t, err, "fraud unavailable")
	assert.Equal(t, models.ReconcileReport{}, report)
}

func TestReconciler_Start_StopsOnCancel(t *testing.T) {
	r, _, evaluator := newTestReconciler(t)
	ctx, cancel := context.WithCancel(context.Background())

	evaluator.EXPECT().List(gomock.Any()).Return(nil, nil).AnyTimes()

	done := make(chan struct{})
	go func() {
		r.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
