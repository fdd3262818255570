package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

type workflowMocks struct {
	orchestrator *MockOrchestrator
	evaluator    *MockEvaluator
	dispatcher   *MockDispatcher
}

func newTestWorkflow(t *testing.T) (*PaymentWorkflow, workflowMocks) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := workflowMocks{
		orchestrator: NewMockOrchestrator(ctrl),
		evaluator:    NewMockEvaluator(ctrl),
		dispatcher:   NewMockDispatcher(ctrl),
	}
	return NewPaymentWorkflow(m.orchestrator, m.evaluator, m.dispatcher), m
}

func testTxn(status string) *models.Transaction {
	return &models.Transaction{
		TransactionID: "tx-1",
		Amount:        decimal.NewFromInt(7000),
		Currency:      "USD",
		FromAccount:   "acc-1",
		ToAccount:     "acc-2",
		Status:        status,
	}
}

func sentTo(audience string) func(context.Context, string, string, string) (*models.Notification, error) {
	return func(_ context.Context, txID, aud, msg string) (*models.Notification, error) {
		return &models.Notification{TransactionID: txID, NotificationType: aud, Status: models.NotificationSent, Message: msg}, nil
	}
}

func TestPaymentWorkflow_Process_ClearCompletes(t *testing.T) {
	wf, m := newTestWorkflow(t)
	ctx := context.Background()
	in := models.CreateTransactionInput{Amount: "100", FromAccount: "acc-1", ToAccount: "acc-2"}
	txn := testTxn(models.StatusCompleted)

	m.orchestrator.EXPECT().Create(ctx, in).Return(txn, false, nil)
	m.evaluator.EXPECT().Evaluate(ctx, gomock.Any()).Return(&models.FraudCheck{TransactionID: "tx-1", FraudStatus: models.FraudClear}, nil)
	m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceCustomer, gomock.Any()).DoAndReturn(sentTo(models.AudienceCustomer))
	m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceLedger, "Post 7000 USD from acc-1 to acc-2").DoAndReturn(sentTo(models.AudienceLedger))

	res, err := wf.Process(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, models.StatusCompleted, res.Transaction.Status)
	assert.Len(t, res.Notifications, 2)
}

func TestPaymentWorkflow_Process_SuspiciousHoldsCompleted(t *testing.T) {
	wf, m := newTestWorkflow(t)
	ctx := context.Background()
	in := models.CreateTransactionInput{Amount: "7000", FromAccount: "acc-1", ToAccount: "acc-2"}

	m.orchestrator.EXPECT().Create(ctx, in).Return(testTxn(models.StatusCompleted), false, nil)
	m.evaluator.EXPECT().Evaluate(ctx, models.EvaluateInput{TransactionID: "tx-1", Amount: decimal.NewFromInt(7000), FromAccount: "acc-1"}).
		Return(&models.FraudCheck{TransactionID: "tx-1", FraudStatus: models.FraudSuspicious, Reason: "amount requires manual review"}, nil)
	m.orchestrator.EXPECT().SetStatus(ctx, "tx-1", models.StatusUpdate{Status: models.StatusPending, ExpectedStatus: models.StatusCompleted}).
		Return(testTxn(models.StatusPending), nil)
	m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceCustomer, gomock.Any()).DoAndReturn(sentTo(models.AudienceCustomer))
	m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceCompliance, "Transaction tx-1 flagged SUSPICIOUS: amount requires manual review").
		DoAndReturn(sentTo(models.AudienceCompliance))

	res, err := wf.Process(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, models.StatusPending, res.Transaction.Status)
	assert.Len(t, res.Notifications, 2)
}

func TestPaymentWorkflow_Process_ConflictKeepsConcurrentValue(t *testing.T) {
	wf, m := newTestWorkflow(t)
	ctx := context.Background()
	in := models.CreateTransactionInput{Amount: "1", FromAccount: "acc-1", ToAccount: "acc-2"}

	m.orchestrator.EXPECT().Create(ctx, in).Return(testTxn(models.StatusCompleted), false, nil)
	m.evaluator.EXPECT().Evaluate(ctx, gomock.Any()).Return(&models.FraudCheck{FraudStatus: models.FraudBlocked}, nil)
	m.orchestrator.EXPECT().SetStatus(ctx, "tx-1", gomock.Any()).
		Return(nil, &errs.ConflictError{TransactionID: "tx-1", Expected: models.StatusCompleted, Actual: "REFUNDED"})
	m.orchestrator.EXPECT().Get(ctx, "tx-1").Return(testTxn("REFUNDED"), nil)
	m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceCustomer, gomock.Any()).DoAndReturn(sentTo(models.AudienceCustomer))
	m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceCompliance, gomock.Any()).DoAndReturn(sentTo(models.AudienceCompliance))

	res, err := wf.Process(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, "REFUNDED", res.Transaction.Status)
}

func TestPaymentWorkflow_Process_PartialFailure(t *testing.T) {
	ctx := context.Background()
	in := models.CreateTransactionInput{Amount: "1", FromAccount: "acc-1", ToAccount: "acc-2"}

	t.Run("create failure is returned", func(t *testing.T) {
		wf, m := newTestWorkflow(t)
		m.orchestrator.EXPECT().Create(ctx, in).Return(nil, false, errs.Invalid("amount", "is required"))

		res, err := wf.Process(ctx, in)
		assert.Nil(t, res)
		var ve *errs.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("evaluate failure leaves the transaction", func(t *testing.T) {
		wf, m := newTestWorkflow(t)
		m.orchestrator.EXPECT().Create(ctx, in).Return(testTxn(models.StatusCompleted), false, nil)
		m.evaluator.EXPECT().Evaluate(ctx, gomock.Any()).Return(nil, &errs.RemoteError{Service: "fraud", StatusCode: 503, Err: errors.New("unavailable")})

		res, err := wf.Process(ctx, in)
		require.NoError(t, err)
		assert.False(t, res.Complete)
		assert.Equal(t, models.StepEvaluate, res.FailedStep)
		assert.Equal(t, "tx-1", res.Transaction.TransactionID)
		assert.Nil(t, res.FraudCheck)
	})

	t.Run("notify failure keeps earlier notifications", func(t *testing.T) {
		wf, m := newTestWorkflow(t)
		m.orchestrator.EXPECT().Create(ctx, in).Return(testTxn(models.StatusCompleted), false, nil)
		m.evaluator.EXPECT().Evaluate(ctx, gomock.Any()).Return(&models.FraudCheck{FraudStatus: models.FraudClear}, nil)
		m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceCustomer, gomock.Any()).DoAndReturn(sentTo(models.AudienceCustomer))
		m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceLedger, gomock.Any()).Return(nil, errors.New("timeout"))

		res, err := wf.Process(ctx, in)
		require.NoError(t, err)
		assert.False(t, res.Complete)
		assert.Equal(t, models.StepNotify, res.FailedStep)
		assert.Len(t, res.Notifications, 1)
	})
}

func TestPaymentWorkflow_Process_ReplayResumes(t *testing.T) {
	wf, m := newTestWorkflow(t)
	ctx := context.Background()
	in := models.CreateTransactionInput{IdempotencyKey: "k", Amount: "1", FromAccount: "acc-1", ToAccount: "acc-2"}

	m.orchestrator.EXPECT().Create(ctx, in).Return(testTxn(models.StatusCompleted), true, nil)
	m.evaluator.EXPECT().GetLatest(ctx, "tx-1").Return(&models.FraudCheck{FraudStatus: models.FraudClear}, nil)
	m.dispatcher.EXPECT().ListByTransaction(ctx, "tx-1").
		Return([]models.Notification{{TransactionID: "tx-1", NotificationType: models.AudienceCustomer}}, nil)
	m.dispatcher.EXPECT().Dispatch(ctx, "tx-1", models.AudienceLedger, gomock.Any()).DoAndReturn(sentTo(models.AudienceLedger))

	res, err := wf.Process(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.True(t, res.Replayed)
	assert.Len(t, res.Notifications, 2)
}

func TestPaymentWorkflow_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("pending verdict is reported", func(t *testing.T) {
		wf, m := newTestWorkflow(t)
		m.orchestrator.EXPECT().Get(ctx, "tx-1").Return(testTxn(models.StatusCompleted), nil)
		m.evaluator.EXPECT().GetLatest(ctx, "tx-1").Return(&models.FraudCheck{FraudStatus: models.FraudBlocked}, nil)
		m.dispatcher.EXPECT().ListByTransaction(ctx, "tx-1").Return(nil, errs.ErrNotFound)

		sum, err := wf.Summary(ctx, "tx-1")
		require.NoError(t, err)
		assert.False(t, sum.Consistent)
		assert.Equal(t, models.StatusBlocked, sum.PendingStatus)
		assert.Empty(t, sum.Notifications)
	})

	t.Run("no verdict is consistent", func(t *testing.T) {
		wf, m := newTestWorkflow(t)
		m.orchestrator.EXPECT().Get(ctx, "tx-1").Return(testTxn(models.StatusPending), nil)
		m.evaluator.EXPECT().GetLatest(ctx, "tx-1").Return(nil, errs.ErrNotFound)
		m.dispatcher.EXPECT().ListByTransaction(ctx, "tx-1").Return([]models.Notification{{ID: 1}}, nil)

		sum, err := wf.Summary(ctx, "tx-1")
		require.NoError(t, err)
		assert.True(t, sum.Consistent)
		assert.Nil(t, sum.FraudCheck)
		assert.Len(t, sum.Notifications, 1)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		wf, m := newTestWorkflow(t)
		m.orchestrator.EXPECT().Get(ctx, "tx-x").Return(nil, errs.ErrNotFound)

		_, err := wf.Summary(ctx, "tx-x")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestPaymentWorkflow_PropagateVerdict(t *testing.T) {
	ctx := context.Background()

	wf, m := newTestWorkflow(t)
	m.orchestrator.EXPECT().Get(ctx, "tx-1").Return(testTxn(models.StatusPending), nil)
	m.orchestrator.EXPECT().SetStatus(ctx, "tx-1", models.StatusUpdate{Status: models.StatusBlocked, ExpectedStatus: models.StatusPending}).
		Return(testTxn(models.StatusBlocked), nil)

	changed, err := wf.PropagateVerdict(ctx, "tx-1", models.FraudBlocked)
	require.NoError(t, err)
	assert.True(t, changed)

	m.orchestrator.EXPECT().Get(ctx, "tx-1").Return(testTxn(models.StatusPending), nil)
	changed, err = wf.PropagateVerdict(ctx, "tx-1", models.FraudSuspicious)
	require.NoError(t, err)
	assert.False(t, changed)
}
