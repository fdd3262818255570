package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
)

func newTestFraudService(t *testing.T) (*FraudService, *MockFraudCheckWriter, *MockFraudCheckReader, *MockEventPublisher) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := NewMockFraudCheckWriter(ctrl)
	reader := NewMockFraudCheckReader(ctrl)
	publisher := NewMockEventPublisher(ctrl)
	svc := NewFraudService(writer, reader, publisher, rules.FraudPolicy(rules.DefaultThresholds()))
	svc.now = func() time.Time { return fixedNow }
	return svc, writer, reader, publisher
}

func TestFraudService_Evaluate(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		from       string
		wantStatus string
		wantReason string
	}{
		{name: "blocked account wins over amount", amount: "20000", from: "BLOCKED-1", wantStatus: models.FraudBlocked, wantReason: rules.ReasonAccountBlocked},
		{name: "above high threshold", amount: "10000.01", from: "acc-1", wantStatus: models.FraudSuspicious, wantReason: rules.ReasonExceedsThreshold},
		{name: "between thresholds", amount: "6000", from: "acc-1", wantStatus: models.FraudSuspicious, wantReason: rules.ReasonRequiresReview},
		{name: "review threshold itself is clear", amount: "5000", from: "acc-1", wantStatus: models.FraudClear, wantReason: rules.ReasonNoFraudDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, writer, _, publisher := newTestFraudService(t)
			ctx := context.Background()

			writer.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, c *models.FraudCheck) error {
				c.ID = 7
				return nil
			})
			publisher.EXPECT().Publish(ctx, gomock.Any()).Do(func(_ context.Context, ev models.LifecycleEvent) {
				assert.Equal(t, models.EventFraudChecked, ev.Type)
				assert.Equal(t, tt.wantStatus, ev.FraudStatus)
			})

			check, err := svc.Evaluate(ctx, models.EvaluateInput{
				TransactionID: "tx-1",
				Amount:        decimal.RequireFromString(tt.amount),
				FromAccount:   tt.from,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(7), check.ID)
			assert.Equal(t, tt.wantStatus, check.FraudStatus)
			assert.Equal(t, tt.wantReason, check.Reason)
			assert.Equal(t, fixedNow, check.CheckedAt)
		})
	}
}

func TestFraudService_Evaluate_Errors(t *testing.T) {
	ctx := context.Background()

	svc, writer, _, _ := newTestFraudService(t)

	_, err := svc.Evaluate(ctx, models.EvaluateInput{FromAccount: "acc-1"})
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "transactionId", ve.Field)

	_, err = svc.Evaluate(ctx, models.EvaluateInput{TransactionID: "tx-1"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "fromAccount", ve.Field)

	_, err = svc.Evaluate(ctx, models.EvaluateInput{TransactionID: strings.Repeat("x", models.MaxTransactionIDLen+1), FromAccount: "acc-1"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "transactionId", ve.Field)

	_, err = svc.Evaluate(ctx, models.EvaluateInput{TransactionID: "tx-1", FromAccount: "acc-1", Amount: decimal.New(1, 900000000)})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "amount", ve.Field)

	writer.EXPECT().Save(ctx, gomock.Any()).Return(errs.Store("insert fraud check", errors.New("down")))
	_, err = svc.Evaluate(ctx, models.EvaluateInput{TransactionID: "tx-1", FromAccount: "acc-1", Amount: decimal.NewFromInt(1)})
	assert.True(t, errs.IsRetryable(err))
}

func TestFraudService_Reads(t *testing.T) {
	svc, _, reader, _ := newTestFraudService(t)
	ctx := context.Background()

	reader.EXPECT().GetLatestByTransactionID(ctx, "tx-1").Return(&models.FraudCheck{ID: 2, TransactionID: "tx-1"}, nil)
	check, err := svc.GetLatest(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), check.ID)

	reader.EXPECT().GetLatestByTransactionID(ctx, "tx-2").Return(nil, errs.ErrNotFound)
	_, err = svc.GetLatest(ctx, "tx-2")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	reader.EXPECT().List(ctx).Return([]models.FraudCheck{{ID: 2}, {ID: 1}}, nil)
	checks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, checks, 2)
}
