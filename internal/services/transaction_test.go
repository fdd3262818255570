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

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type txnMocks struct {
	writer    *MockTransactionWriter
	reader    *MockTransactionReader
	keys      *MockIdempotencyStore
	publisher *MockEventPublisher
}

func newTestTransactionService(t *testing.T) (*TransactionService, txnMocks) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := txnMocks{
		writer:    NewMockTransactionWriter(ctrl),
		reader:    NewMockTransactionReader(ctrl),
		keys:      NewMockIdempotencyStore(ctrl),
		publisher: NewMockEventPublisher(ctrl),
	}
	svc := NewTransactionService(m.writer, m.reader, m.keys, m.publisher,
		rules.ClassificationPolicy(rules.DefaultThresholds()), "usd")
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "tx-1" }
	return svc, m
}

func TestTransactionService_Create_Classification(t *testing.T) {
	tests := []struct {
		name       string
		in         models.CreateTransactionInput
		wantStatus string
	}{
		{
			name:       "small amount completes",
			in:         models.CreateTransactionInput{Amount: "100", FromAccount: "acc-1", ToAccount: "acc-2"},
			wantStatus: models.StatusCompleted,
		},
		{
			name:       "threshold itself completes",
			in:         models.CreateTransactionInput{Amount: "5000", FromAccount: "acc-1", ToAccount: "acc-2"},
			wantStatus: models.StatusCompleted,
		},
		{
			name:       "above threshold stays pending",
			in:         models.CreateTransactionInput{Amount: "5000.01", FromAccount: "acc-1", ToAccount: "acc-2"},
			wantStatus: models.StatusPending,
		},
		{
			name:       "blocked source account",
			in:         models.CreateTransactionInput{Amount: "1", FromAccount: "acc-blocked-7", ToAccount: "acc-2"},
			wantStatus: models.StatusBlocked,
		},
		{
			name:       "zero amount is accepted",
			in:         models.CreateTransactionInput{Amount: "0", FromAccount: "acc-1", ToAccount: "acc-2"},
			wantStatus: models.StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestTransactionService(t)
			ctx := context.Background()

			m.writer.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, txn *models.Transaction) error {
				assert.Equal(t, "tx-1", txn.TransactionID)
				assert.Equal(t, tt.wantStatus, txn.Status)
				assert.Equal(t, "USD", txn.Currency)
				assert.Nil(t, txn.IdempotencyKey)
				assert.Equal(t, fixedNow, txn.CreatedAt)
				assert.Equal(t, fixedNow, txn.UpdatedAt)
				return nil
			})
			m.publisher.EXPECT().Publish(ctx, gomock.Any()).Do(func(_ context.Context, ev models.LifecycleEvent) {
				assert.Equal(t, models.EventTransactionCreated, ev.Type)
				assert.Equal(t, tt.wantStatus, ev.Status)
			})

			txn, replayed, err := svc.Create(ctx, tt.in)
			require.NoError(t, err)
			assert.False(t, replayed)
			assert.Equal(t, tt.wantStatus, txn.Status)
		})
	}
}

func TestTransactionService_Create_Validation(t *testing.T) {
	tests := []struct {
		name      string
		in        models.CreateTransactionInput
		wantField string
	}{
		{name: "missing amount", in: models.CreateTransactionInput{FromAccount: "a", ToAccount: "b"}, wantField: "amount"},
		{name: "non numeric amount", in: models.CreateTransactionInput{Amount: "ten", FromAccount: "a", ToAccount: "b"}, wantField: "amount"},
		{name: "negative amount", in: models.CreateTransactionInput{Amount: "-1", FromAccount: "a", ToAccount: "b"}, wantField: "amount"},
		{name: "missing source", in: models.CreateTransactionInput{Amount: "1", ToAccount: "b"}, wantField: "fromAccount"},
		{name: "missing destination", in: models.CreateTransactionInput{Amount: "1", FromAccount: "a"}, wantField: "toAccount"},
		{name: "amount exponent out of range", in: models.CreateTransactionInput{Amount: "1e900000000", FromAccount: "a", ToAccount: "b"}, wantField: "amount"},
		{name: "amount scale out of range", in: models.CreateTransactionInput{Amount: "1e-900000000", FromAccount: "a", ToAccount: "b"}, wantField: "amount"},
		{name: "source too long", in: models.CreateTransactionInput{Amount: "1", FromAccount: strings.Repeat("a", models.MaxAccountLen+1), ToAccount: "b"}, wantField: "fromAccount"},
		{name: "destination too long", in: models.CreateTransactionInput{Amount: "1", FromAccount: "a", ToAccount: strings.Repeat("b", models.MaxAccountLen+1)}, wantField: "toAccount"},
		{name: "bad currency", in: models.CreateTransactionInput{Amount: "1", FromAccount: "a", ToAccount: "b", Currency: "dollars"}, wantField: "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestTransactionService(t)

			_, _, err := svc.Create(context.Background(), tt.in)
			var ve *errs.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestTransactionService_Create_Idempotency(t *testing.T) {
	ctx := context.Background()
	in := models.CreateTransactionInput{IdempotencyKey: "key-1", Amount: "100.50", Currency: "eur", FromAccount: "acc-1", ToAccount: "acc-2"}
	key := "key-1"
	stored := &models.Transaction{
		TransactionID:  "tx-original",
		IdempotencyKey: &key,
		Amount:         decimal.RequireFromString("100.5"),
		Currency:       "EUR",
		FromAccount:    "acc-1",
		ToAccount:      "acc-2",
		Status:         models.StatusCompleted,
	}

	t.Run("first request reserves and saves", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(nil, errs.ErrNotFound)
		m.keys.EXPECT().Reserve(ctx, "key-1", "tx-1").Return("tx-1", true, nil)
		m.writer.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, txn *models.Transaction) error {
			require.NotNil(t, txn.IdempotencyKey)
			assert.Equal(t, "key-1", *txn.IdempotencyKey)
			return nil
		})
		m.publisher.EXPECT().Publish(ctx, gomock.Any())

		txn, replayed, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, "tx-1", txn.TransactionID)
	})

	t.Run("persisted key replays the original", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(stored, nil)

		txn, replayed, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, "tx-original", txn.TransactionID)
	})

	t.Run("different payload is rejected", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(stored, nil)

		other := in
		other.Amount = "200"
		_, _, err := svc.Create(ctx, other)
		assert.ErrorIs(t, err, errs.ErrIdempotencyKeyReused)
	})

	t.Run("key held by a concurrent request", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(nil, errs.ErrNotFound)
		m.keys.EXPECT().Reserve(ctx, "key-1", "tx-1").Return("tx-other", false, nil)
		m.reader.EXPECT().GetByID(ctx, "tx-other").Return(nil, errs.ErrNotFound)

		_, _, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, errs.ErrIdempotencyInProgress)
	})

	t.Run("dead owner blocks only until the reservation lapses", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(nil, errs.ErrNotFound).Times(2)
		gomock.InOrder(
			m.keys.EXPECT().Reserve(ctx, "key-1", "tx-1").Return("tx-dead", false, nil),
			m.keys.EXPECT().Reserve(ctx, "key-1", "tx-1").Return("tx-1", true, nil),
		)
		m.reader.EXPECT().GetByID(ctx, "tx-dead").Return(nil, errs.ErrNotFound)
		m.writer.EXPECT().Save(ctx, gomock.Any()).Return(nil)
		m.publisher.EXPECT().Publish(ctx, gomock.Any())

		_, _, err := svc.Create(ctx, in)
		require.ErrorIs(t, err, errs.ErrIdempotencyInProgress)

		txn, replayed, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, "tx-1", txn.TransactionID)
	})

	t.Run("key owner already persisted", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(nil, errs.ErrNotFound)
		m.keys.EXPECT().Reserve(ctx, "key-1", "tx-1").Return("tx-original", false, nil)
		m.reader.EXPECT().GetByID(ctx, "tx-original").Return(stored, nil)

		txn, replayed, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, "tx-original", txn.TransactionID)
	})

	t.Run("unique violation falls back to the stored record", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(nil, errs.ErrNotFound)
		m.keys.EXPECT().Reserve(ctx, "key-1", "tx-1").Return("", false, errors.New("redis down"))
		m.writer.EXPECT().Save(ctx, gomock.Any()).Return(errs.ErrDuplicateKey)
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(stored, nil)

		txn, replayed, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, "tx-original", txn.TransactionID)
	})

	t.Run("failed save releases the reservation", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		storeErr := errs.Store("insert transaction", errors.New("connection reset"))
		m.reader.EXPECT().GetByIdempotencyKey(ctx, "key-1").Return(nil, errs.ErrNotFound)
		m.keys.EXPECT().Reserve(ctx, "key-1", "tx-1").Return("tx-1", true, nil)
		m.writer.EXPECT().Save(ctx, gomock.Any()).Return(storeErr)
		m.keys.EXPECT().Release(ctx, "key-1", "tx-1").Return(nil)

		_, _, err := svc.Create(ctx, in)
		assert.True(t, errs.IsRetryable(err))
	})
}

func TestTransactionService_Get(t *testing.T) {
	svc, m := newTestTransactionService(t)
	ctx := context.Background()

	m.reader.EXPECT().GetByID(ctx, "tx-1").Return(&models.Transaction{TransactionID: "tx-1"}, nil)
	txn, err := svc.Get(ctx, " tx-1 ")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", txn.TransactionID)

	m.reader.EXPECT().GetByID(ctx, "tx-missing").Return(nil, errs.ErrNotFound)
	_, err = svc.Get(ctx, "tx-missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.Get(ctx, "")
	var ve *errs.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestTransactionService_List(t *testing.T) {
	svc, m := newTestTransactionService(t)
	ctx := context.Background()

	m.reader.EXPECT().List(ctx).Return([]models.Transaction{{TransactionID: "tx-2"}, {TransactionID: "tx-1"}}, nil)
	txns, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	m.reader.EXPECT().List(ctx).Return(nil, errors.New("db down"))
	_, err = svc.List(ctx)
	assert.Error(t, err)
}

func TestTransactionService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("override status is accepted", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		update := models.StatusUpdate{Status: "REFUNDED"}
		m.writer.EXPECT().UpdateStatus(ctx, "tx-1", update, fixedNow).
			Return(&models.Transaction{TransactionID: "tx-1", Status: "REFUNDED"}, nil)
		m.publisher.EXPECT().Publish(ctx, gomock.Any()).Do(func(_ context.Context, ev models.LifecycleEvent) {
			assert.Equal(t, models.EventTransactionStatusChanged, ev.Type)
			assert.Equal(t, "REFUNDED", ev.Status)
		})

		txn, err := svc.SetStatus(ctx, "tx-1", update)
		require.NoError(t, err)
		assert.Equal(t, "REFUNDED", txn.Status)
	})

	t.Run("empty status is rejected", func(t *testing.T) {
		svc, _ := newTestTransactionService(t)
		_, err := svc.SetStatus(ctx, "tx-1", models.StatusUpdate{Status: "  "})
		var ve *errs.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "status", ve.Field)
	})

	t.Run("guarded mismatch returns conflict", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		update := models.StatusUpdate{Status: models.StatusBlocked, ExpectedStatus: models.StatusCompleted}
		m.writer.EXPECT().UpdateStatus(ctx, "tx-1", update, fixedNow).
			Return(nil, &errs.ConflictError{TransactionID: "tx-1", Expected: models.StatusCompleted, Actual: models.StatusPending})

		_, err := svc.SetStatus(ctx, "tx-1", update)
		assert.ErrorIs(t, err, errs.ErrStatusConflict)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		svc, m := newTestTransactionService(t)
		update := models.StatusUpdate{Status: models.StatusCompleted}
		m.writer.EXPECT().UpdateStatus(ctx, "tx-x", update, fixedNow).Return(nil, errs.ErrNotFound)

		_, err := svc.SetStatus(ctx, "tx-x", update)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
