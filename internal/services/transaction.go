package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
)

//go:generate mockgen -source=transaction.go -destination=mock_transaction.go -package=services

const (
	maxIdempotencyKeyLen = 128
	maxStatusLen         = 64
)

// TransactionWriter defines methods for writing transactions.
type TransactionWriter interface {
	Save(ctx context.Context, txn *models.Transaction) error
	UpdateStatus(ctx context.Context, transactionID string, update models.StatusUpdate, updatedAt time.Time) (*models.Transaction, error)
}

// TransactionReader defines methods for reading transactions.
type TransactionReader interface {
	GetByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
}

// IdempotencyStore binds idempotency keys to transaction ids.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key, transactionID string) (owner string, reserved bool, err error)
	Release(ctx context.Context, key, transactionID string) error
}

// EventPublisher publishes lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.LifecycleEvent)
}

// TransactionService owns the transaction state machine.
type TransactionService struct {
	writer          TransactionWriter
	reader          TransactionReader
	keys            IdempotencyStore
	publisher       EventPublisher
	policy          rules.Policy
	defaultCurrency string
	now             func() time.Time
	newID           func() string
}

// NewTransactionService creates a new TransactionService. keys may be nil,
// in which case idempotency relies on the store's unique key alone.
func NewTransactionService(
	writer TransactionWriter,
	reader TransactionReader,
	keys IdempotencyStore,
	publisher EventPublisher,
	policy rules.Policy,
	defaultCurrency string,
) *TransactionService {
	return &TransactionService{
		writer:          writer,
		reader:          reader,
		keys:            keys,
		publisher:       publisher,
		policy:          policy,
		defaultCurrency: strings.ToUpper(defaultCurrency),
		now:             func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:           func() string { return "tx-" + uuid.NewString() },
	}
}

type createRequest struct {
	key         string
	amount      decimal.Decimal
	currency    string
	fromAccount string
	toAccount   string
}

func (s *TransactionService) validate(in models.CreateTransactionInput) (createRequest, error) {
	req := createRequest{
		key:         strings.TrimSpace(in.IdempotencyKey),
		currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		fromAccount: strings.TrimSpace(in.FromAccount),
		toAccount:   strings.TrimSpace(in.ToAccount),
	}

	amount, err := models.ParseAmount(in.Amount)
	if err != nil {
		return req, err
	}
	req.amount = amount

	if req.fromAccount == "" {
		return req, errs.Invalid("fromAccount", "is required")
	}
	if req.toAccount == "" {
		return req, errs.Invalid("toAccount", "is required")
	}
	if len(req.fromAccount) > models.MaxAccountLen {
		return req, errs.Invalid("fromAccount", "is too long")
	}
	if len(req.toAccount) > models.MaxAccountLen {
		return req, errs.Invalid("toAccount", "is too long")
	}
	if req.currency == "" {
		req.currency = s.defaultCurrency
	}
	if !isCurrencyCode(req.currency) {
		return req, errs.Invalid("currency", "must be a three-letter code")
	}
	if len(req.key) > maxIdempotencyKeyLen {
		return req, errs.Invalid("idempotencyKey", "is too long")
	}
	return req, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Create validates the request, assigns a new transaction id and the initial
// status, and persists the record. With an idempotency key, a repeated
// request returns the original record and replayed=true.
func (s *TransactionService) Create(ctx context.Context, in models.CreateTransactionInput) (*models.Transaction, bool, error) {
	log := logger.FromContext(ctx)

	req, err := s.validate(in)
	if err != nil {
		log.Warnw("invalid transaction request", "error", err)
		return nil, false, err
	}

	if req.key != "" {
		existing, err := s.reader.GetByIdempotencyKey(ctx, req.key)
		switch {
		case err == nil:
			return s.replay(ctx, existing, req)
		case !errors.Is(err, errs.ErrNotFound):
			log.Errorw("failed to look up idempotency key", "idempotency_key", req.key, "error", err)
			return nil, false, err
		}
	}

	id := s.newID()
	reserved := false
	if req.key != "" && s.keys != nil {
		owner, ok, err := s.keys.Reserve(ctx, req.key, id)
		switch {
		case errors.Is(err, errs.ErrIdempotencyInProgress):
			return nil, false, err
		case err != nil:
			log.Warnw("idempotency store unavailable, relying on unique key", "idempotency_key", req.key, "error", err)
		case !ok:
			existing, err := s.reader.GetByID(ctx, owner)
			if errors.Is(err, errs.ErrNotFound) {
				return nil, false, errs.ErrIdempotencyInProgress
			}
			if err != nil {
				return nil, false, err
			}
			return s.replay(ctx, existing, req)
		default:
			reserved = true
		}
	}

	verdict, rule := s.policy.Evaluate(rules.Input{
		Amount:      req.amount,
		FromAccount: req.fromAccount,
		ToAccount:   req.toAccount,
	})

	now := s.now()
	txn := &models.Transaction{
		TransactionID: id,
		Amount:        req.amount,
		Currency:      req.currency,
		FromAccount:   req.fromAccount,
		ToAccount:     req.toAccount,
		Status:        verdict.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.key != "" {
		key := req.key
		txn.IdempotencyKey = &key
	}

	if err := s.writer.Save(ctx, txn); err != nil {
		if reserved {
			if rerr := s.keys.Release(ctx, req.key, id); rerr != nil {
				log.Warnw("failed to release idempotency key", "idempotency_key", req.key, "error", rerr)
			}
		}
		if errors.Is(err, errs.ErrDuplicateKey) {
			existing, gerr := s.reader.GetByIdempotencyKey(ctx, req.key)
			if gerr != nil {
				return nil, false, gerr
			}
			return s.replay(ctx, existing, req)
		}
		log.Errorw("failed to save transaction", "transaction_id", id, "error", err)
		return nil, false, err
	}

	log.Infow("transaction created", "transaction_id", id, "status", txn.Status, "rule", rule)
	s.publisher.Publish(ctx, models.LifecycleEvent{
		Type:          models.EventTransactionCreated,
		TransactionID: id,
		Status:        txn.Status,
	})
	return txn, false, nil
}

func (s *TransactionService) replay(ctx context.Context, existing *models.Transaction, req createRequest) (*models.Transaction, bool, error) {
	if !existing.Amount.Equal(req.amount) ||
		existing.FromAccount != req.fromAccount ||
		existing.ToAccount != req.toAccount ||
		existing.Currency != req.currency {
		logger.FromContext(ctx).Warnw("idempotency key reused with a different request",
			"idempotency_key", req.key, "transaction_id", existing.TransactionID)
		return nil, false, errs.ErrIdempotencyKeyReused
	}
	logger.FromContext(ctx).Infow("transaction replayed", "idempotency_key", req.key, "transaction_id", existing.TransactionID)
	return existing, true, nil
}

// Get returns the transaction or errs.ErrNotFound.
func (s *TransactionService) Get(ctx context.Context, transactionID string) (*models.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, errs.Invalid("transactionId", "is required")
	}
	txn, err := s.reader.GetByID(ctx, transactionID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		logger.FromContext(ctx).Errorw("failed to get transaction", "transaction_id", transactionID, "error", err)
	}
	return txn, err
}

// List returns all transactions, newest first.
func (s *TransactionService) List(ctx context.Context) ([]models.Transaction, error) {
	txns, err := s.reader.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list transactions", "error", err)
		return nil, err
	}
	return txns, nil
}

// SetStatus overwrites the status. Without an expected status the last
// writer wins; with one, a mismatch fails with *errs.ConflictError. Any
// non-empty status is accepted: values other than the canonical three are
// manual overrides.
func (s *TransactionService) SetStatus(ctx context.Context, transactionID string, update models.StatusUpdate) (*models.Transaction, error) {
	log := logger.FromContext(ctx)

	transactionID = strings.TrimSpace(transactionID)
	update.Status = strings.TrimSpace(update.Status)
	update.ExpectedStatus = strings.TrimSpace(update.ExpectedStatus)
	switch {
	case transactionID == "":
		return nil, errs.Invalid("transactionId", "is required")
	case update.Status == "":
		return nil, errs.Invalid("status", "is required")
	case len(update.Status) > maxStatusLen:
		return nil, errs.Invalid("status", "is too long")
	}

	txn, err := s.writer.UpdateStatus(ctx, transactionID, update, s.now())
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrStatusConflict):
			log.Warnw("status not updated", "transaction_id", transactionID, "status", update.Status,
				"expected_status", update.ExpectedStatus, "error", err)
		default:
			log.Errorw("failed to update status", "transaction_id", transactionID, "error", err)
		}
		return nil, err
	}

	log.Infow("transaction status set", "transaction_id", transactionID, "status", txn.Status,
		"expected_status", update.ExpectedStatus, "override", !models.IsCanonicalStatus(txn.Status))
	s.publisher.Publish(ctx, models.LifecycleEvent{
		Type:           models.EventTransactionStatusChanged,
		TransactionID:  transactionID,
		Status:         txn.Status,
		PreviousStatus: update.ExpectedStatus,
	})
	return txn, nil
}
