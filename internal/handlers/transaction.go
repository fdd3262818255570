package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

//go:generate mockgen -source=transaction.go -destination=mock_transaction.go -package=handlers

// IdempotencyKeyHeader overrides idempotencyKey from the request body.
const IdempotencyKeyHeader = "Idempotency-Key"

// TransactionCreator defines the interface that the service must implement.
type TransactionCreator interface {
	Create(ctx context.Context, in models.CreateTransactionInput) (*models.Transaction, bool, error)
}

// TransactionGetter defines the interface that the service must implement.
type TransactionGetter interface {
	Get(ctx context.Context, transactionID string) (*models.Transaction, error)
}

// TransactionLister defines the interface that the service must implement.
type TransactionLister interface {
	List(ctx context.Context) ([]models.Transaction, error)
}

// StatusSetter defines the interface that the service must implement.
type StatusSetter interface {
	SetStatus(ctx context.Context, transactionID string, update models.StatusUpdate) (*models.Transaction, error)
}

// NewCreateTransactionHandler returns an HTTP handler creating a transaction.
// @Summary Create transaction
// @Description Validates the request, assigns an id and the initial status. A repeated Idempotency-Key returns the original record with 200.
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body models.CreateTransactionRequest true "Create Transaction Request"
// @Success 201 {object} models.Transaction "Created"
// @Success 200 {object} models.Transaction "Replayed"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.ErrorResponse "Same key in progress"
// @Failure 422 {object} models.ErrorResponse "Key reused with a different request"
// @Failure 503 {object} models.ErrorResponse "Store unavailable"
// @Router /transactions [post]
func NewCreateTransactionHandler(svc TransactionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateTransactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		txn, replayed, err := svc.Create(r.Context(), req.Input(r.Header.Get(IdempotencyKeyHeader)))
		if err != nil {
			writeError(w, r, err)
			return
		}

		status := http.StatusCreated
		if replayed {
			status = http.StatusOK
		}
		writeJSON(w, status, txn)
	}
}

// RegisterCreateTransactionHandler registers POST /transactions
func RegisterCreateTransactionHandler(r chi.Router, h http.HandlerFunc) {
	r.Post("/transactions", h)
}

// NewGetTransactionHandler returns an HTTP handler fetching one transaction.
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /transactions/{transactionId} [get]
func NewGetTransactionHandler(svc TransactionGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txn, err := svc.Get(r.Context(), chi.URLParam(r, "transactionId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}

// RegisterGetTransactionHandler registers GET /transactions/{transactionId}
func RegisterGetTransactionHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/transactions/{transactionId}", h)
}

// NewListTransactionsHandler returns an HTTP handler listing transactions.
// @Summary List transactions
// @Description Newest first
// @Tags transactions
// @Produce json
// @Success 200 {object} models.TransactionList
// @Router /transactions [get]
func NewListTransactionsHandler(svc TransactionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txns, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if txns == nil {
			txns = []models.Transaction{}
		}
		writeJSON(w, http.StatusOK, models.TransactionList{Items: txns, Count: len(txns)})
	}
}

// RegisterListTransactionsHandler registers GET /transactions
func RegisterListTransactionsHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/transactions", h)
}

// NewSetStatusHandler returns an HTTP handler overwriting a transaction status.
// @Summary Set transaction status
// @Description Any non-empty status is accepted. With expectedStatus the update only applies when the stored status matches.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Param request body models.SetStatusRequest true "Set Status Request"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} models.ErrorResponse "Empty status"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 409 {object} models.ErrorResponse "Expected status mismatch"
// @Router /transactions/{transactionId}/status [put]
// @Security BearerAuth
func NewSetStatusHandler(svc StatusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SetStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		txn, err := svc.SetStatus(r.Context(), chi.URLParam(r, "transactionId"), models.StatusUpdate{
			Status:         req.Status,
			ExpectedStatus: req.ExpectedStatus,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}

// RegisterSetStatusHandler registers PUT /transactions/{transactionId}/status
func RegisterSetStatusHandler(r chi.Router, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	r.With(mws...).Put("/transactions/{transactionId}/status", h)
}
