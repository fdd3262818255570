package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/multierr"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

//go:generate mockgen -source=payment.go -destination=mock_payment.go -package=handlers

// PaymentProcessor defines the interface that the workflow must implement.
type PaymentProcessor interface {
	Process(ctx context.Context, in models.CreateTransactionInput) (*models.PaymentResult, error)
}

// PaymentSummarizer defines the interface that the workflow must implement.
type PaymentSummarizer interface {
	Summary(ctx context.Context, transactionID string) (*models.PaymentSummary, error)
}

// ReconcileRunner defines the interface that the reconciler must implement.
type ReconcileRunner interface {
	Run(ctx context.Context) (models.ReconcileReport, error)
}

// NewPaymentHandler returns an HTTP handler running the payment workflow.
// @Summary Process payment
// @Description Creates the transaction, evaluates fraud, applies the verdict and notifies. An incomplete run answers 202 and can be resumed with the same Idempotency-Key.
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body models.CreateTransactionRequest true "Payment Request"
// @Success 201 {object} models.PaymentResult "Completed"
// @Success 200 {object} models.PaymentResult "Replayed and completed"
// @Success 202 {object} models.PaymentResult "Incomplete"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 502 {object} models.ErrorResponse "Transaction component failed"
// @Router /payments [post]
func NewPaymentHandler(svc PaymentProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateTransactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Process(r.Context(), req.Input(r.Header.Get(IdempotencyKeyHeader)))
		if err != nil {
			writeError(w, r, err)
			return
		}

		switch {
		case !res.Complete:
			writeJSON(w, http.StatusAccepted, res)
		case res.Replayed:
			writeJSON(w, http.StatusOK, res)
		default:
			writeJSON(w, http.StatusCreated, res)
		}
	}
}

// RegisterPaymentHandler registers POST /payments
func RegisterPaymentHandler(r chi.Router, h http.HandlerFunc) {
	r.Post("/payments", h)
}

// NewPaymentSummaryHandler returns an HTTP handler with the cross-component view.
// @Summary Get payment summary
// @Tags payments
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} models.PaymentSummary
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /payments/{transactionId} [get]
func NewPaymentSummaryHandler(svc PaymentSummarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Summary(r.Context(), chi.URLParam(r, "transactionId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// RegisterPaymentSummaryHandler registers GET /payments/{transactionId}
func RegisterPaymentSummaryHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/payments/{transactionId}", h)
}

// NewReconcileHandler returns an HTTP handler running one reconciliation pass.
// @Summary Reconcile statuses
// @Description Re-applies the latest fraud verdict of every transaction whose status does not reflect it.
// @Tags payments
// @Produce json
// @Success 200 {object} models.ReconcileResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Router /reconcile [post]
// @Security BearerAuth
func NewReconcileHandler(svc ReconcileRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Run(r.Context())
		if err != nil && report.Scanned == 0 {
			writeError(w, r, err)
			return
		}

		resp := models.ReconcileResponse{Report: report}
		for _, e := range multierr.Errors(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// RegisterReconcileHandler registers POST /reconcile
func RegisterReconcileHandler(r chi.Router, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	r.With(mws...).Post("/reconcile", h)
}
