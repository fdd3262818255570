package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

//go:generate mockgen -source=fraud.go -destination=mock_fraud.go -package=handlers

// FraudEvaluator defines the interface that the service must implement.
type FraudEvaluator interface {
	Evaluate(ctx context.Context, in models.EvaluateInput) (*models.FraudCheck, error)
}

// FraudCheckGetter defines the interface that the service must implement.
type FraudCheckGetter interface {
	GetLatest(ctx context.Context, transactionID string) (*models.FraudCheck, error)
}

// FraudCheckLister defines the interface that the service must implement.
type FraudCheckLister interface {
	List(ctx context.Context) ([]models.FraudCheck, error)
}

// NewFraudCheckHandler returns an HTTP handler evaluating a transaction snapshot.
// @Summary Evaluate fraud
// @Description Classifies the snapshot and appends a fraud check. The transaction status is not changed.
// @Tags fraud
// @Accept json
// @Produce json
// @Param request body models.FraudCheckRequest true "Fraud Check Request"
// @Success 201 {object} models.FraudCheck
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 503 {object} models.ErrorResponse "Store unavailable"
// @Router /fraud-check [post]
func NewFraudCheckHandler(svc FraudEvaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.FraudCheckRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		amount, err := models.ParseAmount(models.AmountText(req.Amount))
		if err != nil {
			writeError(w, r, err)
			return
		}

		check, err := svc.Evaluate(r.Context(), models.EvaluateInput{
			TransactionID: req.TransactionID,
			Amount:        amount,
			FromAccount:   req.FromAccount,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, check)
	}
}

// RegisterFraudCheckHandler registers POST /fraud-check
func RegisterFraudCheckHandler(r chi.Router, h http.HandlerFunc) {
	r.Post("/fraud-check", h)
}

// NewGetFraudCheckHandler returns an HTTP handler fetching the latest check.
// @Summary Get latest fraud check
// @Tags fraud
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} models.FraudCheck
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /fraud-check/{transactionId} [get]
func NewGetFraudCheckHandler(svc FraudCheckGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		check, err := svc.GetLatest(r.Context(), chi.URLParam(r, "transactionId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, check)
	}
}

// RegisterGetFraudCheckHandler registers GET /fraud-check/{transactionId}
func RegisterGetFraudCheckHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/fraud-check/{transactionId}", h)
}

// NewListFraudChecksHandler returns an HTTP handler listing all checks.
// @Summary List fraud checks
// @Description Most recent first
// @Tags fraud
// @Produce json
// @Success 200 {object} models.FraudCheckList
// @Router /fraud-checks [get]
func NewListFraudChecksHandler(svc FraudCheckLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if checks == nil {
			checks = []models.FraudCheck{}
		}
		writeJSON(w, http.StatusOK, models.FraudCheckList{Items: checks, Count: len(checks)})
	}
}

// RegisterListFraudChecksHandler registers GET /fraud-checks
func RegisterListFraudChecksHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/fraud-checks", h)
}
