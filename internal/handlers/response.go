package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.FromContext(r.Context()).Warnw("failed to decode request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Code:    models.CodeValidation,
			Field:   "body",
			Message: "malformed JSON",
		})
		return false
	}
	return true
}

// writeError maps the errs taxonomy onto a status code and an ErrorResponse.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		ve *errs.ValidationError
		ce *errs.ConflictError
		se *errs.StoreError
		re *errs.RemoteError
	)
	status := http.StatusInternalServerError
	body := models.ErrorResponse{Error: "Internal server error", Code: models.CodeInternal}

	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		body = models.ErrorResponse{Error: ve.Error(), Code: models.CodeValidation, Field: ve.Field, Message: ve.Message}
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
		body = models.ErrorResponse{Error: "Not found", Code: models.CodeNotFound}
	case errors.As(err, &ce):
		status = http.StatusConflict
		body = models.ErrorResponse{Error: ce.Error(), Code: models.CodeStatusConflict, Expected: ce.Expected, Actual: ce.Actual}
	case errors.Is(err, errs.ErrIdempotencyInProgress):
		status = http.StatusConflict
		body = models.ErrorResponse{Error: err.Error(), Code: models.CodeIdempotencyInProgress}
	case errors.Is(err, errs.ErrIdempotencyKeyReused):
		status = http.StatusUnprocessableEntity
		body = models.ErrorResponse{Error: err.Error(), Code: models.CodeIdempotencyKeyReused}
	case errors.As(err, &se):
		log.Errorw("store unavailable", "path", r.URL.Path, "error", err)
		status = http.StatusServiceUnavailable
		body = models.ErrorResponse{Error: "Store unavailable", Code: models.CodeStoreUnavailable}
	case errors.As(err, &re):
		log.Errorw("remote call failed", "path", r.URL.Path, "service", re.Service, "error", err)
		status = http.StatusBadGateway
		body = models.ErrorResponse{Error: re.Error(), Code: models.CodeRemoteFailure}
	default:
		log.Errorw("request failed", "path", r.URL.Path, "error", err)
	}

	body.Retryable = errs.IsRetryable(err)
	writeJSON(w, status, body)
}
