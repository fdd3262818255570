package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

//go:generate mockgen -source=notification.go -destination=mock_notification.go -package=handlers

// NotificationDispatcher defines the interface that the service must implement.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, transactionID, audience, message string) (*models.Notification, error)
}

// TransactionNotificationsLister defines the interface that the service must implement.
type TransactionNotificationsLister interface {
	ListByTransaction(ctx context.Context, transactionID string) ([]models.Notification, error)
}

// NotificationLister defines the interface that the service must implement.
type NotificationLister interface {
	List(ctx context.Context) ([]models.Notification, error)
}

// NewNotifyHandler returns an HTTP handler dispatching a notification.
// @Summary Dispatch notification
// @Description Records a SENT notification for CUSTOMER, COMPLIANCE or LEDGER. Repeated calls are not deduplicated.
// @Tags notifications
// @Accept json
// @Produce json
// @Param audience path string true "Audience" Enums(CUSTOMER, COMPLIANCE, LEDGER)
// @Param request body models.NotifyRequest true "Notify Request"
// @Success 201 {object} models.Notification
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /notify/{audience} [post]
func NewNotifyHandler(svc NotificationDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.NotifyRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		n, err := svc.Dispatch(r.Context(), req.TransactionID, chi.URLParam(r, "audience"), req.Message)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

// RegisterNotifyHandler registers POST /notify/{audience}
func RegisterNotifyHandler(r chi.Router, h http.HandlerFunc) {
	r.Post("/notify/{audience}", h)
}

// NewTransactionNotificationsHandler returns an HTTP handler listing the
// notifications of one transaction.
// @Summary List notifications of a transaction
// @Tags notifications
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} models.NotificationList
// @Failure 404 {object} models.ErrorResponse "No notifications"
// @Router /notifications/{transactionId} [get]
func NewTransactionNotificationsHandler(svc TransactionNotificationsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ns, err := svc.ListByTransaction(r.Context(), chi.URLParam(r, "transactionId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, models.NotificationList{Items: ns, Count: len(ns)})
	}
}

// RegisterTransactionNotificationsHandler registers GET /notifications/{transactionId}
func RegisterTransactionNotificationsHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/notifications/{transactionId}", h)
}

// NewListNotificationsHandler returns an HTTP handler listing all notifications.
// @Summary List notifications
// @Description Most recently sent first
// @Tags notifications
// @Produce json
// @Success 200 {object} models.NotificationList
// @Router /notifications [get]
func NewListNotificationsHandler(svc NotificationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ns, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if ns == nil {
			ns = []models.Notification{}
		}
		writeJSON(w, http.StatusOK, models.NotificationList{Items: ns, Count: len(ns)})
	}
}

// RegisterListNotificationsHandler registers GET /notifications
func RegisterListNotificationsHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/notifications", h)
}
