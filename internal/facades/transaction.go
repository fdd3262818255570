package facades

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

const transactionService = "transactions"

// TransactionFacade calls the transaction orchestrator.
type TransactionFacade struct {
	client *resty.Client
}

// NewTransactionFacade creates a new TransactionFacade.
func NewTransactionFacade(client *resty.Client) *TransactionFacade {
	return &TransactionFacade{client: client}
}

// Create posts a new transaction. replayed is true when the orchestrator
// answered with the record of an earlier request with the same key.
func (f *TransactionFacade) Create(ctx context.Context, in models.CreateTransactionInput) (*models.Transaction, bool, error) {
	var txn models.Transaction
	req := request(ctx, f.client).
		SetBody(models.CreateTransactionRequest{
			Amount:      models.AmountJSON(in.Amount),
			Currency:    in.Currency,
			FromAccount: in.FromAccount,
			ToAccount:   in.ToAccount,
		}).
		SetResult(&txn)
	if in.IdempotencyKey != "" {
		req.SetHeader("Idempotency-Key", in.IdempotencyKey)
	}

	resp, err := req.Post("/transactions")
	if err := responseError(transactionService, resp, err); err != nil {
		return nil, false, err
	}
	return &txn, resp.StatusCode() == http.StatusOK, nil
}

// Get fetches one transaction.
func (f *TransactionFacade) Get(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	resp, err := request(ctx, f.client).
		SetPathParam("transactionId", transactionID).
		SetResult(&txn).
		Get("/transactions/{transactionId}")
	if err := responseError(transactionService, resp, err); err != nil {
		return nil, err
	}
	return &txn, nil
}

// SetStatus sends a status transition, guarded when update.ExpectedStatus is set.
func (f *TransactionFacade) SetStatus(ctx context.Context, transactionID string, update models.StatusUpdate) (*models.Transaction, error) {
	var txn models.Transaction
	resp, err := request(ctx, f.client).
		SetPathParam("transactionId", transactionID).
		SetBody(models.SetStatusRequest{Status: update.Status, ExpectedStatus: update.ExpectedStatus}).
		SetResult(&txn).
		Put("/transactions/{transactionId}/status")
	if err := responseError(transactionService, resp, err); err != nil {
		return nil, err
	}
	return &txn, nil
}
