package facades

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

const fraudService = "fraud"

// FraudFacade calls the fraud evaluator.
type FraudFacade struct {
	client *resty.Client
}

// NewFraudFacade creates a new FraudFacade.
func NewFraudFacade(client *resty.Client) *FraudFacade {
	return &FraudFacade{client: client}
}

// Evaluate requests a new fraud check.
func (f *FraudFacade) Evaluate(ctx context.Context, in models.EvaluateInput) (*models.FraudCheck, error) {
	var check models.FraudCheck
	resp, err := request(ctx, f.client).
		SetBody(models.FraudCheckRequest{
			TransactionID: in.TransactionID,
			Amount:        models.AmountJSON(in.Amount.String()),
			FromAccount:   in.FromAccount,
		}).
		SetResult(&check).
		Post("/fraud-check")
	if err := responseError(fraudService, resp, err); err != nil {
		return nil, err
	}
	return &check, nil
}

// GetLatest fetches the latest check of one transaction.
func (f *FraudFacade) GetLatest(ctx context.Context, transactionID string) (*models.FraudCheck, error) {
	var check models.FraudCheck
	resp, err := request(ctx, f.client).
		SetPathParam("transactionId", transactionID).
		SetResult(&check).
		Get("/fraud-check/{transactionId}")
	if err := responseError(fraudService, resp, err); err != nil {
		return nil, err
	}
	return &check, nil
}

// List fetches all checks, most recent first.
func (f *FraudFacade) List(ctx context.Context) ([]models.FraudCheck, error) {
	var list models.FraudCheckList
	resp, err := request(ctx, f.client).
		SetResult(&list).
		Get("/fraud-checks")
	if err := responseError(fraudService, resp, err); err != nil {
		return nil, err
	}
	return list.Items, nil
}
