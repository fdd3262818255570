// Package facades calls the transaction, fraud and notification components
// over HTTP and maps their responses back to the errs taxonomy.
package facades

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

// RequestIDHeader carries the caller's request id to the component.
const RequestIDHeader = "X-Request-ID"

// TokenSource returns the bearer token for an outgoing request.
type TokenSource func(ctx context.Context) (string, error)

// NewClient builds a resty client for one component. When tokens is not
// nil every request carries a freshly minted bearer token.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if tokens != nil {
		c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			token, err := tokens(req.Context())
			if err != nil {
				return err
			}
			req.SetAuthToken(token)
			return nil
		})
	}
	return c
}

func request(ctx context.Context, c *resty.Client) *resty.Request {
	req := c.R().SetContext(ctx).SetError(&models.ErrorResponse{})
	if id := logger.RequestID(ctx); id != "" {
		req.SetHeader(RequestIDHeader, id)
	}
	return req
}

// responseError converts a failed call into an error of the errs taxonomy.
func responseError(service string, resp *resty.Response, err error) error {
	if err != nil {
		return &errs.RemoteError{Service: service, Err: err}
	}
	if !resp.IsError() {
		return nil
	}

	body, _ := resp.Error().(*models.ErrorResponse)
	if body == nil {
		body = &models.ErrorResponse{}
	}
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	switch body.Code {
	case models.CodeValidation:
		return errs.Invalid(body.Field, body.Message)
	case models.CodeNotFound:
		return errs.ErrNotFound
	case models.CodeStatusConflict:
		return &errs.ConflictError{TransactionID: resp.Request.PathParams["transactionId"], Expected: body.Expected, Actual: body.Actual}
	case models.CodeIdempotencyInProgress:
		return errs.ErrIdempotencyInProgress
	case models.CodeIdempotencyKeyReused:
		return errs.ErrIdempotencyKeyReused
	}

	if resp.StatusCode() == http.StatusNotFound {
		return errs.ErrNotFound
	}
	return &errs.RemoteError{Service: service, StatusCode: resp.StatusCode(), Err: errors.New(msg)}
}
