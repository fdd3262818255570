package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	base := errors.New("connection refused")

	tests := []struct {
		name      string
		err       error
		wantStore bool
		wantNil   bool
	}{
		{name: "nil stays nil", err: nil, wantNil: true},
		{name: "plain error is wrapped", err: base, wantStore: true},
		{name: "not found passes through", err: fmt.Errorf("get: %w", ErrNotFound)},
		{name: "duplicate key passes through", err: ErrDuplicateKey},
		{name: "store error is not wrapped twice", err: &StoreError{Op: "insert", Err: base}, wantStore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Store("select", tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			var se *StoreError
			assert.Equal(t, tt.wantStore, errors.As(got, &se))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestConflictError_Is(t *testing.T) {
	err := fmt.Errorf("set status: %w", &ConflictError{TransactionID: "tx-1", Expected: "PENDING", Actual: "BLOCKED"})
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.Contains(t, err.Error(), `expected status "PENDING", actual "BLOCKED"`)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&StoreError{Op: "insert", Err: errors.New("down")}))
	assert.True(t, IsRetryable(ErrIdempotencyInProgress))
	assert.True(t, IsRetryable(&RemoteError{Service: "fraud", Err: errors.New("timeout")}))
	assert.True(t, IsRetryable(&RemoteError{Service: "fraud", StatusCode: 503, Err: errors.New("unavailable")}))
	assert.False(t, IsRetryable(&RemoteError{Service: "fraud", StatusCode: 400, Err: errors.New("bad request")}))
	assert.False(t, IsRetryable(Invalid("amount", "must be a number")))
	assert.False(t, IsRetryable(ErrNotFound))
}

func TestValidationError(t *testing.T) {
	err := Invalid("fromAccount", "is required")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "fromAccount", ve.Field)
	assert.Equal(t, "invalid fromAccount: is required", err.Error())
}
