package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"orderflow-backend/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	t.Run("NewValidationError", func(t *testing.T) {
		err := errs.NewValidationError("minAmount", "Min amount is required and must be >= 0")

		assert.Equal(t, "minAmount", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: Min amount is required and must be >= 0", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
		assert.Equal(t, "Min amount is required and must be >= 0", errs.PublicMessage(err))
	})

	t.Run("NewValidationErrorWithCause", func(t *testing.T) {
		cause := errors.New("strconv failure")
		err := errs.NewValidationErrorWithCause("cartTotal", "Cart total must be a number", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"value is invalid: param is: cartTotal, Cart total must be a number (cause: strconv failure)",
			err.Error())
	})
}

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("Order", "abc")

		assert.Equal(t, "object not found: Order abc", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
		assert.Equal(t, "Order not found", errs.PublicMessage(err))
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("no rows in result set")
		err := errs.NewObjectNotFoundErrorWithCause("Shipping slab", "42", cause)

		assert.Equal(t,
			"object not found: object is: Shipping slab, ID is: 42 (cause: no rows in result set)",
			err.Error())
		assert.Equal(t, "Shipping slab not found", errs.PublicMessage(err))
	})
}

func TestInvalidStateError(t *testing.T) {
	err := errs.NewInvalidStateError("Refund already completed")

	assert.Equal(t, "invalid state: Refund already completed", err.Error())
	assert.Equal(t, errs.ErrInvalidState, err.Unwrap())
	assert.Equal(t, "Refund already completed", errs.PublicMessage(err))
}

func TestInternalError(t *testing.T) {
	cause := errors.New("connection reset")
	err := errs.NewInternalError("update order", cause)

	assert.Equal(t, "internal error: update order (cause: connection reset)", err.Error())
	assert.ErrorIs(t, err, errs.ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error", errs.PublicMessage(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   errs.Kind
		status int
	}{
		{"nil", nil, errs.KindNone, http.StatusOK},
		{"validation", errs.NewValidationError("x", "bad"), errs.KindValidation, http.StatusBadRequest},
		{"not found", errs.NewObjectNotFoundError("Order", "1"), errs.KindNotFound, http.StatusNotFound},
		{"invalid state", errs.NewInvalidStateError("nope"), errs.KindInvalidState, http.StatusConflict},
		{"internal", errs.NewInternalError("op", nil), errs.KindInternal, http.StatusInternalServerError},
		{"foreign error", errors.New("boom"), errs.KindInternal, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("approve: %w", errs.NewInvalidStateError("nope")), errs.KindInvalidState, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, errs.KindOf(tt.err))
			assert.Equal(t, tt.status, errs.HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageForForeignError(t *testing.T) {
	assert.Equal(t, "Internal server error", errs.PublicMessage(errors.New("pq: secret detail")))
}
