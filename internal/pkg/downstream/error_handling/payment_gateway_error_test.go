package error_handling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentGatewayError(t *testing.T) {
	cause := errors.New("connection refused")

	err := NewPaymentGatewayError(cause, -1)
	assert.Equal(t, -1, err.StatusCode)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "payment gateway error: statusCode=-1, err:connection refused, message=", err.Error())

	noStatus := NewPaymentGatewayError(cause)
	assert.Equal(t, 0, noStatus.StatusCode)

	withMsg := &PaymentGatewayError{Message: "invalid phone", StatusCode: 502, Err: cause}
	assert.Equal(t, "invalid phone", withMsg.GatewayMessage())
	assert.Contains(t, withMsg.Error(), "message=invalid phone")
}
