package error_handling

import "fmt"

// PaymentGatewayError is returned when an initiate exchange could not complete.
type PaymentGatewayError struct {
	Message    string `json:"error,omitempty"`
	StatusCode int    `json:"-"` // -1 when no HTTP response was received
	Err        error
}

func NewPaymentGatewayError(err error, statusCode ...int) *PaymentGatewayError {
	errObj := &PaymentGatewayError{Err: err}

	if len(statusCode) > 0 {
		errObj.StatusCode = statusCode[0]
	}

	return errObj
}

func (e *PaymentGatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: statusCode=%d, err:%v, message=%s",
		e.StatusCode,
		e.Err,
		e.Message,
	)
}

func (e *PaymentGatewayError) Unwrap() error {
	return e.Err
}

// GatewayMessage returns the error text reported by the gateway, if any.
func (e *PaymentGatewayError) GatewayMessage() string {
	return e.Message
}
