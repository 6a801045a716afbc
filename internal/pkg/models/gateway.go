package models

// GatewayInitiateRequest is the STK push request body.
type GatewayInitiateRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}

type GatewayInitiateResponse struct {
	Success          bool   `json:"success"`
	PayheroReference string `json:"payheroReference,omitempty"`
	Error            string `json:"error,omitempty"`
}

type GatewayStatusResponse struct {
	Success bool              `json:"success"`
	Status  TransactionStatus `json:"status,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// InitiateResult is the outcome of a well-formed push-payment exchange.
type InitiateResult struct {
	Accepted         bool
	GatewayReference string
	Error            string
}

// StatusResult is one of StatusOK, StatusNotFound, StatusTransientError or StatusRejected.
type StatusResult interface {
	statusResult()
}

type StatusOK struct {
	Status TransactionStatus
}

// StatusNotFound means the provider does not know the reference yet.
type StatusNotFound struct{}

type StatusTransientError struct {
	Err error
}

type StatusRejected struct {
	Message string
}

func (StatusOK) statusResult()             {}
func (StatusNotFound) statusResult()       {}
func (StatusTransientError) statusResult() {}
func (StatusRejected) statusResult()       {}
