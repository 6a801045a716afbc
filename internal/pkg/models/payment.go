package models

import "time"

// TransactionStatus is the provider-side status of a fee transaction.
type TransactionStatus string

const (
	StatusQueued    TransactionStatus = "QUEUED"
	StatusSuccess   TransactionStatus = "SUCCESS"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

func (s TransactionStatus) IsKnown() bool {
	return s == StatusQueued || s.IsTerminal()
}

// LoanFeeTransaction is one attempt to collect a service fee via STK push.
type LoanFeeTransaction struct {
	Reference       string            `json:"reference"`
	ClientReference string            `json:"clientReference"`
	TrackingNumber  string            `json:"trackingNumber,omitempty"`
	PhoneNumber     string            `json:"phoneNumber"`
	Amount          int64             `json:"amount"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// PaymentRequest is what a caller supplies to start a fee payment.
type PaymentRequest struct {
	Application *LoanApplication
	PhoneNumber string
	Amount      int64
	Reference   string
}

// Confirmation carries the derived fields surfaced once a fee is confirmed.
type Confirmation struct {
	Reference          string    `json:"reference"`
	TrackingNumber     string    `json:"trackingNumber,omitempty"`
	NationalID         string    `json:"nationalId,omitempty"`
	LoanAmount         int64     `json:"loanAmount"`
	ServiceFee         int64     `json:"serviceFee"`
	DisbursableAmount  int64     `json:"disbursableAmount"`
	DisbursementTarget string    `json:"disbursementTarget"`
	ConfirmedAt        time.Time `json:"confirmedAt"`
}
