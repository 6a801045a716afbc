package models

import "time"

// LoanApplication is the selected loan offer awaiting its service fee.
type LoanApplication struct {
	TrackingNumber    string    `json:"trackingNumber"`
	NationalID        string    `json:"nationalId"`
	FullName          string    `json:"fullName"`
	PhoneNumber       string    `json:"phoneNumber"`
	RecipientPhone    string    `json:"recipientPhone,omitempty"`
	LoanAmount        int64     `json:"loanAmount"`
	ServiceFee        int64     `json:"serviceFee"`
	DisbursableAmount int64     `json:"disbursableAmount"`
	CreatedAt         time.Time `json:"createdAt"`
}

// DisbursementPhone is the default number for the STK push and the payout.
func (a *LoanApplication) DisbursementPhone() string {
	if a.RecipientPhone != "" {
		return a.RecipientPhone
	}
	return a.PhoneNumber
}

type QuoteRequest struct {
	NationalID  string `json:"nationalId" binding:"required,nationalid"`
	LoanAmount  int64  `json:"loanAmount" binding:"required,gt=0"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,kephone"`
}

type PayRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,kephone"`
}
