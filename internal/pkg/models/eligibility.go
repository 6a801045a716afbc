package models

// EligibilityRequest is the applicant form submitted from the eligibility wizard.
type EligibilityRequest struct {
	FullName    string `json:"fullName" binding:"required,alphaspace"`
	PhoneNumber string `json:"phoneNumber" binding:"required,kephone"`
	NationalID  string `json:"nationalId" binding:"required,nationalid"`
	Gender      string `json:"gender" binding:"required"`
	DateOfBirth string `json:"dateOfBirth" binding:"required,adult"`
	County      string `json:"county" binding:"required,alphaspace"`
	Education   string `json:"education" binding:"required"`
	Employment  string `json:"employment" binding:"required"`
	Income      string `json:"income" binding:"required"`
	LoanPurpose string `json:"loanPurpose" binding:"required"`
}

type EligibilityResponse struct {
	Eligible   bool   `json:"eligible"`
	Limit      int64  `json:"limit"`
	NationalID string `json:"nationalId"`
	Message    string `json:"message"`
}
