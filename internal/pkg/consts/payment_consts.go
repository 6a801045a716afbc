package consts

const (
	ReferencePrefix      = "LN-"
	TrackingNumberPrefix = "TRK-"

	EligibleMessage = "You are eligible for a loan up to KSh %d!"

	SmsEventLoanFeeConfirmed = "LOAN_FEE_CONFIRMED"
)

// redis keys
const (
	LoanApplicationKeyPrefix  = "loan_application:"
	CheckoutSnapshotKeyPrefix = "checkout_snapshot:"
	ConfirmedLoanKeyPrefix    = "confirmed_loan:"
	CheckoutOwnerKeyPrefix    = "checkout_owner:"
)

var SensitiveKeys = []string{"Authorization", "X-Api-Key", "Cookie", "Set-Cookie"}
