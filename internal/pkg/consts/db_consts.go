package consts

const (
	EligibilitySubmissionsCollection = "eligibilitySubmissions"
	LoansCollection                  = "loans"
	FeeTransactionsCollection        = "feeTransactions"
)

const (
	LoanStatusPendingDisbursement = "PENDING_DISBURSEMENT"
)
