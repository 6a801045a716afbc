package interfaces

import (
	"context"

	pkgmodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
)

type EligibilitySubmissionRepositoryInterface interface {
	Insert(ctx context.Context, submission *models.EligibilitySubmission) error
	FindLatestByNationalID(ctx context.Context, nationalID string) (*models.EligibilitySubmission, error)
}

type LoanRepositoryInterface interface {
	Insert(ctx context.Context, loan *models.Loan) error
	FindByPhoneAndNationalID(ctx context.Context, phone, nationalID string) (*models.Loan, error)
}

type FeeTransactionRepositoryInterface interface {
	Insert(ctx context.Context, tx *models.FeeTransaction) error
	UpdateStatus(ctx context.Context, reference string, status pkgmodels.TransactionStatus) (bool, error)
}

// SubmissionStoreInterface is the persistence surface used by the eligibility,
// loan and checkout services.
type SubmissionStoreInterface interface {
	FindByNationalID(ctx context.Context, nationalID string) (*models.EligibilitySubmission, error)
	InsertEligibilitySubmission(ctx context.Context, submission *models.EligibilitySubmission) error
	FindLoanByPhoneAndID(ctx context.Context, phone, nationalID string) (*models.Loan, error)
	InsertLoan(ctx context.Context, loan *models.Loan) error
	InsertFeeTransaction(ctx context.Context, tx *models.FeeTransaction) error
	UpdateFeeTransactionStatus(ctx context.Context, reference string, status pkgmodels.TransactionStatus) (bool, error)
}
