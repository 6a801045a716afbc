package submission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	pkgmodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/mongo"
)

// mongo error code for an unauthorized command
const unauthorizedCode = 13

type SubmissionStore struct {
	eligibility     interfaces.EligibilitySubmissionRepositoryInterface
	loans           interfaces.LoanRepositoryInterface
	feeTransactions interfaces.FeeTransactionRepositoryInterface
	now             func() time.Time
}

func NewSubmissionStore(
	eligibility interfaces.EligibilitySubmissionRepositoryInterface,
	loans interfaces.LoanRepositoryInterface,
	feeTransactions interfaces.FeeTransactionRepositoryInterface,
) *SubmissionStore {
	return &SubmissionStore{
		eligibility:     eligibility,
		loans:           loans,
		feeTransactions: feeTransactions,
		now:             time.Now,
	}
}

func (s *SubmissionStore) FindByNationalID(ctx context.Context, nationalID string) (*models.EligibilitySubmission, error) {
	rec, err := s.eligibility.FindLatestByNationalID(ctx, nationalID)
	if err != nil {
		return nil, classify(err, consts.ErrorEligibilityNotFound)
	}
	return rec, nil
}

func (s *SubmissionStore) InsertEligibilitySubmission(ctx context.Context, submission *models.EligibilitySubmission) error {
	submission.Timestamp = s.now().UTC()
	if err := s.eligibility.Insert(ctx, submission); err != nil {
		return classify(err, nil)
	}
	logger.CtxInfo(ctx, "Stored eligibility submission", slog.String("nationalId", submission.NationalID))
	return nil
}

func (s *SubmissionStore) FindLoanByPhoneAndID(ctx context.Context, phone, nationalID string) (*models.Loan, error) {
	loan, err := s.loans.FindByPhoneAndNationalID(ctx, phone, nationalID)
	if err != nil {
		return nil, classify(err, consts.ErrorLoanNotFound)
	}
	return loan, nil
}

func (s *SubmissionStore) InsertLoan(ctx context.Context, loan *models.Loan) error {
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = s.now().UTC()
	}
	if err := s.loans.Insert(ctx, loan); err != nil {
		return classify(err, nil)
	}
	return nil
}

func (s *SubmissionStore) InsertFeeTransaction(ctx context.Context, tx *models.FeeTransaction) error {
	if err := s.feeTransactions.Insert(ctx, tx); err != nil {
		return classify(err, nil)
	}
	return nil
}

// UpdateFeeTransactionStatus reports whether a QUEUED row was moved to status.
func (s *SubmissionStore) UpdateFeeTransactionStatus(
	ctx context.Context,
	reference string,
	status pkgmodels.TransactionStatus,
) (bool, error) {
	updated, err := s.feeTransactions.UpdateStatus(ctx, reference, status)
	if err != nil {
		return false, classify(err, nil)
	}
	return updated, nil
}

// classify maps a driver error onto the store fault taxonomy. notFound is
// returned for ErrNoDocuments when the caller treats absence as a normal outcome.
func classify(err error, notFound *pkgmodels.CustomError) error {
	if errors.Is(err, mongo.ErrNoDocuments) && notFound != nil {
		return notFound
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == unauthorizedCode {
		return consts.ErrorStorePermissionDenied.Wrap(err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return consts.ErrorStoreUnavailable.Wrap(err)
	}
	return consts.ErrorStoreUnexpected.Wrap(err)
}
