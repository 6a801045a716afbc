package loan

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	storemodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/repository"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/utils"
	"github.com/KelluuhShit/loan-mpesa/internal/service/interfaces"

	"github.com/google/uuid"
)

type LoanService struct {
	store      interfaces.SubmissionStoreInterface
	cache      interfaces.RedisStoreInterface
	fees       *FeeTable
	minimum    int64
	step       int64
	sessionTTL time.Duration
	now        func() time.Time
	newID      func() string
}

func NewLoanService(
	store interfaces.SubmissionStoreInterface,
	cache interfaces.RedisStoreInterface,
	fees *FeeTable,
	loanCfg config.LoanConfig,
	sessionTTL time.Duration,
) *LoanService {
	return &LoanService{
		store:      store,
		cache:      cache,
		fees:       fees,
		minimum:    loanCfg.Minimum,
		step:       loanCfg.Step,
		sessionTTL: sessionTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Quote prices a loan for an eligible applicant and caches the resulting
// application under a fresh tracking number.
func (s *LoanService) Quote(ctx context.Context, nationalID string, amount int64, recipientPhone string) (*models.LoanApplication, error) {
	var recipient string
	if recipientPhone != "" {
		msisdn, err := utils.NormalizeMSISDN(recipientPhone)
		if err != nil {
			return nil, models.NewValidationError("phoneNumber", err.Error())
		}
		recipient = msisdn
	}

	rec, err := s.store.FindByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}

	fee, err := s.price(rec, amount)
	if err != nil {
		return nil, err
	}

	app := &models.LoanApplication{
		TrackingNumber:    s.trackingNumber(),
		NationalID:        rec.NationalID,
		FullName:          rec.FullName,
		PhoneNumber:       rec.PhoneNumber,
		LoanAmount:        amount,
		ServiceFee:        fee,
		DisbursableAmount: amount - fee,
		CreatedAt:         s.now().UTC(),
	}
	if recipient != "" && recipient != rec.PhoneNumber {
		app.RecipientPhone = recipient
	}

	key := consts.LoanApplicationKeyPrefix + app.TrackingNumber
	if err := repository.SetJSON(ctx, s.cache, key, app, s.sessionTTL); err != nil {
		logger.CtxError(ctx, log_messages.ErrorCachingApplication, err, slog.String("trackingNumber", app.TrackingNumber))
		return nil, consts.ErrorStoreUnavailable.Wrap(err)
	}

	logger.CtxInfo(ctx, log_messages.LoanQuoted,
		slog.String("trackingNumber", app.TrackingNumber),
		slog.Int64("loanAmount", app.LoanAmount),
		slog.Int64("serviceFee", app.ServiceFee),
	)
	return app, nil
}

func (s *LoanService) price(rec *storemodels.EligibilitySubmission, amount int64) (int64, error) {
	if !rec.Eligible || amount < s.minimum || amount > rec.Limit || amount%s.step != 0 {
		return 0, consts.ErrorLoanAmountOutOfRange
	}
	fee, ok := s.fees.Fee(amount)
	if !ok {
		return 0, consts.ErrorLoanAmountOutOfRange
	}
	return fee, nil
}

func (s *LoanService) trackingNumber() string {
	id := strings.ReplaceAll(s.newID(), "-", "")
	return consts.TrackingNumberPrefix + strings.ToUpper(id[:8])
}

// Progress returns the loan opened for the applicant once its fee was paid.
func (s *LoanService) Progress(ctx context.Context, phone, nationalID string) (*storemodels.Loan, error) {
	phone = strings.TrimSpace(phone)
	nationalID = strings.TrimSpace(nationalID)
	if phone == "" || nationalID == "" {
		return nil, consts.ErrorInvalidAccess
	}
	msisdn, err := utils.NormalizeMSISDN(phone)
	if err != nil {
		return nil, consts.ErrorInvalidAccess
	}
	return s.store.FindLoanByPhoneAndID(ctx, msisdn, nationalID)
}
