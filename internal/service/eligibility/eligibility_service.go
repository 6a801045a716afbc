package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	storemodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/utils"
	"github.com/KelluuhShit/loan-mpesa/internal/service/interfaces"
)

type EligibilityService struct {
	store interfaces.SubmissionStoreInterface
	limit int64
	now   func() time.Time
}

func NewEligibilityService(store interfaces.SubmissionStoreInterface, limit int64) *EligibilityService {
	return &EligibilityService{store: store, limit: limit, now: time.Now}
}

// Check records the applicant and returns the loan limit. Every applicant
// that passes validation is eligible for the configured limit.
func (s *EligibilityService) Check(ctx context.Context, req *models.EligibilityRequest) (*models.EligibilityResponse, error) {
	phone, err := utils.NormalizeMSISDN(req.PhoneNumber)
	if err != nil {
		return nil, models.NewValidationError("phoneNumber", err.Error())
	}

	submission := &storemodels.EligibilitySubmission{
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: phone,
		NationalID:  req.NationalID,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		County:      strings.TrimSpace(req.County),
		Education:   req.Education,
		Employment:  req.Employment,
		Income:      req.Income,
		LoanPurpose: req.LoanPurpose,
		Eligible:    true,
		Limit:       s.limit,
	}
	if err := s.store.InsertEligibilitySubmission(ctx, submission); err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Eligibility recorded",
		slog.String("nationalId", submission.NationalID),
		slog.Int64("limit", submission.Limit),
	)
	return toResponse(submission), nil
}

// Lookup returns the latest eligibility decision for the national ID.
func (s *EligibilityService) Lookup(ctx context.Context, nationalID string) (*models.EligibilityResponse, error) {
	if !utils.IsValidNationalID(nationalID) {
		return nil, models.NewValidationError("nationalId", formatMessages["nationalId"])
	}
	rec, err := s.store.FindByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	return toResponse(rec), nil
}

// Now is the clock used by the dateOfBirth validator.
func (s *EligibilityService) Now() time.Time {
	return s.now()
}

func toResponse(rec *storemodels.EligibilitySubmission) *models.EligibilityResponse {
	resp := &models.EligibilityResponse{
		Eligible:   rec.Eligible,
		Limit:      rec.Limit,
		NationalID: rec.NationalID,
	}
	if rec.Eligible {
		resp.Message = fmt.Sprintf(consts.EligibleMessage, rec.Limit)
	}
	return resp
}
