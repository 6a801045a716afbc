package handlers

import (
	"context"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	storemodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/service/payment"

	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

type MockEligibilityService struct{ mock.Mock }

func (m *MockEligibilityService) Check(ctx context.Context, req *models.EligibilityRequest) (*models.EligibilityResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EligibilityResponse), args.Error(1)
}

func (m *MockEligibilityService) Lookup(ctx context.Context, nationalID string) (*models.EligibilityResponse, error) {
	args := m.Called(ctx, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EligibilityResponse), args.Error(1)
}

func (m *MockEligibilityService) Now() time.Time {
	return fixedNow
}

type MockLoanService struct{ mock.Mock }

func (m *MockLoanService) Quote(ctx context.Context, nationalID string, amount int64, recipient string) (*models.LoanApplication, error) {
	args := m.Called(ctx, nationalID, amount, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoanApplication), args.Error(1)
}

func (m *MockLoanService) Progress(ctx context.Context, phone, nationalID string) (*storemodels.Loan, error) {
	args := m.Called(ctx, phone, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storemodels.Loan), args.Error(1)
}

type MockCheckoutService struct{ mock.Mock }

func (m *MockCheckoutService) Pay(ctx context.Context, trackingNumber, phone string) (payment.Snapshot, error) {
	args := m.Called(ctx, trackingNumber, phone)
	return args.Get(0).(payment.Snapshot), args.Error(1)
}

func (m *MockCheckoutService) Retry(ctx context.Context, trackingNumber, phone string) (payment.Snapshot, error) {
	args := m.Called(ctx, trackingNumber, phone)
	return args.Get(0).(payment.Snapshot), args.Error(1)
}

func (m *MockCheckoutService) Status(ctx context.Context, trackingNumber string) (payment.Snapshot, error) {
	args := m.Called(ctx, trackingNumber)
	return args.Get(0).(payment.Snapshot), args.Error(1)
}

func (m *MockCheckoutService) Dismiss(ctx context.Context, trackingNumber string) error {
	return m.Called(ctx, trackingNumber).Error(0)
}
