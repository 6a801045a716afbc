package app

import (
	"context"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	storemodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/service/payment"
)

type EligibilityService interface {
	Check(ctx context.Context, req *models.EligibilityRequest) (*models.EligibilityResponse, error)
	Lookup(ctx context.Context, nationalID string) (*models.EligibilityResponse, error)
	Now() time.Time
}

type LoanService interface {
	Quote(ctx context.Context, nationalID string, amount int64, recipientPhone string) (*models.LoanApplication, error)
	Progress(ctx context.Context, phone, nationalID string) (*storemodels.Loan, error)
}

type CheckoutService interface {
	Pay(ctx context.Context, trackingNumber, phone string) (payment.Snapshot, error)
	Retry(ctx context.Context, trackingNumber, phone string) (payment.Snapshot, error)
	Status(ctx context.Context, trackingNumber string) (payment.Snapshot, error)
	Dismiss(ctx context.Context, trackingNumber string) error
}
