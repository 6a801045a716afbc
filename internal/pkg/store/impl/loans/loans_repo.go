package loans

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	mongodb "github.com/KelluuhShit/loan-mpesa/internal/pkg/db/mongo"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/repository"
	"github.com/KelluuhShit/loan-mpesa/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LoanRepository struct {
	repo interfaces.LoanStoreInterface
}

func NewLoansRepository(client *mongodb.MongoClient) *LoanRepository {
	collection := client.Database.Collection(consts.LoansCollection)
	repo := repository.NewMongoRepository[models.Loan](collection)
	return &LoanRepository{repo: repo}
}

func NewLoanRepositoryWithInterface(repo interfaces.LoanStoreInterface) *LoanRepository {
	return &LoanRepository{repo: repo}
}

func (lr *LoanRepository) Insert(ctx context.Context, loan *models.Loan) error {
	if _, err := lr.repo.Create(ctx, loan); err != nil {
		logger.CtxError(ctx, log_messages.ErrorInsertingDocument, err,
			slog.String("collection", consts.LoansCollection),
			slog.String("trackingNumber", loan.TrackingNumber),
		)
		return err
	}
	return nil
}

// FindByPhoneAndNationalID returns the first loan matching both identifiers.
func (lr *LoanRepository) FindByPhoneAndNationalID(ctx context.Context, phone, nationalID string) (*models.Loan, error) {
	filter := bson.M{"phoneNumber": phone, "nationalId": nationalID}

	loan, err := lr.repo.FindOne(ctx, filter, options.FindOne())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, "No loan found for phone and national ID",
				slog.String("phoneNumber", phone), slog.String("nationalId", nationalID))
			return nil, err
		}
		logger.CtxError(ctx, log_messages.ErrorFindingLoan, err, slog.String("phoneNumber", phone))
		return nil, err
	}

	logger.CtxDebug(ctx, "Fetched loan", slog.String("loan_id", loan.ID.Hex()))
	return &loan, nil
}
