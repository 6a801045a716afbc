package eligibility_submissions

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

type EligibilitySubmissionRepository struct {
	repo interfaces.EligibilitySubmissionStoreInterface
}

func NewEligibilitySubmissionRepository(client *mongodb.MongoClient) *EligibilitySubmissionRepository {
	collection := client.Database.Collection(consts.EligibilitySubmissionsCollection)
	repo := repository.NewMongoRepository[models.EligibilitySubmission](collection)
	return &EligibilitySubmissionRepository{repo: repo}
}

func NewEligibilitySubmissionRepositoryWithInterface(
	repo interfaces.EligibilitySubmissionStoreInterface,
) *EligibilitySubmissionRepository {
	return &EligibilitySubmissionRepository{repo: repo}
}

func (r *EligibilitySubmissionRepository) Insert(ctx context.Context, submission *models.EligibilitySubmission) error {
	if _, err := r.repo.Create(ctx, submission); err != nil {
		logger.CtxError(ctx, log_messages.ErrorInsertingDocument, err,
			slog.String("collection", consts.EligibilitySubmissionsCollection),
			slog.String("nationalId", submission.NationalID),
		)
		return err
	}
	return nil
}

// FindLatestByNationalID returns the most recent submission for the national ID.
// An applicant who resubmits corrected details must be judged on the new ones,
// so the newest document wins rather than the first one inserted.
func (r *EligibilitySubmissionRepository) FindLatestByNationalID(
	ctx context.Context,
	nationalID string,
) (*models.EligibilitySubmission, error) {

	filter := bson.M{"nationalId": nationalID}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	submission, err := r.repo.FindOne(ctx, filter, opts)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, "No eligibility submission for national ID", slog.String("nationalId", nationalID))
			return nil, err
		}
		logger.CtxError(ctx, log_messages.ErrorFindingEligibility, err, slog.String("nationalId", nationalID))
		return nil, err
	}

	return &submission, nil
}
