package fee_transactions

import (
	"context"
	"log/slog"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	mongodb "github.com/KelluuhShit/loan-mpesa/internal/pkg/db/mongo"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	pkgmodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/repository"
	"github.com/KelluuhShit/loan-mpesa/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
)

type FeeTransactionRepository struct {
	repo interfaces.FeeTransactionStoreInterface
	now  func() time.Time
}

func NewFeeTransactionRepository(client *mongodb.MongoClient) *FeeTransactionRepository {
	collection := client.Database.Collection(consts.FeeTransactionsCollection)
	repo := repository.NewMongoRepository[models.FeeTransaction](collection)
	return &FeeTransactionRepository{repo: repo, now: time.Now}
}

func NewFeeTransactionRepositoryWithInterface(repo interfaces.FeeTransactionStoreInterface) *FeeTransactionRepository {
	return &FeeTransactionRepository{repo: repo, now: time.Now}
}

func (r *FeeTransactionRepository) Insert(ctx context.Context, tx *models.FeeTransaction) error {
	if tx.UpdatedAt.IsZero() {
		tx.UpdatedAt = r.now().UTC()
	}
	if _, err := r.repo.Create(ctx, tx); err != nil {
		logger.CtxError(ctx, log_messages.ErrorInsertingDocument, err,
			slog.String("collection", consts.FeeTransactionsCollection),
			slog.String("reference", tx.Reference),
		)
		return err
	}
	return nil
}

// UpdateStatus moves a QUEUED transaction to a terminal status. It reports
// false when no QUEUED document matched, so terminal rows are never rewritten.
func (r *FeeTransactionRepository) UpdateStatus(
	ctx context.Context,
	reference string,
	status pkgmodels.TransactionStatus,
) (bool, error) {

	filter := bson.M{"reference": reference, "status": string(pkgmodels.StatusQueued)}
	update := bson.M{"status": string(status), "updatedAt": r.now().UTC()}

	res, err := r.repo.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorUpdatingFeeStatus, err,
			slog.String("reference", reference),
			slog.String("status", string(status)),
		)
		return false, err
	}
	return res.MatchedCount > 0, nil
}
