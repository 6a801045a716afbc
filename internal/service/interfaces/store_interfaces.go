package interfaces

import (
	"context"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentStore is the generic repository surface consumed by the entity repositories.
type DocumentStore[T any] interface {
	Create(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opt *options.FindOneOptions) (T, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
}

type EligibilitySubmissionStoreInterface = DocumentStore[models.EligibilitySubmission]

type LoanStoreInterface = DocumentStore[models.Loan]

type FeeTransactionStoreInterface = DocumentStore[models.FeeTransaction]
