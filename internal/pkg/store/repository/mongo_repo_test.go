package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type sampleDoc struct {
	NationalID string `bson:"nationalId"`
	Limit      int64  `bson:"limit"`
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoRepository[sampleDoc](mt.Coll)

		res, err := repo.Create(ctx, sampleDoc{NationalID: "12345678", Limit: 27000})

		require.NoError(t, err)
		assert.NotNil(t, res)
	})

	mt.Run("find one decodes first document", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "nationalId", Value: "12345678"}, {Key: "limit", Value: int64(27000)}}))
		repo := NewMongoRepository[sampleDoc](mt.Coll)

		doc, err := repo.FindOne(ctx, bson.M{"nationalId": "12345678"}, nil)

		require.NoError(t, err)
		assert.Equal(t, sampleDoc{NationalID: "12345678", Limit: 27000}, doc)
	})

	mt.Run("find one without match", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewMongoRepository[sampleDoc](mt.Coll)

		_, err := repo.FindOne(ctx, bson.M{"nationalId": "00000000"}, nil)

		assert.True(t, errors.Is(err, mongo.ErrNoDocuments))
	})

	mt.Run("find returns all documents", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{{Key: "nationalId", Value: "1"}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch, bson.D{{Key: "nationalId", Value: "2"}}),
		)
		repo := NewMongoRepository[sampleDoc](mt.Coll)

		docs, err := repo.Find(ctx, bson.M{})

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "2", docs[1].NationalID)
	})

	mt.Run("update one", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		repo := NewMongoRepository[sampleDoc](mt.Coll)

		res, err := repo.UpdateOne(ctx, bson.M{"nationalId": "1"}, bson.M{"limit": 5000})

		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MatchedCount)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))
		repo := NewMongoRepository[sampleDoc](mt.Coll)

		_, err := repo.Find(ctx, bson.M{})

		assert.Error(t, err)
	})
}
