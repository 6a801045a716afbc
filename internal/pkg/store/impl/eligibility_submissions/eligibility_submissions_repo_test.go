package eligibility_submissions

import (
	"context"
	"errors"
	"testing"
	"time"

	mongodb "github.com/KelluuhShit/loan-mpesa/internal/pkg/db/mongo"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.InsertOneResult), args.Error(1)
}

func (m *MockRepository) FindOne(ctx context.Context, filter interface{}, opt *options.FindOneOptions) (models.EligibilitySubmission, error) {
	args := m.Called(ctx, filter, opt)
	return args.Get(0).(models.EligibilitySubmission), args.Error(1)
}

func (m *MockRepository) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, filter, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.UpdateResult), args.Error(1)
}

func TestFindLatestByNationalID(t *testing.T) {
	ctx := context.Background()
	submission := models.EligibilitySubmission{
		FullName:   "Jane Wanjiku",
		NationalID: "12345678",
		Eligible:   true,
		Limit:      27000,
		Timestamp:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	tests := []struct {
		name       string
		setupMocks func(m *MockRepository)
		wantErr    error
		want       *models.EligibilitySubmission
	}{
		{
			name: "found",
			setupMocks: func(m *MockRepository) {
				m.On("FindOne", ctx, bson.M{"nationalId": "12345678"}, mock.MatchedBy(func(o *options.FindOneOptions) bool {
					return o != nil && assert.ObjectsAreEqual(bson.D{{Key: "timestamp", Value: -1}}, o.Sort)
				})).Return(submission, nil)
			},
			want: &submission,
		},
		{
			name: "not found",
			setupMocks: func(m *MockRepository) {
				m.On("FindOne", ctx, mock.Anything, mock.Anything).
					Return(models.EligibilitySubmission{}, mongo.ErrNoDocuments)
			},
			wantErr: mongo.ErrNoDocuments,
		},
		{
			name: "driver error",
			setupMocks: func(m *MockRepository) {
				m.On("FindOne", ctx, mock.Anything, mock.Anything).
					Return(models.EligibilitySubmission{}, mongo.CommandError{Code: 13, Name: "Unauthorized"})
			},
			wantErr: mongo.CommandError{Code: 13, Name: "Unauthorized"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockRepository{}
			tt.setupMocks(m)
			repo := NewEligibilitySubmissionRepositoryWithInterface(m)

			got, err := repo.FindLatestByNationalID(ctx, "12345678")

			if tt.wantErr != nil {
				assert.Nil(t, got)
				assert.True(t, errors.Is(err, tt.wantErr) || err.Error() == tt.wantErr.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestInsert(t *testing.T) {
	ctx := context.Background()
	submission := &models.EligibilitySubmission{NationalID: "12345678"}

	t.Run("success", func(t *testing.T) {
		m := &MockRepository{}
		m.On("Create", ctx, submission).Return(&mongo.InsertOneResult{InsertedID: "id"}, nil)

		assert.NoError(t, NewEligibilitySubmissionRepositoryWithInterface(m).Insert(ctx, submission))
		m.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		m := &MockRepository{}
		m.On("Create", ctx, submission).Return(nil, errors.New("write failed"))

		assert.Error(t, NewEligibilitySubmissionRepositoryWithInterface(m).Insert(ctx, submission))
		m.AssertExpectations(t)
	})
}

func TestNewEligibilitySubmissionRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("constructor", func(mt *mtest.T) {
		repo := NewEligibilitySubmissionRepository(&mongodb.MongoClient{Database: mt.DB})
		assert.NotNil(t, repo.repo)
	})
}
