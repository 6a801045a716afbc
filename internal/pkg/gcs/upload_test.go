package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const testBucketName = "loan-fee-receipts"

func newFakeGCS(t *testing.T, handler http.Handler) (*storage.Client, func()) {
	server := httptest.NewServer(handler)

	client, err := storage.NewClient(
		context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	return client, server.Close
}

func receipt() *models.Confirmation {
	return &models.Confirmation{
		Reference:          "PH-1",
		TrackingNumber:     "TRK-1A2B3C4D",
		LoanAmount:         3000,
		ServiceFee:         1,
		DisbursableAmount:  2999,
		DisbursementTarget: "254712345678",
		ConfirmedAt:        time.Unix(1735689600, 0).UTC(),
	}
}

func TestNewGCSClient(t *testing.T) {
	client, err := NewGCSClient(context.Background(), testBucketName, "receipts", option.WithoutAuthentication())
	require.NoError(t, err)
	assert.Equal(t, testBucketName, client.BucketName)
	assert.Equal(t, "receipts", client.FolderName)
	client.Close(context.Background())
}

func TestGCSClientCloseNilSafe(t *testing.T) {
	gcsClient := &GCSClient{BucketName: testBucketName}
	assert.NotPanics(t, func() { gcsClient.Close(context.Background()) })
}

func TestObjectName(t *testing.T) {
	g := &GCSClient{FolderName: "receipts"}
	assert.Equal(t, "receipts/1735689600_254712345678.json", g.ObjectName(receipt()))
}

func TestUploadReceipt(t *testing.T) {
	var uploads atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"disbursableAmount":2999`) {
			uploads.Add(1)
		}
		assert.Equal(t, "0", r.URL.Query().Get("ifGenerationMatch"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"receipts/1735689600_254712345678.json","bucket":"loan-fee-receipts"}`))
	})

	client, closeServer := newFakeGCS(t, handler)
	defer closeServer()

	g := &GCSClient{Client: client, BucketName: testBucketName, FolderName: "receipts"}
	require.NoError(t, g.UploadReceipt(context.Background(), receipt()))
	assert.Equal(t, int32(1), uploads.Load())
}

func TestUploadReceipt_AlreadyExists(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = w.Write([]byte(`{"error":{"code":412,"message":"conditionNotMet"}}`))
	})

	client, closeServer := newFakeGCS(t, handler)
	defer closeServer()

	g := &GCSClient{Client: client, BucketName: testBucketName, FolderName: "receipts"}
	assert.Error(t, g.UploadReceipt(context.Background(), receipt()))
}
