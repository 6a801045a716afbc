package gcs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSClient struct {
	Client     *storage.Client
	BucketName string
	FolderName string
}

type GcsInterface interface {
	UploadReceipt(ctx context.Context, receipt *models.Confirmation) error
	Close(ctx context.Context)
}

func NewGCSClient(ctx context.Context, bucketName, folderName string, opts ...option.ClientOption) (*GCSClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSClient{
		Client:     client,
		BucketName: bucketName,
		FolderName: folderName,
	}, nil
}

func (g *GCSClient) Close(ctx context.Context) {
	if g.Client == nil {
		return
	}
	if err := g.Client.Close(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorClosingGCSClient, err)
	}
}

// ObjectName is <folder>/<unix seconds>_<msisdn>.json
func (g *GCSClient) ObjectName(receipt *models.Confirmation) string {
	return fmt.Sprintf("%s/%d_%s.json", g.FolderName, receipt.ConfirmedAt.Unix(), receipt.DisbursementTarget)
}

// UploadReceipt writes the confirmation once; an existing object is never overwritten.
func (g *GCSClient) UploadReceipt(ctx context.Context, receipt *models.Confirmation) error {
	objectName := g.ObjectName(receipt)
	jsonData, err := json.Marshal(receipt)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorMarshallingJSON, err)
		return err
	}

	object := g.Client.Bucket(g.BucketName).Object(objectName)
	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = consts.ContentType
	writer.Metadata = map[string]string{
		"reference":      receipt.Reference,
		"trackingNumber": receipt.TrackingNumber,
	}

	if _, err := writer.Write(jsonData); err != nil {
		logger.CtxError(ctx, log_messages.ErrorUploadingToGCSBucket, err)
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorClosingGCSWriter, err, slog.String("objectName", objectName))
		return err
	}
	logger.CtxInfo(ctx, log_messages.UploadedToGCSBucket, slog.String("objectName", objectName))
	return nil
}
