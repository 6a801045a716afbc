package interfaces

import (
	"context"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/utils/worker"
)

// EventPublisherInterface produces keyed JSON events to Kafka.
type EventPublisherInterface interface {
	PublishJSON(ctx context.Context, key string, payload any) error
}

// NotificationPublisherInterface publishes SMS notification requests to Pub/Sub.
type NotificationPublisherInterface interface {
	PublishMessage(ctx context.Context, message any, attributes map[string]string) (string, error)
}

type ReceiptUploaderInterface interface {
	UploadReceipt(ctx context.Context, receipt *models.Confirmation) error
}

type TaskSubmitterInterface interface {
	Submit(task worker.Task) bool
}
