package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type PubSubResult interface {
	Get(ctx context.Context) (string, error)
}

type PubSubTopic interface {
	Publish(ctx context.Context, msg *pubsub.Message) PubSubResult
	Stop()
}

// PublisherInterface publishes JSON messages with attributes.
type PublisherInterface interface {
	PublishMessage(ctx context.Context, message any, attributes map[string]string) (string, error)
}

type PubSubClient struct {
	Client *pubsub.Client
	Topic  PubSubTopic
}

type GCPTopicAdapter struct {
	topic *pubsub.Topic
}

func (g *GCPTopicAdapter) Publish(ctx context.Context, msg *pubsub.Message) PubSubResult {
	return &GCPPublishResultAdapter{g.topic.Publish(ctx, msg)}
}

func (g *GCPTopicAdapter) Stop() {
	g.topic.Stop()
}

type GCPPublishResultAdapter struct {
	res *pubsub.PublishResult
}

func (g *GCPPublishResultAdapter) Get(ctx context.Context) (string, error) {
	return g.res.Get(ctx)
}

type GCPClientFactory func(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error)

func NewPubSubClient(ctx context.Context, projectID, topicID string, factory GCPClientFactory) (*PubSubClient, error) {
	client, err := factory(ctx, projectID)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorPubSubClientCreation, err, slog.String("projectId", projectID))
		return nil, err
	}

	topic := client.Topic(topicID)
	if topic == nil {
		return nil, fmt.Errorf(log_messages.TopicDoesNotExists, topicID)
	}

	return &PubSubClient{Client: client, Topic: &GCPTopicAdapter{topic: topic}}, nil
}

// Close stops the topic's background publisher and closes the client.
func (p *PubSubClient) Close() {
	if p.Topic != nil {
		p.Topic.Stop()
	}
	if p.Client == nil {
		return
	}
	if err := p.Client.Close(); err != nil {
		logger.Error("failed to close pubsub client", err)
	}
}

func (p *PubSubClient) PublishMessage(ctx context.Context, message any, attributes map[string]string) (string, error) {
	inputData, err := json.Marshal(message)
	if err != nil {
		logger.CtxError(ctx, "failed to marshal pubsub message", err)
		return "", fmt.Errorf(log_messages.ErrorMarshallingMessage, err)
	}

	res := p.Topic.Publish(ctx, &pubsub.Message{Data: inputData, Attributes: attributes})

	messageID, err := res.Get(ctx)
	if err != nil {
		logger.CtxError(ctx, "failed to publish pubsub message", err)
		return "", fmt.Errorf(log_messages.ErrorInMessagePublishing, err)
	}

	logger.CtxDebug(ctx, "published pubsub message", slog.String("messageId", messageID))
	return messageID, nil
}
