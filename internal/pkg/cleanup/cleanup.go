package cleanup

import (
	"context"

	mongodb "github.com/KelluuhShit/loan-mpesa/internal/pkg/db/mongo"
	redisdb "github.com/KelluuhShit/loan-mpesa/internal/pkg/db/redis"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
)

type closer interface {
	Close() error
}

type contextCloser interface {
	Close(ctx context.Context)
}

type stopper interface {
	Stop()
}

// Resources are the process-wide clients released on shutdown. Any field
// may be nil.
type Resources struct {
	Mongo    *mongodb.MongoClient
	Redis    *redisdb.RedisClient
	Producer closer
	PubSub   interface{ Close() }
	GCS      contextCloser
	Workers  stopper
	Tracing  func(context.Context) error
}

// CleanupResources drains the worker pool first so queued side effects can
// still reach the brokers, then closes every client.
func CleanupResources(ctx context.Context, res Resources) {
	if res.Workers != nil {
		res.Workers.Stop()
	}
	if res.Producer != nil {
		if err := res.Producer.Close(); err != nil {
			logger.CtxError(ctx, "Failed to close Kafka producer", err)
		}
	}
	if res.PubSub != nil {
		res.PubSub.Close()
	}
	if res.GCS != nil {
		res.GCS.Close(ctx)
	}
	if res.Mongo != nil && res.Mongo.Client != nil {
		if err := mongodb.Disconnect(res.Mongo.Client); err != nil {
			logger.CtxError(ctx, "Failed to disconnect from MongoDB", err)
		}
	}
	if res.Redis != nil && res.Redis.Client != nil {
		if err := redisdb.Disconnect(res.Redis.Client); err != nil {
			logger.CtxError(ctx, "Failed to disconnect from Redis", err)
		}
	}
	if res.Tracing != nil {
		if err := res.Tracing(ctx); err != nil {
			logger.CtxError(ctx, "Failed to shut down tracing", err)
		}
	}
}
