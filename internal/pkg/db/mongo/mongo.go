package mongo

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const srvScheme = "mongodb+srv://"

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func ConnectToMongoDB(ctx context.Context, cfg config.MongoConfig) (*MongoClient, error) {
	return connectWithConnector(ctx, cfg, &DefaultMongoConnector{})
}

func connectWithConnector(ctx context.Context, cfg config.MongoConfig, connector MongoConnector) (*MongoClient, error) {

	mongoURI := buildMongoURI(cfg)
	safeURI := redactMongoURI(mongoURI)

	logger.CtxInfo(ctx, "Connecting to MongoDB",
		slog.String("uri", safeURI),
		slog.String("database", cfg.DBName),
	)

	connectTimeout := cfg.ConnectTimeout
	clientOpts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout * 2).
		SetSocketTimeout(connectTimeout * 3).
		SetHeartbeatInterval(10 * time.Second).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	client, err := connector.Connect(ctx, clientOpts)
	if err != nil {
		logger.CtxError(ctx, "Failed to connect to MongoDB", err,
			slog.String("uri", safeURI),
			slog.String("database", cfg.DBName),
		)
		return nil, err
	}

	if err := connector.Ping(ctx, client); err != nil {
		logger.CtxError(ctx, "MongoDB ping failed", err,
			slog.String("uri", safeURI),
			slog.String("database", cfg.DBName),
		)
		return nil, err
	}

	logger.CtxInfo(ctx, "Successfully connected to MongoDB",
		slog.String("uri", safeURI),
		slog.String("database", cfg.DBName),
	)

	return &MongoClient{
		Client:   client,
		Database: client.Database(cfg.DBName),
	}, nil
}

// buildMongoURI injects credentials into the configured host. A bare host is
// treated as an SRV cluster address.
func buildMongoURI(cfg config.MongoConfig) string {
	scheme := srvScheme
	host := cfg.URI
	if i := strings.Index(host, "://"); i >= 0 {
		scheme = host[:i+3]
		host = host[i+3:]
	}
	if cfg.Username == "" {
		return scheme + host
	}
	return scheme + url.QueryEscape(cfg.Username) + ":" + url.QueryEscape(cfg.Password) + "@" + host
}

func Disconnect(client *mongo.Client) error {
	return client.Disconnect(context.Background())
}

// redactMongoURI hides username and password from a MongoDB URI
func redactMongoURI(uri string) string {
	parts := strings.SplitN(uri, "@", 2)
	if len(parts) != 2 {
		return uri
	}
	scheme := srvScheme
	if i := strings.Index(parts[0], "://"); i >= 0 {
		scheme = parts[0][:i+3]
	}
	return scheme + "***:***@" + parts[1]
}
