package adapters

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"opening_tree/internal/bootstrap"
)

type AdapterMongo struct {
	Client   *mongo.Client
	Database *mongo.Database
	cfg      *bootstrap.Config
	log      *zap.SugaredLogger
}

func NewAdapterMongo(cfg *bootstrap.Config, log *zap.SugaredLogger) *AdapterMongo {
	return &AdapterMongo{
		cfg: cfg,
		log: log,
	}
}

// Init connects and pings within STORE_DIAL_TIMEOUT; server selection uses
// the same bound so a missing cluster fails fast instead of at first write.
func (a *AdapterMongo) Init(ctx context.Context) error {
	timeout := dialTimeout(a.cfg)
	clientOpts := options.Client().
		ApplyURI(a.cfg.MongoUri).
		SetAppName("opening_tree").
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	ctxConnect, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctxConnect, clientOpts)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err = client.Ping(ctxConnect, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("ping mongo: %w", err)
	}

	a.Client = client
	a.Database = client.Database(a.cfg.MongoDatabase)

	a.log.Infof("mongo session store ready (database %s)", a.cfg.MongoDatabase)
	return nil
}

func (a *AdapterMongo) Close(ctx context.Context) error {
	if a.Client == nil {
		return nil
	}
	return a.Client.Disconnect(ctx)
}
