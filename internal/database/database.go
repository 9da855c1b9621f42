package database

import (
	"context"
	"fmt"

	"github.com/Dias221467/Habit_Tracker/internal/config"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens a MongoDB client and verifies the deployment with a ping
// before handing back the configured database.
func ConnectDB(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	logger.Log.WithField("database", cfg.Database).Info("Pinged deployment, connected to MongoDB")
	return client, client.Database(cfg.Database), nil
}

// Ping runs the ping command against the admin database.
func Ping(ctx context.Context, client *mongo.Client) error {
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}
