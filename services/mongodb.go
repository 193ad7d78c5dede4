package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongoDB initializes the MongoDB connection
func InitMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB")
	return client, nil
}

// CreateIndexes creates the indexes backing mode resolution, the stale-session
// sweep and inventory search.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	chatStates := db.Collection(chatStatesCollection)
	_, err := chatStates.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// One state document per user
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// Covers the stale human-session sweep
		{
			Keys: bson.D{
				{Key: "mode", Value: 1},
				{Key: "last_human_activity_at", Value: 1},
			},
		},
	})
	if err != nil {
		slog.Error("Failed to create indexes for chat_states collection", "error", err)
		return err
	}

	vehicles := db.Collection(vehiclesCollection)
	_, err = vehicles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "model", Value: 1}}},
	})
	if err != nil {
		slog.Error("Failed to create indexes for vehicles collection", "error", err)
		return err
	}

	slog.Info("Database indexes created")
	return nil
}
