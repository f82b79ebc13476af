package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection          = "users"
	CandidatesCollection     = "candidates"
	ConstituenciesCollection = "constituencies"
	ElectionsCollection      = "elections"
)

// MongoDB connection instance, shared by the whole process.
var (
	mu          sync.Mutex
	MongoClient *mongo.Client
)

// ConnectMongoDB initializes the database connection. Later calls reuse the
// client of the first successful one.
func ConnectMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	mu.Lock()
	defer mu.Unlock()

	if MongoClient != nil {
		slog.Debug("using existing database connection")
		return MongoClient, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connection failed: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	slog.Info("connected to MongoDB")
	MongoClient = client
	return client, nil
}

// Disconnect closes the shared client, if any.
func Disconnect(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if MongoClient == nil {
		return nil
	}
	err := MongoClient.Disconnect(ctx)
	MongoClient = nil
	return err
}

// EnsureIndexes creates the unique and lookup indexes the application relies on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "voting_history.election", Value: 1}}},
		},
		ConstituenciesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ElectionsCollection: {
			{Keys: bson.D{{Key: "start_date", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_date", Value: 1}}},
		},
		CandidatesCollection: {
			{Keys: bson.D{{Key: "constituency", Value: 1}, {Key: "name", Value: 1}}},
			{
				// One application per user per election. Admin-created candidates have no applied_by.
				Keys: bson.D{{Key: "elections", Value: 1}, {Key: "applied_by", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"applied_by": bson.M{"$exists": true}}),
			},
		},
	}

	for name, models := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
