package db

import (
	"context"
	"log"
	"time"

	"shopmart-be/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store bundles the collections the application reads and writes.
type Store struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Products *mongo.Collection
	Orders   *mongo.Collection
}

func InitStore(cfg *config.Config) *Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	database := client.Database(cfg.DBName)
	store := &Store{
		Client:   client,
		Users:    database.Collection("users"),
		Products: database.Collection("products"),
		Orders:   database.Collection("orders"),
	}

	if err = store.ensureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	log.Println("MongoDB connection established")
	return store
}

// ensureIndexes enforces email uniqueness at the store level so duplicate
// registrations surface as duplicate-key errors no matter how they race.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
