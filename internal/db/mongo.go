package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mavdeev/shop-backend/internal/config"
)

type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func New(ctx context.Context, cfg config.Config) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m := &Mongo{
		Client: client,
		DB:     client.Database(cfg.Mongo.DBName),
	}

	if err := m.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}

	log.Info().Str("db", cfg.Mongo.DBName).Msg("Connected to MongoDB")
	return m, nil
}

// ensureIndexes creates the unique indexes the data model depends on:
// one account per email, one cart per user.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.DB.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = m.DB.Collection("carts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create carts user index: %w", err)
	}

	_, err = m.DB.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create orders user index: %w", err)
	}

	return nil
}

func (m *Mongo) Close(ctx context.Context) {
	if err := m.Client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		return
	}
	log.Info().Msg("MongoDB connection closed")
}
