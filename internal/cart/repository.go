package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*Cart, error)
	Create(ctx context.Context, c *Cart) (primitive.ObjectID, error)
	ReplaceItems(ctx context.Context, cartID primitive.ObjectID, items []Item) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection("carts")}
}

func (r *mongoRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*Cart, error) {
	var c Cart

	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart by user id: %w", err)
	}

	return &c, nil
}

func (r *mongoRepository) Create(ctx context.Context, c *Cart) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Items == nil {
		c.Items = []Item{}
	}

	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert cart: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (r *mongoRepository) ReplaceItems(ctx context.Context, cartID primitive.ObjectID, items []Item) error {
	if items == nil {
		items = []Item{}
	}

	update := bson.M{"$set": bson.M{
		"items":      items,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": cartID}, update)
	if err != nil {
		return fmt.Errorf("failed to update cart items: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}
