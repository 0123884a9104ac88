package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Update carries the two fields an admin may change after checkout.
// Nil fields are left untouched.
type Update struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

type Repository interface {
	Create(ctx context.Context, o *Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, id primitive.ObjectID, upd Update) (*Order, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection("orders")}
}

func (r *mongoRepository) Create(ctx context.Context, o *Order) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, o)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert order: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	var o Order

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order by id: %w", err)
	}

	return &o, nil
}

func (r *mongoRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]Order, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *mongoRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoRepository) list(ctx context.Context, filter bson.M) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := []Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*Order, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.PaymentStatus != nil {
		set["payment_status"] = *upd.PaymentStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o Order
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return &o, nil
}
