package product

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

// Update carries the catalog fields an admin may change. Nil fields are
// left untouched.
type Update struct {
	Name        *string
	Price       *float64
	Description *string
	Category    *Category
	Image       *string
}

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	Create(ctx context.Context, p *Product) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, upd Update) (*Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection("products")}
}

func (r *mongoRepository) List(ctx context.Context) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := []Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var p Product

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by id: %w", err)
	}

	return &p, nil
}

func (r *mongoRepository) Create(ctx context.Context, p *Product) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert product: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &p, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
