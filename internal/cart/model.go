package cart

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/product"
)

type Item struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Cart is the stored aggregate: one per user, product ids unique within
// the item list.
type Cart struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items     []Item             `json:"items" bson:"items"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ViewItem is a cart entry with its product denormalized for display.
type ViewItem struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type View struct {
	ID        primitive.ObjectID `json:"id"`
	UserID    primitive.ObjectID `json:"user_id"`
	Items     []ViewItem         `json:"items"`
	UpdatedAt time.Time          `json:"updated_at"`
}
