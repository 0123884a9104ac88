package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryFood        Category = "food"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryOther       Category = "other"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryFood,
		CategoryBooks, CategoryHome, CategorySports, CategoryOther:
		return true
	}
	return false
}

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Price       float64            `json:"price" bson:"price"`
	Description string             `json:"description" bson:"description"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	Category    Category           `json:"category" bson:"category"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
