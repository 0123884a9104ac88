package order

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (ps PaymentStatus) String() string {
	return string(ps)
}

func (ps PaymentStatus) Valid() bool {
	switch ps {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCash    PaymentMethod = "CASH"
	MethodCard    PaymentMethod = "CARD"
	MethodPaypal  PaymentMethod = "PAYPAL"
	MethodStripe  PaymentMethod = "STRIPE"
	MethodBinance PaymentMethod = "BINANCE"
)

func (pm PaymentMethod) Valid() bool {
	switch pm {
	case MethodCash, MethodCard, MethodPaypal, MethodStripe, MethodBinance:
		return true
	}
	return false
}

type ShippingAddress struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	Zipcode string `json:"zipcode" bson:"zipcode"`
	Country string `json:"country" bson:"country"`
}

// Item is a line snapshot taken at checkout. Name and price are copied
// from the product so later catalog edits never touch a placed order.
type Item struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items           []Item             `json:"items" bson:"items"`
	Total           float64            `json:"total" bson:"total"`
	Status          Status             `json:"status" bson:"status"`
	ShippingAddress ShippingAddress    `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   PaymentMethod      `json:"payment_method" bson:"payment_method"`
	PaymentStatus   PaymentStatus      `json:"payment_status" bson:"payment_status"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// Owner carries the identity fields denormalized onto order reads.
type Owner struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

type Detail struct {
	Order
	Owner Owner `json:"owner"`
}
