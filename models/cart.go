package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartLine is a cart item joined with the current product state.
type CartLine struct {
	Product   *Product `json:"product"`
	Quantity  int      `json:"quantity"`
	LineTotal float64  `json:"lineTotal"`
	Available bool     `json:"available"`
}

type CartView struct {
	Items       []CartLine `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount float64    `json:"totalAmount"`
}

type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=1000"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=1000"`
}

type Wishlist struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
