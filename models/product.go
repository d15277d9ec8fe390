package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductType string

const (
	ProductTypeHardware ProductType = "hardware"
	ProductTypePaint    ProductType = "paint"
)

// Rating is derived from approved reviews and never written by clients.
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string              `bson:"name" json:"name"`
	Description   string              `bson:"description" json:"description"`
	Brand         string              `bson:"brand,omitempty" json:"brand,omitempty"`
	SKU           string              `bson:"sku,omitempty" json:"sku,omitempty"`
	Price         float64             `bson:"price" json:"price"`
	CategoryID    primitive.ObjectID  `bson:"categoryId" json:"categoryId"`
	SubcategoryID *primitive.ObjectID `bson:"subcategoryId,omitempty" json:"subcategoryId,omitempty"`
	Type          ProductType         `bson:"type" json:"type"`
	Stock         int                 `bson:"stock" json:"stock"`
	Images        []string            `bson:"images" json:"images"`
	Rating        Rating              `bson:"rating" json:"rating"`
	IsActive      bool                `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ProductInput is the admin create/replace payload.
type ProductInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	Brand         string   `json:"brand" validate:"max=100"`
	SKU           string   `json:"sku" validate:"max=64"`
	Price         float64  `json:"price" validate:"gte=0"`
	CategoryID    string   `json:"categoryId" validate:"required,len=24,hexadecimal"`
	SubcategoryID string   `json:"subcategoryId" validate:"omitempty,len=24,hexadecimal"`
	Type          string   `json:"type" validate:"required,oneof=hardware paint"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Images        []string `json:"images" validate:"omitempty,dive,url"`
	IsActive      *bool    `json:"isActive"`
}

// StockUpdate either sets the stock or adjusts it by a signed delta.
type StockUpdate struct {
	Stock  *int `json:"stock" validate:"omitempty,gte=0"`
	Adjust *int `json:"adjust"`
}
