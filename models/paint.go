package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaintFinish string

const (
	FinishMatte     PaintFinish = "matte"
	FinishEggshell  PaintFinish = "eggshell"
	FinishSatin     PaintFinish = "satin"
	FinishSemiGloss PaintFinish = "semi-gloss"
	FinishGloss     PaintFinish = "gloss"
)

// Paint is a shade in the paint catalog. ProductID links it to the
// purchasable base product when one exists.
type Paint struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Brand       string              `bson:"brand" json:"brand"`
	ColorName   string              `bson:"colorName" json:"colorName"`
	ColorCode   string              `bson:"colorCode" json:"colorCode"`
	ColorFamily string              `bson:"colorFamily,omitempty" json:"colorFamily,omitempty"`
	Finish      PaintFinish         `bson:"finish" json:"finish"`
	Sizes       []float64           `bson:"sizes" json:"sizes"`
	Price       float64             `bson:"price" json:"price"`
	Stock       int                 `bson:"stock" json:"stock"`
	CategoryID  primitive.ObjectID  `bson:"categoryId" json:"categoryId"`
	ProductID   *primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	Images      []string            `bson:"images" json:"images"`
	IsActive    bool                `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type PaintInput struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Brand       string    `json:"brand" validate:"required,max=100"`
	ColorName   string    `json:"colorName" validate:"required,max=100"`
	ColorCode   string    `json:"colorCode" validate:"required,hexcolor"`
	ColorFamily string    `json:"colorFamily" validate:"max=50"`
	Finish      string    `json:"finish" validate:"required,oneof=matte eggshell satin semi-gloss gloss"`
	Sizes       []float64 `json:"sizes" validate:"omitempty,dive,gt=0"`
	Price       float64   `json:"price" validate:"gte=0"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CategoryID  string    `json:"categoryId" validate:"required,len=24,hexadecimal"`
	ProductID   string    `json:"productId" validate:"omitempty,len=24,hexadecimal"`
	Images      []string  `json:"images" validate:"omitempty,dive,url"`
	IsActive    *bool     `json:"isActive"`
}
