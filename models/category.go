package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subcategory lives only inside its parent Category document.
type Subcategory struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
}

type Category struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Type          ProductType        `bson:"type" json:"type"`
	Description   string             `bson:"description" json:"description"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	Subcategories []Subcategory      `bson:"subcategories" json:"subcategories"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ActiveSubcategories drops soft-deleted children.
func (c *Category) ActiveSubcategories() []Subcategory {
	out := make([]Subcategory, 0, len(c.Subcategories))
	for _, s := range c.Subcategories {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

// HasSubcategory reports whether id names an active subcategory.
func (c *Category) HasSubcategory(id primitive.ObjectID) bool {
	for _, s := range c.Subcategories {
		if s.ID == id && s.IsActive {
			return true
		}
	}
	return false
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Type        string `json:"type" validate:"required,oneof=hardware paint"`
	Description string `json:"description" validate:"max=2000"`
	Image       string `json:"image" validate:"omitempty,url"`
	IsActive    *bool  `json:"isActive"`
}

type SubcategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	IsActive    *bool  `json:"isActive"`
}
