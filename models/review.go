package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID  primitive.ObjectID `bson:"productId" json:"productId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	UserName   string             `bson:"userName" json:"userName"`
	Rating     int                `bson:"rating" json:"rating"`
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	Comment    string             `bson:"comment" json:"comment"`
	IsApproved bool               `bson:"isApproved" json:"isApproved"`
	IsVerified bool               `bson:"isVerified" json:"isVerified"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ReviewInput struct {
	ProductID string `json:"productId" validate:"required,len=24,hexadecimal"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Title     string `json:"title" validate:"max=150"`
	Comment   string `json:"comment" validate:"required,max=3000"`
}

type ReviewUpdate struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"max=150"`
	Comment string `json:"comment" validate:"required,max=3000"`
}

type ReviewApproval struct {
	IsApproved *bool `json:"isApproved" validate:"required"`
}
