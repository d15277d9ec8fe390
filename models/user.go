package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Label      string             `bson:"label" json:"label" validate:"max=50"`
	FullName   string             `bson:"fullName" json:"fullName" validate:"required,max=100"`
	Phone      string             `bson:"phone" json:"phone" validate:"max=30"`
	Street     string             `bson:"street" json:"street" validate:"required,max=200"`
	City       string             `bson:"city" json:"city" validate:"required,max=100"`
	State      string             `bson:"state" json:"state" validate:"max=100"`
	Country    string             `bson:"country" json:"country" validate:"required,max=100"`
	PostalCode string             `bson:"postalCode" json:"postalCode" validate:"required,max=20"`
	IsDefault  bool               `bson:"isDefault" json:"isDefault"`
}

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password,omitempty" json:"-"` // "-" means don't include in JSON
	Phone     string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Addresses []Address            `bson:"addresses" json:"addresses"`
	Wishlist  []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	IsAdmin   bool                 `bson:"isAdmin" json:"isAdmin"`
	IsActive  bool                 `bson:"isActive" json:"isActive"`
	LastLogin *time.Time           `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// FindAddress returns the embedded address with the given id.
func (u *User) FindAddress(id primitive.ObjectID) (Address, bool) {
	for _, a := range u.Addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"max=30"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UserAdminUpdate carries the flags an admin may flip on another user.
type UserAdminUpdate struct {
	IsActive *bool `json:"isActive"`
	IsAdmin  *bool `json:"isAdmin"`
}
