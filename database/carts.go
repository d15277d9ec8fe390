package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetCart returns the user's cart, or an empty one if none exists yet.
func (s *Store) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := findOne[models.Cart](ctx, s.collection(CartsCollection), bson.M{"userId": userID})
	if errors.Is(err, utils.ErrNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return cart, err
}

// AddCartItem increments the quantity of an existing line or appends a new
// one. The cart document is created on first use.
func (s *Store) AddCartItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	now := time.Now()
	coll := s.collection(CartsCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		bson.M{"$inc": bson.M{"items.$.quantity": qty}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("increment cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		_, err = coll.UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$push":        bson.M{"items": models.CartItem{ProductID: productID, Quantity: qty, AddedAt: now}},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, translate(err)
		}
	}
	return s.GetCart(ctx, userID)
}

func (s *Store) SetCartItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	res, err := s.collection(CartsCollection).UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		bson.M{"$set": bson.M{"items.$.quantity": qty, "updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, utils.ErrNotFound
	}
	return s.GetCart(ctx, userID)
}

// cartItemsFilter matches the user's cart only while it still holds at least
// one of productIDs.
func cartItemsFilter(userID primitive.ObjectID, productIDs []primitive.ObjectID) bson.M {
	return bson.M{"userId": userID, "items.productId": bson.M{"$in": productIDs}}
}

func (s *Store) RemoveCartItems(ctx context.Context, userID primitive.ObjectID, productIDs ...primitive.ObjectID) (*models.Cart, error) {
	res, err := s.collection(CartsCollection).UpdateOne(ctx,
		cartItemsFilter(userID, productIDs),
		bson.M{
			"$pull": bson.M{"items": bson.M{"productId": bson.M{"$in": productIDs}}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("remove cart items: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, utils.ErrNotFound
	}
	return s.GetCart(ctx, userID)
}

func (s *Store) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.collection(CartsCollection).UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
