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

func (s *Store) GetWishlist(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	w, err := findOne[models.Wishlist](ctx, s.collection(WishlistsCollection), bson.M{"userId": userID})
	if errors.Is(err, utils.ErrNotFound) {
		return &models.Wishlist{UserID: userID, Products: []primitive.ObjectID{}}, nil
	}
	return w, err
}

// AddToWishlist adds the product to the wishlist document and mirrors it on
// the user's wishlist reference list.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	now := time.Now()
	_, err := s.collection(WishlistsCollection).UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$addToSet":    bson.M{"products": productID},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, translate(err)
	}

	if _, err := s.collection(UsersCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"wishlist": productID}},
	); err != nil {
		return nil, fmt.Errorf("mirror wishlist: %w", err)
	}
	return s.GetWishlist(ctx, userID)
}

func wishlistItemFilter(userID, productID primitive.ObjectID) bson.M {
	return bson.M{"userId": userID, "products": productID}
}

func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	res, err := s.collection(WishlistsCollection).UpdateOne(ctx,
		wishlistItemFilter(userID, productID),
		bson.M{"$pull": bson.M{"products": productID}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, fmt.Errorf("remove wishlist item: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, utils.ErrNotFound
	}

	if _, err := s.collection(UsersCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"wishlist": productID}},
	); err != nil {
		return nil, fmt.Errorf("mirror wishlist: %w", err)
	}
	return s.GetWishlist(ctx, userID)
}
