package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and query indexes the API relies on.
// Uniqueness of emails, category names, product SKUs, carts, wishlists and
// reviews is enforced here rather than in handlers.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	byCollection := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_email")},
		},
		CategoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "type", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_name_type")},
		},
		CartsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_user")},
		},
		WishlistsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_user")},
		},
		ReviewsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_user_product")},
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "isApproved", Value: 1}}, Options: options.Index().SetName("product_approved")},
		},
		ProductsCollection: {
			{
				Keys: bson.D{{Key: "sku", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_sku").
					SetPartialFilterExpression(bson.M{"sku": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "categoryId", Value: 1}}, Options: options.Index().SetName("active_category")},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "stock", Value: 1}}, Options: options.Index().SetName("active_stock")},
		},
		PaintsCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "finish", Value: 1}}, Options: options.Index().SetName("active_finish")},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("user_created")},
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_order_number")},
		},
	}

	for name, idxs := range byCollection {
		if _, err := s.collection(name).Indexes().CreateMany(ctx, idxs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
