package database

import (
	"context"
	"fmt"
	"time"

	"github.com/brushbolt/store-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// notCancelled excludes cancelled orders from revenue figures.
var notCancelled = bson.M{"status": bson.M{"$ne": models.OrderStatusCancelled}}

// Dashboard gathers the headline counters for the admin landing page.
func (s *Store) Dashboard(ctx context.Context, lowStockThreshold int) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{GeneratedAt: time.Now()}
	var err error

	if stats.TotalUsers, err = s.collection(UsersCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	products := s.collection(ProductsCollection)
	if stats.ActiveProducts, err = products.CountDocuments(ctx, bson.M{"isActive": true}); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if stats.LowStockProducts, err = products.CountDocuments(ctx, lowStockFilter(lowStockThreshold)); err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	orders := s.collection(OrdersCollection)
	if stats.TotalOrders, err = orders.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if stats.PendingOrders, err = orders.CountDocuments(ctx, bson.M{"status": models.OrderStatusPending}); err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}

	var revenue []struct {
		Total float64 `bson:"total"`
	}
	if err := aggregate(ctx, orders, mongo.Pipeline{
		{{Key: "$match", Value: notCancelled}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	}, &revenue); err != nil {
		return nil, err
	}
	if len(revenue) > 0 {
		stats.TotalRevenue = revenue[0].Total
	}

	cursor, err := orders.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5))
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	stats.RecentOrders = []models.Order{}
	if err := cursor.All(ctx, &stats.RecentOrders); err != nil {
		return nil, fmt.Errorf("decode recent orders: %w", err)
	}
	return stats, nil
}

// SalesOverTime buckets non-cancelled orders by day ("2006-01-02") or
// month ("2006-01") for the last days days.
func (s *Store) SalesOverTime(ctx context.Context, days int, byMonth bool) ([]models.SalesBucket, error) {
	format := "%Y-%m-%d"
	if byMonth {
		format = "%Y-%m"
	}
	since := time.Now().AddDate(0, 0, -days)

	out := []models.SalesBucket{}
	err := aggregate(ctx, s.collection(OrdersCollection), mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": since},
			"status":    bson.M{"$ne": models.OrderStatusCancelled},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": format, "date": "$createdAt"}},
			"orders":  bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}, &out)
	return out, err
}

func (s *Store) OrdersByStatus(ctx context.Context) ([]models.StatusBreakdown, error) {
	out := []models.StatusBreakdown{}
	err := aggregate(ctx, s.collection(OrdersCollection), mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": "$totalAmount"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}, &out)
	return out, err
}

// TopProducts ranks products by units sold across non-cancelled orders.
func (s *Store) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	out := []models.TopProduct{}
	err := aggregate(ctx, s.collection(OrdersCollection), mongo.Pipeline{
		{{Key: "$match", Value: notCancelled}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$items.productId",
			"name":         bson.M{"$first": "$items.name"},
			"quantitySold": bson.M{"$sum": "$items.quantity"},
			"revenue":      bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.price", "$items.quantity"}}},
			"orders":       bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "quantitySold", Value: -1}, {Key: "revenue", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}, &out)
	return out, err
}

func (s *Store) LowStockProducts(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	cursor, err := s.collection(ProductsCollection).Find(ctx, lowStockFilter(threshold),
		options.Find().SetSort(bson.D{{Key: "stock", Value: 1}, {Key: "name", Value: 1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}
	out := []models.Product{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode low stock: %w", err)
	}
	return out, nil
}

// CategoryBreakdown counts active products per category.
func (s *Store) CategoryBreakdown(ctx context.Context) ([]models.CategoryBreakdown, error) {
	out := []models.CategoryBreakdown{}
	err := aggregate(ctx, s.collection(ProductsCollection), mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$categoryId",
			"productCount": bson.M{"$sum": 1},
			"totalStock":   bson.M{"$sum": "$stock"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         CategoriesCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "category",
		}}},
		{{Key: "$addFields", Value: bson.M{"name": bson.M{"$ifNull": bson.A{bson.M{"$first": "$category.name"}, "Uncategorized"}}}}},
		{{Key: "$project", Value: bson.M{"category": 0}}},
		{{Key: "$sort", Value: bson.M{"productCount": -1}}},
	}, &out)
	return out, err
}

func lowStockFilter(threshold int) bson.M {
	return bson.M{"isActive": true, "stock": bson.M{"$lte": threshold}}
}

func aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", coll.Name(), err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s aggregate: %w", coll.Name(), err)
	}
	return nil
}
