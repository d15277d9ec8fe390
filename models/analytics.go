package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardStats struct {
	TotalUsers       int64     `json:"totalUsers"`
	ActiveProducts   int64     `json:"activeProducts"`
	TotalOrders      int64     `json:"totalOrders"`
	PendingOrders    int64     `json:"pendingOrders"`
	TotalRevenue     float64   `json:"totalRevenue"`
	LowStockProducts int64     `json:"lowStockProducts"`
	RecentOrders     []Order   `json:"recentOrders"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

type SalesBucket struct {
	Period  string  `bson:"_id" json:"period"`
	Orders  int64   `bson:"orders" json:"orders"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

type StatusBreakdown struct {
	Status string  `bson:"_id" json:"status"`
	Count  int64   `bson:"count" json:"count"`
	Total  float64 `bson:"total" json:"total"`
}

type TopProduct struct {
	ProductID    primitive.ObjectID `bson:"_id" json:"productId"`
	Name         string             `bson:"name" json:"name"`
	QuantitySold int64              `bson:"quantitySold" json:"quantitySold"`
	Revenue      float64            `bson:"revenue" json:"revenue"`
	Orders       int64              `bson:"orders" json:"orders"`
}

type CategoryBreakdown struct {
	CategoryID   primitive.ObjectID `bson:"_id" json:"categoryId"`
	Name         string             `bson:"name" json:"name"`
	ProductCount int64              `bson:"productCount" json:"productCount"`
	TotalStock   int64              `bson:"totalStock" json:"totalStock"`
}
