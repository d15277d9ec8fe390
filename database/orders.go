package database

import (
	"context"
	"fmt"
	"time"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderFilter struct {
	UserID        *primitive.ObjectID
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
}

func (f OrderFilter) Build(search string) bson.M {
	q := bson.M{}
	if f.UserID != nil {
		q["userId"] = *f.UserID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		q["paymentStatus"] = f.PaymentStatus
	}
	if f.From != nil || f.To != nil {
		r := bson.M{}
		if f.From != nil {
			r["$gte"] = *f.From
		}
		if f.To != nil {
			r["$lte"] = *f.To
		}
		q["createdAt"] = r
	}
	if s := utils.SearchFilter(search, "orderNumber", "billingDetails.name", "billingDetails.email", "trackingNumber"); s != nil {
		q["$or"] = s["$or"]
	}
	return q
}

func (s *Store) ListOrders(ctx context.Context, f OrderFilter, p utils.ListParams) ([]models.Order, int64, error) {
	return findPage[models.Order](ctx, s.collection(OrdersCollection), f.Build(p.Search), p)
}

func (s *Store) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return findOne[models.Order](ctx, s.collection(OrdersCollection), bson.M{"_id": id})
}

func (s *Store) InsertOrder(ctx context.Context, o *models.Order) error {
	now := time.Now()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	_, err := s.collection(OrdersCollection).InsertOne(ctx, o)
	return translate(err)
}

// TransitionOrder moves an order to t.Status only if its current status is
// one of from (any status when from is empty). The match and the write are
// a single update, so two concurrent transitions cannot both succeed.
// ErrNotFound means no order matched in an allowed state.
func (s *Store) TransitionOrder(ctx context.Context, id primitive.ObjectID, from []models.OrderStatus, t models.OrderTransition) (*models.Order, error) {
	filter := bson.M{"_id": id}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}

	now := time.Now()
	set := bson.M{"status": t.Status, "updatedAt": now}
	switch t.Status {
	case models.OrderStatusCancelled:
		set["cancelledAt"] = now
	case models.OrderStatusDelivered:
		set["deliveredAt"] = now
	}
	if t.TrackingNumber != "" {
		set["trackingNumber"] = t.TrackingNumber
	}
	if t.EstimatedDelivery != nil {
		set["estimatedDelivery"] = *t.EstimatedDelivery
	}

	var out models.Order
	err := s.collection(OrdersCollection).FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (s *Store) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error) {
	var out models.Order
	err := s.collection(OrdersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// HasDeliveredPurchase reports whether the user has a delivered order that
// contains the product; used to mark reviews as verified.
func (s *Store) HasDeliveredPurchase(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	n, err := s.collection(OrdersCollection).CountDocuments(ctx, bson.M{
		"userId":          userID,
		"status":          models.OrderStatusDelivered,
		"items.productId": productID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count purchases: %w", err)
	}
	return n > 0, nil
}
