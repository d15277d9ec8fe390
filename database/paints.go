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

type PaintFilter struct {
	IncludeInactive bool
	CategoryID      *primitive.ObjectID
	Finish          string
	ColorFamily     string
	Brand           string
	MinPrice        *float64
	MaxPrice        *float64
}

var paintSearchFields = []string{"name", "colorName", "colorCode", "brand", "description"}

func (f PaintFilter) Build(search string) bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["isActive"] = true
	}
	if f.CategoryID != nil {
		q["categoryId"] = *f.CategoryID
	}
	if f.Finish != "" {
		q["finish"] = f.Finish
	}
	if f.ColorFamily != "" {
		q["colorFamily"] = f.ColorFamily
	}
	if f.Brand != "" {
		q["brand"] = f.Brand
	}
	if price := rangeFilter(f.MinPrice, f.MaxPrice); price != nil {
		q["price"] = price
	}
	if s := utils.SearchFilter(search, paintSearchFields...); s != nil {
		q["$or"] = s["$or"]
	}
	return q
}

func (s *Store) ListPaints(ctx context.Context, f PaintFilter, p utils.ListParams) ([]models.Paint, int64, error) {
	return findPage[models.Paint](ctx, s.collection(PaintsCollection), f.Build(p.Search), p)
}

func (s *Store) GetPaint(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Paint, error) {
	filter := bson.M{"_id": id}
	if activeOnly {
		filter["isActive"] = true
	}
	return findOne[models.Paint](ctx, s.collection(PaintsCollection), filter)
}

func (s *Store) CreatePaint(ctx context.Context, p *models.Paint) error {
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []float64{}
	}
	_, err := s.collection(PaintsCollection).InsertOne(ctx, p)
	return translate(err)
}

func (s *Store) UpdatePaint(ctx context.Context, p *models.Paint) (*models.Paint, error) {
	set := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"brand":       p.Brand,
		"colorName":   p.ColorName,
		"colorCode":   p.ColorCode,
		"colorFamily": p.ColorFamily,
		"finish":      p.Finish,
		"sizes":       p.Sizes,
		"price":       p.Price,
		"categoryId":  p.CategoryID,
		"images":      p.Images,
		"isActive":    p.IsActive,
		"updatedAt":   time.Now(),
	}
	update := bson.M{"$set": set}
	if p.ProductID != nil {
		set["productId"] = *p.ProductID
	} else {
		update["$unset"] = bson.M{"productId": ""}
	}
	return s.updatePaint(ctx, bson.M{"_id": p.ID}, update)
}

func (s *Store) DeactivatePaint(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection(PaintsCollection).UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate paint: %w", err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *Store) SetPaintStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.Paint, error) {
	return s.updatePaint(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"stock": stock, "updatedAt": time.Now()}})
}

func (s *Store) AdjustPaintStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.Paint, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	return s.updatePaint(ctx, filter,
		bson.M{"$inc": bson.M{"stock": delta}, "$set": bson.M{"updatedAt": time.Now()}})
}

func (s *Store) updatePaint(ctx context.Context, filter, update bson.M) (*models.Paint, error) {
	var out models.Paint
	err := s.collection(PaintsCollection).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}
