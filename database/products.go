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

// ProductFilter holds the equality and range filters of the product list.
type ProductFilter struct {
	IncludeInactive bool
	CategoryID      *primitive.ObjectID
	SubcategoryID   *primitive.ObjectID
	Type            string
	Brand           string
	MinPrice        *float64
	MaxPrice        *float64
	InStock         *bool
	MinRating       *float64
}

var productSearchFields = []string{"name", "description", "brand", "sku"}

// Build turns the filter and search term into a Mongo query.
func (f ProductFilter) Build(search string) bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["isActive"] = true
	}
	if f.CategoryID != nil {
		q["categoryId"] = *f.CategoryID
	}
	if f.SubcategoryID != nil {
		q["subcategoryId"] = *f.SubcategoryID
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Brand != "" {
		q["brand"] = f.Brand
	}
	if price := rangeFilter(f.MinPrice, f.MaxPrice); price != nil {
		q["price"] = price
	}
	if f.InStock != nil {
		if *f.InStock {
			q["stock"] = bson.M{"$gt": 0}
		} else {
			q["stock"] = 0
		}
	}
	if f.MinRating != nil {
		q["rating.average"] = bson.M{"$gte": *f.MinRating}
	}
	if s := utils.SearchFilter(search, productSearchFields...); s != nil {
		q["$or"] = s["$or"]
	}
	return q
}

func rangeFilter(min, max *float64) bson.M {
	if min == nil && max == nil {
		return nil
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	return r
}

func (s *Store) ListProducts(ctx context.Context, f ProductFilter, p utils.ListParams) ([]models.Product, int64, error) {
	return findPage[models.Product](ctx, s.collection(ProductsCollection), f.Build(p.Search), p)
}

// GetProduct loads a product; activeOnly hides soft-deleted ones.
func (s *Store) GetProduct(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Product, error) {
	filter := bson.M{"_id": id}
	if activeOnly {
		filter["isActive"] = true
	}
	return findOne[models.Product](ctx, s.collection(ProductsCollection), filter)
}

// ProductsByIDs returns the active products among ids, keyed by id.
func (s *Store) ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := s.collection(ProductsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "isActive": true})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		out[p.ID] = p
	}
	return out, cursor.Err()
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	_, err := s.collection(ProductsCollection).InsertOne(ctx, p)
	return translate(err)
}

// UpdateProduct overwrites the editable fields. Stock and rating have their
// own write paths and are left alone.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	return s.updateProduct(ctx, bson.M{"_id": p.ID}, productUpdate(p, time.Now()))
}

func productUpdate(p *models.Product, now time.Time) bson.M {
	set := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"brand":       p.Brand,
		"price":       p.Price,
		"categoryId":  p.CategoryID,
		"type":        p.Type,
		"images":      p.Images,
		"isActive":    p.IsActive,
		"updatedAt":   now,
	}
	unset := bson.M{}
	if p.SubcategoryID != nil {
		set["subcategoryId"] = *p.SubcategoryID
	} else {
		unset["subcategoryId"] = ""
	}
	// An empty SKU is stored as absent so the partial unique index ignores it.
	if p.SKU != "" {
		set["sku"] = p.SKU
	} else {
		unset["sku"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (s *Store) DeactivateProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection(ProductsCollection).UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *Store) SetProductStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.Product, error) {
	return s.updateProduct(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"stock": stock, "updatedAt": time.Now()}})
}

// AdjustProductStock adds delta to stock unless that would go negative, in
// which case ErrNotFound is returned for the conditional filter miss.
func (s *Store) AdjustProductStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.Product, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	return s.updateProduct(ctx, filter,
		bson.M{"$inc": bson.M{"stock": delta}, "$set": bson.M{"updatedAt": time.Now()}})
}

// ReserveStock decrements stock by qty only if the product is active and has
// at least qty units. The check and the write are one atomic operation.
func (s *Store) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := s.collection(ProductsCollection).UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("reserve stock: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseStock returns qty units to a product, e.g. on cancellation.
func (s *Store) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := s.collection(ProductsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": qty}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}

func (s *Store) SetProductRating(ctx context.Context, id primitive.ObjectID, r models.Rating) error {
	_, err := s.collection(ProductsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"rating": r, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("set product rating: %w", err)
	}
	return nil
}

func (s *Store) updateProduct(ctx context.Context, filter, update bson.M) (*models.Product, error) {
	var out models.Product
	err := s.collection(ProductsCollection).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}
