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

type CategoryFilter struct {
	IncludeInactive bool
	Type            string
}

func (f CategoryFilter) Build(search string) bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["isActive"] = true
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if s := utils.SearchFilter(search, "name", "description", "subcategories.name"); s != nil {
		q["$or"] = s["$or"]
	}
	return q
}

func (s *Store) ListCategories(ctx context.Context, f CategoryFilter, p utils.ListParams) ([]models.Category, int64, error) {
	return findPage[models.Category](ctx, s.collection(CategoriesCollection), f.Build(p.Search), p)
}

func (s *Store) GetCategory(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Category, error) {
	filter := bson.M{"_id": id}
	if activeOnly {
		filter["isActive"] = true
	}
	return findOne[models.Category](ctx, s.collection(CategoriesCollection), filter)
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	now := time.Now()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Subcategories == nil {
		c.Subcategories = []models.Subcategory{}
	}
	_, err := s.collection(CategoriesCollection).InsertOne(ctx, c)
	return translate(err)
}

func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	return s.updateCategory(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"name":        c.Name,
		"type":        c.Type,
		"description": c.Description,
		"image":       c.Image,
		"isActive":    c.IsActive,
		"updatedAt":   time.Now(),
	}}, nil)
}

func (s *Store) DeactivateCategory(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection(CategoriesCollection).UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// AddSubcategory appends a child to the category document.
func (s *Store) AddSubcategory(ctx context.Context, categoryID primitive.ObjectID, sub models.Subcategory) (*models.Category, error) {
	return s.updateCategory(ctx, bson.M{"_id": categoryID}, bson.M{
		"$push": bson.M{"subcategories": sub},
		"$set":  bson.M{"updatedAt": time.Now()},
	}, nil)
}

// UpdateSubcategory rewrites one embedded child, addressed by its id.
func (s *Store) UpdateSubcategory(ctx context.Context, categoryID primitive.ObjectID, sub models.Subcategory) (*models.Category, error) {
	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem._id": sub.ID}},
	}
	return s.updateCategory(ctx,
		bson.M{"_id": categoryID, "subcategories._id": sub.ID},
		bson.M{"$set": bson.M{
			"subcategories.$[elem].name":        sub.Name,
			"subcategories.$[elem].description": sub.Description,
			"subcategories.$[elem].isActive":    sub.IsActive,
			"updatedAt":                         time.Now(),
		}},
		&arrayFilters,
	)
}

// DeactivateSubcategory soft-deletes a child; it stays in the array.
func (s *Store) DeactivateSubcategory(ctx context.Context, categoryID, subID primitive.ObjectID) (*models.Category, error) {
	return s.updateCategory(ctx,
		bson.M{"_id": categoryID, "subcategories._id": subID},
		bson.M{"$set": bson.M{"subcategories.$.isActive": false, "updatedAt": time.Now()}},
		nil,
	)
}

func (s *Store) updateCategory(ctx context.Context, filter, update bson.M, arrayFilters *options.ArrayFilters) (*models.Category, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if arrayFilters != nil {
		opts.SetArrayFilters(*arrayFilters)
	}
	var out models.Category
	if err := s.collection(CategoriesCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}
