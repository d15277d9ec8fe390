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

type ReviewFilter struct {
	ProductID *primitive.ObjectID
	UserID    *primitive.ObjectID
	Approved  *bool
}

func (f ReviewFilter) Build(search string) bson.M {
	q := bson.M{}
	if f.ProductID != nil {
		q["productId"] = *f.ProductID
	}
	if f.UserID != nil {
		q["userId"] = *f.UserID
	}
	if f.Approved != nil {
		q["isApproved"] = *f.Approved
	}
	if s := utils.SearchFilter(search, "title", "comment", "userName"); s != nil {
		q["$or"] = s["$or"]
	}
	return q
}

func (s *Store) ListReviews(ctx context.Context, f ReviewFilter, p utils.ListParams) ([]models.Review, int64, error) {
	return findPage[models.Review](ctx, s.collection(ReviewsCollection), f.Build(p.Search), p)
}

func (s *Store) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, s.collection(ReviewsCollection), bson.M{"_id": id})
}

// CreateReview relies on the (userId, productId) unique index; a second
// review by the same user surfaces as ErrDuplicate.
func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	now := time.Now()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.collection(ReviewsCollection).InsertOne(ctx, r)
	return translate(err)
}

func (s *Store) UpdateReview(ctx context.Context, id primitive.ObjectID, upd models.ReviewUpdate) (*models.Review, error) {
	return s.updateReview(ctx, id, bson.M{"$set": bson.M{
		"rating":    upd.Rating,
		"title":     upd.Title,
		"comment":   upd.Comment,
		"updatedAt": time.Now(),
	}})
}

func (s *Store) SetReviewApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Review, error) {
	return s.updateReview(ctx, id, bson.M{"$set": bson.M{"isApproved": approved, "updatedAt": time.Now()}})
}

func (s *Store) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection(ReviewsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// ApprovedRatings returns the star values of every approved review of a
// product.
func (s *Store) ApprovedRatings(ctx context.Context, productID primitive.ObjectID) ([]int, error) {
	cursor, err := s.collection(ReviewsCollection).Find(ctx,
		bson.M{"productId": productID, "isApproved": true},
		options.Find().SetProjection(bson.M{"rating": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Rating int `bson:"rating"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	ratings := make([]int, len(docs))
	for i, d := range docs {
		ratings[i] = d.Rating
	}
	return ratings, nil
}

func (s *Store) updateReview(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Review, error) {
	var out models.Review
	err := s.collection(ReviewsCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}
