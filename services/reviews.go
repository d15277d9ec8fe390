package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/brushbolt/store-backend/metrics"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Product, error)
	SetProductRating(ctx context.Context, id primitive.ObjectID, r models.Rating) error
	CreateReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, upd models.ReviewUpdate) (*models.Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	SetReviewApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Review, error)
	ApprovedRatings(ctx context.Context, productID primitive.ObjectID) ([]int, error)
	HasDeliveredPurchase(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

// ReviewService writes reviews and keeps each product's rating aggregate in
// step with its approved reviews.
type ReviewService struct {
	store ReviewStore
}

func NewReviewService(store ReviewStore) *ReviewService {
	return &ReviewService{store: store}
}

func (s *ReviewService) Create(ctx context.Context, user *models.User, in models.ReviewInput) (*models.Review, error) {
	productID, err := utils.ParseObjectID(in.ProductID, "product")
	if err != nil {
		return nil, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, utils.BadRequest("Rating must be between 1 and 5")
	}
	if _, err := s.store.GetProduct(ctx, productID, true); err != nil {
		return nil, utils.NotFoundOr(err, "Product not found")
	}

	verified, err := s.store.HasDeliveredPurchase(ctx, user.ID, productID)
	if err != nil {
		return nil, utils.Internal("Failed to check purchase history", err)
	}

	review := &models.Review{
		ProductID:  productID,
		UserID:     user.ID,
		UserName:   user.Name,
		Rating:     in.Rating,
		Title:      in.Title,
		Comment:    in.Comment,
		IsApproved: true,
		IsVerified: verified,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, utils.Conflict("You have already reviewed this product")
		}
		return nil, utils.Internal("Failed to create review", err)
	}

	if _, err := s.RecalculateRating(ctx, productID); err != nil {
		return nil, err
	}
	return review, nil
}

// Update lets the author change their own review.
func (s *ReviewService) Update(ctx context.Context, user *models.User, id primitive.ObjectID, upd models.ReviewUpdate) (*models.Review, error) {
	existing, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, utils.NotFoundOr(err, "Review not found")
	}
	if existing.UserID != user.ID {
		return nil, utils.Forbidden("You can only edit your own reviews")
	}

	review, err := s.store.UpdateReview(ctx, id, upd)
	if err != nil {
		return nil, utils.NotFoundOr(err, "Review not found")
	}
	if _, err := s.RecalculateRating(ctx, review.ProductID); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review; the author or an admin may do it.
func (s *ReviewService) Delete(ctx context.Context, user *models.User, id primitive.ObjectID) error {
	existing, err := s.store.GetReview(ctx, id)
	if err != nil {
		return utils.NotFoundOr(err, "Review not found")
	}
	if existing.UserID != user.ID && !user.IsAdmin {
		return utils.Forbidden("You can only delete your own reviews")
	}

	if err := s.store.DeleteReview(ctx, id); err != nil {
		return utils.NotFoundOr(err, "Review not found")
	}
	_, err = s.RecalculateRating(ctx, existing.ProductID)
	return err
}

func (s *ReviewService) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Review, error) {
	review, err := s.store.SetReviewApproval(ctx, id, approved)
	if err != nil {
		return nil, utils.NotFoundOr(err, "Review not found")
	}
	if _, err := s.RecalculateRating(ctx, review.ProductID); err != nil {
		return nil, err
	}
	return review, nil
}

// RecalculateRating recomputes the product's average and count from all of
// its approved reviews and stores the result on the product.
func (s *ReviewService) RecalculateRating(ctx context.Context, productID primitive.ObjectID) (models.Rating, error) {
	ratings, err := s.store.ApprovedRatings(ctx, productID)
	if err != nil {
		return models.Rating{}, utils.Internal("Failed to load ratings", err)
	}

	rating := ComputeRating(ratings)
	if err := s.store.SetProductRating(ctx, productID, rating); err != nil {
		return models.Rating{}, utils.Internal(fmt.Sprintf("Failed to update rating of product %s", productID.Hex()), err)
	}
	metrics.RatingRecalculations.Inc()
	return rating, nil
}

// ComputeRating averages to one decimal; no ratings yields {0, 0}.
func ComputeRating(ratings []int) models.Rating {
	return models.Rating{Average: utils.AverageRating(ratings), Count: len(ratings)}
}
