package handlers

import (
	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
)

func (h *Handler) CreateReview(c echo.Context) error {
	var in models.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviews.Create(ctx, currentUser(c), in)
	if err != nil {
		return err
	}
	return utils.Created(c, review)
}

func (h *Handler) GetMyReviews(c echo.Context) error {
	params := utils.ParseListParams(c, "createdAt", reviewSorts)
	userID := currentUser(c).ID

	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, total, err := h.store.ListReviews(ctx, database.ReviewFilter{UserID: &userID}, params)
	if err != nil {
		return utils.Internal("Failed to fetch reviews", err)
	}
	return utils.Paginated(c, reviews, models.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) UpdateReview(c echo.Context) error {
	reviewID, err := paramID(c, "id", "review")
	if err != nil {
		return err
	}
	var upd models.ReviewUpdate
	if err := bind(c, &upd); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviews.Update(ctx, currentUser(c), reviewID, upd)
	if err != nil {
		return err
	}
	return utils.OK(c, review)
}

func (h *Handler) DeleteReview(c echo.Context) error {
	reviewID, err := paramID(c, "id", "review")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.reviews.Delete(ctx, currentUser(c), reviewID); err != nil {
		return err
	}
	return utils.Message(c, "Review deleted")
}

func (h *Handler) AdminListReviews(c echo.Context) error {
	params := utils.ParseListParams(c, "createdAt", reviewSorts)

	var f database.ReviewFilter
	var err error
	if f.ProductID, err = utils.OptionalObjectID(c.QueryParam("productId"), "product"); err != nil {
		return err
	}
	if f.UserID, err = utils.OptionalObjectID(c.QueryParam("userId"), "user"); err != nil {
		return err
	}
	if f.Approved, err = utils.QueryBool(c, "approved"); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, total, err := h.store.ListReviews(ctx, f, params)
	if err != nil {
		return utils.Internal("Failed to fetch reviews", err)
	}
	return utils.Paginated(c, reviews, models.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) SetReviewApproval(c echo.Context) error {
	reviewID, err := paramID(c, "id", "review")
	if err != nil {
		return err
	}
	var req models.ReviewApproval
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviews.SetApproval(ctx, reviewID, *req.IsApproved)
	if err != nil {
		return err
	}
	return utils.OK(c, review)
}
