package handlers

import (
	"errors"

	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var categorySorts = map[string]string{
	"name":      "name",
	"createdAt": "createdAt",
}

// publicCategory hides soft-deleted subcategories.
func publicCategory(cat models.Category) models.Category {
	cat.Subcategories = cat.ActiveSubcategories()
	return cat
}

func (h *Handler) GetCategories(c echo.Context) error {
	params := utils.ParseListParams(c, "name", categorySorts)

	ctx, cancel := requestContext(c)
	defer cancel()

	categories, total, err := h.store.ListCategories(ctx, database.CategoryFilter{Type: c.QueryParam("type")}, params)
	if err != nil {
		return utils.Internal("Failed to fetch categories", err)
	}
	for i := range categories {
		categories[i] = publicCategory(categories[i])
	}
	return utils.Paginated(c, categories, models.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) GetCategory(c echo.Context) error {
	categoryID, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := h.store.GetCategory(ctx, categoryID, true)
	if err != nil {
		return utils.NotFoundOr(err, "Category not found")
	}
	return utils.OK(c, publicCategory(*category))
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var in models.CategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}
	category := &models.Category{
		Name:        in.Name,
		Type:        models.ProductType(in.Type),
		Description: in.Description,
		Image:       in.Image,
		IsActive:    boolOr(in.IsActive, true),
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.Conflict("A category with this name already exists")
		}
		return utils.Internal("Failed to create category", err)
	}
	return utils.Created(c, category)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	categoryID, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	var in models.CategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.UpdateCategory(ctx, &models.Category{
		ID:          categoryID,
		Name:        in.Name,
		Type:        models.ProductType(in.Type),
		Description: in.Description,
		Image:       in.Image,
		IsActive:    boolOr(in.IsActive, true),
	})
	if err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.Conflict("A category with this name already exists")
		}
		return utils.NotFoundOr(err, "Category not found")
	}
	return utils.OK(c, updated)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	categoryID, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.DeactivateCategory(ctx, categoryID); err != nil {
		return utils.NotFoundOr(err, "Category not found")
	}
	return utils.Message(c, "Category deleted")
}

func (h *Handler) AddSubcategory(c echo.Context) error {
	categoryID, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	var in models.SubcategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.AddSubcategory(ctx, categoryID, models.Subcategory{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		Description: in.Description,
		IsActive:    boolOr(in.IsActive, true),
	})
	if err != nil {
		return utils.NotFoundOr(err, "Category not found")
	}
	return utils.Created(c, updated)
}

func (h *Handler) UpdateSubcategory(c echo.Context) error {
	categoryID, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	subID, err := paramID(c, "subId", "subcategory")
	if err != nil {
		return err
	}
	var in models.SubcategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.UpdateSubcategory(ctx, categoryID, models.Subcategory{
		ID:          subID,
		Name:        in.Name,
		Description: in.Description,
		IsActive:    boolOr(in.IsActive, true),
	})
	if err != nil {
		return utils.NotFoundOr(err, "Subcategory not found")
	}
	return utils.OK(c, updated)
}

func (h *Handler) DeleteSubcategory(c echo.Context) error {
	categoryID, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	subID, err := paramID(c, "subId", "subcategory")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.DeactivateSubcategory(ctx, categoryID, subID)
	if err != nil {
		return utils.NotFoundOr(err, "Subcategory not found")
	}
	return utils.OK(c, updated)
}
