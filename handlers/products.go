package handlers

import (
	"errors"

	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var productSorts = map[string]string{
	"name":      "name",
	"price":     "price",
	"createdAt": "createdAt",
	"rating":    "rating.average",
	"stock":     "stock",
}

func productFilter(c echo.Context) (database.ProductFilter, error) {
	var f database.ProductFilter
	var err error
	if f.CategoryID, err = utils.OptionalObjectID(c.QueryParam("category"), "category"); err != nil {
		return f, err
	}
	if f.SubcategoryID, err = utils.OptionalObjectID(c.QueryParam("subcategory"), "subcategory"); err != nil {
		return f, err
	}
	if f.MinPrice, err = utils.QueryFloat(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = utils.QueryFloat(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.InStock, err = utils.QueryBool(c, "inStock"); err != nil {
		return f, err
	}
	if f.MinRating, err = utils.QueryFloat(c, "minRating"); err != nil {
		return f, err
	}
	f.Type = c.QueryParam("type")
	f.Brand = c.QueryParam("brand")
	return f, nil
}

func (h *Handler) listProducts(c echo.Context, includeInactive bool) error {
	params := utils.ParseListParams(c, "createdAt", productSorts)
	filter, err := productFilter(c)
	if err != nil {
		return err
	}
	filter.IncludeInactive = includeInactive

	ctx, cancel := requestContext(c)
	defer cancel()

	products, total, err := h.store.ListProducts(ctx, filter, params)
	if err != nil {
		return utils.Internal("Failed to fetch products", err)
	}
	return utils.Paginated(c, products, models.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) GetProducts(c echo.Context) error {
	return h.listProducts(c, false)
}

// AdminGetProducts lists products including soft-deleted ones.
func (h *Handler) AdminGetProducts(c echo.Context) error {
	return h.listProducts(c, true)
}

func (h *Handler) GetProduct(c echo.Context) error {
	productID, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.store.GetProduct(ctx, productID, true)
	if err != nil {
		return utils.NotFoundOr(err, "Product not found")
	}
	return utils.OK(c, product)
}

var reviewSorts = map[string]string{
	"createdAt": "createdAt",
	"rating":    "rating",
}

// GetProductReviews lists the approved reviews of an active product.
func (h *Handler) GetProductReviews(c echo.Context) error {
	productID, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	params := utils.ParseListParams(c, "createdAt", reviewSorts)

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.store.GetProduct(ctx, productID, true); err != nil {
		return utils.NotFoundOr(err, "Product not found")
	}

	approved := true
	reviews, total, err := h.store.ListReviews(ctx, database.ReviewFilter{ProductID: &productID, Approved: &approved}, params)
	if err != nil {
		return utils.Internal("Failed to fetch reviews", err)
	}
	return utils.Paginated(c, reviews, models.NewPagination(params.Page, params.Limit, total))
}

// productFromInput resolves and checks the references of a create/replace
// payload: the category must be active and the subcategory must be one of
// its active children.
func (h *Handler) productFromInput(c echo.Context, in models.ProductInput) (*models.Product, error) {
	categoryID, err := utils.ParseObjectID(in.CategoryID, "category")
	if err != nil {
		return nil, err
	}
	subcategoryID, err := utils.OptionalObjectID(in.SubcategoryID, "subcategory")
	if err != nil {
		return nil, err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := h.store.GetCategory(ctx, categoryID, true)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.BadRequest("Category does not exist")
		}
		return nil, utils.Internal("Failed to load category", err)
	}
	if subcategoryID != nil && !category.HasSubcategory(*subcategoryID) {
		return nil, utils.BadRequest("Subcategory does not belong to the category")
	}

	images := in.Images
	if images == nil {
		images = []string{}
	}
	return &models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Brand:         in.Brand,
		SKU:           in.SKU,
		Price:         in.Price,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Type:          models.ProductType(in.Type),
		Stock:         in.Stock,
		Images:        images,
		IsActive:      boolOr(in.IsActive, true),
	}, nil
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var in models.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}
	product, err := h.productFromInput(c, in)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.Conflict("A product with this SKU already exists")
		}
		return utils.Internal("Failed to create product", err)
	}
	return utils.Created(c, product)
}

// UpdateProduct replaces the editable fields. Stock and rating are kept.
func (h *Handler) UpdateProduct(c echo.Context) error {
	productID, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	var in models.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}
	product, err := h.productFromInput(c, in)
	if err != nil {
		return err
	}
	product.ID = productID

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.UpdateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.Conflict("A product with this SKU already exists")
		}
		return utils.NotFoundOr(err, "Product not found")
	}
	return utils.OK(c, updated)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	productID, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.DeactivateProduct(ctx, productID); err != nil {
		return utils.NotFoundOr(err, "Product not found")
	}
	return utils.Message(c, "Product deleted")
}

// checkStockUpdate requires exactly one of stock or adjust.
func checkStockUpdate(req models.StockUpdate) error {
	if (req.Stock == nil) == (req.Adjust == nil) {
		return utils.BadRequest("Provide either stock or adjust")
	}
	return nil
}

func (h *Handler) UpdateProductStock(c echo.Context) error {
	productID, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	var req models.StockUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := checkStockUpdate(req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.store.GetProduct(ctx, productID, false); err != nil {
		return utils.NotFoundOr(err, "Product not found")
	}

	var product *models.Product
	if req.Stock != nil {
		product, err = h.store.SetProductStock(ctx, productID, *req.Stock)
	} else {
		product, err = h.store.AdjustProductStock(ctx, productID, *req.Adjust)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.BadRequest("Stock cannot go below zero")
		}
		return utils.Internal("Failed to update stock", err)
	}
	return utils.OK(c, product)
}

// uniqueIDs drops repeated ids, keeping first-seen order.
func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
