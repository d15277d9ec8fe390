package handlers

import (
	"errors"

	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
)

var paintSorts = map[string]string{
	"name":      "name",
	"price":     "price",
	"createdAt": "createdAt",
	"color":     "colorName",
}

func (h *Handler) GetPaints(c echo.Context) error {
	params := utils.ParseListParams(c, "createdAt", paintSorts)

	var f database.PaintFilter
	var err error
	if f.CategoryID, err = utils.OptionalObjectID(c.QueryParam("category"), "category"); err != nil {
		return err
	}
	if f.MinPrice, err = utils.QueryFloat(c, "minPrice"); err != nil {
		return err
	}
	if f.MaxPrice, err = utils.QueryFloat(c, "maxPrice"); err != nil {
		return err
	}
	f.Finish = c.QueryParam("finish")
	f.ColorFamily = c.QueryParam("colorFamily")
	f.Brand = c.QueryParam("brand")

	ctx, cancel := requestContext(c)
	defer cancel()

	paints, total, err := h.store.ListPaints(ctx, f, params)
	if err != nil {
		return utils.Internal("Failed to fetch paints", err)
	}
	return utils.Paginated(c, paints, models.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) GetPaint(c echo.Context) error {
	paintID, err := paramID(c, "id", "paint")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	paint, err := h.store.GetPaint(ctx, paintID, true)
	if err != nil {
		return utils.NotFoundOr(err, "Paint not found")
	}
	return utils.OK(c, paint)
}

// paintFromInput checks that the category exists and, when given, that the
// linked base product exists.
func (h *Handler) paintFromInput(c echo.Context, in models.PaintInput) (*models.Paint, error) {
	categoryID, err := utils.ParseObjectID(in.CategoryID, "category")
	if err != nil {
		return nil, err
	}
	productID, err := utils.OptionalObjectID(in.ProductID, "product")
	if err != nil {
		return nil, err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.store.GetCategory(ctx, categoryID, true); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.BadRequest("Category does not exist")
		}
		return nil, utils.Internal("Failed to load category", err)
	}
	if productID != nil {
		if _, err := h.store.GetProduct(ctx, *productID, false); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.BadRequest("Linked product does not exist")
			}
			return nil, utils.Internal("Failed to load product", err)
		}
	}

	sizes, images := in.Sizes, in.Images
	if sizes == nil {
		sizes = []float64{}
	}
	if images == nil {
		images = []string{}
	}
	return &models.Paint{
		Name:        in.Name,
		Description: in.Description,
		Brand:       in.Brand,
		ColorName:   in.ColorName,
		ColorCode:   in.ColorCode,
		ColorFamily: in.ColorFamily,
		Finish:      models.PaintFinish(in.Finish),
		Sizes:       sizes,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  categoryID,
		ProductID:   productID,
		Images:      images,
		IsActive:    boolOr(in.IsActive, true),
	}, nil
}

func (h *Handler) CreatePaint(c echo.Context) error {
	var in models.PaintInput
	if err := bind(c, &in); err != nil {
		return err
	}
	paint, err := h.paintFromInput(c, in)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.CreatePaint(ctx, paint); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.Conflict("This shade already exists")
		}
		return utils.Internal("Failed to create paint", err)
	}
	return utils.Created(c, paint)
}

func (h *Handler) UpdatePaint(c echo.Context) error {
	paintID, err := paramID(c, "id", "paint")
	if err != nil {
		return err
	}
	var in models.PaintInput
	if err := bind(c, &in); err != nil {
		return err
	}
	paint, err := h.paintFromInput(c, in)
	if err != nil {
		return err
	}
	paint.ID = paintID

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.UpdatePaint(ctx, paint)
	if err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.Conflict("This shade already exists")
		}
		return utils.NotFoundOr(err, "Paint not found")
	}
	return utils.OK(c, updated)
}

func (h *Handler) DeletePaint(c echo.Context) error {
	paintID, err := paramID(c, "id", "paint")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.DeactivatePaint(ctx, paintID); err != nil {
		return utils.NotFoundOr(err, "Paint not found")
	}
	return utils.Message(c, "Paint deleted")
}

func (h *Handler) UpdatePaintStock(c echo.Context) error {
	paintID, err := paramID(c, "id", "paint")
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

	if _, err := h.store.GetPaint(ctx, paintID, false); err != nil {
		return utils.NotFoundOr(err, "Paint not found")
	}

	var paint *models.Paint
	if req.Stock != nil {
		paint, err = h.store.SetPaintStock(ctx, paintID, *req.Stock)
	} else {
		paint, err = h.store.AdjustPaintStock(ctx, paintID, *req.Adjust)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.BadRequest("Stock cannot go below zero")
		}
		return utils.Internal("Failed to update stock", err)
	}
	return utils.OK(c, paint)
}
