package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cartView joins the cart with current product state. Lines whose product
// was removed from the catalog are left out; lines with too little stock
// are kept but marked unavailable and not counted in the totals.
func (h *Handler) cartView(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	ids := make([]primitive.ObjectID, len(cart.Items))
	for i, it := range cart.Items {
		ids[i] = it.ProductID
	}
	products, err := h.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Internal("Failed to load cart products", err)
	}

	view := &models.CartView{Items: []models.CartLine{}}
	totals := make([]float64, 0, len(cart.Items))
	for _, it := range cart.Items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		line := models.CartLine{
			Product:   &p,
			Quantity:  it.Quantity,
			LineTotal: utils.LineTotal(p.Price, it.Quantity),
			Available: p.Stock >= it.Quantity,
		}
		if line.Available {
			view.TotalItems += it.Quantity
			totals = append(totals, line.LineTotal)
		}
		view.Items = append(view.Items, line)
	}
	view.TotalAmount = utils.SumMoney(totals...)
	return view, nil
}

func (h *Handler) renderCart(c echo.Context, ctx context.Context, cart *models.Cart) error {
	view, err := h.cartView(ctx, cart)
	if err != nil {
		return err
	}
	return utils.OK(c, view)
}

func (h *Handler) GetCart(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.store.GetCart(ctx, currentUser(c).ID)
	if err != nil {
		return utils.Internal("Failed to fetch cart", err)
	}
	return h.renderCart(c, ctx, cart)
}

// checkCartQuantity loads an active product and makes sure qty units exist.
func (h *Handler) checkCartQuantity(ctx context.Context, productID primitive.ObjectID, qty int) error {
	product, err := h.store.GetProduct(ctx, productID, true)
	if err != nil {
		return utils.NotFoundOr(err, "Product not found")
	}
	if product.Stock < qty {
		return utils.BadRequest(fmt.Sprintf("Insufficient stock for %s: requested %d, available %d",
			product.Name, qty, product.Stock))
	}
	return nil
}

// AddToCart adds qty of a product, merging with an existing line.
func (h *Handler) AddToCart(c echo.Context) error {
	var req models.CartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	productID, err := utils.ParseObjectID(req.ProductID, "product")
	if err != nil {
		return err
	}
	userID := currentUser(c).ID

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.store.GetCart(ctx, userID)
	if err != nil {
		return utils.Internal("Failed to fetch cart", err)
	}
	inCart := 0
	for _, it := range cart.Items {
		if it.ProductID == productID {
			inCart = it.Quantity
		}
	}
	if err := h.checkCartQuantity(ctx, productID, inCart+req.Quantity); err != nil {
		return err
	}

	cart, err = h.store.AddCartItem(ctx, userID, productID, req.Quantity)
	if err != nil {
		return utils.Internal("Failed to add item to cart", err)
	}
	return h.renderCart(c, ctx, cart)
}

func (h *Handler) UpdateCartItem(c echo.Context) error {
	productID, err := paramID(c, "productId", "product")
	if err != nil {
		return err
	}
	var req models.CartQuantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.checkCartQuantity(ctx, productID, req.Quantity); err != nil {
		return err
	}
	cart, err := h.store.SetCartItemQuantity(ctx, currentUser(c).ID, productID, req.Quantity)
	if err != nil {
		return utils.NotFoundOr(err, "Item not found in cart")
	}
	return h.renderCart(c, ctx, cart)
}

func (h *Handler) RemoveCartItem(c echo.Context) error {
	productID, err := paramID(c, "productId", "product")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.store.RemoveCartItems(ctx, currentUser(c).ID, productID)
	if err != nil {
		return utils.NotFoundOr(err, "Item not found in cart")
	}
	return h.renderCart(c, ctx, cart)
}

func (h *Handler) ClearCart(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.ClearCart(ctx, currentUser(c).ID); err != nil {
		return utils.Internal("Failed to clear cart", err)
	}
	return utils.Message(c, "Cart cleared")
}

// GetWishlist returns the wishlisted products that are still for sale, in
// the order they were added.
func (h *Handler) GetWishlist(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	wishlist, err := h.store.GetWishlist(ctx, currentUser(c).ID)
	if err != nil {
		return utils.Internal("Failed to fetch wishlist", err)
	}
	return h.renderWishlist(c, ctx, wishlist)
}

func (h *Handler) renderWishlist(c echo.Context, ctx context.Context, w *models.Wishlist) error {
	ids := uniqueIDs(w.Products)
	products, err := h.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return utils.Internal("Failed to load wishlist products", err)
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := products[id]; ok {
			out = append(out, p)
		}
	}
	return utils.OK(c, out)
}

func (h *Handler) AddToWishlist(c echo.Context) error {
	productID, err := paramID(c, "productId", "product")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.store.GetProduct(ctx, productID, true); err != nil {
		return utils.NotFoundOr(err, "Product not found")
	}
	wishlist, err := h.store.AddToWishlist(ctx, currentUser(c).ID, productID)
	if err != nil {
		return utils.Internal("Failed to update wishlist", err)
	}
	return h.renderWishlist(c, ctx, wishlist)
}

func (h *Handler) RemoveFromWishlist(c echo.Context) error {
	productID, err := paramID(c, "productId", "product")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	wishlist, err := h.store.RemoveFromWishlist(ctx, currentUser(c).ID, productID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NotFound("Product not in wishlist")
		}
		return utils.Internal("Failed to update wishlist", err)
	}
	return h.renderWishlist(c, ctx, wishlist)
}
