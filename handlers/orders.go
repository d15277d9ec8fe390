package handlers

import (
	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
)

var orderSorts = map[string]string{
	"createdAt":   "createdAt",
	"totalAmount": "totalAmount",
	"status":      "status",
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var req models.PlaceOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.PlaceOrder(ctx, currentUser(c), req)
	if err != nil {
		return err
	}
	return utils.Created(c, order)
}

func (h *Handler) GetMyOrders(c echo.Context) error {
	params := utils.ParseListParams(c, "createdAt", orderSorts)
	userID := currentUser(c).ID

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, total, err := h.store.ListOrders(ctx, database.OrderFilter{
		UserID: &userID,
		Status: c.QueryParam("status"),
	}, params)
	if err != nil {
		return utils.Internal("Failed to fetch orders", err)
	}
	return utils.Paginated(c, orders, models.NewPagination(params.Page, params.Limit, total))
}

// GetOrder returns an order to its owner. Other users get a 404 so order
// ids do not reveal which orders exist.
func (h *Handler) GetOrder(c echo.Context) error {
	orderID, err := paramID(c, "id", "order")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.store.GetOrder(ctx, orderID)
	if err != nil {
		return utils.NotFoundOr(err, "Order not found")
	}
	if order.UserID != currentUser(c).ID {
		return utils.NotFound("Order not found")
	}
	return utils.OK(c, order)
}

func (h *Handler) CancelOrder(c echo.Context) error {
	orderID, err := paramID(c, "id", "order")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.CancelOrder(ctx, currentUser(c).ID, orderID)
	if err != nil {
		return err
	}
	return utils.OK(c, order)
}

func (h *Handler) AdminListOrders(c echo.Context) error {
	params := utils.ParseListParams(c, "createdAt", orderSorts)

	var f database.OrderFilter
	var err error
	if f.UserID, err = utils.OptionalObjectID(c.QueryParam("userId"), "user"); err != nil {
		return err
	}
	if f.From, err = utils.QueryDate(c, "from"); err != nil {
		return err
	}
	if f.To, err = utils.QueryDate(c, "to"); err != nil {
		return err
	}
	f.Status = c.QueryParam("status")
	f.PaymentStatus = c.QueryParam("paymentStatus")

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, total, err := h.store.ListOrders(ctx, f, params)
	if err != nil {
		return utils.Internal("Failed to fetch orders", err)
	}
	return utils.Paginated(c, orders, models.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) AdminGetOrder(c echo.Context) error {
	orderID, err := paramID(c, "id", "order")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.store.GetOrder(ctx, orderID)
	if err != nil {
		return utils.NotFoundOr(err, "Order not found")
	}
	return utils.OK(c, order)
}

func (h *Handler) AdminUpdateOrderStatus(c echo.Context) error {
	orderID, err := paramID(c, "id", "order")
	if err != nil {
		return err
	}
	var req models.OrderStatusUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.UpdateStatus(ctx, orderID, req)
	if err != nil {
		return err
	}
	h.cache.Delete(ctx, dashboardCacheKey)
	return utils.OK(c, order)
}

func (h *Handler) AdminUpdatePaymentStatus(c echo.Context) error {
	orderID, err := paramID(c, "id", "order")
	if err != nil {
		return err
	}
	var req models.PaymentStatusUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.store.SetPaymentStatus(ctx, orderID, models.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return utils.NotFoundOr(err, "Order not found")
	}
	return utils.OK(c, order)
}
