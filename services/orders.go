package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brushbolt/store-backend/metrics"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStore is the slice of the document store that checkout needs.
type OrderStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Product, error)
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
	InsertOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	TransitionOrder(ctx context.Context, id primitive.ObjectID, from []models.OrderStatus, t models.OrderTransition) (*models.Order, error)
	RemoveCartItems(ctx context.Context, userID primitive.ObjectID, productIDs ...primitive.ObjectID) (*models.Cart, error)
}

// openStatuses is every status an order can leave; cancelled is terminal.
var openStatuses = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusConfirmed,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

type OrderService struct {
	store OrderStore
	now   func() time.Time
}

func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{store: store, now: time.Now}
}

type reservation struct {
	productID primitive.ObjectID
	quantity  int
}

// PlaceOrder validates every line against current product state, reserves
// stock atomically per line and persists the order. Any failure before the
// insert leaves stock exactly as it was.
func (s *OrderService) PlaceOrder(ctx context.Context, user *models.User, req models.PlaceOrderRequest) (*models.Order, error) {
	shipping, err := resolveShippingAddress(user, req)
	if err != nil {
		return nil, err
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if method == models.PaymentMethodCrypto && !utils.IsWalletAddress(req.BillingDetails.WalletAddress) {
		return nil, utils.BadRequest("A valid wallet address is required for crypto payments")
	}

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	totals := make([]float64, 0, len(lines))
	for _, line := range lines {
		product, err := s.store.GetProduct(ctx, line.productID, false)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.NotFound(fmt.Sprintf("Product %s not found", line.productID.Hex()))
			}
			return nil, utils.Internal("Failed to load product", err)
		}
		if !product.IsActive {
			return nil, utils.BadRequest(fmt.Sprintf("Product %s is no longer available", product.Name))
		}
		if product.Stock < line.quantity {
			return nil, utils.BadRequest(fmt.Sprintf("Insufficient stock for %s: requested %d, available %d",
				product.Name, line.quantity, product.Stock))
		}

		item := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.quantity,
		}
		if len(product.Images) > 0 {
			item.Image = product.Images[0]
		}
		items = append(items, item)
		totals = append(totals, utils.LineTotal(product.Price, line.quantity))
	}

	reserved, err := s.reserve(ctx, items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     newOrderNumber(now),
		UserID:          user.ID,
		Items:           items,
		TotalAmount:     utils.SumMoney(totals...),
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   method,
		ShippingAddress: shipping,
		BillingDetails:  req.BillingDetails,
		Notes:           req.Notes,
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		s.release(ctx, reserved)
		return nil, utils.Internal("Failed to create order", err)
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderValue.Observe(order.TotalAmount)

	if req.FromCart {
		ids := make([]primitive.ObjectID, len(items))
		for i, it := range items {
			ids[i] = it.ProductID
		}
		if _, err := s.store.RemoveCartItems(ctx, user.ID, ids...); err != nil && !errors.Is(err, utils.ErrNotFound) {
			log.Printf("Failed to clear cart after order %s: %v", order.OrderNumber, err)
		}
	}

	return order, nil
}

// reserve decrements stock line by line. On the first line that can't be
// reserved every earlier reservation is released.
func (s *OrderService) reserve(ctx context.Context, items []models.OrderItem) ([]reservation, error) {
	reserved := make([]reservation, 0, len(items))
	for _, it := range items {
		ok, err := s.store.ReserveStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			s.release(ctx, reserved)
			return nil, utils.Internal("Failed to reserve stock", err)
		}
		if !ok {
			s.release(ctx, reserved)
			metrics.StockConflicts.Inc()
			return nil, utils.BadRequest(fmt.Sprintf("Insufficient stock for %s", it.Name))
		}
		reserved = append(reserved, reservation{productID: it.ProductID, quantity: it.Quantity})
	}
	return reserved, nil
}

func (s *OrderService) release(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		if err := s.store.ReleaseStock(ctx, r.productID, r.quantity); err != nil {
			log.Printf("Failed to release %d units of product %s: %v", r.quantity, r.productID.Hex(), err)
		}
	}
}

func (s *OrderService) restock(ctx context.Context, order *models.Order) {
	reserved := make([]reservation, len(order.Items))
	for i, it := range order.Items {
		reserved[i] = reservation{productID: it.ProductID, quantity: it.Quantity}
	}
	s.release(ctx, reserved)
}

// CancelOrder cancels the user's own order from pending or confirmed and
// puts every line's quantity back in stock.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, utils.NotFoundOr(err, "Order not found")
	}
	if order.UserID != userID {
		return nil, utils.NotFound("Order not found")
	}
	if !order.Status.Cancellable() {
		return nil, utils.BadRequest(fmt.Sprintf("Order cannot be cancelled once it is %s", order.Status))
	}

	updated, err := s.store.TransitionOrder(ctx, orderID, models.CancellableStatuses,
		models.OrderTransition{Status: models.OrderStatusCancelled})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.BadRequest("Order can no longer be cancelled")
		}
		return nil, utils.Internal("Failed to cancel order", err)
	}

	s.restock(ctx, updated)
	metrics.OrdersCancelled.Inc()
	return updated, nil
}

// UpdateStatus is the admin status change. Any status may be set, except
// that a cancelled order is final. Cancelling restores stock once.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, req models.OrderStatusUpdate) (*models.Order, error) {
	status := models.OrderStatus(req.Status)
	if !status.Valid() {
		return nil, utils.BadRequest("Invalid order status")
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, utils.NotFoundOr(err, "Order not found")
	}
	// Cancelling already returned the stock. Reopening would have to reserve
	// it again, which could fail, so cancelled stays terminal.
	if order.Status == models.OrderStatusCancelled {
		return nil, utils.BadRequest("Cancelled orders cannot be changed")
	}

	t := models.OrderTransition{
		Status:            status,
		TrackingNumber:    strings.TrimSpace(req.TrackingNumber),
		EstimatedDelivery: req.EstimatedDelivery,
	}
	if status == models.OrderStatusShipped && t.TrackingNumber == "" && order.TrackingNumber == "" {
		t.TrackingNumber = newTrackingNumber()
	}

	updated, err := s.store.TransitionOrder(ctx, orderID, openStatuses, t)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.BadRequest("Order was cancelled concurrently")
		}
		return nil, utils.Internal("Failed to update order status", err)
	}

	if status == models.OrderStatusCancelled {
		s.restock(ctx, updated)
		metrics.OrdersCancelled.Inc()
	}
	return updated, nil
}

type mergedLine struct {
	productID primitive.ObjectID
	quantity  int
}

// mergeLines parses ids and folds repeated products into one line, keeping
// first-seen order.
func mergeLines(reqs []models.OrderLineRequest) ([]mergedLine, error) {
	if len(reqs) == 0 {
		return nil, utils.BadRequest("Order must contain at least one item")
	}
	index := make(map[primitive.ObjectID]int, len(reqs))
	lines := make([]mergedLine, 0, len(reqs))
	for _, r := range reqs {
		if r.Quantity < 1 {
			return nil, utils.BadRequest("Quantity must be at least 1")
		}
		id, err := utils.ParseObjectID(r.ProductID, "product")
		if err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			lines[i].quantity += r.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, mergedLine{productID: id, quantity: r.Quantity})
	}
	return lines, nil
}

// resolveShippingAddress picks the explicit address, then the saved one by
// id, then the user's default.
func resolveShippingAddress(user *models.User, req models.PlaceOrderRequest) (models.Address, error) {
	if req.ShippingAddress != nil {
		addr := *req.ShippingAddress
		addr.ID = primitive.NilObjectID
		addr.IsDefault = false
		return addr, nil
	}
	if req.AddressID != "" {
		id, err := utils.ParseObjectID(req.AddressID, "address")
		if err != nil {
			return models.Address{}, err
		}
		if addr, ok := user.FindAddress(id); ok {
			return addr, nil
		}
		return models.Address{}, utils.NotFound("Address not found")
	}
	for _, a := range user.Addresses {
		if a.IsDefault {
			return a, nil
		}
	}
	return models.Address{}, utils.BadRequest("A shipping address is required")
}

func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), shortID())
}

func newTrackingNumber() string {
	return "TRK" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
