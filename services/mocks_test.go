package services

import (
	"context"
	"sync"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) GetProduct(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Product, error) {
	args := m.Called(ctx, id, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockOrderStore) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderStore) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockOrderStore) InsertOrder(ctx context.Context, o *models.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderStore) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) TransitionOrder(ctx context.Context, id primitive.ObjectID, from []models.OrderStatus, t models.OrderTransition) (*models.Order, error) {
	args := m.Called(ctx, id, from, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) RemoveCartItems(ctx context.Context, userID primitive.ObjectID, productIDs ...primitive.ObjectID) (*models.Cart, error) {
	args := m.Called(ctx, userID, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

// memStore is an in-memory stand-in for the document store that keeps real
// stock, order and review state so invariants can be checked end to end.
type memStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
	orders   map[primitive.ObjectID]*models.Order
	reviews  map[primitive.ObjectID]*models.Review
}

func newMemStore(products ...*models.Product) *memStore {
	s := &memStore{
		products: map[primitive.ObjectID]*models.Product{},
		orders:   map[primitive.ObjectID]*models.Order{},
		reviews:  map[primitive.ObjectID]*models.Review{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) stock(id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) GetProduct(_ context.Context, id primitive.ObjectID, activeOnly bool) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || (activeOnly && !p.IsActive) {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ReserveStock(_ context.Context, id primitive.ObjectID, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || !p.IsActive || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (s *memStore) ReleaseStock(_ context.Context, id primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (s *memStore) SetProductRating(_ context.Context, id primitive.ObjectID, r models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Rating = r
	}
	return nil
}

func (s *memStore) InsertOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *memStore) GetOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) TransitionOrder(_ context.Context, id primitive.ObjectID, from []models.OrderStatus, t models.OrderTransition) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if len(from) > 0 {
		allowed := false
		for _, st := range from {
			if o.Status == st {
				allowed = true
			}
		}
		if !allowed {
			return nil, utils.ErrNotFound
		}
	}
	o.Status = t.Status
	if t.TrackingNumber != "" {
		o.TrackingNumber = t.TrackingNumber
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) RemoveCartItems(_ context.Context, userID primitive.ObjectID, _ ...primitive.ObjectID) (*models.Cart, error) {
	return &models.Cart{UserID: userID}, nil
}

func (s *memStore) CreateReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reviews {
		if existing.UserID == r.UserID && existing.ProductID == r.ProductID {
			return utils.ErrDuplicate
		}
	}
	r.ID = primitive.NewObjectID()
	cp := *r
	s.reviews[r.ID] = &cp
	return nil
}

func (s *memStore) GetReview(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) UpdateReview(_ context.Context, id primitive.ObjectID, upd models.ReviewUpdate) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	r.Rating, r.Title, r.Comment = upd.Rating, upd.Title, upd.Comment
	cp := *r
	return &cp, nil
}

func (s *memStore) DeleteReview(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return utils.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *memStore) SetReviewApproval(_ context.Context, id primitive.ObjectID, approved bool) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	r.IsApproved = approved
	cp := *r
	return &cp, nil
}

func (s *memStore) ApprovedRatings(_ context.Context, productID primitive.ObjectID) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, r := range s.reviews {
		if r.ProductID == productID && r.IsApproved {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

func (s *memStore) HasDeliveredPurchase(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.UserID != userID || o.Status != models.OrderStatusDelivered {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}
