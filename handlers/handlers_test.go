package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brushbolt/store-backend/config"
	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/middleware"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore implements the methods a test needs; anything else panics on
// the nil embedded interface.
type fakeStore struct {
	Store

	products        map[primitive.ObjectID]*models.Product
	categories      map[primitive.ObjectID]*models.Category
	users           map[string]*models.User
	orders          map[primitive.ObjectID]*models.Order
	cart            *models.Cart
	wishlist        []primitive.ObjectID
	totalItems      int64
	lastParams      utils.ListParams
	lastFilter      database.ProductFilter
	lastPaintFilter database.PaintFilter
	dashboardHit    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   map[primitive.ObjectID]*models.Product{},
		categories: map[primitive.ObjectID]*models.Category{},
		users:      map[string]*models.User{},
		orders:     map[primitive.ObjectID]*models.Order{},
	}
}

func (f *fakeStore) ListProducts(_ context.Context, filter database.ProductFilter, p utils.ListParams) ([]models.Product, int64, error) {
	f.lastFilter, f.lastParams = filter, p
	var out []models.Product
	for i := int64(p.Skip()); i < f.totalItems && len(out) < p.Limit; i++ {
		out = append(out, models.Product{ID: primitive.NewObjectID(), IsActive: true})
	}
	return out, f.totalItems, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id primitive.ObjectID, activeOnly bool) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok || (activeOnly && !p.IsActive) {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ProductsByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := map[primitive.ObjectID]models.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok && p.IsActive {
			out[id] = *p
		}
	}
	return out, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, p *models.Product) error {
	for _, existing := range f.products {
		if p.SKU != "" && existing.SKU == p.SKU {
			return utils.ErrDuplicate
		}
	}
	p.ID = primitive.NewObjectID()
	f.products[p.ID] = p
	return nil
}

func (f *fakeStore) SetProductStock(_ context.Context, id primitive.ObjectID, stock int) (*models.Product, error) {
	f.products[id].Stock = stock
	return f.products[id], nil
}

func (f *fakeStore) AdjustProductStock(_ context.Context, id primitive.ObjectID, delta int) (*models.Product, error) {
	p := f.products[id]
	if p.Stock+delta < 0 {
		return nil, utils.ErrNotFound
	}
	p.Stock += delta
	return p, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	email := database.NormalizeEmail(u.Email)
	if _, ok := f.users[email]; ok {
		return utils.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	u.Email = email
	f.users[email] = u
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[database.NormalizeEmail(email)]; ok {
		return u, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeStore) TouchLastLogin(context.Context, primitive.ObjectID) error { return nil }

func (f *fakeStore) userByID(id primitive.ObjectID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func clearDefault(u *models.User) {
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = false
	}
}

func (f *fakeStore) AddAddress(_ context.Context, userID primitive.ObjectID, addr models.Address) (*models.User, error) {
	u, err := f.userByID(userID)
	if err != nil {
		return nil, err
	}
	if addr.IsDefault {
		clearDefault(u)
	}
	u.Addresses = append(u.Addresses, addr)
	return u, nil
}

func (f *fakeStore) UpdateAddress(_ context.Context, userID primitive.ObjectID, addr models.Address) (*models.User, error) {
	u, err := f.userByID(userID)
	if err != nil {
		return nil, err
	}
	for i := range u.Addresses {
		if u.Addresses[i].ID == addr.ID {
			if addr.IsDefault {
				clearDefault(u)
			}
			u.Addresses[i] = addr
			return u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeStore) SetDefaultAddress(_ context.Context, userID, addressID primitive.ObjectID) (*models.User, error) {
	u, err := f.userByID(userID)
	if err != nil {
		return nil, err
	}
	if _, ok := u.FindAddress(addressID); !ok {
		return nil, utils.ErrNotFound
	}
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = u.Addresses[i].ID == addressID
	}
	return u, nil
}

func (f *fakeStore) ListCategories(_ context.Context, _ database.CategoryFilter, _ utils.ListParams) ([]models.Category, int64, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.IsActive {
			cp := *c
			cp.Subcategories = append([]models.Subcategory(nil), c.Subcategories...)
			out = append(out, cp)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) GetCategory(_ context.Context, id primitive.ObjectID, activeOnly bool) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok || (activeOnly && !c.IsActive) {
		return nil, utils.ErrNotFound
	}
	cp := *c
	cp.Subcategories = append([]models.Subcategory(nil), c.Subcategories...)
	return &cp, nil
}

func (f *fakeStore) ListPaints(_ context.Context, filter database.PaintFilter, p utils.ListParams) ([]models.Paint, int64, error) {
	f.lastPaintFilter, f.lastParams = filter, p
	return []models.Paint{}, 0, nil
}

func (f *fakeStore) GetWishlist(_ context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	return &models.Wishlist{UserID: userID, Products: append([]primitive.ObjectID{}, f.wishlist...)}, nil
}

func (f *fakeStore) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	for _, id := range f.wishlist {
		if id == productID {
			return f.GetWishlist(ctx, userID)
		}
	}
	f.wishlist = append(f.wishlist, productID)
	return f.GetWishlist(ctx, userID)
}

func (f *fakeStore) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	for i, id := range f.wishlist {
		if id == productID {
			f.wishlist = append(f.wishlist[:i], f.wishlist[i+1:]...)
			return f.GetWishlist(ctx, userID)
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeStore) GetCart(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	if f.cart == nil {
		return &models.Cart{UserID: userID}, nil
	}
	return f.cart, nil
}

func (f *fakeStore) AddCartItem(_ context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	if f.cart == nil {
		f.cart = &models.Cart{UserID: userID}
	}
	for i := range f.cart.Items {
		if f.cart.Items[i].ProductID == productID {
			f.cart.Items[i].Quantity += qty
			return f.cart, nil
		}
	}
	f.cart.Items = append(f.cart.Items, models.CartItem{ProductID: productID, Quantity: qty})
	return f.cart, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeStore) Dashboard(context.Context, int) (*models.DashboardStats, error) {
	f.dashboardHit++
	return &models.DashboardStats{TotalOrders: 7}, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type env struct {
	e     *echo.Echo
	h     *Handler
	store *fakeStore
	user  *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := newFakeStore()
	cfg := config.Default()
	h := New(store, utils.NewTokenManager("test-secret", time.Hour), nil, cfg)

	e := echo.New()
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(false)

	user := &models.User{ID: primitive.NewObjectID(), Name: "Sam", Email: "sam@example.com", IsActive: true, IsAdmin: true}
	store.users[user.Email] = user
	asUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserKey, user)
			c.Set(middleware.UserIDKey, user.ID)
			return next(c)
		}
	}

	e.GET("/health", h.Health)
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.GET("/products", h.GetProducts)
	e.GET("/products/:id", h.GetProduct)
	e.GET("/admin/products", h.AdminGetProducts)
	e.POST("/admin/products", h.CreateProduct)
	e.GET("/categories", h.GetCategories)
	e.GET("/categories/:id", h.GetCategory)
	e.GET("/paints", h.GetPaints)
	e.GET("/users/me/addresses", h.GetAddresses, asUser)
	e.POST("/users/me/addresses", h.AddAddress, asUser)
	e.PUT("/users/me/addresses/:id", h.UpdateAddress, asUser)
	e.PUT("/users/me/addresses/:id/default", h.SetDefaultAddress, asUser)
	e.GET("/wishlist", h.GetWishlist, asUser)
	e.POST("/wishlist/:productId", h.AddToWishlist, asUser)
	e.DELETE("/wishlist/:productId", h.RemoveFromWishlist, asUser)
	e.PATCH("/admin/products/:id/stock", h.UpdateProductStock)
	e.POST("/cart/items", h.AddToCart, asUser)
	e.GET("/cart", h.GetCart, asUser)
	e.POST("/orders", h.CreateOrder, asUser)
	e.GET("/orders/:id", h.GetOrder, asUser)
	e.GET("/admin/dashboard", h.Dashboard)

	return &env{e: e, h: h, store: store, user: user}
}

func (v *env) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, utils.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)

	var out utils.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestListProductsPagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		total int64
		want  models.Pagination
		items int
	}{
		{"defaults", "", 30, models.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 30, ItemsPerPage: 12}, 12},
		{"second page", "?page=2&limit=5", 12, models.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 12, ItemsPerPage: 5}, 5},
		{"last partial page", "?page=3&limit=5", 12, models.Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 12, ItemsPerPage: 5}, 2},
		{"limit capped", "?limit=1000", 250, models.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 250, ItemsPerPage: 100}, 100},
		{"bad page falls back", "?page=-4", 3, models.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 3, ItemsPerPage: 12}, 3},
		{"empty", "", 0, models.Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0, ItemsPerPage: 12}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newEnv(t)
			v.store.totalItems = tt.total

			rec, out := v.do(t, http.MethodGet, "/products"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, out.Pagination)
			assert.Equal(t, tt.want, *out.Pagination)
			assert.Len(t, out.Data, tt.items)
		})
	}
}

func TestListProductsFilters(t *testing.T) {
	v := newEnv(t)
	cat := primitive.NewObjectID()

	rec, _ := v.do(t, http.MethodGet, "/products?category="+cat.Hex()+"&minPrice=5&inStock=true&sort=price&search=drill", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, v.store.lastFilter.IncludeInactive)
	assert.Equal(t, cat, *v.store.lastFilter.CategoryID)
	assert.Equal(t, 5.0, *v.store.lastFilter.MinPrice)
	assert.True(t, *v.store.lastFilter.InStock)
	assert.Equal(t, "price", v.store.lastParams.Sort)
	assert.False(t, v.store.lastParams.Desc)
	assert.Equal(t, "drill", v.store.lastParams.Search)

	rec, out := v.do(t, http.MethodGet, "/products?category=nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid category ID", out.Error)

	v.do(t, http.MethodGet, "/admin/products", "")
	assert.True(t, v.store.lastFilter.IncludeInactive)
}

func TestGetProduct(t *testing.T) {
	v := newEnv(t)
	active := &models.Product{ID: primitive.NewObjectID(), Name: "Drill", IsActive: true}
	hidden := &models.Product{ID: primitive.NewObjectID(), Name: "Old", IsActive: false}
	v.store.products[active.ID] = active
	v.store.products[hidden.ID] = hidden

	rec, out := v.do(t, http.MethodGet, "/products/"+active.ID.Hex(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.Success)

	rec, out = v.do(t, http.MethodGet, "/products/"+hidden.ID.Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", out.Error)

	rec, out = v.do(t, http.MethodGet, "/products/123", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid product ID", out.Error)
}

func TestRegisterAndLogin(t *testing.T) {
	v := newEnv(t)

	rec, out := v.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"Ada@Example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, out.Error)
	data := out.Data.(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.NotContains(t, rec.Body.String(), "hunter2")

	stored := v.store.users["ada@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter2hunter2")))

	rec, out = v.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2hunter2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", out.Error)

	rec, out = v.do(t, http.MethodPost, "/auth/register", `{"name":"","email":"x","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", out.Error)
	assert.Contains(t, out.Details, "email")
	assert.Contains(t, out.Details, "password")

	rec, out = v.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", out.Error)

	rec, out = v.do(t, http.MethodPost, "/auth/login", `{"email":"ADA@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := out.Data.(map[string]interface{})["token"].(string)
	claims, err := v.h.tokens.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID.Hex(), claims.UserID)

	stored.IsActive = false
	rec, out = v.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"hunter2hunter2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Account is deactivated", out.Error)
}

func TestAddToCartChecksStock(t *testing.T) {
	v := newEnv(t)
	p := &models.Product{ID: primitive.NewObjectID(), Name: "Brush", Price: 2.5, Stock: 3, IsActive: true}
	v.store.products[p.ID] = p

	rec, out := v.do(t, http.MethodPost, "/cart/items", `{"productId":"`+p.ID.Hex()+`","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, out.Error)
	view := out.Data.(map[string]interface{})
	assert.Equal(t, 2.0, view["totalItems"])
	assert.Equal(t, 5.0, view["totalAmount"])

	// 2 already in the cart plus 2 more exceeds the 3 in stock.
	rec, out = v.do(t, http.MethodPost, "/cart/items", `{"productId":"`+p.ID.Hex()+`","quantity":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out.Error, "Insufficient stock for Brush")

	rec, _ = v.do(t, http.MethodPost, "/cart/items", `{"productId":"`+primitive.NewObjectID().Hex()+`","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartViewMarksUnavailableLines(t *testing.T) {
	v := newEnv(t)
	ok := &models.Product{ID: primitive.NewObjectID(), Name: "Tape", Price: 1.1, Stock: 10, IsActive: true}
	short := &models.Product{ID: primitive.NewObjectID(), Name: "Glue", Price: 4, Stock: 1, IsActive: true}
	gone := &models.Product{ID: primitive.NewObjectID(), Name: "Old", Price: 9, Stock: 9, IsActive: false}
	for _, p := range []*models.Product{ok, short, gone} {
		v.store.products[p.ID] = p
	}
	v.store.cart = &models.Cart{UserID: v.user.ID, Items: []models.CartItem{
		{ProductID: ok.ID, Quantity: 3},
		{ProductID: short.ID, Quantity: 2},
		{ProductID: gone.ID, Quantity: 1},
	}}

	rec, out := v.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := out.Data.(map[string]interface{})
	items := view["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, true, items[0].(map[string]interface{})["available"])
	assert.Equal(t, false, items[1].(map[string]interface{})["available"])
	assert.Equal(t, 3.0, view["totalItems"])
	assert.Equal(t, 3.3, view["totalAmount"])
}

func TestCreateOrderValidation(t *testing.T) {
	v := newEnv(t)

	rec, out := v.do(t, http.MethodPost, "/orders", `{"items":[],"paymentMethod":"barter"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", out.Error)
	assert.Contains(t, out.Details, "items")
	assert.Contains(t, out.Details, "paymentMethod")

	rec, out = v.do(t, http.MethodPost, "/orders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request format", out.Error)
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	v := newEnv(t)
	mine := &models.Order{ID: primitive.NewObjectID(), UserID: v.user.ID}
	theirs := &models.Order{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()}
	v.store.orders[mine.ID] = mine
	v.store.orders[theirs.ID] = theirs

	rec, _ := v.do(t, http.MethodGet, "/orders/"+mine.ID.Hex(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, out := v.do(t, http.MethodGet, "/orders/"+theirs.ID.Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", out.Error)
}

func TestUpdateProductStock(t *testing.T) {
	v := newEnv(t)
	p := &models.Product{ID: primitive.NewObjectID(), Name: "Saw", Stock: 4}
	v.store.products[p.ID] = p
	target := "/admin/products/" + p.ID.Hex() + "/stock"

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantStock  int
	}{
		{"set", `{"stock":10}`, http.StatusOK, 10},
		{"adjust down", `{"adjust":-3}`, http.StatusOK, 7},
		{"adjust below zero", `{"adjust":-8}`, http.StatusBadRequest, 7},
		{"both", `{"stock":1,"adjust":1}`, http.StatusBadRequest, 7},
		{"neither", `{}`, http.StatusBadRequest, 7},
		{"negative set", `{"stock":-1}`, http.StatusBadRequest, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := v.do(t, http.MethodPatch, target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStock, p.Stock)
		})
	}
}

func TestDashboardWithoutCache(t *testing.T) {
	v := newEnv(t)

	for i := 0; i < 2; i++ {
		rec, out := v.do(t, http.MethodGet, "/admin/dashboard", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7.0, out.Data.(map[string]interface{})["totalOrders"])
	}
	assert.Equal(t, 2, v.store.dashboardHit)
}

func TestHealth(t *testing.T) {
	v := newEnv(t)
	rec, out := v.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.Success)
	assert.Equal(t, "ok", out.Data.(map[string]interface{})["database"])
}

const addressBody = `{"fullName":"Sam Reed","street":"1 Main St","city":"Austin","country":"US","postalCode":"73301"`

func addressFlags(t *testing.T, data interface{}) []bool {
	t.Helper()
	list, ok := data.([]interface{})
	require.True(t, ok, "expected an address list")
	flags := make([]bool, len(list))
	for i, a := range list {
		flags[i] = a.(map[string]interface{})["isDefault"].(bool)
	}
	return flags
}

func TestAddressDefaults(t *testing.T) {
	v := newEnv(t)

	rec, out := v.do(t, http.MethodPost, "/users/me/addresses", addressBody+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, out.Error)
	assert.Equal(t, []bool{true}, addressFlags(t, out.Data))

	rec, out = v.do(t, http.MethodPost, "/users/me/addresses", addressBody+`,"label":"work"}`)
	require.Equal(t, http.StatusCreated, rec.Code, out.Error)
	assert.Equal(t, []bool{true, false}, addressFlags(t, out.Data))

	first, second := v.user.Addresses[0].ID, v.user.Addresses[1].ID

	// Editing the default without isDefault keeps it the default.
	rec, out = v.do(t, http.MethodPut, "/users/me/addresses/"+first.Hex(), addressBody+`,"city":"Dallas"}`)
	require.Equal(t, http.StatusOK, rec.Code, out.Error)
	assert.Equal(t, []bool{true, false}, addressFlags(t, out.Data))
	assert.Equal(t, "Dallas", v.user.Addresses[0].City)

	rec, out = v.do(t, http.MethodPut, "/users/me/addresses/"+second.Hex()+"/default", "")
	require.Equal(t, http.StatusOK, rec.Code, out.Error)
	assert.Equal(t, []bool{false, true}, addressFlags(t, out.Data))

	rec, out = v.do(t, http.MethodPut, "/users/me/addresses/"+primitive.NewObjectID().Hex(), addressBody+`}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Address not found", out.Error)

	rec, out = v.do(t, http.MethodPut, "/users/me/addresses/"+primitive.NewObjectID().Hex()+"/default", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Address not found", out.Error)
}

func TestCategoriesHideInactiveSubcategories(t *testing.T) {
	v := newEnv(t)
	cat := &models.Category{
		ID:       primitive.NewObjectID(),
		Name:     "Tools",
		Type:     models.ProductTypeHardware,
		IsActive: true,
		Subcategories: []models.Subcategory{
			{ID: primitive.NewObjectID(), Name: "Brushes", IsActive: true},
			{ID: primitive.NewObjectID(), Name: "Retired", IsActive: false},
		},
	}
	hidden := &models.Category{ID: primitive.NewObjectID(), Name: "Old", IsActive: false}
	v.store.categories[cat.ID] = cat
	v.store.categories[hidden.ID] = hidden

	subNames := func(data interface{}) []string {
		var names []string
		for _, s := range data.(map[string]interface{})["subcategories"].([]interface{}) {
			names = append(names, s.(map[string]interface{})["name"].(string))
		}
		return names
	}

	rec, out := v.do(t, http.MethodGet, "/categories/"+cat.ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Brushes"}, subNames(out.Data))
	assert.Len(t, cat.Subcategories, 2, "stored category is untouched")

	rec, out = v.do(t, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := out.Data.([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Brushes"}, subNames(list[0]))

	rec, out = v.do(t, http.MethodGet, "/categories/"+hidden.ID.Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", out.Error)
}

func TestListPaintsFilters(t *testing.T) {
	v := newEnv(t)
	cat := primitive.NewObjectID()

	rec, _ := v.do(t, http.MethodGet, "/paints?finish=satin&colorFamily=blue&brand=Acme&minPrice=3&maxPrice=40&category="+cat.Hex()+"&sort=price", "")
	require.Equal(t, http.StatusOK, rec.Code)
	f := v.store.lastPaintFilter
	assert.False(t, f.IncludeInactive)
	assert.Equal(t, "satin", f.Finish)
	assert.Equal(t, "blue", f.ColorFamily)
	assert.Equal(t, "Acme", f.Brand)
	assert.Equal(t, 3.0, *f.MinPrice)
	assert.Equal(t, 40.0, *f.MaxPrice)
	assert.Equal(t, cat, *f.CategoryID)
	assert.Equal(t, "price", v.store.lastParams.Sort)

	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"bad price", "?minPrice=cheap", "Invalid value for minPrice"},
		{"bad category", "?category=blue", "Invalid category ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := v.do(t, http.MethodGet, "/paints"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantErr, out.Error)
		})
	}
}

func TestWishlistFlow(t *testing.T) {
	v := newEnv(t)
	roller := &models.Product{ID: primitive.NewObjectID(), Name: "Roller", IsActive: true}
	tray := &models.Product{ID: primitive.NewObjectID(), Name: "Tray", IsActive: true}
	gone := &models.Product{ID: primitive.NewObjectID(), Name: "Gone", IsActive: false}
	for _, p := range []*models.Product{roller, tray, gone} {
		v.store.products[p.ID] = p
	}
	names := func(data interface{}) []string {
		out := []string{}
		for _, p := range data.([]interface{}) {
			out = append(out, p.(map[string]interface{})["name"].(string))
		}
		return out
	}

	rec, out := v.do(t, http.MethodPost, "/wishlist/"+roller.ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code, out.Error)
	assert.Equal(t, []string{"Roller"}, names(out.Data))

	_, out = v.do(t, http.MethodPost, "/wishlist/"+roller.ID.Hex(), "")
	assert.Equal(t, []string{"Roller"}, names(out.Data), "adding twice keeps one entry")

	_, out = v.do(t, http.MethodPost, "/wishlist/"+tray.ID.Hex(), "")
	assert.Equal(t, []string{"Roller", "Tray"}, names(out.Data))

	rec, out = v.do(t, http.MethodPost, "/wishlist/"+gone.ID.Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", out.Error)

	tray.IsActive = false
	_, out = v.do(t, http.MethodGet, "/wishlist", "")
	assert.Equal(t, []string{"Roller"}, names(out.Data), "deactivated products are hidden")

	rec, out = v.do(t, http.MethodDelete, "/wishlist/"+roller.ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code, out.Error)
	assert.Empty(t, names(out.Data))

	rec, out = v.do(t, http.MethodDelete, "/wishlist/"+roller.ID.Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not in wishlist", out.Error)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	v := newEnv(t)
	cat := &models.Category{ID: primitive.NewObjectID(), Name: "Tools", Type: models.ProductTypeHardware, IsActive: true}
	v.store.categories[cat.ID] = cat
	body := func(sku string) string {
		return `{"name":"Hammer","type":"hardware","price":12.5,"categoryId":"` + cat.ID.Hex() + `","sku":"` + sku + `"}`
	}

	rec, out := v.do(t, http.MethodPost, "/admin/products", body("HM-1"))
	require.Equal(t, http.StatusCreated, rec.Code, out.Error)

	rec, out = v.do(t, http.MethodPost, "/admin/products", body("HM-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A product with this SKU already exists", out.Error)

	for i := 0; i < 2; i++ {
		rec, out = v.do(t, http.MethodPost, "/admin/products", body(""))
		assert.Equal(t, http.StatusCreated, rec.Code, out.Error)
	}
}
