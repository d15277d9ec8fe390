package handlers

import (
	"context"
	"time"

	"github.com/brushbolt/store-backend/cache"
	"github.com/brushbolt/store-backend/config"
	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/middleware"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/services"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestTimeout = 10 * time.Second

type ProductStore interface {
	ListProducts(ctx context.Context, f database.ProductFilter, p utils.ListParams) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Product, error)
	ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	DeactivateProduct(ctx context.Context, id primitive.ObjectID) error
	SetProductStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.Product, error)
	AdjustProductStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.Product, error)
}

type PaintStore interface {
	ListPaints(ctx context.Context, f database.PaintFilter, p utils.ListParams) ([]models.Paint, int64, error)
	GetPaint(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Paint, error)
	CreatePaint(ctx context.Context, p *models.Paint) error
	UpdatePaint(ctx context.Context, p *models.Paint) (*models.Paint, error)
	DeactivatePaint(ctx context.Context, id primitive.ObjectID) error
	SetPaintStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.Paint, error)
	AdjustPaintStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.Paint, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context, f database.CategoryFilter, p utils.ListParams) ([]models.Category, int64, error)
	GetCategory(ctx context.Context, id primitive.ObjectID, activeOnly bool) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	DeactivateCategory(ctx context.Context, id primitive.ObjectID) error
	AddSubcategory(ctx context.Context, categoryID primitive.ObjectID, sub models.Subcategory) (*models.Category, error)
	UpdateSubcategory(ctx context.Context, categoryID primitive.ObjectID, sub models.Subcategory) (*models.Category, error)
	DeactivateSubcategory(ctx context.Context, categoryID, subID primitive.ObjectID) (*models.Category, error)
}

type UserStore interface {
	ListUsers(ctx context.Context, f database.UserFilter, p utils.ListParams) ([]models.User, int64, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID) error
	AdminUpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserAdminUpdate) (*models.User, error)
	AddAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) (*models.User, error)
	UpdateAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) (*models.User, error)
	DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) (*models.User, error)
	SetDefaultAddress(ctx context.Context, userID, addressID primitive.ObjectID) (*models.User, error)
}

type CartStore interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	AddCartItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error)
	SetCartItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*models.Cart, error)
	RemoveCartItems(ctx context.Context, userID primitive.ObjectID, productIDs ...primitive.ObjectID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
	GetWishlist(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error)
}

type OrderReader interface {
	ListOrders(ctx context.Context, f database.OrderFilter, p utils.ListParams) ([]models.Order, int64, error)
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error)
}

type ReviewReader interface {
	ListReviews(ctx context.Context, f database.ReviewFilter, p utils.ListParams) ([]models.Review, int64, error)
}

type AnalyticsStore interface {
	Dashboard(ctx context.Context, lowStockThreshold int) (*models.DashboardStats, error)
	SalesOverTime(ctx context.Context, days int, byMonth bool) ([]models.SalesBucket, error)
	OrdersByStatus(ctx context.Context) ([]models.StatusBreakdown, error)
	TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error)
	LowStockProducts(ctx context.Context, threshold, limit int) ([]models.Product, error)
	CategoryBreakdown(ctx context.Context) ([]models.CategoryBreakdown, error)
}

// Store is everything the HTTP layer reads and writes. *database.Store
// satisfies it.
type Store interface {
	ProductStore
	PaintStore
	CategoryStore
	UserStore
	CartStore
	OrderReader
	ReviewReader
	AnalyticsStore
	services.OrderStore
	services.ReviewStore
	Ping(ctx context.Context) error
}

var _ Store = (*database.Store)(nil)

type Handler struct {
	store   Store
	orders  *services.OrderService
	reviews *services.ReviewService
	tokens  *utils.TokenManager
	cache   *cache.Cache
	cfg     *config.Config
}

// New wires the handlers. c may be nil when no Redis is configured.
func New(store Store, tokens *utils.TokenManager, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		store:   store,
		orders:  services.NewOrderService(store),
		reviews: services.NewReviewService(store),
		tokens:  tokens,
		cache:   c,
		cfg:     cfg,
	}
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes and validates the request body into v.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return utils.BadRequest("Invalid request format")
	}
	return c.Validate(v)
}

func currentUser(c echo.Context) *models.User {
	return middleware.CurrentUser(c)
}

func paramID(c echo.Context, name, what string) (primitive.ObjectID, error) {
	return utils.ParseObjectID(c.Param(name), what)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
