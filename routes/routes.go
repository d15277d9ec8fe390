package routes

import (
	"github.com/brushbolt/store-backend/handlers"
	customMiddleware "github.com/brushbolt/store-backend/middleware"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(e *echo.Echo, h *handlers.Handler, auth *customMiddleware.Authenticator, limiter *customMiddleware.RateLimiter) {
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Register, limiter.Limit)
	api.POST("/auth/login", h.Login, limiter.Limit)

	api.GET("/products", h.GetProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/products/:id/reviews", h.GetProductReviews)
	api.GET("/paints", h.GetPaints)
	api.GET("/paints/:id", h.GetPaint)
	api.GET("/categories", h.GetCategories)
	api.GET("/categories/:id", h.GetCategory)

	// Authenticated routes
	user := api.Group("", auth.Require)

	user.GET("/auth/me", h.Me)

	user.GET("/users/me", h.GetProfile)
	user.PUT("/users/me", h.UpdateProfile)
	user.PUT("/users/me/password", h.ChangePassword)
	user.GET("/users/me/addresses", h.GetAddresses)
	user.POST("/users/me/addresses", h.AddAddress)
	user.PUT("/users/me/addresses/:id", h.UpdateAddress)
	user.DELETE("/users/me/addresses/:id", h.DeleteAddress)
	user.PUT("/users/me/addresses/:id/default", h.SetDefaultAddress)

	user.GET("/cart", h.GetCart)
	user.POST("/cart/items", h.AddToCart)
	user.PUT("/cart/items/:productId", h.UpdateCartItem)
	user.DELETE("/cart/items/:productId", h.RemoveCartItem)
	user.DELETE("/cart", h.ClearCart)

	user.GET("/wishlist", h.GetWishlist)
	user.POST("/wishlist/:productId", h.AddToWishlist)
	user.DELETE("/wishlist/:productId", h.RemoveFromWishlist)

	user.POST("/reviews", h.CreateReview)
	user.GET("/reviews/me", h.GetMyReviews)
	user.PUT("/reviews/:id", h.UpdateReview)
	user.DELETE("/reviews/:id", h.DeleteReview)

	user.POST("/orders", h.CreateOrder)
	user.GET("/orders", h.GetMyOrders)
	user.GET("/orders/:id", h.GetOrder)
	user.POST("/orders/:id/cancel", h.CancelOrder)

	// Admin routes
	admin := api.Group("/admin", auth.Require, customMiddleware.RequireAdmin)

	admin.GET("/products", h.AdminGetProducts)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.PATCH("/products/:id/stock", h.UpdateProductStock)

	admin.POST("/paints", h.CreatePaint)
	admin.PUT("/paints/:id", h.UpdatePaint)
	admin.DELETE("/paints/:id", h.DeletePaint)
	admin.PATCH("/paints/:id/stock", h.UpdatePaintStock)

	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	admin.POST("/categories/:id/subcategories", h.AddSubcategory)
	admin.PUT("/categories/:id/subcategories/:subId", h.UpdateSubcategory)
	admin.DELETE("/categories/:id/subcategories/:subId", h.DeleteSubcategory)

	admin.GET("/users", h.AdminListUsers)
	admin.PATCH("/users/:id", h.AdminUpdateUser)

	admin.GET("/orders", h.AdminListOrders)
	admin.GET("/orders/:id", h.AdminGetOrder)
	admin.PATCH("/orders/:id/status", h.AdminUpdateOrderStatus)
	admin.PATCH("/orders/:id/payment", h.AdminUpdatePaymentStatus)

	admin.GET("/reviews", h.AdminListReviews)
	admin.PATCH("/reviews/:id/approval", h.SetReviewApproval)

	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/analytics/sales", h.SalesOverTime)
	admin.GET("/analytics/orders-by-status", h.OrdersByStatus)
	admin.GET("/analytics/top-products", h.TopProducts)
	admin.GET("/analytics/low-stock", h.LowStock)
	admin.GET("/analytics/categories", h.CategoryBreakdown)
}
