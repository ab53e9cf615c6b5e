package api

import (
	"jacket_marketplace/internal/domain"     // Importing domain models
	"jacket_marketplace/internal/middleware" // Custom package for middleware
	"jacket_marketplace/internal/service"    // Use cases
	"time"                                   // CORS preflight cache

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps holds everything the routes need
type Deps struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Users          *service.UserService
	Jackets        *service.JacketService
	Carts          *service.CartService
	JWTSecret      string
	CORSOrigins    []string // Empty disables CORS headers
	TrustedProxies []string
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d Deps) (*gin.Engine, error) {
	useJSONFieldNames() // Report json names in validation errors

	r := gin.Default() // Gin router instance
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Users, d.Redis)) // Registration endpoint
	auth.POST("/login", LoginHandler(d.Users))                // Login endpoint

	// Everything else needs a valid token and an existing user
	authed := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(d.JWTSecret),
		middleware.CurrentUserMiddleware(d.Users),
	}

	// Jacket routes
	jackets := r.Group("/jacket", authed...)
	jackets.GET("", ListJacketsHandler(d.Jackets, d.Redis))                                               // Catalog
	jackets.POST("", middleware.RequireRole(domain.RoleCreator), CreateJacketHandler(d.Jackets, d.Redis)) // New listing
	jackets.PUT("/:id", EditJacketHandler(d.Jackets, d.Redis))                                            // Owner only
	jackets.DELETE("/:id", DeleteJacketHandler(d.Jackets, d.Redis))                                       // Owner only

	// Shopping cart routes
	cart := r.Group("/shopping_cart", authed...)
	cart.GET("", GetCartHandler(d.Carts))            // Current cart
	cart.PUT("", AddToCartHandler(d.Carts))          // Add jacket
	cart.DELETE("", RemoveFromCartHandler(d.Carts))  // Remove jacket
	cart.POST("", PurchaseHandler(d.Carts, d.Redis)) // Checkout

	// Admin routes (protected, admin only)
	admin := r.Group("/admin", authed...)
	admin.Use(middleware.AdminOnlyMiddleware())
	admin.GET("/users", ListUsersHandler(d.DB, d.Redis))               // List users endpoint
	admin.GET("/transactions", ListTransactionsHandler(d.DB, d.Redis)) // List transactions endpoint

	return r, nil
}
