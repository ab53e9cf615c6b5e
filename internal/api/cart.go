package api

import (
	"errors"                                 // Error inspection
	"jacket_marketplace/internal/domain"     // Importing domain models
	"jacket_marketplace/internal/middleware" // Current user
	"jacket_marketplace/internal/service"    // Cart use cases
	"net/http"                               // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// CartRequest names the jacket to add or remove
type CartRequest struct {
	JacketID uint `json:"jacket_id" binding:"required"` // Target jacket
}

// GetCartHandler returns the caller's shopping cart
func GetCartHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Authenticated user
		cart, err := carts.GetCart(c.Request.Context(), user.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to load cart")
			writeError(c, err, "")
			return
		}
		if cart.IsEmpty() {
			c.JSON(http.StatusOK, gin.H{"message": "Your shopping cart is empty"})
			return
		}
		c.JSON(http.StatusOK, cart) // Return the cart with its jackets
	}
}

// AddToCartHandler puts a jacket into the caller's cart
func AddToCartHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Authenticated user
		var req CartRequest               // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		cart, err := carts.AddJacket(c.Request.Context(), user.ID, req.JacketID)
		if err != nil {
			writeError(c, err, "Jacket not found or already in the cart")
			return
		}
		c.JSON(http.StatusOK, cart) // Return the updated cart
	}
}

// RemoveFromCartHandler takes a jacket out of the caller's cart
func RemoveFromCartHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Authenticated user
		var req CartRequest               // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		cart, err := carts.RemoveJacket(c.Request.Context(), user.ID, req.JacketID)
		if err != nil {
			writeError(c, err, "Jacket not found in the cart")
			return
		}
		c.JSON(http.StatusOK, cart) // Return the updated cart
	}
}

// PurchaseHandler checks out the caller's cart, paying every creator
func PurchaseHandler(carts *service.CartService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := middleware.CurrentUser(c) // Authenticated buyer
		ok, err := carts.Purchase(ctx, *user)
		if err != nil {
			if errors.Is(err, domain.ErrPayout) {
				// Cause is already logged by the checkout
				c.JSON(http.StatusBadRequest, gin.H{"error": "Payout credential invalid"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // Buyer ID
				"error":   err.Error(), // Error message
			}).Error("Purchase failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Purchase failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Purchase failed"}) // Empty cart
			return
		}
		// Sold jackets left the catalog and new transactions exist
		invalidateJackets(ctx, rdb)
		invalidateTransactions(ctx, rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Purchase successful"})
	}
}
