package api

import (
	"jacket_marketplace/internal/domain"  // Importing domain models
	"jacket_marketplace/internal/service" // Account use cases
	"net/http"                            // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Request and Response structs
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=20"` // Given name
	LastName  string `json:"last_name" binding:"required,min=2,max=20"`  // Family name
	Email     string `json:"email" binding:"required,email,max=60"`      // Login, unique
	Phone     string `json:"phone" binding:"required,len=14"`            // International format
	Password  string `json:"password" binding:"required,min=8,max=20"`   // Plain password
	Role      string `json:"role" binding:"omitempty,oneof=guest creator"`
	IBAN      string `json:"iban" binding:"required,min=15,max=34"` // Payout account
	WiseKey   string `json:"wise_key" binding:"required,max=255"`   // Payout API key
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// RegisterHandler creates a new account and returns its token
func RegisterHandler(users *service.UserService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		token, err := users.Register(c.Request.Context(), service.RegisterInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Password:  req.Password,
			Role:      domain.Role(req.Role),
			IBAN:      req.IBAN,
			WiseKey:   req.WiseKey,
		})
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"email": req.Email,   // Requested email
				"error": err.Error(), // Error message
			}).Warn("Registration failed")
			writeError(c, err, "")
			return
		}
		invalidateUsers(c.Request.Context(), rdb)              // Admin listing is stale
		c.JSON(http.StatusCreated, AuthResponse{Token: token}) // Return the token
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		token, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err, "") // Wrong credentials are a 400
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token}) // Return the token
	}
}
