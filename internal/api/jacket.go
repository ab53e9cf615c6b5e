package api

import (
	"jacket_marketplace/internal/domain"     // Importing domain models
	"jacket_marketplace/internal/middleware" // Current user
	"jacket_marketplace/internal/service"    // Catalog use cases
	"jacket_marketplace/internal/utils"      // Utility functions
	"net/http"                               // HTTP status codes
	"strconv"                                // String conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// EditJacketRequest represents the editable part of a listing
type EditJacketRequest struct {
	Photo       string `json:"photo" binding:"required"`                // Base64 encoded image
	Extension   string `json:"extension" binding:"required,max=10"`     // Image file extension
	Brand       string `json:"brand" binding:"required,max=100"`        // Brand name
	Description string `json:"description" binding:"required,max=1000"` // Free text
	Size        string `json:"size" binding:"omitempty,oneof=xs s m l"` // Defaults to m
}

// JacketRequest represents a new listing
type JacketRequest struct {
	EditJacketRequest
	Price *int64 `json:"price" binding:"required,gte=0"` // Price in integer units
}

// JacketResponse is a jacket with its readable size
type JacketResponse struct {
	domain.Jacket
	SizeLabel string `json:"size_label"` // e.g. Medium
}

func toJacketResponses(jackets []domain.Jacket) []JacketResponse {
	resp := make([]JacketResponse, len(jackets))
	for i, j := range jackets {
		resp[i] = JacketResponse{Jacket: j, SizeLabel: j.Size.Label()}
	}
	return resp
}

// parseID reads the :id path parameter
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ListJacketsHandler returns the catalog, or the caller's own jackets of ?brand=
func ListJacketsHandler(jackets *service.JacketService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := middleware.CurrentUser(c) // Authenticated user
		brand := c.Query("brand")         // Optional brand filter
		var resp []JacketResponse
		// Only the unfiltered catalog is shared between users, so only it is cached
		if brand == "" {
			if found, err := utils.GetCache(ctx, rdb, utils.JacketsCacheKey, &resp); err == nil && found {
				writeJackets(c, resp)
				return
			}
		}
		list, err := jackets.List(ctx, user.ID, brand)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"brand":   brand,       // Brand filter
				"error":   err.Error(), // Error message
			}).Error("Failed to list jackets")
			writeError(c, err, "")
			return
		}
		resp = toJacketResponses(list)
		if brand == "" {
			_ = utils.SetCache(ctx, rdb, utils.JacketsCacheKey, resp, utils.CacheTTL) // Cache for later requests
		}
		writeJackets(c, resp)
	}
}

func writeJackets(c *gin.Context, resp []JacketResponse) {
	if len(resp) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No jackets yet"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateJacketHandler lists a new jacket for the calling creator
func CreateJacketHandler(jackets *service.JacketService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Authenticated creator
		var req JacketRequest             // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		jacket, err := jackets.Create(c.Request.Context(), *user, service.JacketInput{
			Photo:       req.Photo,
			Extension:   req.Extension,
			Brand:       req.Brand,
			Description: req.Description,
			Size:        domain.JacketSize(req.Size),
			Price:       *req.Price,
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // Creator ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create jacket")
			writeError(c, err, "")
			return
		}
		invalidateJackets(c.Request.Context(), rdb) // Catalog changed
		c.JSON(http.StatusCreated, JacketResponse{Jacket: *jacket, SizeLabel: jacket.Size.Label()})
	}
}

// EditJacketHandler updates a jacket owned by the caller
func EditJacketHandler(jackets *service.JacketService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Authenticated user
		id, ok := parseID(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Jacket not found"})
			return
		}
		var req EditJacketRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		jacket, err := jackets.Edit(c.Request.Context(), user.ID, id, service.JacketInput{
			Photo:       req.Photo,
			Extension:   req.Extension,
			Brand:       req.Brand,
			Description: req.Description,
			Size:        domain.JacketSize(req.Size),
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":   user.ID,     // User ID
				"jacket_id": id,          // Jacket ID
				"error":     err.Error(), // Error message
			}).Warn("Failed to edit jacket")
			writeError(c, err, "Jacket not found")
			return
		}
		invalidateJackets(c.Request.Context(), rdb) // Catalog changed
		c.JSON(http.StatusOK, JacketResponse{Jacket: *jacket, SizeLabel: jacket.Size.Label()})
	}
}

// DeleteJacketHandler removes a jacket owned by the caller
func DeleteJacketHandler(jackets *service.JacketService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Authenticated user
		id, ok := parseID(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Jacket not found"})
			return
		}
		if err := jackets.Delete(c.Request.Context(), user.ID, id); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":   user.ID,     // User ID
				"jacket_id": id,          // Jacket ID
				"error":     err.Error(), // Error message
			}).Warn("Failed to delete jacket")
			writeError(c, err, "Jacket not found")
			return
		}
		invalidateJackets(c.Request.Context(), rdb) // Catalog changed
		c.JSON(http.StatusOK, gin.H{"message": "Jacket deleted"})
	}
}
