package service

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"mime"    // Content type from extension

	"jacket_marketplace/internal/domain"  // Importing domain models
	"jacket_marketplace/internal/storage" // Photo storage
	"jacket_marketplace/internal/utils"   // Photo helpers

	"github.com/google/uuid"     // Object names
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// JacketInput is the payload for creating or editing a listing
type JacketInput struct {
	Photo       string            // Base64 encoded image
	Extension   string            // Image file extension
	Brand       string            // Brand name
	Description string            // Free text
	Size        domain.JacketSize // Size key
	Price       int64             // Ignored on edit
}

// JacketService manages the jacket catalog
type JacketService struct {
	db     *gorm.DB
	photos storage.PhotoStore
}

// NewJacketService wires the catalog use cases
func NewJacketService(db *gorm.DB, photos storage.PhotoStore) *JacketService {
	return &JacketService{db: db, photos: photos}
}

// List returns every jacket, or only the user's own jackets of brand when brand is set
func (s *JacketService) List(ctx context.Context, userID uint, brand string) ([]domain.Jacket, error) {
	query := s.db.WithContext(ctx).Order("id")
	if brand != "" {
		query = query.Where("creator_id = ? AND brand = ?", userID, brand)
	}
	var jackets []domain.Jacket
	if err := query.Find(&jackets).Error; err != nil {
		return nil, fmt.Errorf("list jackets: %w", err)
	}
	return jackets, nil
}

// uploadPhoto decodes the payload, stores it under a fresh name and returns its hash and URL
func (s *JacketService) uploadPhoto(ctx context.Context, encoded, extension string) (string, string, error) {
	data, err := utils.DecodePhoto(encoded)
	if err != nil {
		return "", "", err
	}
	ext := utils.NormalizeExtension(extension)
	contentType := mime.TypeByExtension("." + ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := s.photos.Upload(ctx, uuid.NewString()+"."+ext, contentType, data)
	if err != nil {
		return "", "", fmt.Errorf("upload photo: %w", err)
	}
	return utils.HashPhoto(data), url, nil
}

// removePhoto deletes a stored photo; failures are only logged
func (s *JacketService) removePhoto(ctx context.Context, url string) {
	if err := s.photos.Delete(ctx, utils.PhotoKeyFromURL(url)); err != nil {
		logrus.WithFields(logrus.Fields{
			"photo_url": url,
			"error":     err.Error(),
		}).Warn("Failed to delete photo")
	}
}

// Create uploads the photo and lists a new jacket owned by creator
func (s *JacketService) Create(ctx context.Context, creator domain.User, in JacketInput) (*domain.Jacket, error) {
	if creator.Role != domain.RoleCreator {
		return nil, domain.ErrForbidden
	}
	hash, url, err := s.uploadPhoto(ctx, in.Photo, in.Extension)
	if err != nil {
		return nil, err
	}
	jacket := domain.Jacket{
		PhotoURL:    url,
		Brand:       in.Brand,
		Description: in.Description,
		Size:        in.Size,
		Price:       in.Price,
		CreatorID:   creator.ID,
		PicHash:     hash,
	}
	if jacket.Size == "" {
		jacket.Size = domain.SizeM // Default size
	}
	if err := s.db.WithContext(ctx).Create(&jacket).Error; err != nil {
		s.removePhoto(ctx, url) // Do not leave an orphaned object behind
		return nil, fmt.Errorf("create jacket: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"creator_id": creator.ID,
		"jacket_id":  jacket.ID,
		"price":      jacket.Price,
	}).Info("Jacket created")
	return &jacket, nil
}

// Edit updates brand, description and size, replacing the photo when its content changed
func (s *JacketService) Edit(ctx context.Context, userID, jacketID uint, in JacketInput) (*domain.Jacket, error) {
	jacket, err := findJacket(s.db.WithContext(ctx), jacketID)
	if err != nil {
		return nil, err
	}
	if jacket.CreatorID != userID {
		return nil, fmt.Errorf("jacket %d: %w", jacketID, domain.ErrForbidden)
	}

	data, err := utils.DecodePhoto(in.Photo)
	if err != nil {
		return nil, err
	}
	oldURL := ""
	if hash := utils.HashPhoto(data); hash != jacket.PicHash {
		_, url, err := s.uploadPhoto(ctx, in.Photo, in.Extension)
		if err != nil {
			return nil, err
		}
		oldURL = jacket.PhotoURL
		jacket.PicHash = hash
		jacket.PhotoURL = url
	}

	jacket.Brand = in.Brand
	jacket.Description = in.Description
	if in.Size != "" {
		jacket.Size = in.Size
	}
	if err := s.db.WithContext(ctx).Model(jacket).Select("brand", "description", "size", "pic_hash", "photo_url").Updates(jacket).Error; err != nil {
		if oldURL != "" {
			s.removePhoto(ctx, jacket.PhotoURL) // New upload is not referenced by any row
		}
		return nil, fmt.Errorf("update jacket %d: %w", jacketID, err)
	}
	if oldURL != "" {
		s.removePhoto(ctx, oldURL)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":       userID,
		"jacket_id":     jacketID,
		"photo_changed": oldURL != "",
	}).Info("Jacket updated")
	return jacket, nil
}

// Delete removes a jacket owned by userID, detaching it from all carts first.
// Jackets that do not exist or belong to someone else are domain.ErrNotFound.
func (s *JacketService) Delete(ctx context.Context, userID, jacketID uint) error {
	var jacket domain.Jacket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND creator_id = ?", jacketID, userID).First(&jacket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("jacket %d of user %d: %w", jacketID, userID, domain.ErrNotFound)
			}
			return err
		}
		if err := detachJacket(tx, jacket); err != nil {
			return err
		}
		return tx.Delete(&jacket).Error
	})
	if err != nil {
		return err
	}
	s.removePhoto(ctx, jacket.PhotoURL)
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"jacket_id": jacketID,
	}).Info("Jacket deleted")
	return nil
}
