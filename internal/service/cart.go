// Package service holds the marketplace use cases on top of gorm.
package service

import (
	"context"       // Request scoped cancellation
	"encoding/json" // Funding payload validation
	"errors"        // Error inspection
	"fmt"           // Error wrapping

	"jacket_marketplace/internal/config"  // Payout currencies
	"jacket_marketplace/internal/domain"  // Importing domain models
	"jacket_marketplace/internal/payment" // Payment gateway
	"jacket_marketplace/internal/utils"   // Credential vault

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/datatypes"          // JSON column type
	"gorm.io/gorm"               // GORM ORM library
)

var errCartEmpty = errors.New("cart is empty")

// CartService manages shopping carts and checkout
type CartService struct {
	db       *gorm.DB
	crypto   *utils.CryptoHelper
	gateways payment.Factory
	wise     config.WiseConfig
}

// NewCartService wires the cart use cases
func NewCartService(db *gorm.DB, crypto *utils.CryptoHelper, gateways payment.Factory, wise config.WiseConfig) *CartService {
	return &CartService{db: db, crypto: crypto, gateways: gateways, wise: wise}
}

// jacketsByID keeps cart contents in a stable order
func jacketsByID(db *gorm.DB) *gorm.DB {
	return db.Order("jackets.id")
}

// loadCart returns the user's cart with its jackets, creating it on first access
func loadCart(tx *gorm.DB, userID uint) (*domain.ShoppingCart, error) {
	var cart domain.ShoppingCart
	if err := tx.Where(domain.ShoppingCart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, fmt.Errorf("get cart for user %d: %w", userID, err)
	}
	if err := tx.Preload("Jackets", jacketsByID).First(&cart, cart.ID).Error; err != nil {
		return nil, fmt.Errorf("load cart %d: %w", cart.ID, err)
	}
	return &cart, nil
}

// findJacket loads a jacket or reports domain.ErrNotFound
func findJacket(tx *gorm.DB, jacketID uint) (*domain.Jacket, error) {
	var jacket domain.Jacket
	if err := tx.First(&jacket, jacketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("jacket %d: %w", jacketID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load jacket %d: %w", jacketID, err)
	}
	return &jacket, nil
}

// detachJacket removes a jacket from every cart holding it and lowers those carts' totals
func detachJacket(tx *gorm.DB, jacket domain.Jacket) error {
	var cartIDs []uint
	if err := tx.Table(domain.CartJacketsTable).Where("jacket_id = ?", jacket.ID).Pluck("shopping_cart_id", &cartIDs).Error; err != nil {
		return fmt.Errorf("find carts of jacket %d: %w", jacket.ID, err)
	}
	if len(cartIDs) == 0 {
		return nil // Not in any cart
	}
	if err := tx.Model(&domain.ShoppingCart{}).Where("id IN ?", cartIDs).
		Update("amount", gorm.Expr("amount - ?", jacket.Price)).Error; err != nil {
		return fmt.Errorf("update cart totals: %w", err)
	}
	if err := tx.Exec("DELETE FROM "+domain.CartJacketsTable+" WHERE jacket_id = ?", jacket.ID).Error; err != nil {
		return fmt.Errorf("detach jacket %d: %w", jacket.ID, err)
	}
	return nil
}

// setTotal writes a cart's amount by id. The loaded cart is never passed as the
// model so its preloaded jackets are not saved back.
func setTotal(tx *gorm.DB, cartID uint, value any) error {
	return tx.Model(&domain.ShoppingCart{}).Where("id = ?", cartID).Update("amount", value).Error
}

// GetCart returns the user's cart, creating it lazily
func (s *CartService) GetCart(ctx context.Context, userID uint) (*domain.ShoppingCart, error) {
	return loadCart(s.db.WithContext(ctx), userID)
}

// AddJacket puts a jacket in the cart and adds its price to the total.
// A missing jacket or one already in the cart is domain.ErrNotFound.
func (s *CartService) AddJacket(ctx context.Context, userID, jacketID uint) (*domain.ShoppingCart, error) {
	var cart *domain.ShoppingCart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadCart(tx, userID)
		if err != nil {
			return err
		}
		jacket, err := findJacket(tx, jacketID)
		if err != nil {
			return err
		}
		if c.Contains(jacket.ID) {
			return fmt.Errorf("jacket %d already in cart %d: %w", jacket.ID, c.ID, domain.ErrNotFound)
		}
		if err := tx.Model(&domain.ShoppingCart{ID: c.ID}).Association("Jackets").Append(jacket); err != nil {
			return fmt.Errorf("append jacket: %w", err)
		}
		if err := setTotal(tx, c.ID, gorm.Expr("amount + ?", jacket.Price)); err != nil {
			return fmt.Errorf("update total: %w", err)
		}
		cart, err = loadCart(tx, userID) // Reload with the new total
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,      // Cart owner
		"jacket_id": jacketID,    // Added jacket
		"amount":    cart.Amount, // New total
	}).Info("Jacket added to cart")
	return cart, nil
}

// RemoveJacket takes a jacket out of the cart and subtracts its price.
// A missing jacket or one not in the cart is domain.ErrNotFound.
func (s *CartService) RemoveJacket(ctx context.Context, userID, jacketID uint) (*domain.ShoppingCart, error) {
	var cart *domain.ShoppingCart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadCart(tx, userID)
		if err != nil {
			return err
		}
		jacket, err := findJacket(tx, jacketID)
		if err != nil {
			return err
		}
		if !c.Contains(jacket.ID) {
			return fmt.Errorf("jacket %d not in cart %d: %w", jacket.ID, c.ID, domain.ErrNotFound)
		}
		if err := tx.Model(&domain.ShoppingCart{ID: c.ID}).Association("Jackets").Delete(jacket); err != nil {
			return fmt.Errorf("remove jacket: %w", err)
		}
		if err := setTotal(tx, c.ID, gorm.Expr("amount - ?", jacket.Price)); err != nil {
			return fmt.Errorf("update total: %w", err)
		}
		cart, err = loadCart(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"jacket_id": jacketID,
		"amount":    cart.Amount,
	}).Info("Jacket removed from cart")
	return cart, nil
}

// Purchase pays every jacket in the buyer's cart to its creator, records one
// transaction per jacket, deletes the sold jackets and empties the cart.
// An empty cart returns false without side effects. Any failure rolls the
// whole checkout back and is reported as domain.ErrPayout.
func (s *CartService) Purchase(ctx context.Context, buyer domain.User) (bool, error) {
	cart, err := s.GetCart(ctx, buyer.ID)
	if err != nil {
		return false, err
	}
	if cart.IsEmpty() {
		return false, nil // Nothing to buy
	}

	var transactions []domain.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadCart(tx, buyer.ID) // Contents as seen by this unit of work
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return errCartEmpty
		}
		cart = c
		for _, jacket := range cart.Jackets {
			t, err := s.purchaseJacket(ctx, tx, buyer, cart.ID, jacket)
			if err != nil {
				return fmt.Errorf("jacket %d: %w", jacket.ID, err)
			}
			transactions = append(transactions, t)
		}
		// Clear the cart membership and zero the total
		if err := tx.Exec("DELETE FROM "+domain.CartJacketsTable+" WHERE shopping_cart_id = ?", cart.ID).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return setTotal(tx, cart.ID, 0) // Commit transaction
	})
	if errors.Is(err, errCartEmpty) {
		return false, nil // Emptied concurrently
	}
	if err != nil {
		// The cause stays in the log, the caller only learns that the payout failed
		logrus.WithFields(logrus.Fields{
			"user_id": buyer.ID,    // Buyer
			"cart_id": cart.ID,     // Cart
			"amount":  cart.Amount, // Cart total
			"items":   len(cart.Jackets),
			"error":   err.Error(), // Error message
		}).Error("Purchase failed")
		return false, domain.ErrPayout
	}

	for _, t := range transactions {
		logrus.WithFields(logrus.Fields{
			"user_id":     buyer.ID,
			"creator_id":  t.CreatorID,
			"jacket_id":   t.JacketID,
			"transfer_id": t.TransferID,
			"amount":      t.Amount,
		}).Info("Payout transaction")
	}
	return true, nil
}

// purchaseJacket pays one jacket to its creator inside the checkout transaction
func (s *CartService) purchaseJacket(ctx context.Context, tx *gorm.DB, buyer domain.User, cartID uint, jacket domain.Jacket) (domain.Transaction, error) {
	var creator domain.User
	if err := tx.First(&creator, jacket.CreatorID).Error; err != nil {
		return domain.Transaction{}, fmt.Errorf("load creator %d: %w", jacket.CreatorID, err)
	}
	apiKey, err := s.crypto.Decrypt(creator.WiseKey)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("creator %d payout key: %w", creator.ID, err)
	}

	res, err := payment.Payout(ctx, s.gateways(apiKey), payment.PayoutRequest{
		SourceCurrency: s.wise.SourceCurrency,
		TargetCurrency: s.wise.TargetCurrency,
		Amount:         jacket.Price,
		RecipientName:  creator.FullName(),
		RecipientIBAN:  creator.IBAN,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	t := domain.Transaction{
		QuoteID:         res.QuoteID,
		RecipientID:     res.RecipientID,
		TransferID:      res.TransferID,
		TargetAccountID: res.CustomerTransactionID,
		Amount:          jacket.Price,
		ShoppingCartID:  cartID,
		JacketID:        jacket.ID,
		BuyerID:         buyer.ID,
		CreatorID:       creator.ID,
	}
	if json.Valid(res.Funding) {
		t.Funding = datatypes.JSON(res.Funding)
	}
	if err := tx.Create(&t).Error; err != nil {
		return domain.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	if err := detachJacket(tx, jacket); err != nil {
		return domain.Transaction{}, err
	}
	if err := tx.Delete(&domain.Jacket{}, jacket.ID).Error; err != nil {
		return domain.Transaction{}, fmt.Errorf("delete jacket: %w", err)
	}
	return t, nil
}
