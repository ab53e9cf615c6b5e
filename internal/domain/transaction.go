package domain

import (
	"time"

	"gorm.io/datatypes" // JSON column type
)

// Transaction Model
//
// One row per purchased jacket, written only by checkout.
type Transaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`                      // Primary key
	QuoteID         string         `gorm:"size:64;not null" json:"quote_id"`          // Provider quote
	RecipientID     string         `gorm:"size:64;not null" json:"recipient_id"`      // Provider recipient account
	TransferID      string         `gorm:"size:64;not null" json:"transfer_id"`       // Provider transfer
	TargetAccountID string         `gorm:"size:36;not null" json:"target_account_id"` // Customer transaction id sent to the provider
	Amount          int64          `gorm:"not null" json:"amount"`                    // Amount paid out
	ShoppingCartID  uint           `gorm:"not null;index" json:"shopping_cart_id"`    // Originating cart
	JacketID        uint           `gorm:"not null" json:"jacket_id"`                 // Purchased jacket, deleted afterwards
	BuyerID         uint           `gorm:"not null;index" json:"buyer_id"`            // Paying user
	CreatorID       uint           `gorm:"not null;index" json:"creator_id"`          // Receiving creator
	Funding         datatypes.JSON `json:"funding,omitempty"`                         // Raw fund response
	CreatedAt       time.Time      `json:"created_at"`                                // Timestamp of creation
}
