package domain

// ShoppingCart Model
//
// Amount caches the sum of the member jackets' prices.
type ShoppingCart struct {
	ID      uint     `gorm:"primaryKey" json:"id"`                            // Primary key
	UserID  uint     `gorm:"uniqueIndex;not null" json:"user_id"`             // One cart per user
	User    *User    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`           // Owner
	Amount  int64    `gorm:"not null;default:0" json:"amount"`                // Running total
	Jackets []Jacket `gorm:"many2many:shopping_cart_jackets;" json:"jackets"` // Selected jackets
}

// CartJacketsTable is the join table between carts and jackets
const CartJacketsTable = "shopping_cart_jackets"

// IsEmpty reports whether the cart holds no jackets
func (c *ShoppingCart) IsEmpty() bool {
	return len(c.Jackets) == 0
}

// Contains reports whether the jacket is a member of the cart
func (c *ShoppingCart) Contains(jacketID uint) bool {
	for _, j := range c.Jackets {
		if j.ID == jacketID {
			return true
		}
	}
	return false
}

// Total sums the prices of the member jackets
func (c *ShoppingCart) Total() int64 {
	var total int64
	for _, j := range c.Jackets {
		total += j.Price
	}
	return total
}
