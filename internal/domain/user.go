package domain

import "time" // Timestamps

// Role is the permission level of a user
type Role string

// Supported roles
const (
	RoleGuest   Role = "guest"   // Buys jackets
	RoleCreator Role = "creator" // Lists jackets and receives payouts
	RoleAdmin   Role = "admin"   // Reads users and transactions
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	FirstName string    `gorm:"size:20;not null" json:"first_name"`         // First name
	LastName  string    `gorm:"size:20;not null" json:"last_name"`          // Last name
	Email     string    `gorm:"size:60;uniqueIndex;not null" json:"email"`  // Unique email
	Phone     string    `gorm:"size:14;not null" json:"phone"`              // Phone number
	Password  string    `gorm:"size:255;not null" json:"-"`                 // Hashed password
	IBAN      string    `gorm:"column:iban;size:34;not null" json:"iban"`   // Bank account for payouts
	Role      Role      `gorm:"size:10;not null;default:guest" json:"role"` // Role: guest, creator or admin
	WiseKey   string    `gorm:"size:255;not null" json:"-"`                 // Encrypted payout credential
	CreatedAt time.Time `json:"created_at"`                                 // Registration time
}

// FullName returns the name used as payout recipient
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
