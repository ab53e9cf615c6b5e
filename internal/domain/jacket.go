package domain

import "time"

// JacketSize is the stored size key of a jacket
type JacketSize string

// Jacket sizes
const (
	SizeXS JacketSize = "xs"
	SizeS  JacketSize = "s"
	SizeM  JacketSize = "m"
	SizeL  JacketSize = "l"
)

var sizeLabels = map[JacketSize]string{
	SizeXS: "XSmall",
	SizeS:  "Small",
	SizeM:  "Medium",
	SizeL:  "Large",
}

// Label returns the human readable size, or an empty string for unknown sizes
func (s JacketSize) Label() string {
	return sizeLabels[s]
}

// Jacket Model
type Jacket struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                  // Primary key
	PhotoURL    string     `gorm:"size:255;not null" json:"photo_url"`    // Public URL of the photo
	Brand       string     `gorm:"size:100;not null;index" json:"brand"`  // Brand name
	Description string     `gorm:"type:text;not null" json:"description"` // Free text description
	Size        JacketSize `gorm:"size:2;not null;default:m" json:"size"` // Size key
	Price       int64      `gorm:"not null;default:0" json:"price"`       // Price in integer units
	CreatorID   uint       `gorm:"not null;index" json:"creator_id"`      // Foreign key to the creator
	Creator     *User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"` // Owning creator
	PicHash     string     `gorm:"size:64;not null" json:"-"`             // sha256 of the photo bytes
	CreatedAt   time.Time  `json:"created_on"`                            // Listing time
}
