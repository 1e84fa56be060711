package university

import "gorm.io/gorm"

// University is a participating institution. Players and teams reference it.
type University struct {
	gorm.Model
	Name         string `gorm:"uniqueIndex;size:256;not null" json:"name"`
	Location     string `gorm:"size:256" json:"location"`
	Address      string `gorm:"size:512" json:"address,omitempty"`
	ContactEmail string `gorm:"size:256" json:"contact_email,omitempty"`
	ContactPhone string `gorm:"size:32" json:"contact_phone,omitempty"`
	LogoURL      string `gorm:"size:512" json:"logo_url,omitempty"`
}
