package models

import (
	"starcall/src/types"
)

type Celebrity struct {
	ID              uint                  `gorm:"primarykey" json:"id"`
	UserID          uint                  `gorm:"uniqueIndex;not null" json:"userId"`
	Name            string                `gorm:"not null" json:"name"`
	Slug            string                `gorm:"uniqueIndex;size:160;not null" json:"slug"`
	Bio             string                `json:"bio,omitempty"`
	Price           float64               `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency        string                `gorm:"size:3;not null" json:"currency"`
	StripeAccountID *string               `gorm:"index" json:"-"`
	PayoutsEnabled  bool                  `gorm:"not null" json:"payoutsEnabled"`
	Status          types.CelebrityStatus `gorm:"size:16;not null" json:"status"`
	Metadata        types.JSONB           `gorm:"type:jsonb" json:"metadata,omitempty"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bookings []Booking `gorm:"foreignKey:CelebrityID" json:"-"`

	types.Timestamps
}

// HasPayoutAccount reports whether funds can be routed to this celebrity.
func (c *Celebrity) HasPayoutAccount() bool {
	return c.StripeAccountID != nil && *c.StripeAccountID != ""
}
