package models

import (
	"starcall/src/types"
)

type User struct {
	ID               uint        `gorm:"primarykey" json:"id"`
	Name             string      `json:"name,omitempty"`
	Email            string      `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Role             types.Role  `gorm:"size:16;not null" json:"role,omitempty"`
	UID              string      `gorm:"index" json:"uid,omitempty"`
	StripeCustomerID *string     `json:"-"`
	Metadata         types.JSONB `gorm:"type:jsonb" json:"metadata,omitempty"`

	Bookings  []Booking  `gorm:"foreignKey:CustomerID" json:"bookings,omitempty"`
	Celebrity *Celebrity `gorm:"foreignKey:UserID" json:"celebrity,omitempty"`

	types.Timestamps
}

func (u *User) IsAdmin() bool {
	return u.Role == types.ROLE_ADMIN
}
