package models

import "starcall/src/types"

type Tip struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	BookingID   uint            `gorm:"index;not null" json:"bookingId"`
	CustomerID  uint            `gorm:"index;not null" json:"customerId"`
	CelebrityID uint            `gorm:"index;not null" json:"celebrityId"`
	Amount      float64         `gorm:"type:numeric(10,2);not null" json:"amount"`
	Message     *string         `json:"message,omitempty"`
	Status      types.TipStatus `gorm:"size:16;not null" json:"status"`

	types.Timestamps
}
