package models

import (
	"starcall/src/types"
	"time"
)

type Review struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	BookingID   uint       `gorm:"uniqueIndex;not null" json:"bookingId"`
	CustomerID  uint       `gorm:"index;not null" json:"customerId"`
	CelebrityID uint       `gorm:"index;not null" json:"celebrityId"`
	Rating      int        `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment     *string    `json:"comment,omitempty"`
	Approved    bool       `gorm:"not null" json:"approved"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`

	types.Timestamps
}
