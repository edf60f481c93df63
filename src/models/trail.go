package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrailLog records every status change of a booking.
type TrailLog struct {
	ID         uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	BookingID  uint      `gorm:"index;not null" json:"bookingId"`
	Type       string    `gorm:"size:32;not null" json:"type"`
	FromStatus string    `gorm:"size:32" json:"from"`
	ToStatus   string    `gorm:"size:32" json:"to"`
	Initiator  string    `gorm:"size:64" json:"initiator"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (t *TrailLog) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
