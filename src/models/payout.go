package models

import (
	"errors"
	"starcall/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLedgerAppendOnly = errors.New("payout ledger entries cannot be changed")

// Payout is one row of the payout ledger. Rows are only ever inserted.
type Payout struct {
	ID             uuid.UUID          `gorm:"primarykey;type:uuid" json:"id"`
	BookingID      uint               `gorm:"index;not null" json:"bookingId"`
	CelebrityID    uint               `gorm:"index;not null" json:"celebrityId"`
	Amount         float64            `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency       string             `gorm:"size:3;not null" json:"currency"`
	TransferID     *string            `gorm:"index" json:"transferId,omitempty"`
	IdempotencyKey string             `gorm:"uniqueIndex;size:96;not null" json:"-"`
	Status         types.PayoutStatus `gorm:"size:16;index;not null" json:"status"`
	ProcessedAt    *time.Time         `json:"processedAt,omitempty"`
	FailureReason  *string            `json:"failureReason,omitempty"`
	Metadata       types.JSONB        `gorm:"type:jsonb" json:"metadata,omitempty"`

	Booking   *Booking   `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Celebrity *Celebrity `gorm:"foreignKey:CelebrityID" json:"-"`

	types.Timestamps
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Payout) BeforeUpdate(tx *gorm.DB) error {
	return ErrLedgerAppendOnly
}

func (p *Payout) BeforeDelete(tx *gorm.DB) error {
	return ErrLedgerAppendOnly
}
