package models

import (
	"errors"
	"fmt"
	"starcall/src/config"
	"starcall/src/types"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRevisionLimitReached = fmt.Errorf("a booking allows at most %d revisions", config.MAX_REVISIONS)

type Booking struct {
	ID                uint                 `gorm:"primarykey" json:"id"`
	OrderNumber       string               `gorm:"uniqueIndex;size:32;not null" json:"orderNumber"`
	CustomerID        uint                 `gorm:"index;not null" json:"customerId"`
	CelebrityID       uint                 `gorm:"index;not null" json:"celebrityId"`
	Instructions      string               `json:"instructions,omitempty"`
	Amount            float64              `gorm:"type:numeric(10,2);not null" json:"amount"`
	TipAmount         float64              `gorm:"type:numeric(10,2);not null" json:"tipAmount"`
	PlatformFee       float64              `gorm:"type:numeric(10,2);not null" json:"platformFee"`
	CelebrityEarnings float64              `gorm:"type:numeric(10,2);not null" json:"celebrityEarnings"`
	Currency          string               `gorm:"size:3;not null" json:"currency"`
	Status            types.BookingStatus  `gorm:"size:32;index;not null" json:"status"`
	ApprovalStatus    types.ApprovalStatus `gorm:"size:32;not null" json:"approvalStatus"`
	ApprovedAt        *time.Time           `json:"approvedAt,omitempty"`
	DeclinedAt        *time.Time           `json:"declinedAt,omitempty"`
	DeclineReason     *string              `json:"declineReason,omitempty"`
	RevisionCount     int                  `gorm:"not null;check:chk_bookings_revision_count,revision_count >= 0 AND revision_count <= 2" json:"revisionCount"`
	VideoKey          *string              `json:"-"`
	DeliveredAt       *time.Time           `json:"deliveredAt,omitempty"`

	// Transfer bookkeeping for the two-phase approval.
	TransferAttempts  int     `gorm:"not null" json:"-"`
	LastTransferError *string `json:"lastTransferError,omitempty"`
	PendingRating     *int    `json:"-"`
	PendingReview     *string `json:"-"`
	PendingTipMessage *string `json:"-"`

	Customer  *User      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Celebrity *Celebrity `gorm:"foreignKey:CelebrityID" json:"celebrity,omitempty"`
	Review    *Review    `gorm:"foreignKey:BookingID" json:"review,omitempty"`
	Tips      []Tip      `gorm:"foreignKey:BookingID" json:"tips,omitempty"`
	Payouts   []Payout   `gorm:"foreignKey:BookingID" json:"payouts,omitempty"`

	types.Timestamps
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.OrderNumber == "" {
		b.OrderNumber = NewOrderNumber()
	}
	if b.Status == "" {
		b.Status = types.BOOKING_PENDING_APPROVAL
	}
	if b.ApprovalStatus == "" {
		b.ApprovalStatus = types.APPROVAL_PENDING
	}
	return nil
}

// BeforeSave keeps the revision cap in the model so every write path obeys it.
func (b *Booking) BeforeSave(tx *gorm.DB) error {
	if b.RevisionCount < 0 || b.RevisionCount > config.MAX_REVISIONS {
		return ErrRevisionLimitReached
	}
	return nil
}

func (b *Booking) RevisionsLeft() int {
	return config.MAX_REVISIONS - b.RevisionCount
}

func (b *Booking) HasVideo() bool {
	return b.VideoKey != nil && *b.VideoKey != ""
}

// TransferIdempotencyKey is stable for a given attempt so retries of the same
// attempt never move funds twice.
func (b *Booking) TransferIdempotencyKey() string {
	return fmt.Sprintf("booking-%d-transfer-%d", b.ID, b.TransferAttempts)
}

func NewOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("SC-%s", id[:10])
}

func IsRevisionLimitError(err error) bool {
	return errors.Is(err, ErrRevisionLimitReached)
}
