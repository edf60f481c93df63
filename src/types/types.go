package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Role string

const (
	ROLE_CUSTOMER  Role = "customer"
	ROLE_CELEBRITY Role = "celebrity"
	ROLE_ADMIN     Role = "admin"
)

type CelebrityStatus string

const (
	CELEBRITY_DRAFT    CelebrityStatus = "draft"
	CELEBRITY_ACTIVE   CelebrityStatus = "active"
	CELEBRITY_DISABLED CelebrityStatus = "disabled"
)

// BookingStatus is the fulfilment status of an order.
type BookingStatus string

const (
	BOOKING_PENDING_APPROVAL BookingStatus = "PENDING_APPROVAL"
	BOOKING_TRANSFER_PENDING BookingStatus = "TRANSFER_PENDING"
	BOOKING_COMPLETED        BookingStatus = "COMPLETED"
	BOOKING_CANCELLED        BookingStatus = "CANCELLED"
	BOOKING_REFUNDED         BookingStatus = "REFUNDED"
)

// ApprovalStatus tracks the customer's verdict on the delivered video.
type ApprovalStatus string

const (
	APPROVAL_PENDING            ApprovalStatus = "PENDING_APPROVAL"
	APPROVAL_APPROVED           ApprovalStatus = "APPROVED"
	APPROVAL_DECLINED           ApprovalStatus = "DECLINED"
	APPROVAL_REVISION_REQUESTED ApprovalStatus = "REVISION_REQUESTED"
)

type TipStatus string

const (
	TIP_PENDING   TipStatus = "PENDING"
	TIP_COMPLETED TipStatus = "COMPLETED"
	TIP_FAILED    TipStatus = "FAILED"
)

type PayoutStatus string

const (
	PAYOUT_COMPLETED PayoutStatus = "COMPLETED"
	PAYOUT_PENDING   PayoutStatus = "PENDING"
	PAYOUT_FAILED    PayoutStatus = "FAILED"
)

type Metadata map[string]any

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type OrderNumberParams struct {
	OrderNumber string `uri:"orderNumber" binding:"required,ordernumber"`
}

type SlugParams struct {
	Slug string `uri:"slug" binding:"required"`
}

type ApproveOrderRequestBody struct {
	OrderNumber string   `json:"orderNumber" binding:"required,ordernumber"`
	TipAmount   *float64 `json:"tipAmount" binding:"omitempty,money,lte=99999999.99"`
	TipMessage  *string  `json:"tipMessage" binding:"omitempty,max=500"`
	Rating      *int     `json:"rating" binding:"omitempty,min=1,max=5"`
	ReviewText  *string  `json:"reviewText" binding:"omitempty,max=2000"`
}

type DeclineOrderRequestBody struct {
	OrderNumber string  `json:"orderNumber" binding:"required,ordernumber"`
	Reason      *string `json:"reason" binding:"omitempty,max=2000"`
}

type OrderStatusQuery struct {
	OrderNumber string `form:"orderNumber" binding:"required,ordernumber"`
}

type CreateCelebrityRequestBody struct {
	Name  string  `json:"name" binding:"required,max=120"`
	Bio   string  `json:"bio" binding:"omitempty,max=5000"`
	Price float64 `json:"price" binding:"required,gt=0,money"`
}

type ListPayoutsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=COMPLETED PENDING FAILED"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type ListCelebritiesQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

type APIResponseApproval struct {
	OrderNumber       string  `json:"orderNumber"`
	Status            string  `json:"status"`
	TotalPaid         float64 `json:"totalPaid"`
	CelebrityEarnings float64 `json:"celebrityEarnings"`
	PlatformFee       float64 `json:"platformFee"`
	TipAmount         float64 `json:"tipAmount"`
	TransferID        *string `json:"transferId,omitempty"`
	ReviewID          *uint   `json:"reviewId,omitempty"`
	TipID             *uint   `json:"tipId,omitempty"`
}

type APIResponsePayoutSummary struct {
	Status      string     `json:"status"`
	Amount      float64    `json:"amount"`
	TransferID  *string    `json:"transferId,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

type APIResponseOrderStatus struct {
	OrderNumber       string                    `json:"orderNumber"`
	Status            string                    `json:"status"`
	ApprovalStatus    string                    `json:"approvalStatus"`
	ApprovedAt        *time.Time                `json:"approvedAt,omitempty"`
	DeclinedAt        *time.Time                `json:"declinedAt,omitempty"`
	Amount            float64                   `json:"amount"`
	TipAmount         float64                   `json:"tipAmount"`
	PlatformFee       float64                   `json:"platformFee"`
	CelebrityEarnings float64                   `json:"celebrityEarnings"`
	Currency          string                    `json:"currency"`
	RevisionCount     int                       `json:"revisionCount"`
	VideoURL          *string                   `json:"videoUrl,omitempty"`
	LastTransferError *string                   `json:"lastTransferError,omitempty"`
	LatestPayout      *APIResponsePayoutSummary `json:"latestPayout,omitempty"`
}

type APIResponseDecline struct {
	OrderNumber    string `json:"orderNumber"`
	ApprovalStatus string `json:"approvalStatus"`
	RevisionCount  int    `json:"revisionCount"`
	RevisionsLeft  int    `json:"revisionsLeft"`
}

type APIResponseDelivery struct {
	OrderNumber    string `json:"orderNumber"`
	ApprovalStatus string `json:"approvalStatus"`
	RevisionCount  int    `json:"revisionCount"`
	VideoURL       string `json:"videoUrl"`
}

type APIResponseBreakdown struct {
	OrderNumber       string  `json:"orderNumber"`
	Status            string  `json:"status"`
	Currency          string  `json:"currency"`
	Amount            float64 `json:"amount"`
	TipAmount         float64 `json:"tipAmount"`
	PlatformFeeRate   float64 `json:"platformFeeRate"`
	PlatformFee       float64 `json:"platformFee"`
	CelebrityEarnings float64 `json:"celebrityEarnings"`
	Total             float64 `json:"total"`
	Settled           bool    `json:"settled"`
}

type APIResponseEarnings struct {
	CelebrityID     uint       `json:"celebrityId"`
	Currency        string     `json:"currency"`
	TotalEarnings   float64    `json:"totalEarnings"`
	TotalTips       float64    `json:"totalTips"`
	PayoutCount     int64      `json:"payoutCount"`
	CompletedOrders int64      `json:"completedOrders"`
	PendingOrders   int64      `json:"pendingOrders"`
	LastPayoutAt    *time.Time `json:"lastPayoutAt,omitempty"`
}

type APIResponsePayout struct {
	ID          string     `json:"id"`
	OrderNumber string     `json:"orderNumber"`
	CelebrityID uint       `json:"celebrityId"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	TransferID  *string    `json:"transferId,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

type APIResponseCelebrity struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	Bio            string  `json:"bio,omitempty"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	PayoutsEnabled bool    `json:"payoutsEnabled"`
}

type PaymentApprovedNotice struct {
	OrderNumber    string
	CelebrityName  string
	CelebrityEmail string
	CustomerName   string
	Earnings       float64
	TipAmount      float64
	Currency       string
	Rating         *int
}

type RevisionRequestedNotice struct {
	OrderNumber    string
	CelebrityName  string
	CelebrityEmail string
	Reason         string
	RevisionCount  int
	Final          bool
}
