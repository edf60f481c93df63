package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"starcall/src/config"
	"starcall/src/db"
	"starcall/src/lib"
	"starcall/src/lib/mailer"
	"starcall/src/models"
	"starcall/src/models/scopes"
	"starcall/src/types"
	"starcall/src/utils"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errStatusChanged means a conditional update matched no row because another
// request moved the booking first.
var errStatusChanged = errors.New("booking status changed concurrently")

func findBooking(tx *gorm.DB, orderNumber string) (*models.Booking, error) {
	var booking models.Booking
	err := tx.
		Model(&models.Booking{}).
		Scopes(scopes.WithOrderNumber(orderNumber)).
		Preload("Celebrity.User").
		Preload("Customer").
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound("Order not found")
		}
		log.Printf("[Orders] Error retrieving order %s: %s\n", orderNumber, err.Error())
		return nil, types.ErrPersistence(err)
	}
	return &booking, nil
}

func currentStatus(bookingID uint) string {
	var status string
	if err := db.GetDb().
		Model(&models.Booking{}).
		Select("status").
		Where("id = ?", bookingID).
		Scan(&status).
		Error; err != nil {
		log.Printf("[Orders] Error reading status of booking %d: %s\n", bookingID, err.Error())
	}
	return status
}

// ApproveOrder moves a delivered booking from PENDING_APPROVAL to COMPLETED and
// pays the celebrity. Every precondition is checked before anything is
// written. The booking is claimed with a conditional update into
// TRANSFER_PENDING, the transfer runs outside any transaction and a second
// transaction either completes the booking or puts it back.
func ApproveOrder(ctx context.Context, actor *Actor, body *types.ApproveOrderRequestBody) (*types.APIResponseApproval, error) {
	if !actor.authenticated() {
		return nil, types.ErrUnauthorized()
	}
	tip := 0.0
	if body.TipAmount != nil {
		tip = *body.TipAmount
	}
	if math.IsNaN(tip) || tip < 0 {
		return nil, types.ErrValidation("Invalid tip amount", "tipAmount must be zero or positive")
	}
	if tip*100 > float64(config.MAX_AMOUNT_CENTS) {
		return nil, types.ErrValidation("Invalid tip amount", "tipAmount exceeds the maximum tip")
	}
	if body.Rating != nil && (*body.Rating < 1 || *body.Rating > 5) {
		return nil, types.ErrValidation("Invalid rating", "rating must be between 1 and 5")
	}

	booking, err := findBooking(db.GetDb(), body.OrderNumber)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != actor.ID {
		return nil, types.ErrForbidden("You can only approve your own orders")
	}
	if booking.Status != types.BOOKING_PENDING_APPROVAL {
		return nil, types.ErrInvalidState(
			fmt.Sprintf("Order cannot be approved while %s", booking.Status),
			string(booking.Status),
		)
	}
	if !booking.HasVideo() {
		return nil, types.ErrInvalidState("There is no delivered video to approve", string(booking.ApprovalStatus))
	}
	if booking.Celebrity == nil || !booking.Celebrity.HasPayoutAccount() {
		return nil, types.ErrDependencyUnconfigured("Celebrity has not set up a payout account")
	}

	split, err := CalculateSplit(booking.Amount, tip, config.PlatformFeeBasisPoints())
	if err != nil {
		return nil, err
	}

	if rd := lib.GetRedisClient(); rd != nil {
		key := fmt.Sprintf("order:%s:approve", booking.OrderNumber)
		token := uuid.NewString()
		ok, err := lib.AcquireLock(ctx, rd, key, token, config.ApprovalLockTTL())
		switch {
		case err != nil:
			log.Printf("[ApproveOrder] lock unavailable for %s, relying on database guard: %s\n", booking.OrderNumber, err.Error())
		case !ok:
			return nil, types.ErrInvalidState("Order approval is already in progress", string(types.BOOKING_TRANSFER_PENDING))
		default:
			defer func() {
				if err := lib.ReleaseLock(context.Background(), rd, key, token); err != nil {
					log.Printf("[ApproveOrder] error releasing lock %s: %s\n", key, err.Error())
				}
			}()
		}
	}

	initiator := actor.label()
	err = db.GetDb().Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, types.BOOKING_PENDING_APPROVAL).
			Updates(map[string]any{
				"status":              types.BOOKING_TRANSFER_PENDING,
				"currency":            booking.Currency,
				"tip_amount":          split.TipAmount(),
				"platform_fee":        split.FeeAmount(),
				"celebrity_earnings":  split.CelebrityAmount(),
				"pending_rating":      body.Rating,
				"pending_review":      body.ReviewText,
				"pending_tip_message": body.TipMessage,
				"last_transfer_error": nil,
				"transfer_attempts":   gorm.Expr("transfer_attempts + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusChanged
		}
		return recordTrail(tx, booking.ID, "approval", string(types.BOOKING_PENDING_APPROVAL), string(types.BOOKING_TRANSFER_PENDING), initiator, nil)
	})
	if err != nil {
		if errors.Is(err, errStatusChanged) {
			status := currentStatus(booking.ID)
			return nil, types.ErrInvalidState(fmt.Sprintf("Order cannot be approved while %s", status), status)
		}
		log.Printf("[ApproveOrder] Error claiming order %s: %s\n", booking.OrderNumber, err.Error())
		return nil, types.ErrPersistence(err)
	}

	booking.Status = types.BOOKING_TRANSFER_PENDING
	booking.TipAmount = split.TipAmount()
	booking.PlatformFee = split.FeeAmount()
	booking.CelebrityEarnings = split.CelebrityAmount()
	booking.PendingRating = body.Rating
	booking.PendingReview = body.ReviewText
	booking.PendingTipMessage = body.TipMessage
	booking.TransferAttempts++

	return settleTransfer(ctx, booking, initiator)
}

// settleTransfer pays out a booking that sits in TRANSFER_PENDING and records
// the outcome. The amounts are the ones persisted when the booking was claimed.
func settleTransfer(ctx context.Context, booking *models.Booking, initiator string) (*types.APIResponseApproval, error) {
	celebrityCents := ToCents(booking.CelebrityEarnings)
	tipCents := ToCents(booking.TipAmount)
	idempotencyKey := booking.TransferIdempotencyKey()

	var transferID *string
	if celebrityCents > 0 {
		if booking.Celebrity == nil || !booking.Celebrity.HasPayoutAccount() {
			cause := errors.New("celebrity has no payout account")
			revertTransfer(booking, cause, initiator)
			return nil, types.ErrDependencyUnconfigured("Celebrity has not set up a payout account")
		}
		id, err := lib.GetPaymentsProvider().CreateTransfer(ctx, &lib.TransferInput{
			AmountCents:    celebrityCents,
			Currency:       booking.Currency,
			Destination:    *booking.Celebrity.StripeAccountID,
			Description:    fmt.Sprintf("Payout for order %s", booking.OrderNumber),
			IdempotencyKey: idempotencyKey,
			Metadata: map[string]string{
				"orderNumber": booking.OrderNumber,
				"bookingId":   strconv.FormatUint(uint64(booking.ID), 10),
				"celebrityId": strconv.FormatUint(uint64(booking.CelebrityID), 10),
			},
		})
		if err != nil {
			msg := lib.ProcessorMessage(err)
			log.Printf("[Transfer] Transfer for order %s failed: %s\n", booking.OrderNumber, msg)
			revertTransfer(booking, errors.New(msg), initiator)
			return nil, types.ErrTransferFailed(errors.New(msg))
		}
		transferID = &id
	}

	now := time.Now()
	var reviewID, tipID *uint
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, types.BOOKING_TRANSFER_PENDING).
			Updates(map[string]any{
				"status":              types.BOOKING_COMPLETED,
				"approval_status":     types.APPROVAL_APPROVED,
				"approved_at":         now,
				"pending_rating":      nil,
				"pending_review":      nil,
				"pending_tip_message": nil,
				"last_transfer_error": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusChanged
		}
		if booking.PendingRating != nil {
			review := models.Review{
				BookingID:   booking.ID,
				CustomerID:  booking.CustomerID,
				CelebrityID: booking.CelebrityID,
				Rating:      *booking.PendingRating,
				Comment:     booking.PendingReview,
				Approved:    true,
				ApprovedAt:  &now,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
			reviewID = &review.ID
		}
		if tipCents > 0 {
			tip := models.Tip{
				BookingID:   booking.ID,
				CustomerID:  booking.CustomerID,
				CelebrityID: booking.CelebrityID,
				Amount:      FromCents(tipCents),
				Message:     booking.PendingTipMessage,
				Status:      types.TIP_COMPLETED,
			}
			if err := tx.Create(&tip).Error; err != nil {
				return err
			}
			tipID = &tip.ID
		}
		if transferID != nil {
			if err := tx.Create(&models.Payout{
				BookingID:      booking.ID,
				CelebrityID:    booking.CelebrityID,
				Amount:         FromCents(celebrityCents),
				Currency:       booking.Currency,
				TransferID:     transferID,
				IdempotencyKey: idempotencyKey,
				Status:         types.PAYOUT_COMPLETED,
				ProcessedAt:    &now,
			}).Error; err != nil {
				return err
			}
		}
		return recordTrail(tx, booking.ID, "transfer", string(types.BOOKING_TRANSFER_PENDING), string(types.BOOKING_COMPLETED), initiator, transferID)
	})
	if err != nil {
		if errors.Is(err, errStatusChanged) {
			status := currentStatus(booking.ID)
			return nil, types.ErrInvalidState(fmt.Sprintf("Order cannot be approved while %s", status), status)
		}
		// funds moved but the booking stays TRANSFER_PENDING; the reconciler
		// finishes it with the same idempotency key
		log.Printf("[Transfer] Error completing order %s after transfer: %s\n", booking.OrderNumber, err.Error())
		return nil, types.ErrPersistence(err)
	}

	booking.Status = types.BOOKING_COMPLETED
	booking.ApprovalStatus = types.APPROVAL_APPROVED
	booking.ApprovedAt = &now
	notifyPaymentApproved(booking)

	return &types.APIResponseApproval{
		OrderNumber:       booking.OrderNumber,
		Status:            string(types.BOOKING_COMPLETED),
		TotalPaid:         FromCents(ToCents(booking.Amount) + tipCents),
		CelebrityEarnings: FromCents(celebrityCents),
		PlatformFee:       booking.PlatformFee,
		TipAmount:         FromCents(tipCents),
		TransferID:        transferID,
		ReviewID:          reviewID,
		TipID:             tipID,
	}, nil
}

// revertTransfer returns a booking to PENDING_APPROVAL after a failed transfer.
func revertTransfer(booking *models.Booking, cause error, initiator string) {
	msg := cause.Error()
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, types.BOOKING_TRANSFER_PENDING).
			Updates(map[string]any{
				"status":              types.BOOKING_PENDING_APPROVAL,
				"last_transfer_error": msg,
				"tip_amount":          0,
				"platform_fee":        0,
				"celebrity_earnings":  0,
				"pending_rating":      nil,
				"pending_review":      nil,
				"pending_tip_message": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusChanged
		}
		return recordTrail(tx, booking.ID, "transfer_failed", string(types.BOOKING_TRANSFER_PENDING), string(types.BOOKING_PENDING_APPROVAL), initiator, &msg)
	})
	if err != nil {
		log.Printf("[Transfer] Error reverting order %s: %s\n", booking.OrderNumber, err.Error())
		return
	}
	booking.Status = types.BOOKING_PENDING_APPROVAL
	booking.LastTransferError = &msg
}

func notifyPaymentApproved(booking *models.Booking) {
	notice := &types.PaymentApprovedNotice{
		OrderNumber: booking.OrderNumber,
		Earnings:    booking.CelebrityEarnings,
		TipAmount:   booking.TipAmount,
		Currency:    booking.Currency,
		Rating:      booking.PendingRating,
	}
	if booking.Celebrity != nil {
		notice.CelebrityName = booking.Celebrity.Name
		if booking.Celebrity.User != nil {
			notice.CelebrityEmail = booking.Celebrity.User.Email
		}
	}
	if booking.Customer != nil {
		notice.CustomerName = booking.Customer.Name
	}
	utils.SafeGo("PaymentApprovedNotice", func() {
		if err := mailer.GetNotifier().PaymentApproved(context.Background(), notice); err != nil {
			log.Printf("[Notify] Error sending approval email for %s: %s\n", notice.OrderNumber, err.Error())
		}
	})
}

func canViewOrder(actor *Actor, booking *models.Booking) bool {
	if actor.isAdmin() || booking.CustomerID == actor.ID {
		return true
	}
	return booking.Celebrity != nil && booking.Celebrity.UserID == actor.ID
}

func GetOrderStatus(ctx context.Context, actor *Actor, orderNumber string) (*types.APIResponseOrderStatus, error) {
	if !actor.authenticated() {
		return nil, types.ErrUnauthorized()
	}
	booking, err := findBooking(db.GetDb(), orderNumber)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(actor, booking) {
		return nil, types.ErrForbidden("You are not allowed to view this order")
	}

	res := &types.APIResponseOrderStatus{
		OrderNumber:       booking.OrderNumber,
		Status:            string(booking.Status),
		ApprovalStatus:    string(booking.ApprovalStatus),
		ApprovedAt:        booking.ApprovedAt,
		DeclinedAt:        booking.DeclinedAt,
		Amount:            booking.Amount,
		TipAmount:         booking.TipAmount,
		PlatformFee:       booking.PlatformFee,
		CelebrityEarnings: booking.CelebrityEarnings,
		Currency:          booking.Currency,
		RevisionCount:     booking.RevisionCount,
		LastTransferError: booking.LastTransferError,
	}

	var payouts []models.Payout
	if err := db.GetDb().
		Model(&models.Payout{}).
		Where("booking_id = ?", booking.ID).
		Order("created_at DESC").
		Limit(1).
		Find(&payouts).
		Error; err != nil {
		log.Printf("[GetOrderStatus] Error retrieving payouts for %s: %s\n", orderNumber, err.Error())
		return nil, types.ErrPersistence(err)
	}
	if len(payouts) > 0 {
		p := payouts[0]
		res.LatestPayout = &types.APIResponsePayoutSummary{
			Status:      string(p.Status),
			Amount:      p.Amount,
			TransferID:  p.TransferID,
			ProcessedAt: p.ProcessedAt,
		}
	}

	if booking.HasVideo() {
		if url, ok := presignVideo(ctx, *booking.VideoKey); ok {
			res.VideoURL = &url
		}
	}
	return res, nil
}
