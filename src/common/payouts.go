package common

import (
	"context"
	"errors"
	"log"
	"starcall/src/config"
	"starcall/src/db"
	"starcall/src/models"
	"starcall/src/models/scopes"
	"starcall/src/types"
	"time"

	"gorm.io/gorm"
)

func findCelebrityByUser(tx *gorm.DB, userID uint) (*models.Celebrity, error) {
	var celeb models.Celebrity
	if err := tx.
		Model(&models.Celebrity{}).
		Where("user_id = ?", userID).
		Preload("User").
		First(&celeb).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound("Celebrity profile not found")
		}
		return nil, types.ErrPersistence(err)
	}
	return &celeb, nil
}

// CelebrityEarnings summarises the caller's payout ledger. Reversed transfers
// are recorded as FAILED rows and deducted.
func CelebrityEarnings(ctx context.Context, actor *Actor) (*types.APIResponseEarnings, error) {
	if !actor.authenticated() {
		return nil, types.ErrUnauthorized()
	}
	conn := db.GetDb()
	celeb, err := findCelebrityByUser(conn, actor.ID)
	if err != nil {
		return nil, err
	}

	var ledger struct {
		Paid     float64
		Reversed float64
		Count    int64
	}
	if err := conn.
		Model(&models.Payout{}).
		Select(
			"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS paid, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS reversed, "+
				"COUNT(CASE WHEN status = ? THEN 1 END) AS count",
			types.PAYOUT_COMPLETED, types.PAYOUT_FAILED, types.PAYOUT_COMPLETED,
		).
		Where("celebrity_id = ?", celeb.ID).
		Scan(&ledger).
		Error; err != nil {
		log.Printf("[CelebrityEarnings] Error summing ledger for %d: %s\n", celeb.ID, err.Error())
		return nil, types.ErrPersistence(err)
	}

	var tips float64
	if err := conn.
		Model(&models.Tip{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("celebrity_id = ? AND status = ?", celeb.ID, types.TIP_COMPLETED).
		Scan(&tips).
		Error; err != nil {
		return nil, types.ErrPersistence(err)
	}

	var completed, pending int64
	if err := conn.
		Model(&models.Booking{}).
		Where("celebrity_id = ?", celeb.ID).
		Scopes(scopes.WithBookingStatus(types.BOOKING_COMPLETED)).
		Count(&completed).
		Error; err != nil {
		return nil, types.ErrPersistence(err)
	}
	if err := conn.
		Model(&models.Booking{}).
		Where("celebrity_id = ?", celeb.ID).
		Scopes(scopes.WithBookingStatus(types.BOOKING_PENDING_APPROVAL, types.BOOKING_TRANSFER_PENDING)).
		Count(&pending).
		Error; err != nil {
		return nil, types.ErrPersistence(err)
	}

	res := &types.APIResponseEarnings{
		CelebrityID:     celeb.ID,
		Currency:        celeb.Currency,
		TotalEarnings:   FromCents(ToCents(ledger.Paid) - ToCents(ledger.Reversed)),
		TotalTips:       FromCents(ToCents(tips)),
		PayoutCount:     ledger.Count,
		CompletedOrders: completed,
		PendingOrders:   pending,
	}
	var last []models.Payout
	if err := conn.
		Model(&models.Payout{}).
		Where("celebrity_id = ? AND status = ?", celeb.ID, types.PAYOUT_COMPLETED).
		Order("processed_at DESC").
		Limit(1).
		Find(&last).Error; err != nil {
		log.Printf("[CelebrityEarnings] Error reading last payout: %s\n", err.Error())
		return nil, types.ErrPersistence(err)
	}
	if len(last) > 0 {
		res.LastPayoutAt = last[0].ProcessedAt
	}
	return res, nil
}

func ListPayouts(ctx context.Context, actor *Actor, query *types.ListPayoutsQuery) ([]types.APIResponsePayout, int64, error) {
	if !actor.authenticated() {
		return nil, 0, types.ErrUnauthorized()
	}
	if !actor.isAdmin() {
		return nil, 0, types.ErrForbidden("Admin access required")
	}
	conn := db.GetDb()
	var total int64
	if err := conn.
		Model(&models.Payout{}).
		Scopes(scopes.WithPayoutStatus(query.Status)).
		Count(&total).
		Error; err != nil {
		return nil, 0, types.ErrPersistence(err)
	}
	var payouts []models.Payout
	if err := conn.
		Model(&models.Payout{}).
		Scopes(scopes.WithPayoutStatus(query.Status), scopes.Paginate(query.Limit, query.Offset)).
		Preload("Booking").
		Order("created_at DESC").
		Find(&payouts).
		Error; err != nil {
		log.Printf("[ListPayouts] Error listing payouts: %s\n", err.Error())
		return nil, 0, types.ErrPersistence(err)
	}
	res := make([]types.APIResponsePayout, 0, len(payouts))
	for _, p := range payouts {
		item := types.APIResponsePayout{
			ID:          p.ID.String(),
			CelebrityID: p.CelebrityID,
			Amount:      p.Amount,
			Currency:    p.Currency,
			Status:      string(p.Status),
			TransferID:  p.TransferID,
			ProcessedAt: p.ProcessedAt,
		}
		if p.Booking != nil {
			item.OrderNumber = p.Booking.OrderNumber
		}
		res = append(res, item)
	}
	return res, total, nil
}

// OrderBreakdown shows how an order's money is divided. Settled orders report
// the stored amounts, others a projection at the current fee rate.
func OrderBreakdown(ctx context.Context, actor *Actor, orderNumber string) (*types.APIResponseBreakdown, error) {
	if !actor.authenticated() {
		return nil, types.ErrUnauthorized()
	}
	if !actor.isAdmin() {
		return nil, types.ErrForbidden("Admin access required")
	}
	booking, err := findBooking(db.GetDb(), orderNumber)
	if err != nil {
		return nil, err
	}
	bps := config.PlatformFeeBasisPoints()
	res := &types.APIResponseBreakdown{
		OrderNumber:     booking.OrderNumber,
		Status:          string(booking.Status),
		Currency:        booking.Currency,
		Amount:          booking.Amount,
		PlatformFeeRate: FeeRate(bps),
	}
	switch booking.Status {
	case types.BOOKING_COMPLETED, types.BOOKING_TRANSFER_PENDING:
		res.TipAmount = booking.TipAmount
		res.PlatformFee = booking.PlatformFee
		res.CelebrityEarnings = booking.CelebrityEarnings
		res.Total = FromCents(ToCents(booking.Amount) + ToCents(booking.TipAmount))
		res.Settled = booking.Status == types.BOOKING_COMPLETED
		if base := ToCents(booking.Amount); base > 0 {
			res.PlatformFeeRate = float64(ToCents(booking.PlatformFee)) / float64(base)
		}
	default:
		split, err := CalculateSplit(booking.Amount, 0, bps)
		if err != nil {
			return nil, err
		}
		res.PlatformFee = split.FeeAmount()
		res.CelebrityEarnings = split.CelebrityAmount()
		res.Total = split.Total()
	}
	return res, nil
}

// ReconcilePendingTransfers settles bookings left in TRANSFER_PENDING, e.g.
// after a crash between the transfer and the final write. The retry reuses
// the attempt's idempotency key so Stripe returns the original transfer.
func ReconcilePendingTransfers(ctx context.Context) (int, error) {
	var stuck []models.Booking
	cutoff := time.Now().Add(-config.ReconcileAfter())
	if err := db.GetDb().
		Model(&models.Booking{}).
		Scopes(scopes.WithBookingStatus(types.BOOKING_TRANSFER_PENDING), scopes.UpdatedBefore(cutoff)).
		Preload("Celebrity.User").
		Preload("Customer").
		Limit(50).
		Find(&stuck).
		Error; err != nil {
		log.Printf("[Reconciler] Error loading pending transfers: %s\n", err.Error())
		return 0, err
	}
	settled := 0
	for i := range stuck {
		booking := &stuck[i]
		log.Printf("[Reconciler] Settling order %s (attempt %d)\n", booking.OrderNumber, booking.TransferAttempts)
		if _, err := settleTransfer(ctx, booking, systemReconciler); err != nil {
			log.Printf("[Reconciler] Order %s not settled: %s\n", booking.OrderNumber, err.Error())
			continue
		}
		settled++
	}
	return settled, nil
}

// HandleAccountUpdated mirrors Stripe's payouts_enabled flag onto the celebrity.
func HandleAccountUpdated(accountID string, payoutsEnabled bool) (int64, error) {
	res := db.GetDb().
		Model(&models.Celebrity{}).
		Where("stripe_account_id = ?", accountID).
		Update("payouts_enabled", payoutsEnabled)
	return res.RowsAffected, res.Error
}

// HandleTransferReversed appends a FAILED ledger row for a reversed transfer.
// The original COMPLETED row is left as is.
func HandleTransferReversed(transferID string, reversalID string, amountCents int64) error {
	key := "reversal-" + reversalID
	return db.GetDb().Transaction(func(tx *gorm.DB) error {
		var existing []models.Payout
		if err := tx.Where("idempotency_key = ?", key).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		var original models.Payout
		if err := tx.
			Where("transfer_id = ? AND status = ?", transferID, types.PAYOUT_COMPLETED).
			First(&original).
			Error; err != nil {
			return err
		}
		now := time.Now()
		reason := "transfer reversed"
		if err := tx.Create(&models.Payout{
			BookingID:      original.BookingID,
			CelebrityID:    original.CelebrityID,
			Amount:         FromCents(amountCents),
			Currency:       original.Currency,
			TransferID:     &transferID,
			IdempotencyKey: key,
			Status:         types.PAYOUT_FAILED,
			ProcessedAt:    &now,
			FailureReason:  &reason,
			Metadata:       types.JSONB{"reversalOf": original.ID.String(), "reversalId": reversalID},
		}).Error; err != nil {
			return err
		}
		return recordTrail(tx, original.BookingID, "transfer_reversed", string(types.PAYOUT_COMPLETED), string(types.PAYOUT_FAILED), "system:stripe", &reason)
	})
}
