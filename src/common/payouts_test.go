package common

import (
	"context"
	"errors"
	"fmt"
	"starcall/src/models"
	"starcall/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func approve(t *testing.T, f *fixture, tip float64, transferID string) {
	f.payments.On("CreateTransfer", mock.Anything, mock.Anything).Return(transferID, nil).Once()
	_, err := ApproveOrder(context.Background(), f.customerActor(), &types.ApproveOrderRequestBody{
		OrderNumber: f.booking.OrderNumber,
		TipAmount:   &tip,
	})
	require.NoError(t, err)
}

func TestCelebrityEarnings(t *testing.T) {
	f := setup(t)
	approve(t, f, 20, "tr_1")

	second := models.Booking{CustomerID: f.customer.ID, CelebrityID: f.celebrity.ID, Amount: 50, Currency: "usd"}
	require.NoError(t, f.db.Create(&second).Error)

	res, err := CelebrityEarnings(context.Background(), f.celebrityActor())
	require.NoError(t, err)
	assert.Equal(t, f.celebrity.ID, res.CelebrityID)
	assert.Equal(t, 110.0, res.TotalEarnings)
	assert.Equal(t, 20.0, res.TotalTips)
	assert.Equal(t, int64(1), res.PayoutCount)
	assert.Equal(t, int64(1), res.CompletedOrders)
	assert.Equal(t, int64(1), res.PendingOrders)
	assert.NotNil(t, res.LastPayoutAt)

	_, err = CelebrityEarnings(context.Background(), f.customerActor())
	assert.True(t, types.IsKind(err, types.ERR_NOT_FOUND))
}

func TestCelebrityEarningsLastPayoutError(t *testing.T) {
	f := setup(t)
	approve(t, f, 0, "tr_1")
	require.NoError(t, f.db.Callback().Query().Before("gorm:query").Register("fail_payout_reads", func(tx *gorm.DB) {
		if tx.Statement.Table == "payouts" {
			tx.AddError(errors.New("disk I/O error"))
		}
	}))

	_, err := CelebrityEarnings(context.Background(), f.celebrityActor())
	assert.True(t, types.IsKind(err, types.ERR_PERSISTENCE_FAILED))
}

func TestTransferReversed(t *testing.T) {
	f := setup(t)
	approve(t, f, 0, "tr_rev")

	require.NoError(t, HandleTransferReversed("tr_rev", "trr_1", 9000))
	// redelivered webhook
	require.NoError(t, HandleTransferReversed("tr_rev", "trr_1", 9000))

	assert.Equal(t, int64(1), f.count(t, &models.Payout{}, "booking_id = ? AND status = ?", f.booking.ID, types.PAYOUT_FAILED))
	assert.Equal(t, int64(1), f.count(t, &models.Payout{}, "booking_id = ? AND status = ?", f.booking.ID, types.PAYOUT_COMPLETED))

	res, err := CelebrityEarnings(context.Background(), f.celebrityActor())
	require.NoError(t, err)
	assert.Zero(t, res.TotalEarnings)

	assert.Error(t, HandleTransferReversed("tr_unknown", "trr_2", 100))
}

func TestAccountUpdated(t *testing.T) {
	f := setup(t)

	n, err := HandleAccountUpdated("acct_123", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var celeb models.Celebrity
	require.NoError(t, f.db.First(&celeb, f.celebrity.ID).Error)
	assert.False(t, celeb.PayoutsEnabled)

	n, err = HandleAccountUpdated("acct_other", true)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListPayouts(t *testing.T) {
	f := setup(t)
	approve(t, f, 0, "tr_1")
	require.NoError(t, HandleTransferReversed("tr_1", "trr_1", 9000))

	all, total, err := ListPayouts(context.Background(), f.adminActor(), &types.ListPayoutsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, all, 2)
	assert.Equal(t, f.booking.OrderNumber, all[0].OrderNumber)

	failed, total, err := ListPayouts(context.Background(), f.adminActor(), &types.ListPayoutsQuery{Status: "FAILED"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, failed, 1)
	assert.Equal(t, "FAILED", failed[0].Status)

	_, _, err = ListPayouts(context.Background(), f.customerActor(), &types.ListPayoutsQuery{})
	assert.True(t, types.IsKind(err, types.ERR_FORBIDDEN))
}

func TestOrderBreakdown(t *testing.T) {
	f := setup(t)

	projected, err := OrderBreakdown(context.Background(), f.adminActor(), f.booking.OrderNumber)
	require.NoError(t, err)
	assert.False(t, projected.Settled)
	assert.Equal(t, 0.1, projected.PlatformFeeRate)
	assert.Equal(t, 10.0, projected.PlatformFee)
	assert.Equal(t, 90.0, projected.CelebrityEarnings)
	assert.Equal(t, 100.0, projected.Total)

	approve(t, f, 20, "tr_1")
	settled, err := OrderBreakdown(context.Background(), f.adminActor(), f.booking.OrderNumber)
	require.NoError(t, err)
	assert.True(t, settled.Settled)
	assert.Equal(t, 20.0, settled.TipAmount)
	assert.Equal(t, 110.0, settled.CelebrityEarnings)
	assert.Equal(t, 120.0, settled.Total)
	assert.InDelta(t, 0.1, settled.PlatformFeeRate, 1e-9)

	_, err = OrderBreakdown(context.Background(), f.customerActor(), f.booking.OrderNumber)
	assert.True(t, types.IsKind(err, types.ERR_FORBIDDEN))
}

func TestReconcilePendingTransfers(t *testing.T) {
	f := setup(t)
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", f.booking.ID).UpdateColumns(map[string]any{
		"status":             types.BOOKING_TRANSFER_PENDING,
		"platform_fee":       10,
		"celebrity_earnings": 90,
		"transfer_attempts":  1,
		"updated_at":         stale,
	}).Error)

	fresh := models.Booking{
		CustomerID:        f.customer.ID,
		CelebrityID:       f.celebrity.ID,
		Amount:            50,
		Currency:          "usd",
		Status:            types.BOOKING_TRANSFER_PENDING,
		CelebrityEarnings: 45,
		TransferAttempts:  1,
	}
	require.NoError(t, f.db.Create(&fresh).Error)

	key := fmt.Sprintf("booking-%d-transfer-1", f.booking.ID)
	f.payments.On("CreateTransfer", mock.Anything, transferTo("acct_123", 9000, key)).Return("tr_same", nil).Once()

	settled, err := ReconcilePendingTransfers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	f.payments.AssertExpectations(t)

	assert.Equal(t, types.BOOKING_COMPLETED, f.reload(t).Status)
	var trail models.TrailLog
	require.NoError(t, f.db.Where("booking_id = ? AND type = ?", f.booking.ID, "transfer").First(&trail).Error)
	assert.Equal(t, "system:reconciler", trail.Initiator)

	var untouched models.Booking
	require.NoError(t, f.db.First(&untouched, fresh.ID).Error)
	assert.Equal(t, types.BOOKING_TRANSFER_PENDING, untouched.Status)
}
