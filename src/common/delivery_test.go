package common

import (
	"context"
	"fmt"
	"starcall/src/config"
	awslib "starcall/src/lib/aws"
	"starcall/src/models"
	"starcall/src/types"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func withVideoStore(t *testing.T) *mockVideoStore {
	store := &mockVideoStore{}
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, "video/mp4").Return(nil)
	store.On("PresignedURL", mock.Anything, mock.Anything, time.Hour).Return("https://videos.example.com/signed", nil)
	awslib.NewVideoStore(store)
	return store
}

func TestRevisionCycle(t *testing.T) {
	f := setup(t)
	store := withVideoStore(t)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", f.booking.ID).Update("video_key", nil).Error)
	order := f.booking.OrderNumber

	delivered, err := DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v0"), "")
	require.NoError(t, err)
	assert.Equal(t, 0, delivered.RevisionCount)
	assert.Equal(t, "https://videos.example.com/signed", delivered.VideoURL)

	for revision := 1; revision < config.MAX_REVISIONS; revision++ {
		declined, err := DeclineOrder(context.Background(), f.customerActor(), &types.DeclineOrderRequestBody{
			OrderNumber: order,
			Reason:      strp("Please say my name"),
		})
		require.NoError(t, err)
		assert.Equal(t, string(types.APPROVAL_REVISION_REQUESTED), declined.ApprovalStatus)
		assert.Equal(t, revision, declined.RevisionCount)
		assert.Equal(t, config.MAX_REVISIONS-revision, declined.RevisionsLeft)

		delivered, err = DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v"), "video/mp4")
		require.NoError(t, err)
		assert.Equal(t, revision, delivered.RevisionCount)
		assert.Equal(t, string(types.APPROVAL_PENDING), delivered.ApprovalStatus)
	}

	// the decline that reaches the cap is final
	declined, err := DeclineOrder(context.Background(), f.customerActor(), &types.DeclineOrderRequestBody{OrderNumber: order})
	require.NoError(t, err)
	assert.Equal(t, string(types.APPROVAL_DECLINED), declined.ApprovalStatus)
	assert.Equal(t, config.MAX_REVISIONS, declined.RevisionCount)
	assert.Zero(t, declined.RevisionsLeft)

	_, err = DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v"), "video/mp4")
	assert.True(t, types.IsKind(err, types.ERR_INVALID_STATE))

	stored := f.reload(t)
	assert.Equal(t, types.BOOKING_PENDING_APPROVAL, stored.Status)
	assert.Equal(t, types.APPROVAL_DECLINED, stored.ApprovalStatus)
	assert.Equal(t, config.MAX_REVISIONS, stored.RevisionCount)
	assert.NotNil(t, stored.DeclinedAt)
	require.NotNil(t, stored.VideoKey)
	assert.Equal(t, awslib.VideoKey(order, config.MAX_REVISIONS-1), *stored.VideoKey)

	store.AssertNumberOfCalls(t, "Upload", config.MAX_REVISIONS)
	assert.Eventually(t, func() bool {
		sent := notices.revisionsFor(order)
		final := 0
		for _, n := range sent {
			if n.Final {
				final++
			}
		}
		return len(sent) == config.MAX_REVISIONS && final == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSecondDeclineBlocksUploads(t *testing.T) {
	f := setup(t)
	store := withVideoStore(t)
	order := f.booking.OrderNumber
	body := &types.DeclineOrderRequestBody{OrderNumber: order}

	_, err := DeclineOrder(context.Background(), f.customerActor(), body)
	require.NoError(t, err)
	_, err = DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v1"), "video/mp4")
	require.NoError(t, err)
	_, err = DeclineOrder(context.Background(), f.customerActor(), body)
	require.NoError(t, err)

	_, err = DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v2"), "video/mp4")
	assert.True(t, types.IsKind(err, types.ERR_INVALID_STATE))
	store.AssertNumberOfCalls(t, "Upload", 1)

	stored := f.reload(t)
	assert.Equal(t, types.APPROVAL_DECLINED, stored.ApprovalStatus)
	assert.Equal(t, 2, stored.RevisionCount)
}

func TestDeliverVideoRejectsRevisionPastCap(t *testing.T) {
	f := setup(t)
	store := withVideoStore(t)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", f.booking.ID).UpdateColumns(map[string]any{
		"revision_count":  config.MAX_REVISIONS,
		"approval_status": types.APPROVAL_REVISION_REQUESTED,
	}).Error)

	_, err := DeliverVideo(context.Background(), f.celebrityActor(), f.booking.OrderNumber, strings.NewReader("v"), "video/mp4")
	assert.True(t, types.IsKind(err, types.ERR_INVALID_STATE))
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, config.MAX_REVISIONS, f.reload(t).RevisionCount)
}

func TestDeliverVideoChecks(t *testing.T) {
	f := setup(t)
	order := f.booking.OrderNumber

	_, err := DeliverVideo(context.Background(), f.customerActor(), order, strings.NewReader("v"), "")
	assert.True(t, types.IsKind(err, types.ERR_FORBIDDEN))

	// a video is already waiting for the customer
	_, err = DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v"), "")
	assert.True(t, types.IsKind(err, types.ERR_INVALID_STATE))

	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", f.booking.ID).Update("video_key", nil).Error)
	_, err = DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v"), "")
	assert.True(t, types.IsKind(err, types.ERR_DEPENDENCY_UNCONFIGURED))
}

func TestDeclineOrderChecks(t *testing.T) {
	f := setup(t)
	body := &types.DeclineOrderRequestBody{OrderNumber: f.booking.OrderNumber}

	_, err := DeclineOrder(context.Background(), nil, body)
	assert.True(t, types.IsKind(err, types.ERR_UNAUTHORIZED))

	_, err = DeclineOrder(context.Background(), f.celebrityActor(), body)
	assert.True(t, types.IsKind(err, types.ERR_FORBIDDEN))

	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", f.booking.ID).Update("status", types.BOOKING_REFUNDED).Error)
	_, err = DeclineOrder(context.Background(), f.customerActor(), body)
	appErr, ok := types.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, types.ERR_INVALID_STATE, appErr.Kind)
	assert.Equal(t, fmt.Sprintf("Order cannot be declined while %s", types.BOOKING_REFUNDED), appErr.Message)
	assert.Zero(t, f.count(t, &models.TrailLog{}, "booking_id = ?", f.booking.ID))
}

func TestApproveAfterRevision(t *testing.T) {
	f := setup(t)
	withVideoStore(t)
	f.payments.On("CreateTransfer", mock.Anything, mock.Anything).Return("tr_1", nil).Once()
	order := f.booking.OrderNumber

	_, err := DeclineOrder(context.Background(), f.customerActor(), &types.DeclineOrderRequestBody{OrderNumber: order})
	require.NoError(t, err)
	_, err = DeliverVideo(context.Background(), f.celebrityActor(), order, strings.NewReader("v1"), "video/mp4")
	require.NoError(t, err)

	res, err := ApproveOrder(context.Background(), f.customerActor(), &types.ApproveOrderRequestBody{OrderNumber: order})
	require.NoError(t, err)
	assert.Equal(t, string(types.BOOKING_COMPLETED), res.Status)

	stored := f.reload(t)
	assert.Equal(t, 1, stored.RevisionCount)
	assert.Equal(t, types.APPROVAL_APPROVED, stored.ApprovalStatus)
}
