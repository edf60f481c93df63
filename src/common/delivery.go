package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"starcall/src/config"
	"starcall/src/db"
	awslib "starcall/src/lib/aws"
	"starcall/src/lib/mailer"
	"starcall/src/models"
	"starcall/src/types"
	"starcall/src/utils"
	"time"

	"gorm.io/gorm"
)

const videoURLTTL = time.Hour

func presignVideo(ctx context.Context, key string) (string, bool) {
	store := awslib.GetVideoStore()
	if store == nil {
		return "", false
	}
	url, err := store.PresignedURL(ctx, key, videoURLTTL)
	if err != nil {
		log.Printf("[Video] Could not presign %s: %s\n", key, err.Error())
		return "", false
	}
	return url, true
}

// DeclineOrder sends the delivered video back to the celebrity. Every decline
// counts as a revision; the one that reaches the cap declines the booking for
// good and no further uploads are accepted.
func DeclineOrder(ctx context.Context, actor *Actor, body *types.DeclineOrderRequestBody) (*types.APIResponseDecline, error) {
	if !actor.authenticated() {
		return nil, types.ErrUnauthorized()
	}
	booking, err := findBooking(db.GetDb(), body.OrderNumber)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != actor.ID {
		return nil, types.ErrForbidden("You can only decline your own orders")
	}
	if booking.Status != types.BOOKING_PENDING_APPROVAL {
		return nil, types.ErrInvalidState(
			fmt.Sprintf("Order cannot be declined while %s", booking.Status),
			string(booking.Status),
		)
	}
	if !booking.HasVideo() || booking.ApprovalStatus != types.APPROVAL_PENDING {
		return nil, types.ErrInvalidState("There is no delivered video awaiting approval", string(booking.ApprovalStatus))
	}

	next := types.APPROVAL_REVISION_REQUESTED
	count := booking.RevisionCount + 1
	if count > config.MAX_REVISIONS {
		count = config.MAX_REVISIONS
	}
	final := count >= config.MAX_REVISIONS
	if final {
		next = types.APPROVAL_DECLINED
	}
	reason := ""
	if body.Reason != nil {
		reason = *body.Reason
	}
	now := time.Now()
	err = db.GetDb().Transaction(func(tx *gorm.DB) error {
		// the model carries the new count so the revision cap hook sees it
		res := tx.
			Model(&models.Booking{ID: booking.ID, RevisionCount: count}).
			Where("status = ? AND approval_status = ?", types.BOOKING_PENDING_APPROVAL, types.APPROVAL_PENDING).
			Updates(map[string]any{
				"revision_count":  count,
				"approval_status": next,
				"declined_at":     now,
				"decline_reason":  body.Reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusChanged
		}
		return recordTrail(tx, booking.ID, "decline", string(types.APPROVAL_PENDING), string(next), actor.label(), body.Reason)
	})
	if err != nil {
		switch {
		case models.IsRevisionLimitError(err):
			return nil, types.ErrInvalidState("Revision limit reached", string(booking.ApprovalStatus))
		case errors.Is(err, errStatusChanged):
			return nil, types.ErrInvalidState("Order changed while declining", currentStatus(booking.ID))
		}
		log.Printf("[DeclineOrder] Error declining %s: %s\n", booking.OrderNumber, err.Error())
		return nil, types.ErrPersistence(err)
	}

	notice := &types.RevisionRequestedNotice{
		OrderNumber:   booking.OrderNumber,
		Reason:        reason,
		RevisionCount: count,
		Final:         final,
	}
	if booking.Celebrity != nil {
		notice.CelebrityName = booking.Celebrity.Name
		if booking.Celebrity.User != nil {
			notice.CelebrityEmail = booking.Celebrity.User.Email
		}
	}
	utils.SafeGo("RevisionRequestedNotice", func() {
		if err := mailer.GetNotifier().RevisionRequested(context.Background(), notice); err != nil {
			log.Printf("[Notify] Error sending revision email for %s: %s\n", notice.OrderNumber, err.Error())
		}
	})

	return &types.APIResponseDecline{
		OrderNumber:    booking.OrderNumber,
		ApprovalStatus: string(next),
		RevisionCount:  count,
		RevisionsLeft:  config.MAX_REVISIONS - count,
	}, nil
}

// DeliverVideo stores the celebrity's video and puts the booking up for
// approval. A revision upload is only accepted after a non-final decline.
func DeliverVideo(ctx context.Context, actor *Actor, orderNumber string, video io.Reader, contentType string) (*types.APIResponseDelivery, error) {
	if !actor.authenticated() {
		return nil, types.ErrUnauthorized()
	}
	booking, err := findBooking(db.GetDb(), orderNumber)
	if err != nil {
		return nil, err
	}
	if booking.Celebrity == nil || booking.Celebrity.UserID != actor.ID {
		return nil, types.ErrForbidden("Only the booked celebrity can deliver this order")
	}
	if booking.Status != types.BOOKING_PENDING_APPROVAL {
		return nil, types.ErrInvalidState(
			fmt.Sprintf("Order cannot be delivered while %s", booking.Status),
			string(booking.Status),
		)
	}
	previous := booking.ApprovalStatus
	revision := booking.RevisionCount
	switch {
	case previous == types.APPROVAL_REVISION_REQUESTED:
		if revision >= config.MAX_REVISIONS {
			return nil, types.ErrInvalidState("Revision limit reached", string(previous))
		}
	case booking.HasVideo():
		return nil, types.ErrInvalidState("A video is already awaiting approval", string(previous))
	case previous != types.APPROVAL_PENDING:
		return nil, types.ErrInvalidState("Order is not accepting deliveries", string(previous))
	}

	store := awslib.GetVideoStore()
	if store == nil {
		return nil, types.ErrDependencyUnconfigured("Video storage is not configured")
	}
	if contentType == "" {
		contentType = "video/mp4"
	}
	key := awslib.VideoKey(booking.OrderNumber, revision)
	if err := store.Upload(ctx, key, video, contentType); err != nil {
		log.Printf("[DeliverVideo] Error uploading %s: %s\n", key, err.Error())
		return nil, types.ErrPersistence(err)
	}

	now := time.Now()
	err = db.GetDb().Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{ID: booking.ID, RevisionCount: revision}).
			Where("status = ? AND approval_status = ?", types.BOOKING_PENDING_APPROVAL, previous).
			Updates(map[string]any{
				"video_key":       key,
				"delivered_at":    now,
				"approval_status": types.APPROVAL_PENDING,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusChanged
		}
		note := fmt.Sprintf("revision %d", revision)
		return recordTrail(tx, booking.ID, "delivery", string(previous), string(types.APPROVAL_PENDING), actor.label(), &note)
	})
	if err != nil {
		switch {
		case models.IsRevisionLimitError(err):
			return nil, types.ErrInvalidState("Revision limit reached", string(previous))
		case errors.Is(err, errStatusChanged):
			return nil, types.ErrInvalidState("Order changed while delivering", currentStatus(booking.ID))
		}
		log.Printf("[DeliverVideo] Error saving delivery for %s: %s\n", booking.OrderNumber, err.Error())
		return nil, types.ErrPersistence(err)
	}

	url, _ := presignVideo(ctx, key)
	return &types.APIResponseDelivery{
		OrderNumber:    booking.OrderNumber,
		ApprovalStatus: string(types.APPROVAL_PENDING),
		RevisionCount:  revision,
		VideoURL:       url,
	}, nil
}
