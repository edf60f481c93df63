package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"starcall/src/common"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

const maxWebhookBody = 65536

// StripeWebhook verifies and applies a Stripe event. A non-2xx status makes
// Stripe redeliver, so only retryable failures return one.
func StripeWebhook(ctx *gin.Context) (int, error) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		log.Printf("Error reading request body: %s\n", err.Error())
		return http.StatusServiceUnavailable, err
	}
	whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
	if err != nil {
		log.Printf("Error verifying webhook signature: %s\n", err.Error())
		return http.StatusBadRequest, err
	}
	log.Printf("[StripeEvent] %s %s\n", event.Type, event.ID)
	return applyStripeEvent(&event)
}

func applyStripeEvent(event *stripe.Event) (int, error) {
	switch event.Type {
	case "account.updated":
		var acc stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acc); err != nil {
			log.Printf("[Stripe] Error parsing Account: %s\n", err.Error())
			return http.StatusBadRequest, err
		}
		n, err := common.HandleAccountUpdated(acc.ID, acc.PayoutsEnabled)
		if err != nil {
			log.Printf("[Stripe] Error updating account %s: %s\n", acc.ID, err.Error())
			return http.StatusInternalServerError, err
		}
		if n == 0 {
			log.Printf("[Stripe] No celebrity for account %s\n", acc.ID)
		}
	case "transfer.reversed":
		var tr stripe.Transfer
		if err := json.Unmarshal(event.Data.Raw, &tr); err != nil {
			log.Printf("[Stripe] Error parsing Transfer: %s\n", err.Error())
			return http.StatusBadRequest, err
		}
		if tr.Reversals == nil {
			log.Printf("[Stripe] Transfer %s has no reversals\n", tr.ID)
			break
		}
		for _, r := range tr.Reversals.Data {
			err := common.HandleTransferReversed(tr.ID, r.ID, r.Amount)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[Stripe] Unknown transfer %s, skipping reversal %s\n", tr.ID, r.ID)
				continue
			}
			if err != nil {
				log.Printf("[Stripe] Error recording reversal %s: %s\n", r.ID, err.Error())
				return http.StatusInternalServerError, err
			}
		}
	default:
		log.Printf("[Stripe] Unhandled event type: %s\n", event.Type)
	}
	return http.StatusOK, nil
}
