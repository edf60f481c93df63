package main

import (
	"net/http"
	"starcall/src/controllers"

	"github.com/gin-gonic/gin"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		status, err := controllers.StripeWebhook(ctx)
		if err != nil {
			ctx.Status(status)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	})
	return apiv1
}
