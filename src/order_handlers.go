package main

import (
	"starcall/src/controllers"

	"github.com/gin-gonic/gin"
)

func respond(ctx *gin.Context, status int, data any, err error) {
	if err != nil {
		ctx.JSON(status, controllers.ErrorBody(err))
		return
	}
	ctx.JSON(status, gin.H{"success": true, "data": data})
}

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	orders := g.Group("/orders")
	orders.
		POST("/approve", func(ctx *gin.Context) {
			res, status, err := controllers.OrdersApprove(ctx)
			respond(ctx, status, res, err)
		}).
		GET("/status", func(ctx *gin.Context) {
			res, status, err := controllers.OrdersStatus(ctx)
			respond(ctx, status, res, err)
		}).
		POST("/decline", func(ctx *gin.Context) {
			res, status, err := controllers.OrdersDecline(ctx)
			respond(ctx, status, res, err)
		}).
		POST("/:orderNumber/video", func(ctx *gin.Context) {
			res, status, err := controllers.OrdersDeliverVideo(ctx)
			respond(ctx, status, res, err)
		})
	return orders
}
