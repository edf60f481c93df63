package main

import (
	"starcall/src/controllers"
	"starcall/src/middlewares"
	"starcall/src/types"

	"github.com/gin-gonic/gin"
)

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("/admin")
	admin.Use(middlewares.RequireRole(types.ROLE_ADMIN))
	admin.
		GET("/payouts", func(ctx *gin.Context) {
			res, total, status, err := controllers.AdminListPayouts(ctx)
			if err != nil {
				respond(ctx, status, nil, err)
				return
			}
			ctx.JSON(status, gin.H{"success": true, "data": res, "count": total})
		}).
		GET("/orders/:orderNumber/breakdown", func(ctx *gin.Context) {
			res, status, err := controllers.AdminOrderBreakdown(ctx)
			respond(ctx, status, res, err)
		})
	return admin
}
