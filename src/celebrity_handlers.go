package main

import (
	"starcall/src/controllers"

	"github.com/gin-gonic/gin"
)

func publicCelebrityHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/celebrities", func(ctx *gin.Context) {
			res, status, err := controllers.CelebritiesList(ctx)
			respond(ctx, status, res, err)
		}).
		GET("/celebrities/:slug", func(ctx *gin.Context) {
			res, status, err := controllers.CelebritiesGet(ctx)
			respond(ctx, status, res, err)
		})
	return g
}

func celebrityHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	celebs := g.Group("/celebrities")
	celebs.
		POST("", func(ctx *gin.Context) {
			res, status, err := controllers.CelebritiesCreate(ctx)
			respond(ctx, status, res, err)
		}).
		POST("/onboarding", func(ctx *gin.Context) {
			url, status, err := controllers.CelebritiesOnboarding(ctx)
			respond(ctx, status, gin.H{"url": url}, err)
		}).
		GET("/me/earnings", func(ctx *gin.Context) {
			res, status, err := controllers.CelebritiesEarnings(ctx)
			respond(ctx, status, res, err)
		})
	return celebs
}
