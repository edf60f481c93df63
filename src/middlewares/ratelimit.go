package middlewares

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit allows limit requests per period for each caller. Authenticated
// callers are keyed by user id, everyone else by client IP.
func RateLimit(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 30
	}
	if period <= 0 {
		period = time.Minute
	}
	instance := limiter.New(memory.NewStore(), limiter.Rate{Period: period, Limit: limit})

	return func(ctx *gin.Context) {
		key := ctx.ClientIP()
		if id := ctx.GetUint("id"); id > 0 {
			key = fmt.Sprintf("user:%d", id)
		}
		lctx, err := instance.Get(ctx, key)
		if err != nil {
			log.Printf("[RateLimit] Error reading limiter for %s: %s\n", key, err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.Header("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
		ctx.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))
		ctx.Header("X-RateLimit-Reset", fmt.Sprintf("%d", lctx.Reset))
		if lctx.Reached {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later"})
			return
		}
		ctx.Next()
	}
}
