package middlewares

import (
	"errors"
	"log"
	"net/http"
	"os"
	"starcall/src/db"
	"starcall/src/models"
	"starcall/src/types"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func jwtKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func unauthorized(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": types.ErrUnauthorized().Message})
}

// AuthMiddleware resolves the bearer token to a user and stores id, email
// and role on the context.
func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
	if !ok || reqToken == "" {
		unauthorized(ctx)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey(), nil
	})
	if err != nil || !tkn.Valid {
		if err != nil {
			log.Printf("token error: %s\n", err.Error())
		}
		unauthorized(ctx)
		return
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil || uid < 1 {
		log.Printf("error parsing claims subject %q\n", claims.Subject)
		unauthorized(ctx)
		return
	}
	var user models.User
	if err := db.GetDb().
		Model(&models.User{}).
		Where("id = ?", uid).
		Limit(1).
		Find(&user).
		Error; err != nil {
		log.Printf("[Auth] Error retrieving user %d: %s\n", uid, err.Error())
		unauthorized(ctx)
		return
	}
	if user.ID != uint(uid) {
		unauthorized(ctx)
		return
	}
	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("uid", user.UID)
	ctx.Set("role", string(user.Role))
}

// RequireRole rejects callers whose role is not one of roles.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := types.Role(ctx.GetString("role"))
		for _, r := range roles {
			if r == role {
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}
