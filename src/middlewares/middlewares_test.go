package middlewares

import (
	"net/http"
	"net/http/httptest"
	"starcall/src/db"
	"starcall/src/models"
	"starcall/src/types"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func signed(t *testing.T, subject string, key string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func authRouter(t *testing.T) (*gin.Engine, models.User) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "secret")
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Celebrity{}, &models.Booking{}))
	db.NewDB(conn)
	t.Cleanup(func() { db.NewDB(nil) })

	user := models.User{Name: "Ops", Email: "ops@example.com", Role: types.ROLE_ADMIN}
	require.NoError(t, conn.Create(&user).Error)

	r := gin.New()
	r.GET("/me", AuthMiddleware, func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"id": ctx.GetUint("id"), "role": ctx.GetString("role")})
	})
	r.GET("/admin", AuthMiddleware, RequireRole(types.ROLE_ADMIN), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	r.GET("/celebrity", AuthMiddleware, RequireRole(types.ROLE_CELEBRITY), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r, user
}

func call(r *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, user := authRouter(t)
	subject := strconv.FormatUint(uint64(user.ID), 10)

	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", "not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", signed(t, subject, "other-secret")).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", signed(t, "999", "secret")).Code)

	w := call(r, "/me", signed(t, subject, "secret"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":`+subject+`,"role":"admin"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r, user := authRouter(t)
	token := signed(t, strconv.FormatUint(uint64(user.ID), 10), "secret")

	assert.Equal(t, http.StatusNoContent, call(r, "/admin", token).Code)
	assert.Equal(t, http.StatusForbidden, call(r, "/celebrity", token).Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(2, time.Minute))
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := call(r, "/", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}
	w := call(r, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestSecureHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecureHeaders)
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	w := call(r, "/", "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
