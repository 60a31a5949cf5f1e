// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	i18n.Initialize("en")
	utils.SetJWTSecret("middleware-test-secret")
}

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"zh-TW,zh;q=0.9,en;q=0.8", "zh_TW"},
		{"zh", "zh_TW"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveLanguage(tt.header, "en"))
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := bearerToken(header)
		assert.False(t, ok, header)
	}
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		userID, _ := utils.GetUserIDFromContext(c)
		c.String(http.StatusOK, userID)
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	userID := uuid.New()
	memberToken, err := utils.GenerateJWT(userID, "member", "member", 1)
	require.NoError(t, err)
	adminToken, err := utils.GenerateJWT(uuid.New(), "admin", "admin", 1)
	require.NoError(t, err)

	w := serve(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + memberToken})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	w = serve(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + memberToken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + adminToken})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/files", OptionalAuth(), func(c *gin.Context) {
		_, ok := utils.GetUserIDFromContext(c)
		if ok {
			c.String(http.StatusOK, "user")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	token, err := utils.GenerateJWT(uuid.New(), "member", "member", 1)
	require.NoError(t, err)

	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/files", nil).Body.String())
	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/files", map[string]string{"Authorization": "Bearer bad"}).Body.String())
	assert.Equal(t, "user", serve(r, http.MethodGet, "/files", map[string]string{"Authorization": "Bearer " + token}).Body.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(PerMinute(1), 2)
	r := gin.New()
	r.Use(I18nMiddleware("en"), limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/ping", nil).Code)

	w := serve(r, http.MethodGet, "/ping", map[string]string{"Accept-Language": "zh-TW"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(PerSecond(0), 0)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/ping", nil).Code)
	}
}

func TestCORSAllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://shop.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://shop.example"}))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://shop.example"})
	assert.Equal(t, "http://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
