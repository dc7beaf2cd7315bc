package middleware

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.String(http.StatusOK, claims.Username)
	})
	return r
}

func token(t *testing.T, key string, exp time.Duration) string {
	t.Helper()
	user := &model.User{Username: "aspirant"}
	user.ID = 1
	tok, err := util.GenerateJWT(user, key, exp)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "bearer", header: "Bearer " + token(t, secret, time.Hour), status: http.StatusOK},
		{name: "query token", query: "?token=" + token(t, secret, time.Hour), status: http.StatusOK},
		{name: "wrong secret", header: "Bearer " + token(t, "other", time.Hour), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + token(t, secret, -time.Hour), status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def", status: http.StatusUnauthorized},
		{name: "lowercase scheme", header: "bearer " + token(t, secret, time.Hour), status: http.StatusOK},
		{name: "basic scheme", header: "Basic YWRtaW46YWRtaW4=", status: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "aspirant", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 100))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36, "oversized ids are replaced by a uuid")
}
