package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("s3cret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func valid(sub string, exp time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp))}
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JwtAuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("address"))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJwtAuth(t *testing.T) {
	good := sign(t, jwt.SigningMethodHS256, secret, valid("0xabc", time.Hour))

	cases := []struct {
		name string
		req  func() *http.Request
		code int
	}{
		{"header", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			r.Header.Set("Authorization", "Bearer "+good)
			return r
		}, http.StatusOK},
		{"query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/me?token="+good, nil)
		}, http.StatusOK},
		{"missing", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/me", nil)
		}, http.StatusUnauthorized},
		{"expired", func() *http.Request {
			tok := sign(t, jwt.SigningMethodHS256, secret, valid("0xabc", -time.Hour))
			return httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil)
		}, http.StatusUnauthorized},
		{"wrong secret", func() *http.Request {
			tok := sign(t, jwt.SigningMethodHS256, []byte("other"), valid("0xabc", time.Hour))
			return httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil)
		}, http.StatusUnauthorized},
		{"wrong alg", func() *http.Request {
			tok := sign(t, jwt.SigningMethodHS512, secret, valid("0xabc", time.Hour))
			return httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil)
		}, http.StatusUnauthorized},
		{"no subject", func() *http.Request {
			tok := sign(t, jwt.SigningMethodHS256, secret, valid("", time.Hour))
			return httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil)
		}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(tc.req())
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "0xabc", w.Body.String())
			}
		})
	}
}
