package auth

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func personalSign(t *testing.T, msg string) (addr, sig string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)))
	raw, err := crypto.Sign(hash.Bytes(), key)
	require.NoError(t, err)
	raw[crypto.RecoveryIDOffset] += 27 // wallets send V as 27/28
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), "0x" + hex.EncodeToString(raw)
}

func router(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/auth/nonce", h.Nonce)
	r.POST("/auth/login", h.Login)
	return r
}

func fetchNonce(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/nonce", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["nonce"])
	assert.Equal(t, SignMessage(body["nonce"]), body["message"])
	return body["nonce"]
}

func login(r *gin.Engine, req LoginRequest) *httptest.ResponseRecorder {
	data, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	hr := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(data))
	hr.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, hr)
	return w
}

func TestLoginIssuesJWT(t *testing.T) {
	h := NewHandler(secret, NewNonceStore(time.Minute), time.Hour)
	r := router(h)

	nonce := fetchNonce(t, r)
	addr, sig := personalSign(t, SignMessage(nonce))

	w := login(r, LoginRequest{Address: addr, Signature: sig, Nonce: nonce})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(body["jwt"], &claims, func(*jwt.Token) (any, error) { return secret, nil })
	require.NoError(t, err)
	assert.Equal(t, addr, claims.Subject)

	// nonce is single use
	w = login(r, LoginRequest{Address: addr, Signature: sig, Nonce: nonce})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejects(t *testing.T) {
	h := NewHandler(secret, NewNonceStore(time.Minute), time.Hour)
	r := router(h)

	t.Run("unknown nonce", func(t *testing.T) {
		addr, sig := personalSign(t, SignMessage("nope"))
		w := login(r, LoginRequest{Address: addr, Signature: sig, Nonce: "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("someone else's signature", func(t *testing.T) {
		nonce := fetchNonce(t, r)
		_, sig := personalSign(t, SignMessage(nonce))
		other, _ := personalSign(t, "x")
		w := login(r, LoginRequest{Address: other, Signature: sig, Nonce: nonce})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("short signature", func(t *testing.T) {
		nonce := fetchNonce(t, r)
		w := login(r, LoginRequest{Address: "0x1", Signature: "0xdeadbeef", Nonce: nonce})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := login(r, LoginRequest{Address: "0x1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecover(t *testing.T) {
	addr, sig := personalSign(t, "hello")
	got, err := Recover("hello", sig)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	_, err = Recover("hello", "zz")
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestNonceExpiry(t *testing.T) {
	s := NewNonceStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	n1, err := s.Issue()
	require.NoError(t, err)
	n2, err := s.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, n1, n2)

	assert.True(t, s.Consume(n1))
	assert.False(t, s.Consume(n1))

	now = now.Add(2 * time.Minute)
	assert.False(t, s.Consume(n2), "expired")
}
