package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"UpDownRiver/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrBadSignature = errors.New("bad signature")

type LoginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Nonce     string `json:"nonce" binding:"required"`
}

type Handler struct {
	nonces   *NonceStore
	secret   []byte
	tokenTTL time.Duration
	log      *log.Logger
}

func NewHandler(secret []byte, nonces *NonceStore, tokenTTL time.Duration) *Handler {
	return &Handler{
		nonces:   nonces,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      utils.Named("auth"),
	}
}

// SignMessage is the text a wallet signs with personal_sign to log in.
func SignMessage(nonce string) string {
	return "Sign this message to sit down at Up and Down the River. Nonce: " + nonce
}

// Recover returns the address that produced sig over msg with personal_sign.
func Recover(msg, sig string) (string, error) {
	// 与 MetaMask personal_sign 一致的前缀
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	hash := crypto.Keccak256Hash([]byte(prefixed))

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(sig, "0x"))
	if err != nil || len(sigBytes) != crypto.SignatureLength {
		return "", ErrBadSignature
	}
	// 修正 V 值
	if sigBytes[crypto.RecoveryIDOffset] >= 27 {
		sigBytes[crypto.RecoveryIDOffset] -= 27
	}
	pubKey, err := crypto.SigToPub(hash.Bytes(), sigBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}

// Token issues the session JWT for address.
func (h *Handler) Token(address string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   address,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if !h.nonces.Consume(req.Nonce) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid nonce"})
		return
	}

	recovered, err := Recover(SignMessage(req.Nonce), req.Signature)
	if err != nil {
		h.log.Debug("signature rejected", "address", req.Address, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verify failed"})
		return
	}
	if !strings.EqualFold(recovered, req.Address) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature mismatch"})
		return
	}

	token, err := h.Token(recovered)
	if err != nil {
		h.log.Error("jwt generation failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}
	h.log.Info("login", "address", recovered)
	c.JSON(http.StatusOK, gin.H{"jwt": token})
}
