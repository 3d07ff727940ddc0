package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skdcommerce/storefront-api/internal/config"
)

const tokenTTL = 24 * time.Hour

// LoginRequest representa a requisição de login do console administrativo
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler autentica a credencial única de administrador e emite o JWT
type AuthHandler struct {
	cfg    config.Admin
	logger *zap.Logger
}

// NewAuthHandler cria uma nova instância de AuthHandler
func NewAuthHandler(cfg config.Admin, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, logger: logger}
}

// Login valida a credencial compartilhada e retorna um token HS256 com
// sub=admin e validade de 24h
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.credentialsValid(req.Username, req.Password) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		h.logger.Error("❌ Failed to sign admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.logger.Info("✅ Admin logged in")
	c.JSON(http.StatusOK, gin.H{"success": true, "token": signed})
}

// credentialsValid compara a credencial: hash bcrypt quando configurado,
// senão comparação em tempo constante com a senha em claro
func (h *AuthHandler) credentialsValid(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.Username)) != 1 {
		return false
	}
	if h.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(h.cfg.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Password)) == 1
}

// AuthRequired é o middleware que protege as rotas administrativas: exige
// Bearer token válido com sub=admin
func AuthRequired(cfg config.Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["sub"] != "admin" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Next()
	}
}
