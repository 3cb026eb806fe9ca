package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/config"
)

// AuthService guards the admin dashboard: a TOTP code buys a signed
// session token.
type AuthService struct {
	logger     *zap.Logger
	totpSecret string
	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewAuthService(cfg *config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	ttl, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}

	return &AuthService{
		logger:     logger,
		totpSecret: cfg.TOTPSecret,
		jwtSecret:  []byte(cfg.JWTSecret),
		sessionTTL: ttl,
	}, nil
}

func (a *AuthService) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "FlowUp Dashboard",
		AccountName: "admin",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return key.Secret(), nil
}

func (a *AuthService) ValidateCode(code string) bool {
	valid := totp.Validate(code, a.totpSecret)
	if valid {
		a.logger.Info("TOTP code validation successful")
	} else {
		a.logger.Warn("TOTP code validation failed")
	}
	return valid
}

// CreateSession issues a signed session token after a valid TOTP login.
func (a *AuthService) CreateSession() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.sessionTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (a *AuthService) validateSession(tokenString string) bool {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	return err == nil && token.Valid
}

// Middleware protects the dashboard routes with the session token,
// taken from either the auth cookie or a bearer header.
func (a *AuthService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("auth_token")
		if err != nil || token == "" {
			header := c.GetHeader("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
		}

		if token == "" || !a.validateSession(token) {
			c.JSON(401, gin.H{"success": false, "error": "Authentication required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
