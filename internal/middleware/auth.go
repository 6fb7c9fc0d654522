package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker-server/internal/models"
	"tracker-server/internal/service"
)

// Context keys populated by the auth middlewares.
const (
	ContextUserIDKey   = "user_id"
	ContextAPITokenKey = "api_token"
)

// bearerToken извлекает значение из заголовка Authorization.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Code:    models.ErrCodeUnauthorized,
		Message: message,
	})
}

// UserAuthMiddleware verifies JWTs minted by the external identity provider
// and stores the asserted user id in the gin context. It only checks
// signature and expiry; revocation stays with the provider.
func UserAuthMiddleware(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			zap.L().Warn("Missing or malformed Authorization header")
			abortUnauthorized(c, "Authorization header missing or malformed")
			return
		}

		claims := &models.IdentityClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		})
		if err != nil {
			zap.L().Warn("Identity JWT rejected", zap.Error(err))
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				abortUnauthorized(c, "Token has expired")
			case errors.Is(err, jwt.ErrTokenMalformed):
				abortUnauthorized(c, "Token is malformed")
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				abortUnauthorized(c, "Token signature is invalid")
			default:
				abortUnauthorized(c, "Token validation failed")
			}
			return
		}
		if !token.Valid {
			abortUnauthorized(c, "Token is invalid")
			return
		}

		userID := claims.ResolveUserID()
		if userID == "" {
			zap.L().Warn("Identity JWT carries no user id")
			abortUnauthorized(c, "Invalid token: user id missing")
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// TokenAuthMiddleware authenticates requests carrying an API token issued by
// this server. The resolved token (and its owner) land in the gin context;
// permission checks are layered on per route via RequirePermission.
func TokenAuthMiddleware(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenValue, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Authorization header missing or malformed")
			return
		}

		token, err := tokens.ResolveToken(c.Request.Context(), tokenValue)
		if err != nil {
			if errors.Is(err, models.ErrTokenNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
					Code:    models.ErrCodeTokenInvalid,
					Message: "Provided token is invalid (possibly revoked)",
				})
				return
			}
			zap.L().Error("Token resolution failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Code:    models.ErrCodeInternal,
				Message: "An unexpected internal error occurred",
			})
			return
		}

		c.Set(ContextUserIDKey, token.UserID)
		c.Set(ContextAPITokenKey, token)
		c.Next()
	}
}

// RequirePermission gates a route on one API-token permission code. Must run
// after TokenAuthMiddleware.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextAPITokenKey)
		token, ok := value.(*models.APIToken)
		if !exists || !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !token.HasPermission(permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Code:    models.ErrCodeForbidden,
				Message: fmt.Sprintf("Token lacks the %q permission", permission),
			})
			return
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user id set by either
// middleware.
func UserIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}

// GenerateTestJWT создает тестовый JWT токен.
// ВАЖНО: Эта функция предназначена ТОЛЬКО для использования в тестах.
func GenerateTestJWT(userID, secretKey string, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &models.IdentityClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign test JWT: %w", err)
	}
	return tokenString, nil
}
