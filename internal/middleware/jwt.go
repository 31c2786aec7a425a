package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/resulta/resulta-gateway/internal/response"
)

const (
	// ContextKeyClaims is the Gin context key for verified JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeyToken is the Gin context key for the raw bearer token,
	// passed through to the upstream records API.
	ContextKeyToken = "token"
)

// Claims are the fields the upstream identity service puts in its tokens.
// Subject is the canonical user key: every read marker, watermark and "me"
// facet resolution uses it and nothing else, so the read-state writer and
// reader can never disagree about who a user is.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// RequireUser validates the bearer token from the Authorization header and
// stashes the claims and raw token in the context.
func RequireUser(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractBearer(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if !token.Valid || claims.Subject == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyToken, tokenStr)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// UserKey returns the canonical identity of the authenticated user.
func UserKey(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}

// Token returns the raw bearer token for upstream pass-through.
func Token(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	// Fallback for download links which cannot send headers.
	return c.Query("token")
}
