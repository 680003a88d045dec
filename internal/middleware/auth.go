package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"proto-review-api/internal/domain"
	"proto-review-api/internal/response"
)

// IdentityKey is the gin context key holding the caller's domain.Identity
const IdentityKey = "identity"

// Auth returns a middleware that validates the bearer token issued by the
// auth layer in front of the OAuth provider, and stores the caller
// identity in the context. Name/email/avatar claims are optional; the
// comment service substitutes fallbacks for missing values.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid token claims")
			c.Abort()
			return
		}

		ident, err := identityFromClaims(claims)
		if err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Set(IdentityKey, ident)
		c.Next()
	}
}

// identityFromClaims builds a domain.Identity from JWT claims, supporting
// both our "user_id" claim and the OAuth provider's "sub" format.
func identityFromClaims(claims jwt.MapClaims) (domain.Identity, error) {
	var userIDStr string
	if uid, ok := claims["user_id"].(string); ok {
		userIDStr = uid
	} else if sub, ok := claims["sub"].(string); ok {
		userIDStr = sub
	} else {
		return domain.Identity{}, errUserIDMissing
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return domain.Identity{}, errUserIDInvalid
	}

	ident := domain.Identity{ID: userID}
	if name, ok := claims["name"].(string); ok {
		ident.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}
	if picture, ok := claims["picture"].(string); ok {
		ident.AvatarURL = picture
	}
	return ident, nil
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errUserIDMissing authError = "User ID not found in token"
	errUserIDInvalid authError = "Invalid user ID format"
)

// GetIdentity extracts the caller identity stored by Auth. The zero
// identity is returned when the middleware did not run.
func GetIdentity(c *gin.Context) domain.Identity {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return domain.Identity{}
	}
	ident, ok := value.(domain.Identity)
	if !ok {
		return domain.Identity{}
	}
	return ident
}
