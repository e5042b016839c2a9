package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/healthbite/backend/pkg/utils"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "user_id"

// RequireUser verifies an HS256 bearer token and stores its subject as the
// user ID. Tokens are issued by the identity provider, never here.
func RequireUser(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		if len(secret) == 0 {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Authentication is not configured")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		userID, err := parseSubject(parser, strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func parseSubject(parser *jwt.Parser, tokenString string, secret []byte) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("subject claim missing")
	}
	return claims.Subject, nil
}

// UserID returns the authenticated user ID set by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
