package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("KEY"))
}

// GenerateToken issues the JWT returned on login, keyed by the user's email
func GenerateToken(email string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// JWT_decoder extracts the authenticated email from the Authorization
// header, falling back to the cookie session. Emits the 401 itself so call
// sites can just return on error.
func JWT_decoder(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header != "" {
		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return jwtSecret(), nil
			})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return "", errors.New("invalid token")
		}
		claims := token.Claims.(*jwt.RegisteredClaims)
		return claims.Subject, nil
	}

	session := sessions.Default(c)
	email := session.Get("Email")
	if email == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", errors.New("no session")
	}
	return email.(string), nil
}

// AuthRequired is a simple middleware to check the session or bearer token.
func AuthRequired(c *gin.Context) {
	if _, err := JWT_decoder(c); err != nil {
		// Abort already done with the appropriate error code
		return
	}
	// Continue down the chain to handler etc
	c.Next()
}
