package auth

import (
	"context"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

// TokenVerifier is satisfied by *firebase.google.com/go/v4/auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// User is the signed-in caller as read from a verified ID token.
type User struct {
	ID    string
	Email string
	Name  string
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ID token"})
			c.Abort()
			return
		}

		c.Set("token", token)
		c.Set(userKey, userFromToken(token))
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is sent and
// lets the request through anonymously otherwise.
func OptionalAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if idToken, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if token, err := verifier.VerifyIDToken(c.Request.Context(), idToken); err == nil {
				c.Set("token", token)
				c.Set(userKey, userFromToken(token))
			}
		}
		c.Next()
	}
}

// UserFromContext returns the user attached by one of the middlewares.
func UserFromContext(c *gin.Context) (User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func userFromToken(token *firebaseauth.Token) User {
	u := User{ID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		u.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		u.Name = name
	}
	return u
}
