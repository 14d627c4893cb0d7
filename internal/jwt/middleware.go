package jwt

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "authUserID"

// BearerToken extracts a token from the Authorization header, falling back
// to the "token" query parameter (used by the WebSocket path where custom
// headers are not always available).
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return header[len("Bearer "):]
	}
	return r.URL.Query().Get("token")
}

// Middleware rejects requests without a valid access token and stores the
// authenticated user id on the gin context.
func Middleware(auth Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		payload, err := auth.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		c.Set(contextUserKey, payload.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
