package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sectionpulse/api/utils"
)

// ReadAuth accepts either an X-API-KEY header matching apiKeyHash or a read
// token from the jwt_token cookie or a Bearer Authorization header. Either
// mechanism is skipped when it is not configured.
func ReadAuth(apiKeyHash string, issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-KEY"); key != "" && apiKeyHash != "" {
			if err := utils.CheckAPIKey(apiKeyHash, key); err == nil {
				c.Set("auth_subject", "api-key")
				c.Next()
				return
			}
			log.Printf("ReadAuth: X-API-KEY rejected for %s", c.ClientIP())
		}

		if issuer == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API key"})
			return
		}

		tokenString, err := c.Cookie("jwt_token")
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			log.Println("ReadAuth: No token found in cookie or header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		claims, err := issuer.ValidateJWT(tokenString)
		if err != nil {
			log.Printf("ReadAuth: Invalid token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set("auth_subject", claims.Subject)
		c.Next()
	}
}
