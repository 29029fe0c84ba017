package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sectionpulse/api/models"
	"sectionpulse/api/utils"
)

const dashboardSubject = "dashboard"

// AuthHandlers trade the dashboard API key for a short-lived read token.
type AuthHandlers struct {
	APIKeyHash string
	Issuer     *utils.TokenIssuer
}

func NewAuthHandlers(apiKeyHash string, issuer *utils.TokenIssuer) *AuthHandlers {
	return &AuthHandlers{APIKeyHash: apiKeyHash, Issuer: issuer}
}

func (h *AuthHandlers) IssueToken(c *gin.Context) {
	if h.APIKeyHash == "" || h.Issuer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Token issuing is not configured"})
		return
	}

	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := utils.CheckAPIKey(h.APIKeyHash, req.APIKey); err != nil {
		if errors.Is(err, utils.ErrAPIKeyMismatch) {
			log.Printf("Token request rejected from %s: api key mismatch", c.ClientIP())
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, expiresAt, err := h.Issuer.GenerateJWT(dashboardSubject)
	if err != nil {
		log.Printf("ERROR: Failed to generate read token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie("jwt_token", token, int(h.Issuer.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: expiresAt})
}
