package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rkimidis/acucare-pathways-sub001/internal/session"
)

type loginRequest struct {
	Token     string     `json:"token" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Login stores an externally issued clinical API credential in the session
// cookie. The console never mints credentials of its own; it only carries
// the bearer token the identity provider handed the browser.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		AbortWithError(c, newValidationError("token", "required", "token is required"))
		return
	}

	actor := session.DecodeActor(token)
	if !actor.Resolved() {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	expiresAt := time.Now().Add(12 * time.Hour)
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}
	s.sessions.Set(c, token, expiresAt)

	c.JSON(http.StatusOK, gin.H{"data": actor})
}

func (s *Server) Logout(c *gin.Context) {
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Me returns the identity decoded from the current session credential.
func (s *Server) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": currentActor(c)})
}
