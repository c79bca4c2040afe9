package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	triagedomain "github.com/rkimidis/acucare-pathways-sub001/internal/triage/domain"
)

// GetQueue returns the prioritized queue snapshot. Filter values carried in
// the navigation query override whatever filter the view had before.
func (s *Server) GetQueue(c *gin.Context) {
	view, err := s.triageSvc.View(c.Request.Context(), currentActor(c), currentCredential(c), c.Request.URL.Query())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.renderQueue(c, view)
}

type setQueueFilterRequest struct {
	Tier     string `json:"tier"`
	Assigned string `json:"assigned"`
}

// SetQueueFilter replaces the active filter and refetches. Unknown values
// fall back to the widest selection rather than erroring.
func (s *Server) SetQueueFilter(c *gin.Context) {
	var req setQueueFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tier, _ := triagedomain.ParseTierFilter(req.Tier)
	assigned, _ := triagedomain.ParseAssignmentFilter(req.Assigned)
	filter := triagedomain.QueueFilter{Tier: tier, Assignment: assigned}

	view, err := s.triageSvc.SetFilter(c.Request.Context(), currentActor(c), currentCredential(c), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.renderQueue(c, view)
}

// RefreshQueue refetches with the filter currently in effect.
func (s *Server) RefreshQueue(c *gin.Context) {
	view, err := s.triageSvc.Refresh(c.Request.Context(), currentActor(c), currentCredential(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.renderQueue(c, view)
}

func (s *Server) renderQueue(c *gin.Context, view *triagedomain.QueueView) {
	c.JSON(http.StatusOK, gin.H{
		"data":   view,
		"filter": view.Filter.Query(),
	})
}

// GetCurrentDutyRoster returns the published on-call window, or an empty
// body when none is published. Roster absence is not an error condition.
func (s *Server) GetCurrentDutyRoster(c *gin.Context) {
	window := s.roster.Resolve(c.Request.Context(), currentCredential(c))
	c.JSON(http.StatusOK, gin.H{"data": window})
}

func (s *Server) ClaimCase(c *gin.Context) {
	caseID := strings.TrimSpace(c.Param("id"))
	if caseID == "" {
		AbortWithError(c, newValidationError("id", "required", "case id is required"))
		return
	}

	if err := s.triageSvc.Claim(c.Request.Context(), currentActor(c), currentCredential(c), caseID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "claimed"})
}

func (s *Server) UnassignCase(c *gin.Context) {
	caseID := strings.TrimSpace(c.Param("id"))
	if caseID == "" {
		AbortWithError(c, newValidationError("id", "required", "case id is required"))
		return
	}

	if err := s.triageSvc.Unassign(c.Request.Context(), currentActor(c), currentCredential(c), caseID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unassigned"})
}

func (s *Server) ReassignCase(c *gin.Context) {
	caseID := strings.TrimSpace(c.Param("id"))
	if caseID == "" {
		AbortWithError(c, newValidationError("id", "required", "case id is required"))
		return
	}

	var req triagedomain.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.CaseID = caseID

	if err := s.triageSvc.Reassign(c.Request.Context(), currentActor(c), currentCredential(c), req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reassigned"})
}
