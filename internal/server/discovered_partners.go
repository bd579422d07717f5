package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type starRequest struct {
	Starred *bool `json:"starred"`
}

type ignoreRequest struct {
	Ignored *bool `json:"ignored"`
}

// StarDiscoveredPartner serves PUT /v1/programs/:program_id/discovered-partners/:partner_id/star.
func (s *Server) StarDiscoveredPartner(c *gin.Context) {
	programID := strings.TrimSpace(c.Param("program_id"))
	partnerID := strings.TrimSpace(c.Param("partner_id"))

	// body is optional; omitting it means "set"
	req := starRequest{}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}
	starred := true
	if req.Starred != nil {
		starred = *req.Starred
	}

	row, err := s.discoverySvc.Star(c.Request.Context(), programID, partnerID, starred)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": row})
}

// IgnoreDiscoveredPartner serves PUT /v1/programs/:program_id/discovered-partners/:partner_id/ignore.
func (s *Server) IgnoreDiscoveredPartner(c *gin.Context) {
	programID := strings.TrimSpace(c.Param("program_id"))
	partnerID := strings.TrimSpace(c.Param("partner_id"))

	req := ignoreRequest{}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}
	ignored := true
	if req.Ignored != nil {
		ignored = *req.Ignored
	}

	row, err := s.discoverySvc.Ignore(c.Request.Context(), programID, partnerID, ignored)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": row})
}

// InviteDiscoveredPartner serves POST /v1/programs/:program_id/discovered-partners/:partner_id/invite.
func (s *Server) InviteDiscoveredPartner(c *gin.Context) {
	programID := strings.TrimSpace(c.Param("program_id"))
	partnerID := strings.TrimSpace(c.Param("partner_id"))

	row, err := s.discoverySvc.MarkInvited(c.Request.Context(), programID, partnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": row})
}
