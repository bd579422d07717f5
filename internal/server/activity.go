package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/loopwire/partnerly/internal/activity/domain"
)

type publishEventRequest struct {
	ID        string `json:"id"`
	ProgramID string `json:"program_id"`
	PartnerID string `json:"partner_id"`
	Type      string `json:"type"`
}

// PublishActivityEvent serves POST /v1/activity/events. It appends one
// tracking event to the stream for the aggregator to pick up.
func (s *Server) PublishActivityEvent(c *gin.Context) {
	var req publishEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	eventType := activitydomain.EventType(strings.TrimSpace(req.Type))
	switch eventType {
	case activitydomain.EventLead, activitydomain.EventCommission:
	default:
		AbortWithError(c, newValidationError("type", "invalid_type", "invalid event type"))
		return
	}
	programID := strings.TrimSpace(req.ProgramID)
	partnerID := strings.TrimSpace(req.PartnerID)
	if programID == "" {
		AbortWithError(c, newValidationError("program_id", "invalid_program_id", "program_id is required"))
		return
	}
	if partnerID == "" {
		AbortWithError(c, newValidationError("partner_id", "invalid_partner_id", "partner_id is required"))
		return
	}

	entryID, err := s.stream.Publish(c.Request.Context(), activitydomain.Event{
		ID:        strings.TrimSpace(req.ID),
		ProgramID: programID,
		PartnerID: partnerID,
		Type:      eventType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"entry_id": entryID}})
}
