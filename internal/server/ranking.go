package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	rankingdomain "github.com/loopwire/partnerly/internal/ranking/domain"
	"github.com/loopwire/partnerly/pkg/db/pagination"
)

// PartnerRanking serves GET /v1/programs/:program_id/partner-ranking.
func (s *Server) PartnerRanking(c *gin.Context) {
	programID := strings.TrimSpace(c.Param("program_id"))

	var query struct {
		Status     string `form:"status"`
		PartnerIDs string `form:"partner_ids"`
		Country    string `form:"country"`
		Starred    string `form:"starred"`
		Page       int    `form:"page"`
		PageSize   int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	starred, err := parseOptionalBool(query.Starred)
	if err != nil {
		AbortWithError(c, newValidationError("starred", "invalid_starred", "invalid starred"))
		return
	}

	status := rankingdomain.Status(strings.TrimSpace(query.Status))
	if status == "" {
		status = rankingdomain.StatusDiscover
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	similar, err := s.similaritySvc.SimilarPrograms(c.Request.Context(), programID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.rankingSvc.CalculatePartnerRanking(c.Request.Context(), rankingdomain.Request{
		ProgramID:       programID,
		Status:          status,
		PartnerIDs:      splitCSV(query.PartnerIDs),
		Country:         strings.TrimSpace(query.Country),
		Starred:         starred,
		Page:            page,
		PageSize:        pageSize,
		SimilarPrograms: similar,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": rows,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// SimilarPrograms serves GET /v1/programs/:program_id/similar-programs.
func (s *Server) SimilarPrograms(c *gin.Context) {
	programID := strings.TrimSpace(c.Param("program_id"))

	similar, err := s.similaritySvc.SimilarPrograms(c.Request.Context(), programID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": similar})
}
