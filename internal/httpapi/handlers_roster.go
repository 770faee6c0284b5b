package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"auditcore/internal/core"
	"auditcore/internal/ingest"
	"auditcore/pkg/domain"
)

func (s *Server) handleRosterList(c *gin.Context) {
	entries, metrics, err := s.svc.Roster(c.Request.Context(),
		c.Query("q"), domain.AuditStatus(c.Query("status")))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":               entries,
		"metrics":               metrics,
		"poll_interval_seconds": int(s.poll.Seconds()),
	})
}

func (s *Server) handleRosterMetrics(c *gin.Context) {
	_, metrics, err := s.svc.Roster(c.Request.Context(), "", "")
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

type upsertPersonRequest struct {
	Name         string `json:"name" binding:"required"`
	Department   string `json:"department"`
	LateCount    int    `json:"late_count" binding:"gte=0"`
	AbsenceCount int    `json:"absence_count" binding:"gte=0"`
}

func (s *Server) handleRosterUpsert(c *gin.Context) {
	var req upsertPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	record, outcome, err := s.svc.UpsertPerson(c.Request.Context(), req.Name, core.PersonFields{
		Department:   req.Department,
		LateCount:    req.LateCount,
		AbsenceCount: req.AbsenceCount,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	status := http.StatusOK
	if outcome == domain.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"record":  record,
		"status":  record.Classify(),
		"outcome": outcome,
	})
}

func (s *Server) handleRosterDelete(c *gin.Context) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "position must be an integer"})
		return
	}
	if err := s.svc.DeletePersonAt(c.Request.Context(), position, c.Query("name")); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRosterImport(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	defer func() { _ = file.Close() }()

	records, err := ingest.ReadRosterWorkbook(file)
	if err != nil {
		s.renderError(c, err)
		return
	}
	created, updated, skipped, err := s.svc.ImportRoster(c.Request.Context(), records)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"created": created,
		"updated": updated,
		"skipped": skipped,
	})
}
