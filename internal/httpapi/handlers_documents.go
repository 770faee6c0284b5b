package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auditcore/internal/ingest"
	"auditcore/pkg/domain"
)

func (s *Server) handleDocumentList(c *gin.Context) {
	records, health, err := s.svc.Documents(c.Request.Context(),
		c.Query("q"), domain.DocumentStatus(c.Query("status")))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documents":             records,
		"health":                health,
		"poll_interval_seconds": int(s.poll.Seconds()),
	})
}

func (s *Server) handleDocumentHealth(c *gin.Context) {
	_, health, err := s.svc.Documents(c.Request.Context(), "", "")
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}

type documentRequest struct {
	Code         string `json:"code" form:"code" binding:"required"`
	Title        string `json:"title" form:"title" binding:"required"`
	Revision     string `json:"revision" form:"revision"`
	IssueDate    string `json:"issue_date" form:"issue_date"`
	NextReview   string `json:"next_review" form:"next_review"`
	Area         string `json:"area" form:"area"`
	Status       string `json:"status" form:"status" binding:"omitempty,docstatus"`
	DocumentType string `json:"document_type" form:"document_type"`
	Link         string `json:"link" form:"link"`
	Owner        string `json:"owner" form:"owner"`
}

func (r documentRequest) record() domain.DocumentRecord {
	revision := r.Revision
	if revision == "" {
		revision = "0"
	}
	return domain.DocumentRecord{
		Code:         r.Code,
		Title:        r.Title,
		Revision:     revision,
		IssueDate:    ingest.ParseDayFirst(r.IssueDate),
		NextReview:   ingest.ParseDayFirst(r.NextReview),
		Area:         r.Area,
		Status:       domain.DocumentStatus(r.Status),
		DocumentType: r.DocumentType,
		Link:         r.Link,
		Owner:        r.Owner,
	}
}

func (s *Server) handleDocumentUpsert(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	outcome, err := s.svc.UpsertDocument(c.Request.Context(), req.record())
	if err != nil {
		s.renderError(c, err)
		return
	}
	status := http.StatusOK
	if outcome == domain.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"outcome": outcome})
}

func (s *Server) handleDocumentUpload(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	defer func() { _ = file.Close() }()

	record, outcome, err := s.svc.UploadDocument(c.Request.Context(), req.record(),
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.renderError(c, err)
		return
	}
	status := http.StatusOK
	if outcome == domain.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"record": record, "outcome": outcome})
}

func (s *Server) handleDocumentBulk(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	defer func() { _ = file.Close() }()

	header, rows, err := ingest.ReadCSV(file)
	if err != nil {
		s.renderError(c, err)
		return
	}
	cleaned, err := ingest.Clean(header, rows)
	if err != nil {
		s.renderError(c, err)
		return
	}
	stored, err := s.svc.BulkReplaceDocuments(c.Request.Context(), cleaned)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": stored})
}
