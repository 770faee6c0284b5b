// Package httpapi exposes the dashboard operations over HTTP. All domain
// errors are caught at this boundary and rendered as JSON messages; nothing
// below it is allowed to crash the process on operator input.
package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"auditcore/internal/auth"
	"auditcore/internal/core"
	"auditcore/pkg/domain"
)

// Server wires the service, auth and metrics into a gin engine.
type Server struct {
	svc      *core.Service
	verifier auth.Verifier
	sessions *auth.SessionManager
	log      *zap.Logger
	registry *prometheus.Registry
	poll     time.Duration
	engine   *gin.Engine
}

// Options configures server construction.
type Options struct {
	Verifier     auth.Verifier
	Sessions     *auth.SessionManager
	Logger       *zap.Logger
	Registry     *prometheus.Registry // nil disables the /metrics endpoint
	PollInterval time.Duration
}

// NewServer builds the router around the supplied service.
func NewServer(svc *core.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Sessions == nil {
		opts.Sessions = auth.NewSessionManager(0)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	s := &Server{
		svc:      svc,
		verifier: opts.Verifier,
		sessions: opts.Sessions,
		log:      opts.Logger,
		registry: opts.Registry,
		poll:     opts.PollInterval,
	}
	registerValidations()
	s.engine = s.buildRouter()
	return s
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("docstatus", func(fl validator.FieldLevel) bool {
			switch domain.DocumentStatus(fl.Field().String()) {
			case domain.DocumentCurrent, domain.DocumentUnderReview, domain.DocumentObsolete:
				return true
			}
			return false
		})
	}
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	r.POST("/api/login", s.handleLogin)

	api := r.Group("/api", s.requireSession())
	{
		api.POST("/logout", s.handleLogout)

		api.GET("/roster", s.handleRosterList)
		api.GET("/roster/metrics", s.handleRosterMetrics)
		api.POST("/roster", s.handleRosterUpsert)
		api.POST("/roster/import", s.handleRosterImport)
		api.DELETE("/roster/:position", s.handleRosterDelete)

		api.GET("/documents", s.handleDocumentList)
		api.GET("/documents/health", s.handleDocumentHealth)
		api.POST("/documents", s.handleDocumentUpsert)
		api.POST("/documents/upload", s.handleDocumentUpload)
		api.POST("/documents/bulk", s.handleDocumentBulk)
	}
	return r
}

// Handler returns the http.Handler for serving or testing.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

const sessionKey = "auditcore_session"

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}
		session, ok := s.sessions.Validate(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired or unknown"})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// renderError maps the domain error taxonomy onto HTTP statuses. Everything
// is reported to the operator for manual retry; there is no automatic retry.
func (s *Server) renderError(c *gin.Context, err error) {
	var (
		validation  domain.ValidationError
		notFound    domain.NotFoundError
		conflict    domain.ConflictError
		schema      domain.SchemaError
		persistence domain.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validation.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &schema):
		c.JSON(http.StatusBadRequest, gin.H{"error": schema.Error()})
	case errors.As(err, &persistence):
		c.JSON(http.StatusBadGateway, gin.H{"error": persistence.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
