// Package httpapi exposes the VoiceTasker HTTP surface: the log CRUD API,
// the WebSocket live feed, visit tracking and the admin endpoints.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicetasker/voicetasker/internal/logging"
	"github.com/voicetasker/voicetasker/internal/server/hub"
	"github.com/voicetasker/voicetasker/internal/server/models"
	"github.com/voicetasker/voicetasker/internal/server/services"
	"github.com/voicetasker/voicetasker/internal/server/transcribe"
)

// LogService is the surface of services.LogService the handlers need.
type LogService interface {
	Create(ctx context.Context, ownerID, text, audioKey string) (*models.LogEntry, error)
	DeleteOne(ctx context.Context, ownerID, id string) error
	DeleteBatch(ctx context.Context, ownerID string, ids []string) (int64, error)
	Snapshot(ctx context.Context, ownerID string) (hub.Snapshot, error)
	AllGroupedByOwner(ctx context.Context) (map[string][]*models.LogEntry, []string, error)
	Get(ctx context.Context, id string) (*models.LogEntry, error)
}

// AdminService is the surface of services.AdminService the handlers need.
type AdminService interface {
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	VerifyAccessToken(tokenString string) error
}

// ArchiveService is the surface of services.ArchiveService the handlers need.
type ArchiveService interface {
	StoreDataURI(ctx context.Context, audioDataURI string) (string, error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}

// VisitService is the surface of services.VisitService the handlers need.
type VisitService interface {
	Record(ctx context.Context, visit *models.Visit) error
}

// Server holds the Gin engine and service dependencies.
type Server struct {
	engine      *gin.Engine
	address     string
	logger      logging.Logger
	logs        LogService
	admin       AdminService
	archive     ArchiveService
	visits      VisitService
	transcriber transcribe.Transcriber
	hub         *hub.Hub
}

func NewServer(
	address string,
	l logging.Logger,
	logs LogService,
	admin AdminService,
	archive ArchiveService,
	visits VisitService,
	transcriber transcribe.Transcriber,
	h *hub.Hub,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:      engine,
		address:     address,
		logger:      l.With("module", "httpapi"),
		logs:        logs,
		admin:       admin,
		archive:     archive,
		visits:      visits,
		transcriber: transcriber,
		hub:         h,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.POST("/transcriptions", s.handleTranscribe)
		api.POST("/logs", s.handleCreateLog)
		api.DELETE("/logs/:id", s.handleDeleteLog)
		api.POST("/logs/batch-delete", s.handleBatchDelete)
		api.POST("/visits", s.handleVisit)

		admin := api.Group("/admin")
		admin.POST("/login", s.handleAdminLogin)
		admin.POST("/refresh", s.handleAdminRefresh)

		gated := admin.Group("", s.requireAdmin())
		gated.GET("/logs", s.handleAdminLogs)
		gated.GET("/logs/:id/audio", s.handleAdminLogAudio)
	}

	s.engine.GET("/ws/logs", s.handleLogFeed)
	s.engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.address, Handler: s.engine}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
