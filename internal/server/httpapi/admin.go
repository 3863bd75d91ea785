package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/server/models"
)

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleAdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := s.admin.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "admin logged in", "username", req.Username)
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type adminRefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleAdminRefresh(c *gin.Context) {
	var req adminRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := s.admin.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// requireAdmin gates admin endpoints on a valid access token. Requests
// without one are turned away; the client redirects to its login screen.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrorUnauthorized.Error()})
			return
		}

		if err := s.admin.VerifyAccessToken(token); err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

type adminLogsResponse struct {
	Owners []adminOwnerGroup `json:"owners"`
}

type adminOwnerGroup struct {
	OwnerID string             `json:"ownerId"`
	Logs    []*models.LogEntry `json:"logs"`
}

// handleAdminLogs returns all users' logs grouped by owner ID, each group
// newest first.
func (s *Server) handleAdminLogs(c *gin.Context) {
	grouped, owners, err := s.logs.AllGroupedByOwner(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := adminLogsResponse{Owners: make([]adminOwnerGroup, 0, len(owners))}
	for _, owner := range owners {
		resp.Owners = append(resp.Owners, adminOwnerGroup{OwnerID: owner, Logs: grouped[owner]})
	}

	c.JSON(http.StatusOK, resp)
}

// handleAdminLogAudio returns a presigned download URL for the archived
// recording behind a log entry.
func (s *Server) handleAdminLogAudio(c *gin.Context) {
	entry, err := s.logs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if entry.AudioKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no archived audio for this entry"})
		return
	}

	url, err := s.archive.GetPresignedGetURL(c.Request.Context(), entry.AudioKey)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
