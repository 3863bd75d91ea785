package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/server/models"
)

type transcribeRequest struct {
	AudioDataURI string `json:"audioDataUri"`
}

type transcribeResponse struct {
	Transcription string `json:"transcription"`
	AudioKey      string `json:"audioKey,omitempty"`
}

// handleTranscribe forwards the audio payload to the transcription model and
// archives the raw recording. Archive failure is logged but does not fail
// the request; the transcription is still usable.
func (s *Server) handleTranscribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.transcriber.Transcribe(c.Request.Context(), req.AudioDataURI)
	if err != nil {
		s.logger.Error(c.Request.Context(), "transcription failed", "error", err.Error())
		s.writeError(c, err)
		return
	}

	audioKey, err := s.archive.StoreDataURI(c.Request.Context(), req.AudioDataURI)
	if err != nil {
		s.logger.Warn(c.Request.Context(), "audio archive failed", "error", err.Error())
		audioKey = ""
	}

	c.JSON(http.StatusOK, transcribeResponse{
		Transcription: result.EnglishTranscription,
		AudioKey:      audioKey,
	})
}

type createLogRequest struct {
	OwnerID  string `json:"ownerId"`
	Text     string `json:"text"`
	AudioKey string `json:"audioKey"`
}

func (s *Server) handleCreateLog(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := s.logs.Create(c.Request.Context(), req.OwnerID, req.Text, req.AudioKey)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleDeleteLog(c *gin.Context) {
	ownerID := c.Query("owner")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner is required"})
		return
	}

	if err := s.logs.DeleteOne(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type batchDeleteRequest struct {
	OwnerID string   `json:"ownerId"`
	IDs     []string `json:"ids"`
}

type batchDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func (s *Server) handleBatchDelete(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.OwnerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId is required"})
		return
	}

	n, err := s.logs.DeleteBatch(c.Request.Context(), req.OwnerID, req.IDs)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, batchDeleteResponse{Deleted: n})
}

type visitRequest struct {
	GuestID    string `json:"guestId"`
	UserAgent  string `json:"userAgent"`
	Locale     string `json:"locale"`
	ScreenSize string `json:"screenSize"`
	Timezone   string `json:"timezone"`
	Referrer   string `json:"referrer"`
}

func (s *Server) handleVisit(c *gin.Context) {
	var req visitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	visit := visitFromRequest(&req)
	if req.UserAgent == "" {
		visit.UserAgent = c.Request.UserAgent()
	}

	if err := s.visits.Record(c.Request.Context(), visit); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func visitFromRequest(req *visitRequest) *models.Visit {
	return &models.Visit{
		GuestID:    req.GuestID,
		UserAgent:  req.UserAgent,
		Locale:     req.Locale,
		ScreenSize: req.ScreenSize,
		Timezone:   req.Timezone,
		Referrer:   req.Referrer,
	}
}

// writeError maps sentinel errors onto HTTP statuses. Anything unmatched is
// an internal error; its details stay out of the response body.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidAudioPayload),
		errors.Is(err, common.ErrEmptyText),
		errors.Is(err, common.ErrNoOwner),
		errors.Is(err, common.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The AI model is currently unavailable. Please try again later."})
	case errors.Is(err, common.ErrAdminConfigMissing):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Admin configuration error. Please contact support."})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
