package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/services"
)

type SpeechHandler struct {
	log            *logger.Logger
	scoringService services.ScoringService
	speechService  services.SpeechService
	maxBodyBytes   int64
}

func NewSpeechHandler(log *logger.Logger, scoringService services.ScoringService, speechService services.SpeechService, maxAudioBytes int) *SpeechHandler {
	if maxAudioBytes <= 0 {
		maxAudioBytes = 50 * 1024 * 1024
	}
	return &SpeechHandler{
		log:            log.With("handler", "SpeechHandler"),
		scoringService: scoringService,
		speechService:  speechService,
		// Audio arrives base64-encoded inside a JSON body, so the wire
		// ceiling is the audio ceiling plus encoding and framing overhead.
		maxBodyBytes: int64(maxAudioBytes)*4/3 + 64*1024,
	}
}

// POST /api/speech/analyze
// Submit one spoken attempt at a target phrase for scoring.
func (h *SpeechHandler) Analyze(c *gin.Context) {
	// Bound the body before it is buffered; an over-limit upload fails
	// mid-read instead of sitting fully in memory.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req struct {
		AudioData    string `json:"audio_data"`
		TargetPhrase string `json:"target_phrase"`
		Language     string `json:"language"`
		Streak       int    `json:"streak"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, apierr.InvalidInput(fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)))
			return
		}
		RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid request body")))
		return
	}
	if req.AudioData == "" {
		RespondError(c, apierr.InvalidInput(fmt.Errorf("audio data is required")))
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		RespondError(c, apierr.InvalidInput(fmt.Errorf("audio data must be base64 encoded")))
		return
	}

	resp, err := h.scoringService.Submit(c.Request.Context(), services.SubmitRequest{
		Audio:        audio,
		TargetPhrase: req.TargetPhrase,
		Language:     req.Language,
		StreakHint:   req.Streak,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

// POST /api/speech/synthesize
// Text-to-speech for a practice phrase; responds with raw audio bytes.
func (h *SpeechHandler) Synthesize(c *gin.Context) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid request body")))
		return
	}

	audio, err := h.speechService.Synthesize(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// GET /api/speech/exercises?category=
func (h *SpeechHandler) ListExercises(c *gin.Context) {
	exercises, err := h.speechService.ListExercises(c.Request.Context(), c.Query("category"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondList(c, len(exercises), exercises)
}
