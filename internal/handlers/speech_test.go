package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/clients/speechengine"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/services"
)

type fakeScoringService struct {
	resp  *services.ScoringResponse
	err   error
	calls int
}

func (f *fakeScoringService) Submit(ctx context.Context, req services.SubmitRequest) (*services.ScoringResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeSpeechService struct{}

func (fakeSpeechService) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	return []byte("audio"), nil
}

func (fakeSpeechService) ListExercises(ctx context.Context, category string) ([]speechengine.Exercise, error) {
	return nil, nil
}

func newSpeechRouter(t *testing.T, scoring services.ScoringService, maxAudioBytes int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := gin.New()
	h := NewSpeechHandler(log, scoring, fakeSpeechService{}, maxAudioBytes)
	r.POST("/api/speech/analyze", h.Analyze)
	return r
}

func analyzeBody(t *testing.T, audio []byte) *strings.Reader {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"audio_data":    base64.StdEncoding.EncodeToString(audio),
		"target_phrase": "hello world",
		"language":      "en-US",
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return strings.NewReader(string(payload))
}

func TestAnalyze_RejectsOversizedBody(t *testing.T) {
	scoring := &fakeScoringService{}
	r := newSpeechRouter(t, scoring, 1024)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/speech/analyze", analyzeBody(t, make([]byte, 256*1024)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Error.Code != apierr.CodeInvalidInput {
		t.Fatalf("unexpected error envelope: %s", rec.Body.String())
	}
	if scoring.calls != 0 {
		t.Fatalf("expected scoring untouched, got %d calls", scoring.calls)
	}
}

func TestAnalyze_AcceptsBodyWithinLimit(t *testing.T) {
	scoring := &fakeScoringService{resp: &services.ScoringResponse{
		SessionID:  uuid.New(),
		FinalScore: 90,
	}}
	r := newSpeechRouter(t, scoring, 1024*1024)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/speech/analyze", analyzeBody(t, make([]byte, 16*1024)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if scoring.calls != 1 {
		t.Fatalf("expected one scoring call, got %d", scoring.calls)
	}
	var body struct {
		Success bool                     `json:"success"`
		Data    services.ScoringResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Data.FinalScore != 90 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
}
