package speechengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/logger"
)

func newTestClient(t *testing.T, baseURL string, mutate func(*Config)) Client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	cfg := Config{
		BaseURL:        baseURL,
		AnalyzeTimeout: 5 * time.Second,
		RequestTimeout: 5 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(log, cfg)
	if err != nil {
		t.Fatalf("init client: %v", err)
	}
	return c
}

func TestAnalyze_ParsesEngineResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.TargetPhrase != "hello how are you" || req.Language != "en-US" || req.Audio == "" {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"transcription": {"text": "hello how are you", "confidence": 0.91},
			"scoring": {
				"accuracy": 82, "fluency": 78, "prosody": 74, "finalScore": 80,
				"wpm": 115, "duration": 2.4, "color": "green",
				"wordComparison": [
					{"word": "hello", "correct": true},
					{"word": "how", "correct": true},
					{"word": "are", "correct": false},
					{"word": "you", "correct": true}
				]
			},
			"feedback": "Work on 'are'."
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	result, err := c.Analyze(context.Background(), []byte("audio-bytes"), "hello how are you", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Transcription != "hello how are you" || result.Confidence != 0.91 {
		t.Fatalf("unexpected transcription: %+v", result)
	}
	if result.FinalScore != 80 || result.WPM != 115 || result.Color != "green" {
		t.Fatalf("unexpected scoring: %+v", result)
	}
	if len(result.WordComparison) != 4 || result.WordComparison[2].Correct {
		t.Fatalf("unexpected word comparison: %+v", result.WordComparison)
	}
	if result.Feedback != "Work on 'are'." {
		t.Fatalf("unexpected feedback: %q", result.Feedback)
	}
}

func TestAnalyze_EngineRejectionPassesMessageThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "error": "audio too noisy to score"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.Analyze(context.Background(), []byte("x"), "hello", "en-US")
	if !apierr.Is(err, apierr.CodeEngineRejected) {
		t.Fatalf("expected engine_rejected, got %v", err)
	}
	if err.Error() != "audio too noisy to score" {
		t.Fatalf("engine message must pass through verbatim, got %q", err.Error())
	}
}

func TestAnalyze_HTTPErrorStatusIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "unsupported audio codec"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.Analyze(context.Background(), []byte("x"), "hello", "en-US")
	if !apierr.Is(err, apierr.CodeEngineRejected) {
		t.Fatalf("expected engine_rejected, got %v", err)
	}
	if err.Error() != "unsupported audio codec" {
		t.Fatalf("expected engine message, got %q", err.Error())
	}
}

func TestAnalyze_UnreachableEngineIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.Analyze(context.Background(), []byte("x"), "hello", "en-US")
	if !apierr.Is(err, apierr.CodeEngineUnavailable) {
		t.Fatalf("expected engine_unavailable, got %v", err)
	}
}

func TestAnalyze_SlowEngineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.AnalyzeTimeout = 50 * time.Millisecond
	})
	_, err := c.Analyze(context.Background(), []byte("x"), "hello", "en-US")
	if !apierr.Is(err, apierr.CodeEngineTimeout) {
		t.Fatalf("expected engine_timeout, got %v", err)
	}
}

func TestAnalyze_InputBounds(t *testing.T) {
	c := newTestClient(t, "http://localhost:1", func(cfg *Config) {
		cfg.MaxAudioBytes = 4
	})

	if _, err := c.Analyze(context.Background(), nil, "hello", ""); !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("empty audio: expected invalid_input, got %v", err)
	}
	if _, err := c.Analyze(context.Background(), []byte("12345"), "hello", ""); !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("oversized audio: expected invalid_input, got %v", err)
	}
	if _, err := c.Analyze(context.Background(), []byte("x"), "  ", ""); !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("blank phrase: expected invalid_input, got %v", err)
	}
}

func TestListExercises_FiltersByCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exercises" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("category"); got != "greetings" {
			t.Errorf("unexpected category %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": [{"id": "ex-1", "category": "greetings", "phrase": "hello there", "language": "en-US", "difficulty": "easy"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	exercises, err := c.ListExercises(context.Background(), "greetings")
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(exercises) != 1 || exercises[0].Phrase != "hello there" {
		t.Fatalf("unexpected exercises: %+v", exercises)
	}
}

func TestSynthesize_ReturnsRawAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/synthesize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0x49, 0x44, 0x33})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	audio, err := c.Synthesize(context.Background(), "hello there", "")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(audio) != 3 {
		t.Fatalf("unexpected audio payload: %v", audio)
	}
}
