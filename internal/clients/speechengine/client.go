package speechengine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/types"
	"github.com/clarivo/clarivo-backend/internal/utils"
)

const DefaultLanguage = "en-US"

// Client talks to the external analysis engine. Analysis is synchronous and
// never retried here: a failed attempt is surfaced to the user as retryable.
type Client interface {
	Analyze(ctx context.Context, audio []byte, targetPhrase, language string) (*AnalysisResult, error)
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	ListExercises(ctx context.Context, category string) ([]Exercise, error)
}

type Config struct {
	BaseURL        string
	APIKey         string
	AnalyzeTimeout time.Duration
	RequestTimeout time.Duration
	MaxAudioBytes  int
}

func ConfigFromEnv(log *logger.Logger) Config {
	analyzeSec := utils.GetEnvAsInt("SPEECH_ENGINE_ANALYZE_TIMEOUT_SECONDS", 45, log)
	requestSec := utils.GetEnvAsInt("SPEECH_ENGINE_TIMEOUT_SECONDS", 10, log)
	maxAudioMB := utils.GetEnvAsInt("SPEECH_ENGINE_MAX_AUDIO_MB", 50, log)

	return Config{
		BaseURL:        strings.TrimSpace(os.Getenv("SPEECH_ENGINE_URL")),
		APIKey:         strings.TrimSpace(os.Getenv("SPEECH_ENGINE_API_KEY")),
		AnalyzeTimeout: time.Duration(analyzeSec) * time.Second,
		RequestTimeout: time.Duration(requestSec) * time.Second,
		MaxAudioBytes:  maxAudioMB * 1024 * 1024,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv(log))
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing SPEECH_ENGINE_URL")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	// Audio analysis is variable-latency, so the analyze bound is much
	// looser than the bound for TTS and exercise listing.
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = 45 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = 50 * 1024 * 1024
	}

	return &client{
		log:           log.With("client", "SpeechEngineClient"),
		cfg:           cfg,
		analyzeClient: &http.Client{Timeout: cfg.AnalyzeTimeout},
		shortClient:   &http.Client{Timeout: cfg.RequestTimeout},
	}, nil
}

type client struct {
	log           *logger.Logger
	cfg           Config
	analyzeClient *http.Client
	shortClient   *http.Client
}

// --- public result types ---

type AnalysisResult struct {
	Transcription   string            `json:"transcription"`
	Confidence      float64           `json:"confidence"`
	AccuracyScore   float64           `json:"accuracy_score"`
	FluencyScore    float64           `json:"fluency_score"`
	ProsodyScore    float64           `json:"prosody_score"`
	FinalScore      float64           `json:"final_score"`
	WPM             float64           `json:"wpm"`
	DurationSeconds float64           `json:"duration_seconds"`
	Color           string            `json:"color"`
	WordComparison  []types.WordScore `json:"word_comparison"`
	Feedback        string            `json:"feedback"`
}

type Exercise struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Phrase     string `json:"phrase"`
	Language   string `json:"language"`
	Difficulty string `json:"difficulty"`
}

// --- engine wire types ---

type analyzeRequest struct {
	Audio        string `json:"audio"`
	TargetPhrase string `json:"targetPhrase"`
	Language     string `json:"language"`
}

type analyzeResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Transcription struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"transcription"`
	Scoring struct {
		Accuracy       float64           `json:"accuracy"`
		Fluency        float64           `json:"fluency"`
		Prosody        float64           `json:"prosody"`
		FinalScore     float64           `json:"finalScore"`
		WPM            float64           `json:"wpm"`
		Duration       float64           `json:"duration"`
		Color          string            `json:"color"`
		WordComparison []types.WordScore `json:"wordComparison"`
	} `json:"scoring"`
	Feedback string `json:"feedback"`
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type exercisesResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Data    []Exercise `json:"data"`
}

func (c *client) Analyze(ctx context.Context, audio []byte, targetPhrase, language string) (*AnalysisResult, error) {
	if len(audio) == 0 {
		return nil, apierr.InvalidInput(fmt.Errorf("audio payload is required"))
	}
	if len(audio) > c.cfg.MaxAudioBytes {
		return nil, apierr.InvalidInput(fmt.Errorf("audio payload exceeds %d bytes", c.cfg.MaxAudioBytes))
	}
	if strings.TrimSpace(targetPhrase) == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("target phrase is required"))
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	body := analyzeRequest{
		Audio:        base64.StdEncoding.EncodeToString(audio),
		TargetPhrase: targetPhrase,
		Language:     language,
	}

	start := time.Now()
	raw, err := c.post(ctx, c.analyzeClient, "/analyze", body)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Engine analyze call finished", "elapsed", time.Since(start).String())

	var resp analyzeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierr.EngineRejected(fmt.Errorf("engine returned malformed analysis response: %w", err))
	}
	if !resp.Success {
		msg := strings.TrimSpace(resp.Error)
		if msg == "" {
			msg = "analysis failed"
		}
		// The engine's own message is passed through verbatim.
		return nil, apierr.EngineRejected(errors.New(msg))
	}

	return &AnalysisResult{
		Transcription:   resp.Transcription.Text,
		Confidence:      resp.Transcription.Confidence,
		AccuracyScore:   resp.Scoring.Accuracy,
		FluencyScore:    resp.Scoring.Fluency,
		ProsodyScore:    resp.Scoring.Prosody,
		FinalScore:      resp.Scoring.FinalScore,
		WPM:             resp.Scoring.WPM,
		DurationSeconds: resp.Scoring.Duration,
		Color:           resp.Scoring.Color,
		WordComparison:  resp.Scoring.WordComparison,
		Feedback:        resp.Feedback,
	}, nil
}

func (c *client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("text is required"))
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return c.post(ctx, c.shortClient, "/synthesize", synthesizeRequest{Text: text, Language: language})
}

func (c *client) ListExercises(ctx context.Context, category string) ([]Exercise, error) {
	endpoint := c.cfg.BaseURL + "/exercises"
	if category = strings.TrimSpace(category); category != "" {
		endpoint += "?category=" + url.QueryEscape(category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build exercises request: %w", err)
	}
	c.setHeaders(req)

	raw, err := c.do(c.shortClient, req)
	if err != nil {
		return nil, err
	}

	var resp exercisesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierr.EngineRejected(fmt.Errorf("engine returned malformed exercises response: %w", err))
	}
	if !resp.Success {
		msg := strings.TrimSpace(resp.Error)
		if msg == "" {
			msg = "exercise listing failed"
		}
		return nil, apierr.EngineRejected(errors.New(msg))
	}
	return resp.Data, nil
}

func (c *client) post(ctx context.Context, hc *http.Client, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	return c.do(hc, req)
}

func (c *client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

func (c *client) do(hc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		if isTimeout(err) {
			// Timeouts are logged separately from plain unreachability.
			c.log.Warn("Engine call timed out", "path", req.URL.Path, "error", err)
			return nil, apierr.EngineTimeout(err)
		}
		c.log.Warn("Engine unreachable", "path", req.URL.Path, "error", err)
		return nil, apierr.EngineUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.EngineUnavailable(fmt.Errorf("read engine response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := engineErrorMessage(raw)
		if msg == "" {
			msg = fmt.Sprintf("engine responded with status %d", resp.StatusCode)
		}
		return nil, apierr.EngineRejected(errors.New(msg))
	}
	return raw, nil
}

func engineErrorMessage(raw []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if strings.TrimSpace(envelope.Error) != "" {
		return strings.TrimSpace(envelope.Error)
	}
	return strings.TrimSpace(envelope.Message)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
