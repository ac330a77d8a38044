package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/clients/speechengine"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/repos"
	"github.com/clarivo/clarivo-backend/internal/requestdata"
	"github.com/clarivo/clarivo-backend/internal/types"
)

type SubmitRequest struct {
	Audio        []byte
	TargetPhrase string
	Language     string
	// StreakHint is client-supplied display state. It feeds the
	// encouragement string only, never scoring or statistics.
	StreakHint int
}

type ScoringResponse struct {
	SessionID       uuid.UUID         `json:"session_id"`
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
	Tips            []string          `json:"tips"`
	Encouragement   string            `json:"encouragement"`
}

type ScoringService interface {
	Submit(ctx context.Context, req SubmitRequest) (*ScoringResponse, error)
}

type scoringService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.PracticeSessionRepo
	engine      speechengine.Client
}

func NewScoringService(db *gorm.DB, log *logger.Logger, sessionRepo repos.PracticeSessionRepo, engine speechengine.Client) ScoringService {
	serviceLog := log.With("service", "ScoringService")
	return &scoringService{
		db:          db,
		log:         serviceLog,
		sessionRepo: sessionRepo,
		engine:      engine,
	}
}

var improvementTips = []string{
	"Speak slowly and articulate each word clearly.",
	"Practice difficult words on their own before the full phrase.",
	"Listen to the target phrase once more before recording again.",
}

// Submit runs the scoring pipeline: validate input, call the analysis
// engine, persist the scored session, assemble the response. Engine
// failures propagate as-is; nothing is persisted for a failed analysis.
func (ss *scoringService) Submit(ctx context.Context, req SubmitRequest) (*ScoringResponse, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("user id not set in request data"))
	}

	if len(req.Audio) == 0 {
		return nil, apierr.InvalidInput(fmt.Errorf("audio data is required"))
	}
	if strings.TrimSpace(req.TargetPhrase) == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("target phrase is required"))
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = speechengine.DefaultLanguage
	}

	// The engine call keeps its own timeout but is detached from the
	// caller's cancellation, so a dropped connection does not abort an
	// analysis already in flight.
	engineCtx := context.WithoutCancel(ctx)
	result, err := ss.engine.Analyze(engineCtx, req.Audio, req.TargetPhrase, language)
	if err != nil {
		return nil, err
	}

	// Nobody is waiting for the result anymore; discard it instead of
	// persisting work the caller will never see.
	if ctx.Err() != nil {
		ss.log.Warn("Caller gone before analysis completed, discarding result", "user_id", rd.UserID.String())
		return nil, apierr.New(499, apierr.CodeCanceled, ctx.Err())
	}

	session := &types.PracticeSession{
		ID:              uuid.New(),
		UserID:          rd.UserID,
		Language:        language,
		TargetPhrase:    req.TargetPhrase,
		Transcription:   result.Transcription,
		Confidence:      result.Confidence,
		AccuracyScore:   result.AccuracyScore,
		FluencyScore:    result.FluencyScore,
		ProsodyScore:    result.ProsodyScore,
		FinalScore:      result.FinalScore,
		WPM:             result.WPM,
		DurationSeconds: result.DurationSeconds,
		Color:           result.Color,
		WordComparison:  datatypes.NewJSONSlice(result.WordComparison),
		Feedback:        result.Feedback,
	}

	if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := ss.sessionRepo.Create(ctx, tx, session)
		return cErr
	}); err != nil {
		ss.log.Error("Failed to persist scored session", "user_id", rd.UserID.String(), "error", err)
		return nil, apierr.Persistence(fmt.Errorf("failed to persist scored session: %w", err))
	}

	return &ScoringResponse{
		SessionID:       session.ID,
		Transcription:   result.Transcription,
		Confidence:      result.Confidence,
		AccuracyScore:   result.AccuracyScore,
		FluencyScore:    result.FluencyScore,
		ProsodyScore:    result.ProsodyScore,
		FinalScore:      result.FinalScore,
		WPM:             result.WPM,
		DurationSeconds: result.DurationSeconds,
		Color:           result.Color,
		WordComparison:  result.WordComparison,
		Feedback:        result.Feedback,
		Tips:            improvementTips,
		Encouragement:   encouragement(req.StreakHint),
	}, nil
}

func encouragement(streakHint int) string {
	if streakHint > 0 {
		return fmt.Sprintf("That's %d in a row. Keep it going!", streakHint+1)
	}
	return "Nice work. Every attempt makes you better."
}
