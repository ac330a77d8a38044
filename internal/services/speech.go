package services

import (
	"context"

	"github.com/clarivo/clarivo-backend/internal/clients/speechengine"
	"github.com/clarivo/clarivo-backend/internal/logger"
)

// SpeechService fronts the engine's non-scoring endpoints: text-to-speech
// and practice exercise listings.
type SpeechService interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	ListExercises(ctx context.Context, category string) ([]speechengine.Exercise, error)
}

type speechService struct {
	log    *logger.Logger
	engine speechengine.Client
}

func NewSpeechService(log *logger.Logger, engine speechengine.Client) SpeechService {
	serviceLog := log.With("service", "SpeechService")
	return &speechService{log: serviceLog, engine: engine}
}

func (sp *speechService) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	return sp.engine.Synthesize(ctx, text, language)
}

func (sp *speechService) ListExercises(ctx context.Context, category string) ([]speechengine.Exercise, error) {
	return sp.engine.ListExercises(ctx, category)
}
