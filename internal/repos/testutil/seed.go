package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clarivo/clarivo-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:                uuid.New(),
		Email:             email,
		Name:              "Test User",
		PreferredLanguage: "en-US",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedSession creates a valid scored session for userID. A non-zero
// createdAt is honored so streak tests can place sessions on specific days.
func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, finalScore float64, createdAt time.Time) *types.PracticeSession {
	tb.Helper()
	s := &types.PracticeSession{
		ID:              uuid.New(),
		UserID:          userID,
		Language:        "en-US",
		TargetPhrase:    "hello how are you",
		Transcription:   "hello how are you",
		Confidence:      0.9,
		AccuracyScore:   finalScore,
		FluencyScore:    finalScore,
		ProsodyScore:    finalScore,
		FinalScore:      finalScore,
		WPM:             110,
		DurationSeconds: 2.5,
		Color:           "green",
		WordComparison: datatypes.NewJSONSlice([]types.WordScore{
			{Word: "hello", Correct: true},
			{Word: "how", Correct: true},
			{Word: "are", Correct: true},
			{Word: "you", Correct: true},
		}),
		Feedback: "Good job",
	}
	if !createdAt.IsZero() {
		s.CreatedAt = createdAt
		s.UpdatedAt = createdAt
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}
