package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/repos"
	"github.com/clarivo/clarivo-backend/internal/requestdata"
	"github.com/clarivo/clarivo-backend/internal/types"
)

type Stats struct {
	TotalSessions int     `json:"total_sessions"`
	BestScore     float64 `json:"best_score"`
	AverageScore  float64 `json:"average_score"`
	AverageWPM    float64 `json:"average_wpm"`
	StreakDays    int     `json:"streak_days"`
}

type StatsService interface {
	ComputeStats(ctx context.Context) (*Stats, error)
}

type statsService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.PracticeSessionRepo
}

func NewStatsService(db *gorm.DB, log *logger.Logger, sessionRepo repos.PracticeSessionRepo) StatsService {
	serviceLog := log.With("service", "StatsService")
	return &statsService{db: db, log: serviceLog, sessionRepo: sessionRepo}
}

// ComputeStats aggregates over the user's full session history in one
// pass. The aggregation is explicit rather than pushed into the query so
// it holds for any storage engine.
func (st *statsService) ComputeStats(ctx context.Context) (*Stats, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("user id not set in request data"))
	}

	sessions, err := st.sessionRepo.ListAllByUser(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	stats := &Stats{TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		return stats, nil
	}

	var scoreSum, wpmSum float64
	for _, s := range sessions {
		if s.FinalScore > stats.BestScore {
			stats.BestScore = s.FinalScore
		}
		scoreSum += s.FinalScore
		wpmSum += s.WPM
	}
	stats.AverageScore = scoreSum / float64(len(sessions))
	stats.AverageWPM = wpmSum / float64(len(sessions))
	stats.StreakDays = streakDays(sessions)

	return stats, nil
}

// streakDays counts the most recent run of consecutive calendar days (UTC)
// with at least one session. Sessions arrive newest first; repeated
// same-day sessions collapse to one day.
func streakDays(sessions []*types.PracticeSession) int {
	if len(sessions) == 0 {
		return 0
	}

	streak := 0
	var prev time.Time
	for _, s := range sessions {
		day := s.CreatedAt.UTC().Truncate(24 * time.Hour)
		if streak == 0 {
			streak = 1
			prev = day
			continue
		}
		if day.Equal(prev) {
			continue
		}
		if day.Equal(prev.AddDate(0, 0, -1)) {
			streak++
			prev = day
			continue
		}
		break
	}
	return streak
}
