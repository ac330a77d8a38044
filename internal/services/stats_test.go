package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/repos"
	"github.com/clarivo/clarivo-backend/internal/requestdata"
	"github.com/clarivo/clarivo-backend/internal/types"
)

type fakeSessionRepo struct {
	repos.PracticeSessionRepo
	sessions []*types.PracticeSession
	created  []*types.PracticeSession
	err      error
}

func (f *fakeSessionRepo) ListAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PracticeSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.PracticeSession) (*types.PracticeSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, session)
	return session, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return d.Add(10 * time.Hour)
}

func sessionsOnDays(t *testing.T, userID uuid.UUID, days ...string) []*types.PracticeSession {
	t.Helper()
	out := make([]*types.PracticeSession, 0, len(days))
	for _, d := range days {
		out = append(out, &types.PracticeSession{
			ID:         uuid.New(),
			UserID:     userID,
			FinalScore: 80,
			WPM:        100,
			CreatedAt:  day(t, d),
		})
	}
	return out
}

func TestComputeStats_Streak(t *testing.T) {
	userID := uuid.New()

	cases := []struct {
		name string
		days []string // newest first, matching repo ordering
		want int
	}{
		{"empty", nil, 0},
		{"single day", []string{"2026-01-08"}, 1},
		{"three consecutive days", []string{"2026-01-08", "2026-01-07", "2026-01-06"}, 3},
		{"gap breaks run immediately", []string{"2026-01-08", "2026-01-06", "2026-01-05"}, 1},
		{"duplicate day collapses", []string{"2026-01-08", "2026-01-08", "2026-01-07"}, 2},
		{"run then gap", []string{"2026-01-08", "2026-01-07", "2026-01-05", "2026-01-04"}, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewStatsService(nil, testLogger(t), &fakeSessionRepo{sessions: sessionsOnDays(t, userID, tc.days...)})
			stats, err := svc.ComputeStats(authedCtx(userID))
			if err != nil {
				t.Fatalf("ComputeStats: %v", err)
			}
			if stats.StreakDays != tc.want {
				t.Fatalf("streak: got %d want %d (days %v)", stats.StreakDays, tc.want, tc.days)
			}
		})
	}
}

func TestComputeStats_Averages(t *testing.T) {
	userID := uuid.New()
	sessions := []*types.PracticeSession{
		{ID: uuid.New(), UserID: userID, FinalScore: 80, WPM: 90, CreatedAt: day(t, "2026-01-08")},
		{ID: uuid.New(), UserID: userID, FinalScore: 60, WPM: 110, CreatedAt: day(t, "2026-01-07")},
		{ID: uuid.New(), UserID: userID, FinalScore: 100, WPM: 100, CreatedAt: day(t, "2026-01-06")},
	}

	svc := NewStatsService(nil, testLogger(t), &fakeSessionRepo{sessions: sessions})
	stats, err := svc.ComputeStats(authedCtx(userID))
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if stats.TotalSessions != 3 {
		t.Fatalf("total: got %d want 3", stats.TotalSessions)
	}
	if stats.BestScore != 100 {
		t.Fatalf("best: got %v want 100", stats.BestScore)
	}
	if stats.AverageScore != 80 {
		t.Fatalf("average score: got %v want 80", stats.AverageScore)
	}
	if stats.AverageWPM != 100 {
		t.Fatalf("average wpm: got %v want 100", stats.AverageWPM)
	}
}

func TestComputeStats_EmptyHistory(t *testing.T) {
	userID := uuid.New()
	svc := NewStatsService(nil, testLogger(t), &fakeSessionRepo{})
	stats, err := svc.ComputeStats(authedCtx(userID))
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if stats.TotalSessions != 0 || stats.BestScore != 0 || stats.AverageScore != 0 || stats.AverageWPM != 0 || stats.StreakDays != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestComputeStats_RequiresUser(t *testing.T) {
	svc := NewStatsService(nil, testLogger(t), &fakeSessionRepo{})
	if _, err := svc.ComputeStats(context.Background()); err == nil {
		t.Fatalf("expected error without request data")
	}
}
