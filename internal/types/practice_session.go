package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WordScore is one entry of the per-word comparison between the target
// phrase and the transcription. Order matches the target phrase.
type WordScore struct {
	Word    string `json:"word"`
	Correct bool   `json:"correct"`
}

type PracticeSession struct {
	ID              uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID                      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User                          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Language        string                         `gorm:"not null;index;default:'en-US'" json:"language"`
	TargetPhrase    string                         `gorm:"not null" json:"target_phrase"`
	Transcription   string                         `gorm:"not null;default:''" json:"transcription"`
	Confidence      float64                        `gorm:"not null;default:0" json:"confidence"`
	AccuracyScore   float64                        `gorm:"not null;default:0" json:"accuracy_score"`
	FluencyScore    float64                        `gorm:"not null;default:0" json:"fluency_score"`
	ProsodyScore    float64                        `gorm:"not null;default:0" json:"prosody_score"`
	FinalScore      float64                        `gorm:"not null;default:0;index" json:"final_score"`
	WPM             float64                        `gorm:"column:wpm;not null;default:0" json:"wpm"`
	DurationSeconds float64                        `gorm:"not null;default:0" json:"duration_seconds"`
	Color           string                         `gorm:"not null;default:''" json:"color"`
	WordComparison  datatypes.JSONSlice[WordScore] `gorm:"type:jsonb" json:"word_comparison"`
	Feedback        string                         `gorm:"not null;default:''" json:"feedback"`
	CreatedAt       time.Time                      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt       time.Time                      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt                 `gorm:"index" json:"deleted_at,omitempty"`
}

func (PracticeSession) TableName() string { return "practice_session" }

// Validate enforces the record invariants before a write: required fields
// present, all scores on the 0-100 scale, wpm and duration non-negative.
func (s *PracticeSession) Validate() error {
	if s.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(s.TargetPhrase) == "" {
		return fmt.Errorf("target phrase is required")
	}
	for name, score := range map[string]float64{
		"accuracy_score": s.AccuracyScore,
		"fluency_score":  s.FluencyScore,
		"prosody_score":  s.ProsodyScore,
		"final_score":    s.FinalScore,
	} {
		if score < 0 || score > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %v", name, score)
		}
	}
	if s.WPM < 0 {
		return fmt.Errorf("wpm must be non-negative, got %v", s.WPM)
	}
	if s.DurationSeconds < 0 {
		return fmt.Errorf("duration_seconds must be non-negative, got %v", s.DurationSeconds)
	}
	return nil
}
