package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/repos"
	"github.com/clarivo/clarivo-backend/internal/requestdata"
	"github.com/clarivo/clarivo-backend/internal/types"
)

type SessionService interface {
	List(ctx context.Context, filter repos.SessionFilter) ([]*types.PracticeSession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.PracticeSession, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.PracticeSessionRepo
}

func NewSessionService(db *gorm.DB, log *logger.Logger, sessionRepo repos.PracticeSessionRepo) SessionService {
	serviceLog := log.With("service", "SessionService")
	return &sessionService{db: db, log: serviceLog, sessionRepo: sessionRepo}
}

func (ss *sessionService) List(ctx context.Context, filter repos.SessionFilter) ([]*types.PracticeSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("user id not set in request data"))
	}

	sessions, err := ss.sessionRepo.ListByUser(ctx, nil, rd.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (ss *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.PracticeSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("user id not set in request data"))
	}

	session, err := ss.sessionRepo.GetByUserAndID(ctx, nil, rd.UserID, sessionID)
	if err != nil {
		// Absent and foreign-owned records are indistinguishable on
		// purpose.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("session not found"))
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	return session, nil
}

func (ss *sessionService) Delete(ctx context.Context, sessionID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized(fmt.Errorf("user id not set in request data"))
	}

	if err := ss.sessionRepo.DeleteByUserAndID(ctx, nil, rd.UserID, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(fmt.Errorf("session not found"))
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
