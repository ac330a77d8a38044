package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/types"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// SessionFilter narrows ListByUser. Zero values mean "no filter" /
// defaulted pagination.
type SessionFilter struct {
	Language string
	Limit    int
	Offset   int
}

type PracticeSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.PracticeSession) (*types.PracticeSession, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter SessionFilter) ([]*types.PracticeSession, error)
	ListAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PracticeSession, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter SessionFilter) (int64, error)
	GetByUserAndID(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) (*types.PracticeSession, error)
	DeleteByUserAndID(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) error
}

type practiceSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeSessionRepo(db *gorm.DB, baseLog *logger.Logger) PracticeSessionRepo {
	repoLog := baseLog.With("repo", "PracticeSessionRepo")
	return &practiceSessionRepo{db: db, log: repoLog}
}

func (r *practiceSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.PracticeSession) (*types.PracticeSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if session == nil {
		return nil, apierr.InvalidInput(gorm.ErrInvalidData)
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if err := session.Validate(); err != nil {
		return nil, apierr.InvalidInput(err)
	}

	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *practiceSessionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter SessionFilter) ([]*types.PracticeSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PracticeSession
	if userID == uuid.Nil {
		return results, nil
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID)
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *practiceSessionRepo) ListAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PracticeSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PracticeSession
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *practiceSessionRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter SessionFilter) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return 0, nil
	}

	q := transaction.WithContext(ctx).
		Model(&types.PracticeSession{}).
		Where("user_id = ?", userID)
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *practiceSessionRepo) GetByUserAndID(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) (*types.PracticeSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || sessionID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var result types.PracticeSession
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *practiceSessionRepo) DeleteByUserAndID(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || sessionID == uuid.Nil {
		return gorm.ErrRecordNotFound
	}

	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&types.PracticeSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
