package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"time"

	"gorm.io/gorm"
)

// gormSessionRepository implements repository.SessionRepository.
type gormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new instance of gormSessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &gormSessionRepository{db: db}
}

func (r *gormSessionRepository) CreateHeader(ctx context.Context, header *domain.SessionHeader) error {
	if header.WorkoutDate.IsZero() {
		header.WorkoutDate = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(header).Error
}

func (r *gormSessionRepository) GetHeaderByID(ctx context.Context, sessionID uint) (*domain.SessionHeader, error) {
	var header domain.SessionHeader
	err := r.db.WithContext(ctx).First(&header, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &header, nil
}

func (r *gormSessionRepository) GetHeaderWithSets(ctx context.Context, sessionID uint) (*domain.SessionHeader, error) {
	var header domain.SessionHeader
	err := r.db.WithContext(ctx).Preload("Sets").First(&header, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &header, nil
}

// ReplaceSets swaps the saved set group atomically: a re-save never
// leaves a session with a mix of old and new rows.
func (r *gormSessionRepository) ReplaceSets(ctx context.Context, sessionID uint, sets []domain.SessionSet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&domain.SessionSet{}).Error; err != nil {
			return err
		}
		if len(sets) == 0 {
			return nil
		}
		for i := range sets {
			sets[i].SessionID = sessionID
		}
		return tx.Create(&sets).Error
	})
}

func (r *gormSessionRepository) ListByMember(ctx context.Context, memberUID string) ([]domain.SessionHeader, error) {
	var headers []domain.SessionHeader
	err := r.db.WithContext(ctx).Preload("Sets").
		Where("member_uid = ?", memberUID).
		Order("workout_date DESC").
		Find(&headers).Error
	if err != nil {
		return nil, err
	}
	return headers, nil
}

func (r *gormSessionRepository) CountsByMember(ctx context.Context, memberUID string, start, end time.Time) (*domain.SessionCounts, error) {
	var headers []domain.SessionHeader
	err := r.db.WithContext(ctx).
		Where("member_uid = ? AND workout_date >= ? AND workout_date < ?", memberUID, start, end).
		Find(&headers).Error
	if err != nil {
		return nil, err
	}

	counts := &domain.SessionCounts{}
	for _, h := range headers {
		switch {
		case h.IsPT:
			counts.PTSessions++
		case h.SessionType == domain.SessionTypeAI:
			counts.AISessions++
		case h.SessionType == domain.SessionTypeQuest:
			counts.QuestSessions++
		default:
			counts.CustomSessions++
		}
	}
	return counts, nil
}

func (r *gormSessionRepository) LastSessionDate(ctx context.Context, memberUID string) (*time.Time, error) {
	// MAX over zero rows yields SQL NULL, so scan through NullTime.
	var last sql.NullTime
	row := r.db.WithContext(ctx).Model(&domain.SessionHeader{}).
		Where("member_uid = ?", memberUID).
		Select("MAX(workout_date)").
		Row()
	if err := row.Scan(&last); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}
