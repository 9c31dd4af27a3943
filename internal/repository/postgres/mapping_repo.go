package postgres

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"time"

	"gorm.io/gorm"
)

// gormMappingRepository implements repository.MappingRepository.
type gormMappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a new instance of gormMappingRepository.
func NewMappingRepository(db *gorm.DB) repository.MappingRepository {
	return &gormMappingRepository{db: db}
}

func (r *gormMappingRepository) Create(ctx context.Context, mapping *domain.TrainerMemberMap) error {
	if err := r.db.WithContext(ctx).Create(mapping).Error; err != nil {
		// The unique index on (trainer_uid, member_uid) turns a racing
		// duplicate request into a constraint violation here.
		if isDuplicateKey(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *gormMappingRepository) GetByID(ctx context.Context, id uint) (*domain.TrainerMemberMap, error) {
	var mapping domain.TrainerMemberMap
	err := r.db.WithContext(ctx).First(&mapping, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *gormMappingRepository) GetByPair(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error) {
	var mapping domain.TrainerMemberMap
	err := r.db.WithContext(ctx).
		First(&mapping, "trainer_uid = ? AND member_uid = ?", trainerUID, memberUID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// ListForUser joins mappings with the counterpart table so one query
// yields the summary rows for the my-mappings listing.
func (r *gormMappingRepository) ListForUser(ctx context.Context, uid string, isTrainer bool) ([]domain.MappingSummary, error) {
	var summaries []domain.MappingSummary
	q := r.db.WithContext(ctx).Table("trainer_member_mapping AS m")
	if isTrainer {
		q = q.Select("m.id AS mapping_id, u.uid, u.email, u.first_name, u.last_name, m.status, m.remaining_sessions, m.expires_at").
			Joins("JOIN members u ON u.uid = m.member_uid").
			Where("m.trainer_uid = ?", uid)
	} else {
		q = q.Select("m.id AS mapping_id, u.uid, u.email, u.first_name, u.last_name, m.status, m.remaining_sessions, m.expires_at").
			Joins("JOIN trainers u ON u.uid = m.trainer_uid").
			Where("m.member_uid = ?", uid)
	}
	if err := q.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *gormMappingRepository) UpdateStatus(ctx context.Context, id uint, status domain.MappingStatus, acceptanceDate *time.Time) error {
	fields := map[string]interface{}{"status": status}
	if acceptanceDate != nil {
		fields["acceptance_date"] = *acceptanceDate
	}
	res := r.db.WithContext(ctx).Model(&domain.TrainerMemberMap{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gormMappingRepository) DeleteByPair(ctx context.Context, trainerUID, memberUID string) error {
	res := r.db.WithContext(ctx).
		Where("trainer_uid = ? AND member_uid = ?", trainerUID, memberUID).
		Delete(&domain.TrainerMemberMap{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AdjustSessions is the one hot write in the system. The balance guard
// lives in the WHERE clause, so concurrent adjustments serialize on the
// row lock and a decrement can never take the balance below zero.
func (r *gormMappingRepository) AdjustSessions(ctx context.Context, trainerUID, memberUID string, delta int) (*domain.TrainerMemberMap, error) {
	res := r.db.WithContext(ctx).Model(&domain.TrainerMemberMap{}).
		Where("trainer_uid = ? AND member_uid = ? AND remaining_sessions + ? >= 0", trainerUID, memberUID, delta).
		UpdateColumn("remaining_sessions", gorm.Expr("remaining_sessions + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Either no such mapping, or the guard refused the decrement.
		if _, err := r.GetByPair(ctx, trainerUID, memberUID); err != nil {
			return nil, err
		}
		return nil, repository.ErrConflict
	}
	return r.GetByPair(ctx, trainerUID, memberUID)
}

func (r *gormMappingRepository) SetExpiry(ctx context.Context, id uint, expiresAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.TrainerMemberMap{}).
		Where("id = ?", id).
		UpdateColumn("expires_at", expiresAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExpireOverdue is the sweeper's write: one conditional UPDATE, safe to
// re-run, touching only accepted rows whose grace period has elapsed.
func (r *gormMappingRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.TrainerMemberMap{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.MappingAccepted, now).
		Updates(map[string]interface{}{"status": domain.MappingExpired, "expires_at": nil})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *gormMappingRepository) GetConnectedMember(ctx context.Context, trainerUID, memberUID string) (*domain.Member, error) {
	// A row past its grace deadline no longer counts as connected,
	// even before the sweeper flips it.
	var member domain.Member
	err := r.db.WithContext(ctx).
		Joins("JOIN trainer_member_mapping m ON m.member_uid = members.uid").
		Where("m.trainer_uid = ? AND m.member_uid = ? AND m.status = ?", trainerUID, memberUID, domain.MappingAccepted).
		Where("m.expires_at IS NULL OR m.expires_at > ?", time.Now().UTC()).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}
