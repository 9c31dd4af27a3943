package postgres

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"strings"
	"time"

	"gorm.io/gorm"
)

// gormUserRepository implements repository.UserRepository on postgres.
type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of gormUserRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &gormUserRepository{db: db}
}

// isDuplicateKey detects a unique-constraint violation without tying the
// caller to the driver error type.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

func (r *gormUserRepository) CreateMember(ctx context.Context, member *domain.Member) error {
	member.Role = domain.RoleMember
	member.LastActive = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if isDuplicateKey(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *gormUserRepository) CreateTrainer(ctx context.Context, trainer *domain.Trainer) error {
	trainer.Role = domain.RoleTrainer
	trainer.LastActive = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(trainer).Error; err != nil {
		if isDuplicateKey(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *gormUserRepository) GetMemberByUID(ctx context.Context, uid string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).First(&member, "uid = ?", uid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *gormUserRepository) GetTrainerByUID(ctx context.Context, uid string) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := r.db.WithContext(ctx).First(&trainer, "uid = ?", uid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

func (r *gormUserRepository) GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).First(&member, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *gormUserRepository) GetTrainerByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := r.db.WithContext(ctx).First(&trainer, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

// UpdateMember applies a partial update: only the supplied columns are
// written, everything else is left untouched.
func (r *gormUserRepository) UpdateMember(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Member, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.Member{}).Where("uid = ?", uid).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, repository.ErrNotFound
		}
	}
	return r.GetMemberByUID(ctx, uid)
}

func (r *gormUserRepository) UpdateTrainer(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Trainer, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.Trainer{}).Where("uid = ?", uid).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, repository.ErrNotFound
		}
	}
	return r.GetTrainerByUID(ctx, uid)
}

// DeleteMember removes the member and every mapping row referencing it
// in one transaction, so no orphaned mappings survive.
func (r *gormUserRepository) DeleteMember(ctx context.Context, uid string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_uid = ?", uid).Delete(&domain.TrainerMemberMap{}).Error; err != nil {
			return err
		}
		res := tx.Where("uid = ?", uid).Delete(&domain.Member{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *gormUserRepository) DeleteTrainer(ctx context.Context, uid string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trainer_uid = ?", uid).Delete(&domain.TrainerMemberMap{}).Error; err != nil {
			return err
		}
		res := tx.Where("uid = ?", uid).Delete(&domain.Trainer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *gormUserRepository) TouchLastActive(ctx context.Context, uid string, role domain.Role, at time.Time) error {
	var model interface{}
	if role == domain.RoleTrainer {
		model = &domain.Trainer{}
	} else {
		model = &domain.Member{}
	}
	res := r.db.WithContext(ctx).Model(model).Where("uid = ?", uid).UpdateColumn("last_active", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
