package postgres

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"

	"gorm.io/gorm"
)

// gormQuestRepository implements repository.QuestRepository.
type gormQuestRepository struct {
	db *gorm.DB
}

// NewQuestRepository creates a new instance of gormQuestRepository.
func NewQuestRepository(db *gorm.DB) repository.QuestRepository {
	return &gormQuestRepository{db: db}
}

// Create inserts the quest with its workout and set children in one
// transaction. Child keys are filled in after the header gets its id.
func (r *gormQuestRepository) Create(ctx context.Context, quest *domain.Quest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workouts := quest.Workouts
		quest.Workouts = nil
		if err := tx.Create(quest).Error; err != nil {
			return err
		}
		for wi := range workouts {
			workouts[wi].QuestID = quest.QuestID
			for si := range workouts[wi].Sets {
				workouts[wi].Sets[si].QuestID = quest.QuestID
				workouts[wi].Sets[si].WorkoutKey = workouts[wi].WorkoutKey
			}
		}
		if len(workouts) > 0 {
			if err := tx.Create(&workouts).Error; err != nil {
				return err
			}
		}
		quest.Workouts = workouts
		return nil
	})
}

func (r *gormQuestRepository) GetByID(ctx context.Context, questID uint) (*domain.Quest, error) {
	var quest domain.Quest
	err := r.db.WithContext(ctx).Preload("Workouts.Sets").First(&quest, "quest_id = ?", questID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &quest, nil
}

func (r *gormQuestRepository) ListByTrainer(ctx context.Context, trainerUID string) ([]domain.Quest, error) {
	var quests []domain.Quest
	err := r.db.WithContext(ctx).Preload("Workouts.Sets").
		Where("trainer_uid = ?", trainerUID).
		Order("created_at DESC").
		Find(&quests).Error
	if err != nil {
		return nil, err
	}
	return quests, nil
}

func (r *gormQuestRepository) ListByMember(ctx context.Context, memberUID string) ([]domain.Quest, error) {
	var quests []domain.Quest
	err := r.db.WithContext(ctx).Preload("Workouts.Sets").
		Where("member_uid = ?", memberUID).
		Order("created_at DESC").
		Find(&quests).Error
	if err != nil {
		return nil, err
	}
	return quests, nil
}

func (r *gormQuestRepository) ListByTrainerAndMember(ctx context.Context, trainerUID, memberUID string) ([]domain.Quest, error) {
	var quests []domain.Quest
	err := r.db.WithContext(ctx).Preload("Workouts.Sets").
		Where("trainer_uid = ? AND member_uid = ?", trainerUID, memberUID).
		Order("created_at DESC").
		Find(&quests).Error
	if err != nil {
		return nil, err
	}
	return quests, nil
}

func (r *gormQuestRepository) UpdateStatus(ctx context.Context, questID uint, status domain.QuestStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Quest{}).
		Where("quest_id = ?", questID).
		UpdateColumn("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the quest tree bottom-up inside one transaction.
func (r *gormQuestRepository) Delete(ctx context.Context, questID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quest_id = ?", questID).Delete(&domain.QuestSet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quest_id = ?", questID).Delete(&domain.QuestWorkout{}).Error; err != nil {
			return err
		}
		res := tx.Where("quest_id = ?", questID).Delete(&domain.Quest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *gormQuestRepository) ExpireNotStarted(ctx context.Context, memberUID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Quest{}).
		Where("member_uid = ? AND status = ?", memberUID, domain.QuestNotStarted).
		UpdateColumn("status", domain.QuestDeadlinePassed)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *gormQuestRepository) OldestNotStarted(ctx context.Context, memberUID string) (*domain.Quest, error) {
	var quest domain.Quest
	err := r.db.WithContext(ctx).Preload("Workouts.Sets").
		Where("member_uid = ? AND status = ?", memberUID, domain.QuestNotStarted).
		Order("created_at ASC").
		First(&quest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &quest, nil
}

// RecordsByWorkout narrows each quest's preloaded sets to one catalog
// key, giving the member's set history for that exercise.
func (r *gormQuestRepository) RecordsByWorkout(ctx context.Context, memberUID string, workoutKey uint) ([]domain.Quest, error) {
	var quests []domain.Quest
	err := r.db.WithContext(ctx).
		Preload("Workouts", "workout_key = ?", workoutKey).
		Preload("Workouts.Sets", "workout_key = ?", workoutKey).
		Joins("JOIN quest_workouts qw ON qw.quest_id = quests.quest_id AND qw.workout_key = ?", workoutKey).
		Where("quests.member_uid = ?", memberUID).
		Order("quests.created_at DESC").
		Find(&quests).Error
	if err != nil {
		return nil, err
	}
	return quests, nil
}
