package postgres

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"strings"

	"gorm.io/gorm"
)

// gormCatalogRepository implements repository.CatalogRepository.
type gormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new instance of gormCatalogRepository.
func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &gormCatalogRepository{db: db}
}

func (r *gormCatalogRepository) WorkoutName(ctx context.Context, workoutKey uint) (string, error) {
	var key domain.WorkoutKey
	err := r.db.WithContext(ctx).Preload("Workout").
		First(&key, "workout_key_id = ?", workoutKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return key.Workout.Name, nil
}

// Search matches case-insensitively; spaces in the query act as
// wildcards so "bench press" finds "incline bench press".
func (r *gormCatalogRepository) Search(ctx context.Context, name string) ([]domain.WorkoutInfo, error) {
	pattern := "%" + strings.ToLower(strings.ReplaceAll(name, " ", "%")) + "%"
	var keys []domain.WorkoutKey
	err := r.db.WithContext(ctx).Preload("Workout").Preload("WorkoutPart").
		Joins("JOIN workouts w ON w.workout_id = workout_key_name_map.workout_id").
		Where("LOWER(w.workout_name) LIKE ?", pattern).
		Find(&keys).Error
	if err != nil {
		return nil, err
	}

	infos := make([]domain.WorkoutInfo, 0, len(keys))
	for _, k := range keys {
		infos = append(infos, domain.WorkoutInfo{
			WorkoutKey:  k.WorkoutKeyID,
			WorkoutName: k.Workout.Name,
			WorkoutPart: k.WorkoutPart.Name,
		})
	}
	return infos, nil
}

func (r *gormCatalogRepository) ByPart(ctx context.Context, partID *uint) (map[string][]domain.WorkoutInfo, error) {
	var keys []domain.WorkoutKey
	q := r.db.WithContext(ctx).Preload("Workout").Preload("WorkoutPart")
	if partID != nil {
		q = q.Where("workout_part_id = ?", *partID)
	}
	if err := q.Find(&keys).Error; err != nil {
		return nil, err
	}

	byPart := make(map[string][]domain.WorkoutInfo)
	for _, k := range keys {
		info := domain.WorkoutInfo{
			WorkoutKey:  k.WorkoutKeyID,
			WorkoutName: k.Workout.Name,
			WorkoutPart: k.WorkoutPart.Name,
		}
		byPart[k.WorkoutPart.Name] = append(byPart[k.WorkoutPart.Name], info)
	}
	return byPart, nil
}
