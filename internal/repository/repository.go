package repository

import (
	"context"
	"fitcoach/platform/internal/domain"
	"time"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for member and trainer rows.
type UserRepository interface {
	CreateMember(ctx context.Context, member *domain.Member) error
	CreateTrainer(ctx context.Context, trainer *domain.Trainer) error
	GetMemberByUID(ctx context.Context, uid string) (*domain.Member, error)
	GetTrainerByUID(ctx context.Context, uid string) (*domain.Trainer, error)
	GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetTrainerByEmail(ctx context.Context, email string) (*domain.Trainer, error)
	// UpdateMember applies only the supplied column/value pairs.
	UpdateMember(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Member, error)
	UpdateTrainer(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Trainer, error)
	// DeleteMember removes the row and every mapping referencing it,
	// in one transaction. Same for DeleteTrainer.
	DeleteMember(ctx context.Context, uid string) error
	DeleteTrainer(ctx context.Context, uid string) error
	TouchLastActive(ctx context.Context, uid string, role domain.Role, at time.Time) error
}

// MappingRepository defines the interface for the trainer/member
// relationship rows and their session-credit balance.
type MappingRepository interface {
	Create(ctx context.Context, mapping *domain.TrainerMemberMap) error
	GetByID(ctx context.Context, id uint) (*domain.TrainerMemberMap, error)
	GetByPair(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error)
	// ListForUser joins each mapping with the counterpart's profile.
	ListForUser(ctx context.Context, uid string, isTrainer bool) ([]domain.MappingSummary, error)
	UpdateStatus(ctx context.Context, id uint, status domain.MappingStatus, acceptanceDate *time.Time) error
	DeleteByPair(ctx context.Context, trainerUID, memberUID string) error
	// AdjustSessions applies delta to remaining_sessions in a single
	// conditional UPDATE that refuses to take the balance negative
	// (ErrConflict). Returns the row as it stands after the update.
	AdjustSessions(ctx context.Context, trainerUID, memberUID string, delta int) (*domain.TrainerMemberMap, error)
	SetExpiry(ctx context.Context, id uint, expiresAt *time.Time) error
	// ExpireOverdue flips accepted rows whose grace period has elapsed
	// to expired and returns how many were flipped. Idempotent.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	// GetConnectedMember returns the member profile behind an accepted
	// mapping with the given trainer, ErrNotFound otherwise.
	GetConnectedMember(ctx context.Context, trainerUID, memberUID string) (*domain.Member, error)
}

// SessionRepository defines the interface for workout session rows.
type SessionRepository interface {
	CreateHeader(ctx context.Context, header *domain.SessionHeader) error
	GetHeaderByID(ctx context.Context, sessionID uint) (*domain.SessionHeader, error)
	GetHeaderWithSets(ctx context.Context, sessionID uint) (*domain.SessionHeader, error)
	// ReplaceSets drops any previously saved sets for the session and
	// inserts the new group, in one transaction.
	ReplaceSets(ctx context.Context, sessionID uint, sets []domain.SessionSet) error
	ListByMember(ctx context.Context, memberUID string) ([]domain.SessionHeader, error)
	CountsByMember(ctx context.Context, memberUID string, start, end time.Time) (*domain.SessionCounts, error)
	LastSessionDate(ctx context.Context, memberUID string) (*time.Time, error)
}

// QuestRepository defines the interface for quest trees.
type QuestRepository interface {
	Create(ctx context.Context, quest *domain.Quest) error
	GetByID(ctx context.Context, questID uint) (*domain.Quest, error)
	ListByTrainer(ctx context.Context, trainerUID string) ([]domain.Quest, error)
	ListByMember(ctx context.Context, memberUID string) ([]domain.Quest, error)
	ListByTrainerAndMember(ctx context.Context, trainerUID, memberUID string) ([]domain.Quest, error)
	UpdateStatus(ctx context.Context, questID uint, status domain.QuestStatus) error
	Delete(ctx context.Context, questID uint) error
	// ExpireNotStarted flips a member's not_started quests to
	// deadline_passed and returns the affected count.
	ExpireNotStarted(ctx context.Context, memberUID string) (int64, error)
	OldestNotStarted(ctx context.Context, memberUID string) (*domain.Quest, error)
	// RecordsByWorkout returns a member's historical quest sets for one
	// catalog key, newest quest first.
	RecordsByWorkout(ctx context.Context, memberUID string, workoutKey uint) ([]domain.Quest, error)
}

// CatalogRepository defines read access to the workout catalog.
type CatalogRepository interface {
	WorkoutName(ctx context.Context, workoutKey uint) (string, error)
	Search(ctx context.Context, name string) ([]domain.WorkoutInfo, error)
	// ByPart groups catalog entries by part name; partID narrows the
	// result to one part when non-nil.
	ByPart(ctx context.Context, partID *uint) (map[string][]domain.WorkoutInfo, error)
}
