package service

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// MemberProfileUpdate carries a partial profile edit. Nil fields are
// left untouched.
type MemberProfileUpdate struct {
	FirstName        *string  `json:"firstName"`
	LastName         *string  `json:"lastName"`
	Age              *int     `json:"age"`
	Height           *float64 `json:"height"`
	Weight           *float64 `json:"weight"`
	WorkoutLevel     *int     `json:"workoutLevel"`
	WorkoutFrequency *int     `json:"workoutFrequency"`
	WorkoutGoal      *int     `json:"workoutGoal"`
}

// TrainerProfileUpdate carries a partial trainer profile edit.
type TrainerProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UserService exposes profile reads and writes for the authenticated
// caller, plus lookups the sibling services rely on.
type UserService interface {
	GetByUID(ctx context.Context, uid string, role domain.Role) (domain.CurrentUser, error)
	GetByEmail(ctx context.Context, email string) (domain.CurrentUser, error)
	UpdateMemberProfile(ctx context.Context, uid string, update MemberProfileUpdate) (*domain.Member, error)
	UpdateTrainerProfile(ctx context.Context, uid string, update TrainerProfileUpdate) (*domain.Trainer, error)
	// DeleteAccount removes the caller's row and every mapping that
	// references it.
	DeleteAccount(ctx context.Context, caller domain.CurrentUser) error
	TouchLastActive(ctx context.Context, uid string, role domain.Role) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByUID(ctx context.Context, uid string, role domain.Role) (domain.CurrentUser, error) {
	switch role {
	case domain.RoleTrainer:
		trainer, err := s.userRepo.GetTrainerByUID(ctx, uid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.CurrentUser{}, ErrUserNotFound
			}
			return domain.CurrentUser{}, err
		}
		trainer.PasswordHash = ""
		return domain.CurrentUser{Role: domain.RoleTrainer, Trainer: trainer}, nil
	default:
		member, err := s.userRepo.GetMemberByUID(ctx, uid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.CurrentUser{}, ErrUserNotFound
			}
			return domain.CurrentUser{}, err
		}
		member.PasswordHash = ""
		return domain.CurrentUser{Role: domain.RoleMember, Member: member}, nil
	}
}

// GetByEmail tries the member table first, then trainers, mirroring
// login's resolution order.
func (s *userService) GetByEmail(ctx context.Context, email string) (domain.CurrentUser, error) {
	member, err := s.userRepo.GetMemberByEmail(ctx, email)
	if err == nil {
		member.PasswordHash = ""
		return domain.CurrentUser{Role: domain.RoleMember, Member: member}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.CurrentUser{}, err
	}

	trainer, err := s.userRepo.GetTrainerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.CurrentUser{}, ErrUserNotFound
		}
		return domain.CurrentUser{}, err
	}
	trainer.PasswordHash = ""
	return domain.CurrentUser{Role: domain.RoleTrainer, Trainer: trainer}, nil
}

func (s *userService) UpdateMemberProfile(ctx context.Context, uid string, update MemberProfileUpdate) (*domain.Member, error) {
	fields := map[string]interface{}{}
	if update.FirstName != nil {
		fields["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		fields["last_name"] = *update.LastName
	}
	if update.Age != nil {
		fields["age"] = *update.Age
	}
	if update.Height != nil {
		fields["height"] = *update.Height
	}
	if update.Weight != nil {
		fields["weight"] = *update.Weight
	}
	if update.WorkoutLevel != nil {
		fields["workout_level"] = *update.WorkoutLevel
	}
	if update.WorkoutFrequency != nil {
		fields["workout_frequency"] = *update.WorkoutFrequency
	}
	if update.WorkoutGoal != nil {
		fields["workout_goal"] = *update.WorkoutGoal
	}

	member, err := s.userRepo.UpdateMember(ctx, uid, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	member.PasswordHash = ""
	return member, nil
}

func (s *userService) UpdateTrainerProfile(ctx context.Context, uid string, update TrainerProfileUpdate) (*domain.Trainer, error) {
	fields := map[string]interface{}{}
	if update.FirstName != nil {
		fields["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		fields["last_name"] = *update.LastName
	}

	trainer, err := s.userRepo.UpdateTrainer(ctx, uid, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	trainer.PasswordHash = ""
	return trainer, nil
}

func (s *userService) DeleteAccount(ctx context.Context, caller domain.CurrentUser) error {
	var err error
	if caller.IsTrainer() {
		err = s.userRepo.DeleteTrainer(ctx, caller.UID())
	} else {
		err = s.userRepo.DeleteMember(ctx, caller.UID())
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *userService) TouchLastActive(ctx context.Context, uid string, role domain.Role) error {
	return s.userRepo.TouchLastActive(ctx, uid, role, time.Now().UTC())
}
