package service

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"log"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrQuestNotFound   = errors.New("quest not found")
	ErrNotMapped       = errors.New("no accepted mapping with this member")
	ErrNotSessionOwner = errors.New("not allowed to access this session")
	ErrQuestIDRequired = errors.New("quest_id is required for quest sessions")
	ErrMemberRequired  = errors.New("trainer sessions must name a member")
	ErrWorkoutNotFound = errors.New("workout not found")
)

// UserGateway is the workout service's view of the user service. Calls
// carry the caller's bearer token so the peer applies its own
// authorization.
type UserGateway interface {
	// CheckMapping reports whether an accepted mapping exists. A peer
	// 404 means "not mapped", not an error.
	CheckMapping(ctx context.Context, token, trainerUID, memberUID string) (bool, error)
	// AdjustSessions applies delta to the pair's credit balance and
	// returns the new balance.
	AdjustSessions(ctx context.Context, token, trainerUID, memberUID string, delta int) (int, error)
	TrainerByUID(ctx context.Context, token, uid string) (*domain.Trainer, error)
}

// CreateSessionInput carries a session creation request.
type CreateSessionInput struct {
	SessionType domain.SessionType
	QuestID     *uint
	MemberUID   string
}

// ExerciseInput is one exercise with its performed sets, as submitted
// on save.
type ExerciseInput struct {
	WorkoutKey uint              `json:"workout_key" binding:"required"`
	Sets       []ExerciseSetItem `json:"sets" binding:"required,min=1,dive"`
}

type ExerciseSetItem struct {
	SetNum   int     `json:"set_num" binding:"required,min=1"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps" binding:"required,min=1"`
	RestTime int     `json:"rest_time"`
}

// SessionExerciseDetail is one exercise of a saved session resolved
// against the catalog.
type SessionExerciseDetail struct {
	WorkoutKey  uint                `json:"workoutKey"`
	WorkoutName string              `json:"workoutName"`
	Sets        []domain.SessionSet `json:"sets"`
}

// SessionDetail is a saved session with catalog and trainer names
// resolved for display.
type SessionDetail struct {
	Header      *domain.SessionHeader   `json:"header"`
	Exercises   []SessionExerciseDetail `json:"exercises"`
	TrainerName string                  `json:"trainerName,omitempty"`
}

// WorkoutService covers sessions, quests and the workout catalog.
type WorkoutService interface {
	CreateSession(ctx context.Context, token, callerUID string, callerRole domain.Role, in CreateSessionInput) (*domain.SessionHeader, error)
	// SaveSession replaces the session's sets, completes the attached
	// quest and consumes one PT credit where applicable.
	SaveSession(ctx context.Context, token, callerUID string, callerRole domain.Role, sessionID uint, exercises []ExerciseInput) (*domain.SessionHeader, error)
	ListMemberSessions(ctx context.Context, callerUID string, callerRole domain.Role, memberUID string) ([]domain.SessionHeader, error)
	SessionDetail(ctx context.Context, token, callerUID string, callerRole domain.Role, sessionID uint) (*SessionDetail, error)

	CreateQuest(ctx context.Context, token, trainerUID, memberUID string, workouts []ExerciseInput) (*domain.Quest, error)
	ListQuests(ctx context.Context, callerUID string, callerRole domain.Role) ([]domain.Quest, error)
	QuestsForMember(ctx context.Context, callerUID string, callerRole domain.Role, memberUID string) ([]domain.Quest, error)
	DeleteQuest(ctx context.Context, trainerUID string, questID uint) error
	ExpireQuests(ctx context.Context, memberUID string) (int64, error)
	OldestNotStartedQuest(ctx context.Context, memberUID string) (*domain.Quest, error)

	SessionCounts(ctx context.Context, memberUID string, start, end time.Time) (*domain.SessionCounts, error)
	LastSessionUpdate(ctx context.Context, memberUID string) (*time.Time, error)

	SearchWorkouts(ctx context.Context, name string) ([]domain.WorkoutInfo, error)
	WorkoutsByPart(ctx context.Context, partID *uint) (map[string][]domain.WorkoutInfo, error)
	WorkoutName(ctx context.Context, workoutKey uint) (string, error)
	WorkoutRecords(ctx context.Context, memberUID string, workoutKey uint) ([]domain.Quest, error)
}

type workoutService struct {
	sessionRepo repository.SessionRepository
	questRepo   repository.QuestRepository
	catalogRepo repository.CatalogRepository
	users       UserGateway
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(sessionRepo repository.SessionRepository, questRepo repository.QuestRepository, catalogRepo repository.CatalogRepository, users UserGateway) WorkoutService {
	return &workoutService{
		sessionRepo: sessionRepo,
		questRepo:   questRepo,
		catalogRepo: catalogRepo,
		users:       users,
	}
}

// CreateSession opens a session header. Trainers open PT sessions for a
// mapped member; members open their own.
func (s *workoutService) CreateSession(ctx context.Context, token, callerUID string, callerRole domain.Role, in CreateSessionInput) (*domain.SessionHeader, error) {
	header := &domain.SessionHeader{WorkoutDate: time.Now().UTC()}

	if callerRole == domain.RoleTrainer {
		if in.MemberUID == "" {
			return nil, ErrMemberRequired
		}
		mapped, err := s.users.CheckMapping(ctx, token, callerUID, in.MemberUID)
		if err != nil {
			return nil, err
		}
		if !mapped {
			return nil, ErrNotMapped
		}
		trainerUID := callerUID
		header.MemberUID = in.MemberUID
		header.TrainerUID = &trainerUID
		header.IsPT = true
		header.SessionType = domain.SessionTypeCustom
	} else {
		header.MemberUID = callerUID
		header.SessionType = in.SessionType
		if header.SessionType == "" {
			header.SessionType = domain.SessionTypeCustom
		}
		if header.SessionType == domain.SessionTypeQuest {
			if in.QuestID == nil {
				return nil, ErrQuestIDRequired
			}
			if _, err := s.questRepo.GetByID(ctx, *in.QuestID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrQuestNotFound
				}
				return nil, err
			}
			header.QuestID = in.QuestID
		}
	}

	if err := s.sessionRepo.CreateHeader(ctx, header); err != nil {
		return nil, err
	}
	return header, nil
}

func flattenExercises(sessionID uint, exercises []ExerciseInput) []domain.SessionSet {
	var sets []domain.SessionSet
	for _, ex := range exercises {
		for _, set := range ex.Sets {
			sets = append(sets, domain.SessionSet{
				SessionID:  sessionID,
				WorkoutKey: ex.WorkoutKey,
				SetNum:     set.SetNum,
				Weight:     set.Weight,
				Reps:       set.Reps,
				RestTime:   set.RestTime,
			})
		}
	}
	return sets
}

// SaveSession persists the performed sets. Side effects ride along:
// quest sessions complete their quest, PT sessions consume a credit.
func (s *workoutService) SaveSession(ctx context.Context, token, callerUID string, callerRole domain.Role, sessionID uint, exercises []ExerciseInput) (*domain.SessionHeader, error) {
	header, err := s.sessionRepo.GetHeaderByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if callerRole != domain.RoleTrainer && header.MemberUID != callerUID {
		return nil, ErrNotSessionOwner
	}

	if err := s.sessionRepo.ReplaceSets(ctx, sessionID, flattenExercises(sessionID, exercises)); err != nil {
		return nil, err
	}

	if header.SessionType == domain.SessionTypeQuest && header.QuestID != nil {
		if err := s.questRepo.UpdateStatus(ctx, *header.QuestID, domain.QuestCompleted); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if header.IsPT && header.TrainerUID != nil {
		if _, err := s.users.AdjustSessions(ctx, token, *header.TrainerUID, header.MemberUID, -1); err != nil {
			return nil, err
		}
	}

	return s.sessionRepo.GetHeaderWithSets(ctx, sessionID)
}

func (s *workoutService) ListMemberSessions(ctx context.Context, callerUID string, callerRole domain.Role, memberUID string) ([]domain.SessionHeader, error) {
	if callerRole != domain.RoleTrainer && callerUID != memberUID {
		return nil, ErrNotSessionOwner
	}
	return s.sessionRepo.ListByMember(ctx, memberUID)
}

// SessionDetail resolves catalog workout names and, best effort, the
// trainer's display name from the user service.
func (s *workoutService) SessionDetail(ctx context.Context, token, callerUID string, callerRole domain.Role, sessionID uint) (*SessionDetail, error) {
	header, err := s.sessionRepo.GetHeaderWithSets(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if callerRole != domain.RoleTrainer && header.MemberUID != callerUID {
		return nil, ErrNotSessionOwner
	}

	byKey := make(map[uint][]domain.SessionSet)
	var order []uint
	for _, set := range header.Sets {
		if _, seen := byKey[set.WorkoutKey]; !seen {
			order = append(order, set.WorkoutKey)
		}
		byKey[set.WorkoutKey] = append(byKey[set.WorkoutKey], set)
	}

	detail := &SessionDetail{Header: header}
	for _, key := range order {
		name, err := s.catalogRepo.WorkoutName(ctx, key)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		detail.Exercises = append(detail.Exercises, SessionExerciseDetail{
			WorkoutKey:  key,
			WorkoutName: name,
			Sets:        byKey[key],
		})
	}

	if header.TrainerUID != nil {
		trainer, err := s.users.TrainerByUID(ctx, token, *header.TrainerUID)
		if err != nil {
			log.Printf("WARN: could not resolve trainer %s for session %d: %v", *header.TrainerUID, sessionID, err)
		} else {
			detail.TrainerName = displayName(trainer.FirstName, trainer.LastName)
		}
	}
	return detail, nil
}

func displayName(first, last *string) string {
	var name string
	if first != nil {
		name = *first
	}
	if last != nil {
		if name != "" {
			name += " "
		}
		name += *last
	}
	return name
}

// CreateQuest assigns a workout plan to a mapped member.
func (s *workoutService) CreateQuest(ctx context.Context, token, trainerUID, memberUID string, workouts []ExerciseInput) (*domain.Quest, error) {
	mapped, err := s.users.CheckMapping(ctx, token, trainerUID, memberUID)
	if err != nil {
		return nil, err
	}
	if !mapped {
		return nil, ErrNotMapped
	}

	quest := &domain.Quest{
		TrainerUID: trainerUID,
		MemberUID:  memberUID,
		Status:     domain.QuestNotStarted,
	}
	for _, w := range workouts {
		qw := domain.QuestWorkout{WorkoutKey: w.WorkoutKey}
		for _, set := range w.Sets {
			qw.Sets = append(qw.Sets, domain.QuestSet{
				WorkoutKey: w.WorkoutKey,
				SetNumber:  set.SetNum,
				Weight:     set.Weight,
				Reps:       set.Reps,
				RestTime:   set.RestTime,
			})
		}
		quest.Workouts = append(quest.Workouts, qw)
	}

	if err := s.questRepo.Create(ctx, quest); err != nil {
		return nil, err
	}
	return quest, nil
}

func (s *workoutService) ListQuests(ctx context.Context, callerUID string, callerRole domain.Role) ([]domain.Quest, error) {
	if callerRole == domain.RoleTrainer {
		return s.questRepo.ListByTrainer(ctx, callerUID)
	}
	return s.questRepo.ListByMember(ctx, callerUID)
}

func (s *workoutService) QuestsForMember(ctx context.Context, callerUID string, callerRole domain.Role, memberUID string) ([]domain.Quest, error) {
	if callerRole == domain.RoleTrainer {
		return s.questRepo.ListByTrainerAndMember(ctx, callerUID, memberUID)
	}
	if callerUID != memberUID {
		return nil, ErrNotSessionOwner
	}
	return s.questRepo.ListByMember(ctx, memberUID)
}

// DeleteQuest removes a quest tree; only the assigning trainer may.
func (s *workoutService) DeleteQuest(ctx context.Context, trainerUID string, questID uint) error {
	quest, err := s.questRepo.GetByID(ctx, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestNotFound
		}
		return err
	}
	if quest.TrainerUID != trainerUID {
		return ErrNotSessionOwner
	}
	err = s.questRepo.Delete(ctx, questID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestNotFound
	}
	return err
}

func (s *workoutService) ExpireQuests(ctx context.Context, memberUID string) (int64, error) {
	return s.questRepo.ExpireNotStarted(ctx, memberUID)
}

func (s *workoutService) OldestNotStartedQuest(ctx context.Context, memberUID string) (*domain.Quest, error) {
	quest, err := s.questRepo.OldestNotStarted(ctx, memberUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, err
	}
	return quest, nil
}

func (s *workoutService) SessionCounts(ctx context.Context, memberUID string, start, end time.Time) (*domain.SessionCounts, error) {
	return s.sessionRepo.CountsByMember(ctx, memberUID, start, end)
}

func (s *workoutService) LastSessionUpdate(ctx context.Context, memberUID string) (*time.Time, error) {
	return s.sessionRepo.LastSessionDate(ctx, memberUID)
}

func (s *workoutService) SearchWorkouts(ctx context.Context, name string) ([]domain.WorkoutInfo, error) {
	return s.catalogRepo.Search(ctx, name)
}

func (s *workoutService) WorkoutsByPart(ctx context.Context, partID *uint) (map[string][]domain.WorkoutInfo, error) {
	return s.catalogRepo.ByPart(ctx, partID)
}

func (s *workoutService) WorkoutName(ctx context.Context, workoutKey uint) (string, error) {
	name, err := s.catalogRepo.WorkoutName(ctx, workoutKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrWorkoutNotFound
		}
		return "", err
	}
	return name, nil
}

func (s *workoutService) WorkoutRecords(ctx context.Context, memberUID string, workoutKey uint) ([]domain.Quest, error) {
	return s.questRepo.RecordsByWorkout(ctx, memberUID, workoutKey)
}
