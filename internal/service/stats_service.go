package service

import (
	"context"
	"fitcoach/platform/internal/domain"
	"time"
)

// ProfileGateway is the stats service's view of the user service.
type ProfileGateway interface {
	MemberByUID(ctx context.Context, token, uid string) (*domain.Member, error)
}

// WorkoutGateway is the stats service's view of the workout service.
type WorkoutGateway interface {
	LastSessionUpdate(ctx context.Context, token, memberUID string) (*time.Time, error)
	SessionCounts(ctx context.Context, token, memberUID string, start, end time.Time) (*domain.SessionCounts, error)
}

// WeekBucket is one week of a member's session activity.
type WeekBucket struct {
	Start  time.Time             `json:"start"`
	End    time.Time             `json:"end"`
	Counts *domain.SessionCounts `json:"counts"`
	Total  int                   `json:"total"`
}

// WeeklyProgress pairs a member's configured weekly workout goal with
// their recent activity, newest week first.
type WeeklyProgress struct {
	WorkoutGoal *int         `json:"workoutGoal"`
	Weeks       []WeekBucket `json:"weeks"`
}

// StatsService aggregates read-only views over the sibling services.
// It holds no store of its own; peer calls carry the caller's token.
type StatsService interface {
	LastUpdated(ctx context.Context, token, memberUID string) (*time.Time, error)
	WeeklyProgress(ctx context.Context, token, memberUID string) (*WeeklyProgress, error)
}

type statsService struct {
	profiles ProfileGateway
	workouts WorkoutGateway
	weeks    int
	now      func() time.Time
}

// NewStatsService creates a new instance of statsService.
func NewStatsService(profiles ProfileGateway, workouts WorkoutGateway) StatsService {
	return &statsService{
		profiles: profiles,
		workouts: workouts,
		weeks:    4,
		now:      time.Now,
	}
}

func (s *statsService) LastUpdated(ctx context.Context, token, memberUID string) (*time.Time, error) {
	return s.workouts.LastSessionUpdate(ctx, token, memberUID)
}

// WeeklyProgress fetches the member's goal and one session-count bucket
// per week, walking back from the current week.
func (s *statsService) WeeklyProgress(ctx context.Context, token, memberUID string) (*WeeklyProgress, error) {
	member, err := s.profiles.MemberByUID(ctx, token, memberUID)
	if err != nil {
		return nil, err
	}

	progress := &WeeklyProgress{WorkoutGoal: member.WorkoutGoal}

	end := s.now().UTC()
	for i := 0; i < s.weeks; i++ {
		start := end.AddDate(0, 0, -7)
		counts, err := s.workouts.SessionCounts(ctx, token, memberUID, start, end)
		if err != nil {
			return nil, err
		}
		progress.Weeks = append(progress.Weeks, WeekBucket{
			Start:  start,
			End:    end,
			Counts: counts,
			Total:  counts.AISessions + counts.CustomSessions + counts.QuestSessions + counts.PTSessions,
		})
		end = start
	}
	return progress, nil
}
