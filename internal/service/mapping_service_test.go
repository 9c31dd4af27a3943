package service

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"testing"
	"time"
)

func trainerCaller(uid string) domain.CurrentUser {
	return domain.CurrentUser{Role: domain.RoleTrainer, Trainer: &domain.Trainer{UID: uid, Email: uid + "@test"}}
}

func memberCaller(uid string) domain.CurrentUser {
	return domain.CurrentUser{Role: domain.RoleMember, Member: &domain.Member{UID: uid, Email: uid + "@test"}}
}

func TestRequestMappingCreatesPendingRow(t *testing.T) {
	users := &mockUserRepo{
		getMemberByEmailFn: func(ctx context.Context, email string) (*domain.Member, error) {
			return &domain.Member{UID: "m1", Email: email}, nil
		},
	}
	var created *domain.TrainerMemberMap
	mappings := &mockMappingRepo{
		createFn: func(ctx context.Context, mapping *domain.TrainerMemberMap) error {
			mapping.ID = 7
			created = mapping
			return nil
		},
	}
	svc := NewMappingService(users, mappings, time.Hour)

	mapping, err := svc.Request(context.Background(), trainerCaller("t1"), "member@test", 10)
	if err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected a row to be created")
	}
	if mapping.Status != domain.MappingPending {
		t.Errorf("status = %q, want pending", mapping.Status)
	}
	if mapping.TrainerUID != "t1" || mapping.MemberUID != "m1" {
		t.Errorf("pair = (%s, %s), want (t1, m1)", mapping.TrainerUID, mapping.MemberUID)
	}
	if mapping.RequesterUID != "t1" {
		t.Errorf("requester = %q, want t1", mapping.RequesterUID)
	}
	if mapping.RemainingSessions != 10 {
		t.Errorf("remaining sessions = %d, want 10", mapping.RemainingSessions)
	}
}

func TestRequestMappingCounterpartMissing(t *testing.T) {
	svc := NewMappingService(&mockUserRepo{}, &mockMappingRepo{}, time.Hour)

	_, err := svc.Request(context.Background(), memberCaller("m1"), "ghost@test", 0)
	if !errors.Is(err, ErrCounterpartNotFound) {
		t.Fatalf("err = %v, want ErrCounterpartNotFound", err)
	}
}

func TestRequestMappingBlockedByExisting(t *testing.T) {
	cases := []struct {
		name    string
		status  domain.MappingStatus
		wantErr error
	}{
		{"accepted blocks", domain.MappingAccepted, ErrMappingActive},
		{"pending blocks", domain.MappingPending, ErrMappingPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := &mockUserRepo{
				getMemberByEmailFn: func(ctx context.Context, email string) (*domain.Member, error) {
					return &domain.Member{UID: "m1", Email: email}, nil
				},
			}
			mappings := &mockMappingRepo{
				getByPairFn: func(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error) {
					return &domain.TrainerMemberMap{ID: 1, TrainerUID: trainerUID, MemberUID: memberUID, Status: tc.status}, nil
				},
			}
			svc := NewMappingService(users, mappings, time.Hour)

			_, err := svc.Request(context.Background(), trainerCaller("t1"), "member@test", 5)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRequestMappingReusesExpiredRow(t *testing.T) {
	users := &mockUserRepo{
		getTrainerByEmailFn: func(ctx context.Context, email string) (*domain.Trainer, error) {
			return &domain.Trainer{UID: "t1", Email: email}, nil
		},
	}
	deleted := false
	mappings := &mockMappingRepo{
		getByPairFn: func(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error) {
			return &domain.TrainerMemberMap{ID: 3, TrainerUID: "t1", MemberUID: "m1", Status: domain.MappingExpired}, nil
		},
		deleteByPairFn: func(ctx context.Context, trainerUID, memberUID string) error {
			deleted = true
			return nil
		},
		createFn: func(ctx context.Context, mapping *domain.TrainerMemberMap) error {
			mapping.ID = 4
			return nil
		},
	}
	svc := NewMappingService(users, mappings, time.Hour)

	mapping, err := svc.Request(context.Background(), memberCaller("m1"), "trainer@test", 3)
	if err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	if !deleted {
		t.Error("expected the expired row to be removed")
	}
	if mapping.Status != domain.MappingPending {
		t.Errorf("status = %q, want pending", mapping.Status)
	}
	if mapping.RequesterUID != "m1" {
		t.Errorf("requester = %q, want m1", mapping.RequesterUID)
	}
}

func TestRequestMappingConcurrentDuplicateMapsToConflict(t *testing.T) {
	users := &mockUserRepo{
		getMemberByEmailFn: func(ctx context.Context, email string) (*domain.Member, error) {
			return &domain.Member{UID: "m1", Email: email}, nil
		},
	}
	mappings := &mockMappingRepo{
		createFn: func(ctx context.Context, mapping *domain.TrainerMemberMap) error {
			return repository.ErrConflict // unique index tripped
		},
	}
	svc := NewMappingService(users, mappings, time.Hour)

	_, err := svc.Request(context.Background(), trainerCaller("t1"), "member@test", 1)
	if !errors.Is(err, ErrMappingPending) {
		t.Fatalf("err = %v, want ErrMappingPending", err)
	}
}

func TestRespondAcceptRecordsAcceptanceDate(t *testing.T) {
	pending := &domain.TrainerMemberMap{
		ID: 1, TrainerUID: "t1", MemberUID: "m1",
		Status: domain.MappingPending, RequesterUID: "t1",
	}
	var gotStatus domain.MappingStatus
	var gotAcceptance *time.Time
	mappings := &mockMappingRepo{
		getByIDFn: func(ctx context.Context, id uint) (*domain.TrainerMemberMap, error) {
			return pending, nil
		},
		updateStatusFn: func(ctx context.Context, id uint, status domain.MappingStatus, acceptanceDate *time.Time) error {
			gotStatus = status
			gotAcceptance = acceptanceDate
			return nil
		},
	}
	svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

	mapping, err := svc.Respond(context.Background(), memberCaller("m1"), 1, domain.MappingAccepted)
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if gotStatus != domain.MappingAccepted {
		t.Errorf("persisted status = %q, want accepted", gotStatus)
	}
	if gotAcceptance == nil || mapping.AcceptanceDate == nil {
		t.Fatal("acceptance date was not recorded")
	}
}

func TestRespondAuthorization(t *testing.T) {
	pending := func() *domain.TrainerMemberMap {
		return &domain.TrainerMemberMap{
			ID: 1, TrainerUID: "t1", MemberUID: "m1",
			Status: domain.MappingPending, RequesterUID: "t1",
		}
	}
	cases := []struct {
		name    string
		caller  domain.CurrentUser
		row     *domain.TrainerMemberMap
		status  domain.MappingStatus
		wantErr error
	}{
		{"stranger is rejected", trainerCaller("t2"), pending(), domain.MappingAccepted, ErrNotMappingParty},
		{"requester cannot respond", trainerCaller("t1"), pending(), domain.MappingAccepted, ErrRequesterResponds},
		{"accepted row cannot transition", memberCaller("m1"),
			&domain.TrainerMemberMap{ID: 1, TrainerUID: "t1", MemberUID: "m1", Status: domain.MappingAccepted, RequesterUID: "t1"},
			domain.MappingExpired, ErrInvalidTransition},
		{"pending cannot go back to pending", memberCaller("m1"), pending(), domain.MappingPending, ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mappings := &mockMappingRepo{
				getByIDFn: func(ctx context.Context, id uint) (*domain.TrainerMemberMap, error) {
					return tc.row, nil
				},
			}
			svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

			_, err := svc.Respond(context.Background(), tc.caller, 1, tc.status)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAdjustSessionsGuardsNegativeBalance(t *testing.T) {
	mappings := &mockMappingRepo{
		adjustSessionsFn: func(ctx context.Context, trainerUID, memberUID string, delta int) (*domain.TrainerMemberMap, error) {
			return nil, repository.ErrConflict
		},
	}
	svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

	_, err := svc.AdjustSessions(context.Background(), "t1", "m1", -1)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
}

func TestAdjustSessionsToZeroArmsExpiry(t *testing.T) {
	var armedAt *time.Time
	mappings := &mockMappingRepo{
		adjustSessionsFn: func(ctx context.Context, trainerUID, memberUID string, delta int) (*domain.TrainerMemberMap, error) {
			return &domain.TrainerMemberMap{ID: 1, Status: domain.MappingAccepted, RemainingSessions: 0}, nil
		},
		setExpiryFn: func(ctx context.Context, id uint, expiresAt *time.Time) error {
			armedAt = expiresAt
			return nil
		},
	}
	grace := 2 * time.Hour
	svc := NewMappingService(&mockUserRepo{}, mappings, grace)

	before := time.Now().UTC()
	remaining, err := svc.AdjustSessions(context.Background(), "t1", "m1", -1)
	if err != nil {
		t.Fatalf("AdjustSessions returned error: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if armedAt == nil {
		t.Fatal("expiry was not armed on zero balance")
	}
	if armedAt.Before(before.Add(grace)) || armedAt.After(time.Now().UTC().Add(grace)) {
		t.Errorf("expiry %v not within grace window of %v", armedAt, grace)
	}
}

func TestAdjustSessionsReplenishDisarmsExpiry(t *testing.T) {
	deadline := time.Now().Add(time.Minute)
	var cleared bool
	mappings := &mockMappingRepo{
		adjustSessionsFn: func(ctx context.Context, trainerUID, memberUID string, delta int) (*domain.TrainerMemberMap, error) {
			return &domain.TrainerMemberMap{ID: 1, Status: domain.MappingAccepted, RemainingSessions: 5, ExpiresAt: &deadline}, nil
		},
		setExpiryFn: func(ctx context.Context, id uint, expiresAt *time.Time) error {
			if expiresAt == nil {
				cleared = true
			}
			return nil
		},
	}
	svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

	remaining, err := svc.AdjustSessions(context.Background(), "t1", "m1", 5)
	if err != nil {
		t.Fatalf("AdjustSessions returned error: %v", err)
	}
	if remaining != 5 {
		t.Errorf("remaining = %d, want 5", remaining)
	}
	if !cleared {
		t.Error("expected expiry to be disarmed after replenishment")
	}
}

func TestRemainingSessionsLazyExpiry(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	mappings := &mockMappingRepo{
		getByPairFn: func(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error) {
			return &domain.TrainerMemberMap{
				ID: 1, TrainerUID: "t1", MemberUID: "m1",
				Status: domain.MappingAccepted, ExpiresAt: &past,
			}, nil
		},
	}
	svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

	// The sweeper has not run yet, but the grace period is over.
	_, err := svc.RemainingSessions(context.Background(), trainerCaller("t1"), "m1")
	if !errors.Is(err, ErrMappingNotFound) {
		t.Fatalf("err = %v, want ErrMappingNotFound for overdue mapping", err)
	}
}

func TestCheckAcceptedStates(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	cases := []struct {
		name string
		row  *domain.TrainerMemberMap
		err  error
		want bool
	}{
		{"accepted", &domain.TrainerMemberMap{Status: domain.MappingAccepted}, nil, true},
		{"pending", &domain.TrainerMemberMap{Status: domain.MappingPending}, nil, false},
		{"overdue accepted", &domain.TrainerMemberMap{Status: domain.MappingAccepted, ExpiresAt: &past}, nil, false},
		{"no row", nil, repository.ErrNotFound, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mappings := &mockMappingRepo{
				getByPairFn: func(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error) {
					return tc.row, tc.err
				},
			}
			svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

			got, err := svc.CheckAccepted(context.Background(), "t1", "m1")
			if err != nil {
				t.Fatalf("CheckAccepted returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("exists = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestListMineReportsOverdueAcceptedAsExpired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	mappings := &mockMappingRepo{
		listForUserFn: func(ctx context.Context, uid string, isTrainer bool) ([]domain.MappingSummary, error) {
			return []domain.MappingSummary{
				{MappingID: 1, UID: "m1", Status: domain.MappingAccepted, ExpiresAt: &past},
				{MappingID: 2, UID: "m2", Status: domain.MappingAccepted, ExpiresAt: &future},
				{MappingID: 3, UID: "m3", Status: domain.MappingPending},
			}, nil
		},
	}
	svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

	summaries, err := svc.ListMine(context.Background(), trainerCaller("t1"))
	if err != nil {
		t.Fatalf("ListMine returned error: %v", err)
	}
	want := []domain.MappingStatus{domain.MappingExpired, domain.MappingAccepted, domain.MappingPending}
	for i, status := range want {
		if summaries[i].Status != status {
			t.Errorf("summary %s: status = %q, want %q", summaries[i].UID, summaries[i].Status, status)
		}
	}
}

func TestRemoveMappingOrientsPairByRole(t *testing.T) {
	var gotTrainer, gotMember string
	mappings := &mockMappingRepo{
		deleteByPairFn: func(ctx context.Context, trainerUID, memberUID string) error {
			gotTrainer, gotMember = trainerUID, memberUID
			return nil
		},
	}
	svc := NewMappingService(&mockUserRepo{}, mappings, time.Hour)

	if err := svc.Remove(context.Background(), memberCaller("m1"), "t1"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if gotTrainer != "t1" || gotMember != "m1" {
		t.Errorf("pair = (%s, %s), want (t1, m1)", gotTrainer, gotMember)
	}
}
