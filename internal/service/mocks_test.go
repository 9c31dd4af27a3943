package service

import (
	"context"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"time"
)

// Function-field mocks. Unset fields fall back to ErrNotFound or a
// zero result so each test only wires what it exercises.

type mockUserRepo struct {
	createMemberFn      func(ctx context.Context, member *domain.Member) error
	createTrainerFn     func(ctx context.Context, trainer *domain.Trainer) error
	getMemberByUIDFn    func(ctx context.Context, uid string) (*domain.Member, error)
	getTrainerByUIDFn   func(ctx context.Context, uid string) (*domain.Trainer, error)
	getMemberByEmailFn  func(ctx context.Context, email string) (*domain.Member, error)
	getTrainerByEmailFn func(ctx context.Context, email string) (*domain.Trainer, error)
	updateMemberFn      func(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Member, error)
	updateTrainerFn     func(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Trainer, error)
	deleteMemberFn      func(ctx context.Context, uid string) error
	deleteTrainerFn     func(ctx context.Context, uid string) error
	touchLastActiveFn   func(ctx context.Context, uid string, role domain.Role, at time.Time) error
}

func (m *mockUserRepo) CreateMember(ctx context.Context, member *domain.Member) error {
	if m.createMemberFn != nil {
		return m.createMemberFn(ctx, member)
	}
	return nil
}

func (m *mockUserRepo) CreateTrainer(ctx context.Context, trainer *domain.Trainer) error {
	if m.createTrainerFn != nil {
		return m.createTrainerFn(ctx, trainer)
	}
	return nil
}

func (m *mockUserRepo) GetMemberByUID(ctx context.Context, uid string) (*domain.Member, error) {
	if m.getMemberByUIDFn != nil {
		return m.getMemberByUIDFn(ctx, uid)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetTrainerByUID(ctx context.Context, uid string) (*domain.Trainer, error) {
	if m.getTrainerByUIDFn != nil {
		return m.getTrainerByUIDFn(ctx, uid)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error) {
	if m.getMemberByEmailFn != nil {
		return m.getMemberByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetTrainerByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	if m.getTrainerByEmailFn != nil {
		return m.getTrainerByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) UpdateMember(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Member, error) {
	if m.updateMemberFn != nil {
		return m.updateMemberFn(ctx, uid, fields)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) UpdateTrainer(ctx context.Context, uid string, fields map[string]interface{}) (*domain.Trainer, error) {
	if m.updateTrainerFn != nil {
		return m.updateTrainerFn(ctx, uid, fields)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) DeleteMember(ctx context.Context, uid string) error {
	if m.deleteMemberFn != nil {
		return m.deleteMemberFn(ctx, uid)
	}
	return repository.ErrNotFound
}

func (m *mockUserRepo) DeleteTrainer(ctx context.Context, uid string) error {
	if m.deleteTrainerFn != nil {
		return m.deleteTrainerFn(ctx, uid)
	}
	return repository.ErrNotFound
}

func (m *mockUserRepo) TouchLastActive(ctx context.Context, uid string, role domain.Role, at time.Time) error {
	if m.touchLastActiveFn != nil {
		return m.touchLastActiveFn(ctx, uid, role, at)
	}
	return nil
}

type mockMappingRepo struct {
	createFn             func(ctx context.Context, mapping *domain.TrainerMemberMap) error
	getByIDFn            func(ctx context.Context, id uint) (*domain.TrainerMemberMap, error)
	getByPairFn          func(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error)
	listForUserFn        func(ctx context.Context, uid string, isTrainer bool) ([]domain.MappingSummary, error)
	updateStatusFn       func(ctx context.Context, id uint, status domain.MappingStatus, acceptanceDate *time.Time) error
	deleteByPairFn       func(ctx context.Context, trainerUID, memberUID string) error
	adjustSessionsFn     func(ctx context.Context, trainerUID, memberUID string, delta int) (*domain.TrainerMemberMap, error)
	setExpiryFn          func(ctx context.Context, id uint, expiresAt *time.Time) error
	expireOverdueFn      func(ctx context.Context, now time.Time) (int64, error)
	getConnectedMemberFn func(ctx context.Context, trainerUID, memberUID string) (*domain.Member, error)
}

func (m *mockMappingRepo) Create(ctx context.Context, mapping *domain.TrainerMemberMap) error {
	if m.createFn != nil {
		return m.createFn(ctx, mapping)
	}
	return nil
}

func (m *mockMappingRepo) GetByID(ctx context.Context, id uint) (*domain.TrainerMemberMap, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockMappingRepo) GetByPair(ctx context.Context, trainerUID, memberUID string) (*domain.TrainerMemberMap, error) {
	if m.getByPairFn != nil {
		return m.getByPairFn(ctx, trainerUID, memberUID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockMappingRepo) ListForUser(ctx context.Context, uid string, isTrainer bool) ([]domain.MappingSummary, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, uid, isTrainer)
	}
	return nil, nil
}

func (m *mockMappingRepo) UpdateStatus(ctx context.Context, id uint, status domain.MappingStatus, acceptanceDate *time.Time) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, acceptanceDate)
	}
	return nil
}

func (m *mockMappingRepo) DeleteByPair(ctx context.Context, trainerUID, memberUID string) error {
	if m.deleteByPairFn != nil {
		return m.deleteByPairFn(ctx, trainerUID, memberUID)
	}
	return repository.ErrNotFound
}

func (m *mockMappingRepo) AdjustSessions(ctx context.Context, trainerUID, memberUID string, delta int) (*domain.TrainerMemberMap, error) {
	if m.adjustSessionsFn != nil {
		return m.adjustSessionsFn(ctx, trainerUID, memberUID, delta)
	}
	return nil, repository.ErrNotFound
}

func (m *mockMappingRepo) SetExpiry(ctx context.Context, id uint, expiresAt *time.Time) error {
	if m.setExpiryFn != nil {
		return m.setExpiryFn(ctx, id, expiresAt)
	}
	return nil
}

func (m *mockMappingRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	if m.expireOverdueFn != nil {
		return m.expireOverdueFn(ctx, now)
	}
	return 0, nil
}

func (m *mockMappingRepo) GetConnectedMember(ctx context.Context, trainerUID, memberUID string) (*domain.Member, error) {
	if m.getConnectedMemberFn != nil {
		return m.getConnectedMemberFn(ctx, trainerUID, memberUID)
	}
	return nil, repository.ErrNotFound
}

type mockSessionRepo struct {
	createHeaderFn      func(ctx context.Context, header *domain.SessionHeader) error
	getHeaderByIDFn     func(ctx context.Context, sessionID uint) (*domain.SessionHeader, error)
	getHeaderWithSetsFn func(ctx context.Context, sessionID uint) (*domain.SessionHeader, error)
	replaceSetsFn       func(ctx context.Context, sessionID uint, sets []domain.SessionSet) error
	listByMemberFn      func(ctx context.Context, memberUID string) ([]domain.SessionHeader, error)
	countsByMemberFn    func(ctx context.Context, memberUID string, start, end time.Time) (*domain.SessionCounts, error)
	lastSessionDateFn   func(ctx context.Context, memberUID string) (*time.Time, error)
}

func (m *mockSessionRepo) CreateHeader(ctx context.Context, header *domain.SessionHeader) error {
	if m.createHeaderFn != nil {
		return m.createHeaderFn(ctx, header)
	}
	header.SessionID = 1
	return nil
}

func (m *mockSessionRepo) GetHeaderByID(ctx context.Context, sessionID uint) (*domain.SessionHeader, error) {
	if m.getHeaderByIDFn != nil {
		return m.getHeaderByIDFn(ctx, sessionID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockSessionRepo) GetHeaderWithSets(ctx context.Context, sessionID uint) (*domain.SessionHeader, error) {
	if m.getHeaderWithSetsFn != nil {
		return m.getHeaderWithSetsFn(ctx, sessionID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockSessionRepo) ReplaceSets(ctx context.Context, sessionID uint, sets []domain.SessionSet) error {
	if m.replaceSetsFn != nil {
		return m.replaceSetsFn(ctx, sessionID, sets)
	}
	return nil
}

func (m *mockSessionRepo) ListByMember(ctx context.Context, memberUID string) ([]domain.SessionHeader, error) {
	if m.listByMemberFn != nil {
		return m.listByMemberFn(ctx, memberUID)
	}
	return nil, nil
}

func (m *mockSessionRepo) CountsByMember(ctx context.Context, memberUID string, start, end time.Time) (*domain.SessionCounts, error) {
	if m.countsByMemberFn != nil {
		return m.countsByMemberFn(ctx, memberUID, start, end)
	}
	return &domain.SessionCounts{}, nil
}

func (m *mockSessionRepo) LastSessionDate(ctx context.Context, memberUID string) (*time.Time, error) {
	if m.lastSessionDateFn != nil {
		return m.lastSessionDateFn(ctx, memberUID)
	}
	return nil, nil
}

type mockQuestRepo struct {
	createFn                 func(ctx context.Context, quest *domain.Quest) error
	getByIDFn                func(ctx context.Context, questID uint) (*domain.Quest, error)
	listByTrainerFn          func(ctx context.Context, trainerUID string) ([]domain.Quest, error)
	listByMemberFn           func(ctx context.Context, memberUID string) ([]domain.Quest, error)
	listByTrainerAndMemberFn func(ctx context.Context, trainerUID, memberUID string) ([]domain.Quest, error)
	updateStatusFn           func(ctx context.Context, questID uint, status domain.QuestStatus) error
	deleteFn                 func(ctx context.Context, questID uint) error
	expireNotStartedFn       func(ctx context.Context, memberUID string) (int64, error)
	oldestNotStartedFn       func(ctx context.Context, memberUID string) (*domain.Quest, error)
	recordsByWorkoutFn       func(ctx context.Context, memberUID string, workoutKey uint) ([]domain.Quest, error)
}

func (m *mockQuestRepo) Create(ctx context.Context, quest *domain.Quest) error {
	if m.createFn != nil {
		return m.createFn(ctx, quest)
	}
	quest.QuestID = 1
	return nil
}

func (m *mockQuestRepo) GetByID(ctx context.Context, questID uint) (*domain.Quest, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, questID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockQuestRepo) ListByTrainer(ctx context.Context, trainerUID string) ([]domain.Quest, error) {
	if m.listByTrainerFn != nil {
		return m.listByTrainerFn(ctx, trainerUID)
	}
	return nil, nil
}

func (m *mockQuestRepo) ListByMember(ctx context.Context, memberUID string) ([]domain.Quest, error) {
	if m.listByMemberFn != nil {
		return m.listByMemberFn(ctx, memberUID)
	}
	return nil, nil
}

func (m *mockQuestRepo) ListByTrainerAndMember(ctx context.Context, trainerUID, memberUID string) ([]domain.Quest, error) {
	if m.listByTrainerAndMemberFn != nil {
		return m.listByTrainerAndMemberFn(ctx, trainerUID, memberUID)
	}
	return nil, nil
}

func (m *mockQuestRepo) UpdateStatus(ctx context.Context, questID uint, status domain.QuestStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, questID, status)
	}
	return nil
}

func (m *mockQuestRepo) Delete(ctx context.Context, questID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, questID)
	}
	return repository.ErrNotFound
}

func (m *mockQuestRepo) ExpireNotStarted(ctx context.Context, memberUID string) (int64, error) {
	if m.expireNotStartedFn != nil {
		return m.expireNotStartedFn(ctx, memberUID)
	}
	return 0, nil
}

func (m *mockQuestRepo) OldestNotStarted(ctx context.Context, memberUID string) (*domain.Quest, error) {
	if m.oldestNotStartedFn != nil {
		return m.oldestNotStartedFn(ctx, memberUID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockQuestRepo) RecordsByWorkout(ctx context.Context, memberUID string, workoutKey uint) ([]domain.Quest, error) {
	if m.recordsByWorkoutFn != nil {
		return m.recordsByWorkoutFn(ctx, memberUID, workoutKey)
	}
	return nil, nil
}

type mockCatalogRepo struct {
	workoutNameFn func(ctx context.Context, workoutKey uint) (string, error)
	searchFn      func(ctx context.Context, name string) ([]domain.WorkoutInfo, error)
	byPartFn      func(ctx context.Context, partID *uint) (map[string][]domain.WorkoutInfo, error)
}

func (m *mockCatalogRepo) WorkoutName(ctx context.Context, workoutKey uint) (string, error) {
	if m.workoutNameFn != nil {
		return m.workoutNameFn(ctx, workoutKey)
	}
	return "", repository.ErrNotFound
}

func (m *mockCatalogRepo) Search(ctx context.Context, name string) ([]domain.WorkoutInfo, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, name)
	}
	return nil, nil
}

func (m *mockCatalogRepo) ByPart(ctx context.Context, partID *uint) (map[string][]domain.WorkoutInfo, error) {
	if m.byPartFn != nil {
		return m.byPartFn(ctx, partID)
	}
	return nil, nil
}

type mockUserGateway struct {
	checkMappingFn   func(ctx context.Context, token, trainerUID, memberUID string) (bool, error)
	adjustSessionsFn func(ctx context.Context, token, trainerUID, memberUID string, delta int) (int, error)
	trainerByUIDFn   func(ctx context.Context, token, uid string) (*domain.Trainer, error)
}

func (m *mockUserGateway) CheckMapping(ctx context.Context, token, trainerUID, memberUID string) (bool, error) {
	if m.checkMappingFn != nil {
		return m.checkMappingFn(ctx, token, trainerUID, memberUID)
	}
	return false, nil
}

func (m *mockUserGateway) AdjustSessions(ctx context.Context, token, trainerUID, memberUID string, delta int) (int, error) {
	if m.adjustSessionsFn != nil {
		return m.adjustSessionsFn(ctx, token, trainerUID, memberUID, delta)
	}
	return 0, nil
}

func (m *mockUserGateway) TrainerByUID(ctx context.Context, token, uid string) (*domain.Trainer, error) {
	if m.trainerByUIDFn != nil {
		return m.trainerByUIDFn(ctx, token, uid)
	}
	return nil, repository.ErrNotFound
}
