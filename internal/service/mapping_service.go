package service

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"log"
	"time"
)

// --- Error Definitions ---
var (
	ErrMappingNotFound     = errors.New("trainer-member mapping not found")
	ErrMappingActive       = errors.New("mapping already exists and is accepted")
	ErrMappingPending      = errors.New("mapping already exists and is pending")
	ErrNotMappingParty     = errors.New("not a party to this mapping")
	ErrRequesterResponds   = errors.New("the requester cannot respond to their own request")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientCredits = errors.New("not enough remaining sessions")
	ErrCounterpartNotFound = errors.New("counterpart user not found")
)

// MappingService drives the trainer/member relationship lifecycle and
// its session-credit balance: pending -> accepted -> expired, with the
// balance guarded against going negative and a durable grace period
// before an exhausted mapping expires.
type MappingService interface {
	Request(ctx context.Context, caller domain.CurrentUser, otherEmail string, initialSessions int) (*domain.TrainerMemberMap, error)
	Respond(ctx context.Context, caller domain.CurrentUser, mappingID uint, newStatus domain.MappingStatus) (*domain.TrainerMemberMap, error)
	ListMine(ctx context.Context, caller domain.CurrentUser) ([]domain.MappingSummary, error)
	Remove(ctx context.Context, caller domain.CurrentUser, otherUID string) error
	RemainingSessions(ctx context.Context, caller domain.CurrentUser, otherUID string) (int, error)
	// AdjustSessions is trainer-only; delta may be negative (session
	// consumed) or positive (credits purchased).
	AdjustSessions(ctx context.Context, trainerUID, memberUID string, delta int) (int, error)
	CheckAccepted(ctx context.Context, trainerUID, memberUID string) (bool, error)
	ConnectedMember(ctx context.Context, trainerUID, memberUID string) (*domain.Member, error)
}

type mappingService struct {
	userRepo    repository.UserRepository
	mappingRepo repository.MappingRepository
	expiryGrace time.Duration
}

// NewMappingService creates a new instance of mappingService.
// expiryGrace is how long an exhausted mapping stays accepted before it
// expires (credits replenished within the window cancel the expiry).
func NewMappingService(userRepo repository.UserRepository, mappingRepo repository.MappingRepository, expiryGrace time.Duration) MappingService {
	if expiryGrace <= 0 {
		expiryGrace = 2 * time.Hour
	}
	return &mappingService{
		userRepo:    userRepo,
		mappingRepo: mappingRepo,
		expiryGrace: expiryGrace,
	}
}

// Request creates a pending mapping between the caller and the user
// behind otherEmail. Exactly one mapping row exists per pair: an
// accepted or pending one blocks the request, an expired one is reset
// in place so the unique index keeps holding.
func (s *mappingService) Request(ctx context.Context, caller domain.CurrentUser, otherEmail string, initialSessions int) (*domain.TrainerMemberMap, error) {
	if initialSessions < 0 {
		return nil, errors.New("initial sessions cannot be negative")
	}

	var trainerUID, memberUID string
	if caller.IsTrainer() {
		member, err := s.userRepo.GetMemberByEmail(ctx, otherEmail)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCounterpartNotFound
			}
			return nil, err
		}
		trainerUID, memberUID = caller.UID(), member.UID
	} else {
		trainer, err := s.userRepo.GetTrainerByEmail(ctx, otherEmail)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCounterpartNotFound
			}
			return nil, err
		}
		trainerUID, memberUID = trainer.UID, caller.UID()
	}

	existing, err := s.mappingRepo.GetByPair(ctx, trainerUID, memberUID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.EffectiveStatus(time.Now()) {
		case domain.MappingAccepted:
			return nil, ErrMappingActive
		case domain.MappingPending:
			return nil, ErrMappingPending
		default:
			return s.reuseExpired(ctx, existing, caller.UID(), initialSessions)
		}
	}

	mapping := &domain.TrainerMemberMap{
		TrainerUID:        trainerUID,
		MemberUID:         memberUID,
		Status:            domain.MappingPending,
		RequesterUID:      caller.UID(),
		RemainingSessions: initialSessions,
	}
	if err := s.mappingRepo.Create(ctx, mapping); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost the race with a concurrent request for the same pair.
			return nil, ErrMappingPending
		}
		return nil, err
	}
	return mapping, nil
}

// reuseExpired turns a terminal row back into a fresh pending request.
func (s *mappingService) reuseExpired(ctx context.Context, old *domain.TrainerMemberMap, requesterUID string, initialSessions int) (*domain.TrainerMemberMap, error) {
	if err := s.mappingRepo.DeleteByPair(ctx, old.TrainerUID, old.MemberUID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	mapping := &domain.TrainerMemberMap{
		TrainerUID:        old.TrainerUID,
		MemberUID:         old.MemberUID,
		Status:            domain.MappingPending,
		RequesterUID:      requesterUID,
		RemainingSessions: initialSessions,
	}
	if err := s.mappingRepo.Create(ctx, mapping); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMappingPending
		}
		return nil, err
	}
	return mapping, nil
}

// Respond moves a pending mapping to accepted or terminates it. Only
// the non-requesting party may do either.
func (s *mappingService) Respond(ctx context.Context, caller domain.CurrentUser, mappingID uint, newStatus domain.MappingStatus) (*domain.TrainerMemberMap, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}

	if !mapping.IsParty(caller.UID()) {
		return nil, ErrNotMappingParty
	}
	if mapping.RequesterUID == caller.UID() {
		return nil, ErrRequesterResponds
	}
	if mapping.Status != domain.MappingPending {
		return nil, ErrInvalidTransition
	}
	if newStatus != domain.MappingAccepted && newStatus != domain.MappingExpired {
		return nil, ErrInvalidTransition
	}

	var acceptance *time.Time
	if newStatus == domain.MappingAccepted {
		now := time.Now().UTC()
		acceptance = &now
	}
	if err := s.mappingRepo.UpdateStatus(ctx, mappingID, newStatus, acceptance); err != nil {
		return nil, err
	}

	mapping.Status = newStatus
	mapping.AcceptanceDate = acceptance
	return mapping, nil
}

// ListMine reports each row's effective status, so an overdue accepted
// mapping the sweeper has not flipped yet already lists as expired.
func (s *mappingService) ListMine(ctx context.Context, caller domain.CurrentUser) ([]domain.MappingSummary, error) {
	summaries, err := s.mappingRepo.ListForUser(ctx, caller.UID(), caller.IsTrainer())
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range summaries {
		summaries[i].Status = summaries[i].EffectiveStatus(now)
	}
	return summaries, nil
}

// Remove deletes the mapping between the caller and otherUID. Either
// party may do this unconditionally.
func (s *mappingService) Remove(ctx context.Context, caller domain.CurrentUser, otherUID string) error {
	var trainerUID, memberUID string
	if caller.IsTrainer() {
		trainerUID, memberUID = caller.UID(), otherUID
	} else {
		trainerUID, memberUID = otherUID, caller.UID()
	}
	err := s.mappingRepo.DeleteByPair(ctx, trainerUID, memberUID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMappingNotFound
	}
	return err
}

// RemainingSessions reports the credit balance; it is only meaningful
// on an accepted mapping.
func (s *mappingService) RemainingSessions(ctx context.Context, caller domain.CurrentUser, otherUID string) (int, error) {
	var trainerUID, memberUID string
	if caller.IsTrainer() {
		trainerUID, memberUID = caller.UID(), otherUID
	} else {
		trainerUID, memberUID = otherUID, caller.UID()
	}
	mapping, err := s.mappingRepo.GetByPair(ctx, trainerUID, memberUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrMappingNotFound
		}
		return 0, err
	}
	if mapping.EffectiveStatus(time.Now()) != domain.MappingAccepted {
		return 0, ErrMappingNotFound
	}
	return mapping.RemainingSessions, nil
}

// AdjustSessions applies the signed delta atomically. Reaching exactly
// zero arms the durable grace timer; replenishing disarms it.
func (s *mappingService) AdjustSessions(ctx context.Context, trainerUID, memberUID string, delta int) (int, error) {
	mapping, err := s.mappingRepo.AdjustSessions(ctx, trainerUID, memberUID, delta)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return 0, ErrMappingNotFound
		case errors.Is(err, repository.ErrConflict):
			return 0, ErrInsufficientCredits
		default:
			return 0, err
		}
	}

	switch {
	case mapping.RemainingSessions == 0 && mapping.Status == domain.MappingAccepted && mapping.ExpiresAt == nil:
		expiresAt := time.Now().UTC().Add(s.expiryGrace)
		if err := s.mappingRepo.SetExpiry(ctx, mapping.ID, &expiresAt); err != nil {
			log.Printf("WARN: failed to arm expiry for mapping %d: %v", mapping.ID, err)
		}
	case mapping.RemainingSessions > 0 && mapping.ExpiresAt != nil:
		if err := s.mappingRepo.SetExpiry(ctx, mapping.ID, nil); err != nil {
			log.Printf("WARN: failed to disarm expiry for mapping %d: %v", mapping.ID, err)
		}
	}
	return mapping.RemainingSessions, nil
}

// CheckAccepted is the cross-service authorization primitive the
// workout service calls before letting a trainer act on a member.
func (s *mappingService) CheckAccepted(ctx context.Context, trainerUID, memberUID string) (bool, error) {
	mapping, err := s.mappingRepo.GetByPair(ctx, trainerUID, memberUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return mapping.EffectiveStatus(time.Now()) == domain.MappingAccepted, nil
}

func (s *mappingService) ConnectedMember(ctx context.Context, trainerUID, memberUID string) (*domain.Member, error) {
	member, err := s.mappingRepo.GetConnectedMember(ctx, trainerUID, memberUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}
	member.PasswordHash = ""
	return member, nil
}
