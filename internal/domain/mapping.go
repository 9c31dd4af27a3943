package domain

import (
	"time"
)

// MappingStatus type for the trainer/member relationship lifecycle
type MappingStatus string

const (
	MappingPending  MappingStatus = "pending"
	MappingAccepted MappingStatus = "accepted"
	MappingExpired  MappingStatus = "expired" // terminal, no un-expiring
)

// TrainerMemberMap is the relationship record between a trainer and a
// member, carrying approval status and the session-credit balance.
//
// The (trainer_uid, member_uid) pair is unique at the database level, so
// concurrent duplicate requests surface as a constraint violation rather
// than a second row.
//
// ExpiresAt is the durable grace-period marker: set when the credit
// balance reaches zero, cleared when credits are replenished, and acted
// on by the expiry sweeper. Because it is a column rather than an
// in-process timer, a restart does not lose the pending expiry.
type TrainerMemberMap struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	TrainerUID        string        `gorm:"not null;uniqueIndex:idx_trainer_member" json:"trainerUid"`
	MemberUID         string        `gorm:"not null;uniqueIndex:idx_trainer_member" json:"memberUid"`
	Trainer           Trainer       `gorm:"foreignKey:TrainerUID;references:UID;constraint:OnDelete:CASCADE" json:"-"`
	Member            Member        `gorm:"foreignKey:MemberUID;references:UID;constraint:OnDelete:CASCADE" json:"-"`
	Status            MappingStatus `gorm:"not null;default:pending" json:"status"`
	RequesterUID      string        `gorm:"not null" json:"requesterUid"` // must equal TrainerUID or MemberUID
	RemainingSessions int           `gorm:"not null;default:0" json:"remainingSessions"`
	AcceptanceDate    *time.Time    `json:"acceptanceDate,omitempty"`
	ExpiresAt         *time.Time    `json:"expiresAt,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func (TrainerMemberMap) TableName() string { return "trainer_member_mapping" }

// IsParty reports whether uid is one of the two sides of the mapping.
func (m *TrainerMemberMap) IsParty(uid string) bool {
	return uid == m.TrainerUID || uid == m.MemberUID
}

// Counterpart returns the uid of the other side relative to uid.
func (m *TrainerMemberMap) Counterpart(uid string) string {
	if uid == m.TrainerUID {
		return m.MemberUID
	}
	return m.TrainerUID
}

// EffectiveStatus reports the status with the grace period applied: an
// accepted mapping whose ExpiresAt has passed reads as expired even if
// the sweeper has not flipped the row yet.
func (m *TrainerMemberMap) EffectiveStatus(now time.Time) MappingStatus {
	if m.Status == MappingAccepted && m.ExpiresAt != nil && !m.ExpiresAt.After(now) {
		return MappingExpired
	}
	return m.Status
}

// MappingSummary is a mapping joined with the counterpart's profile,
// as returned by the my-mappings listing.
type MappingSummary struct {
	MappingID         uint          `json:"mappingId"`
	UID               string        `json:"uid"` // counterpart identity
	Email             string        `json:"email"`
	FirstName         *string       `json:"firstName,omitempty"`
	LastName          *string       `json:"lastName,omitempty"`
	Status            MappingStatus `json:"status"`
	RemainingSessions int           `json:"remainingSessions"`
	ExpiresAt         *time.Time    `json:"-"` // carried so listings apply the grace deadline
}

// EffectiveStatus applies the grace deadline the same way
// TrainerMemberMap.EffectiveStatus does.
func (s MappingSummary) EffectiveStatus(now time.Time) MappingStatus {
	if s.Status == MappingAccepted && s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return MappingExpired
	}
	return s.Status
}
