package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleMember  Role = "member"
	RoleTrainer Role = "trainer"
)

// Member represents a coached user. The UID is an opaque external
// identity string (issued at registration) and is the primary key.
type Member struct {
	UID              string    `gorm:"primaryKey" json:"uid"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"not null" json:"-"` // Never expose this via JSON
	FirstName        *string   `json:"firstName,omitempty"`
	LastName         *string   `json:"lastName,omitempty"`
	Age              *int      `json:"age,omitempty"`
	Height           *float64  `json:"height,omitempty"`
	Weight           *float64  `json:"weight,omitempty"`
	WorkoutLevel     *int      `json:"workoutLevel,omitempty"`
	WorkoutFrequency *int      `json:"workoutFrequency,omitempty"`
	WorkoutGoal      *int      `json:"workoutGoal,omitempty"`
	Role             Role      `gorm:"not null;default:member" json:"role"`
	LastActive       time.Time `json:"lastActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Member) TableName() string { return "members" }

// Trainer represents a coaching user, keyed the same way as Member.
type Trainer struct {
	UID          string    `gorm:"primaryKey" json:"uid"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    *string   `json:"firstName,omitempty"`
	LastName     *string   `json:"lastName,omitempty"`
	Role         Role      `gorm:"not null;default:trainer" json:"role"`
	LastActive   time.Time `json:"lastActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Trainer) TableName() string { return "trainers" }

// CurrentUser is the authenticated caller: exactly one of Member or
// Trainer is set, matching Role. Call sites switch on Role instead of
// probing which pointer happens to be non-nil.
type CurrentUser struct {
	Role    Role
	Member  *Member
	Trainer *Trainer
}

// UID returns the identity of whichever side is populated.
func (u CurrentUser) UID() string {
	switch u.Role {
	case RoleMember:
		return u.Member.UID
	case RoleTrainer:
		return u.Trainer.UID
	}
	return ""
}

func (u CurrentUser) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u CurrentUser) IsMember() bool {
	return u.Role == RoleMember
}
