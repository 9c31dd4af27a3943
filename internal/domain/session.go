package domain

import (
	"time"
)

// SessionType classifies how a logged workout came about.
type SessionType string

const (
	SessionTypeAI     SessionType = "ai"     // generated plan
	SessionTypeQuest  SessionType = "quest"  // tied to a trainer-assigned quest
	SessionTypeCustom SessionType = "custom" // free-form, also used for PT sessions
)

// SessionHeader is one logged workout instance. Set rows attach to it
// once the session is saved. TrainerUID is set only for PT sessions.
type SessionHeader struct {
	SessionID   uint         `gorm:"primaryKey" json:"sessionId"`
	SessionType SessionType  `gorm:"not null" json:"sessionType"`
	WorkoutDate time.Time    `gorm:"not null" json:"workoutDate"`
	MemberUID   string       `gorm:"not null;index" json:"memberUid"`
	TrainerUID  *string      `json:"trainerUid,omitempty"`
	IsPT        bool         `gorm:"not null" json:"isPt"`
	QuestID     *uint        `json:"questId,omitempty"`
	Sets        []SessionSet `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"sets,omitempty"`
}

func (SessionHeader) TableName() string { return "session_id_mapping" }

// SessionSet is one performed set. Immutable once saved; a re-save of
// the owning session replaces the whole group.
type SessionSet struct {
	SessionID  uint    `gorm:"primaryKey;autoIncrement:false" json:"sessionId"`
	WorkoutKey uint    `gorm:"primaryKey;autoIncrement:false" json:"workoutKey"`
	SetNum     int     `gorm:"primaryKey;autoIncrement:false" json:"setNum"`
	Weight     float64 `gorm:"not null" json:"weight"`
	Reps       int     `gorm:"not null" json:"reps"`
	RestTime   int     `gorm:"not null" json:"restTime"`
}

func (SessionSet) TableName() string { return "session" }

// SessionCounts buckets a member's sessions for a date range.
type SessionCounts struct {
	AISessions     int `json:"ai_sessions"`
	CustomSessions int `json:"custom_sessions"`
	QuestSessions  int `json:"quest_sessions"`
	PTSessions     int `json:"pt_sessions"`
}
