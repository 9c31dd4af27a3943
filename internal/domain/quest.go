package domain

import (
	"time"
)

// QuestStatus type for the assigned-workout lifecycle
type QuestStatus string

const (
	QuestNotStarted     QuestStatus = "not_started"
	QuestCompleted      QuestStatus = "completed"
	QuestDeadlinePassed QuestStatus = "deadline_passed"
)

// Quest is a trainer-assigned workout plan awaiting completion by a
// member. Completion happens implicitly when the member saves a session
// created against the quest.
type Quest struct {
	QuestID    uint           `gorm:"primaryKey" json:"questId"`
	TrainerUID string         `gorm:"not null;index" json:"trainerUid"`
	MemberUID  string         `gorm:"not null;index" json:"memberUid"`
	Status     QuestStatus    `gorm:"not null;default:not_started" json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	Workouts   []QuestWorkout `gorm:"foreignKey:QuestID;constraint:OnDelete:CASCADE" json:"workouts"`
}

func (Quest) TableName() string { return "quests" }

// QuestWorkout is one exercise within a quest, identified by its
// catalog workout key.
type QuestWorkout struct {
	QuestID    uint       `gorm:"primaryKey;autoIncrement:false" json:"questId"`
	WorkoutKey uint       `gorm:"primaryKey;autoIncrement:false" json:"workoutKey"`
	Sets       []QuestSet `gorm:"foreignKey:QuestID,WorkoutKey;references:QuestID,WorkoutKey;constraint:OnDelete:CASCADE" json:"sets"`
}

func (QuestWorkout) TableName() string { return "quest_workouts" }

// QuestSet is one prescribed set within a quest workout.
type QuestSet struct {
	QuestID    uint    `gorm:"primaryKey;autoIncrement:false" json:"questId"`
	WorkoutKey uint    `gorm:"primaryKey;autoIncrement:false" json:"workoutKey"`
	SetNumber  int     `gorm:"primaryKey;autoIncrement:false" json:"setNumber"`
	Weight     float64 `gorm:"not null" json:"weight"`
	Reps       int     `gorm:"not null" json:"reps"`
	RestTime   int     `gorm:"not null" json:"restTime"`
}

func (QuestSet) TableName() string { return "quest_workout_sets" }
