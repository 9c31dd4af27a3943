package domain

// Workout is an exercise definition in the shared catalog. The MET
// columns feed calorie estimation on the client side.
type Workout struct {
	WorkoutID uint     `gorm:"primaryKey" json:"workoutId"`
	Name      string   `gorm:"uniqueIndex;not null;column:workout_name" json:"workoutName"`
	LowMET    *float64 `gorm:"column:low_met" json:"lowMet,omitempty"`
	MidMET    *float64 `gorm:"column:mid_met" json:"midMet,omitempty"`
	HighMET   *float64 `gorm:"column:high_met" json:"highMet,omitempty"`
	SecPerRep *float64 `json:"secPerRep,omitempty"`
}

func (Workout) TableName() string { return "workouts" }

// WorkoutPart is a body-part grouping (chest, legs, ...).
type WorkoutPart struct {
	WorkoutPartID uint   `gorm:"primaryKey" json:"workoutPartId"`
	Name          string `gorm:"uniqueIndex;not null;column:workout_part_name" json:"workoutPartName"`
}

func (WorkoutPart) TableName() string { return "workout_parts" }

// WorkoutKey joins a workout to a body part. Session and quest set rows
// reference this key, not the workout directly, so the same exercise can
// appear under several parts.
type WorkoutKey struct {
	WorkoutKeyID  uint        `gorm:"primaryKey" json:"workoutKey"`
	WorkoutID     uint        `gorm:"not null" json:"workoutId"`
	WorkoutPartID uint        `gorm:"not null" json:"workoutPartId"`
	Workout       Workout     `gorm:"foreignKey:WorkoutID" json:"-"`
	WorkoutPart   WorkoutPart `gorm:"foreignKey:WorkoutPartID" json:"-"`
}

func (WorkoutKey) TableName() string { return "workout_key_name_map" }

// WorkoutInfo is the flattened catalog entry returned by lookups.
type WorkoutInfo struct {
	WorkoutKey  uint   `json:"workoutKey"`
	WorkoutName string `json:"workoutName"`
	WorkoutPart string `json:"workoutPart"`
}
