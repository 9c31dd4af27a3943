package postgres

import (
	"fitcoach/platform/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDB opens a gorm connection pool against the configured DSN.
func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// DisconnectDB closes the underlying sql.DB pool.
func DisconnectDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MigrateUserSchema creates/updates the tables owned by the user
// service. Run once at startup.
func MigrateUserSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Member{},
		&domain.Trainer{},
		&domain.TrainerMemberMap{},
	)
}

// MigrateWorkoutSchema creates/updates the tables owned by the workout
// service.
func MigrateWorkoutSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Workout{},
		&domain.WorkoutPart{},
		&domain.WorkoutKey{},
		&domain.Quest{},
		&domain.QuestWorkout{},
		&domain.QuestSet{},
		&domain.SessionHeader{},
		&domain.SessionSet{},
	)
}
