package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/formhive/formhive/internal/infrastructure/database/models"
)

func NewPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
}

func MigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Form{},
		&models.FormPermission{},
		&models.FormSubmission{},
	)
}
