package db

import (
	"github.com/delta/research-portal/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	tables := []interface{}{
		&models.Department{},
		&models.User{},
		&models.Session{},
		&models.AreaOfResearch{},
		&models.Lab{},
		&models.COE{},
		&models.Project{},
		&models.ProjectMemberPrivilege{},
		&models.ProjectMemberRelationship{},
	}

	migrator := DB.Migrator()

	for _, model := range tables {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
