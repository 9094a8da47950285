package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

// migration002Up creates the participant and ballot tables from the gorm models
func migration002Up(db *gorm.DB) error {
	for _, model := range AllModels() {
		if err := db.Migrator().CreateTable(model); err != nil {
			return fmt.Errorf("create %T: %w", model, err)
		}
	}
	return nil
}

// migration002Down drops the tables in reverse creation order
func migration002Down(db *gorm.DB) error {
	models := AllModels()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop %T: %w", models[i], err)
		}
	}
	return nil
}
