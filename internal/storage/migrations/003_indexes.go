package migrations

import "gorm.io/gorm"

// migration003Up creates the indexes used by listings and tallies
func migration003Up(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_votes_option ON votes(option_id)",
		"CREATE INDEX IF NOT EXISTS idx_votes_voted_at ON votes(voted_at)",
		"CREATE INDEX IF NOT EXISTS idx_participants_name ON participants(name)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration003Down drops the indexes
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"DROP INDEX IF EXISTS idx_votes_option",
		"DROP INDEX IF EXISTS idx_votes_voted_at",
		"DROP INDEX IF EXISTS idx_participants_name",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return err
		}
	}
	return nil
}
