package migrations

import "gorm.io/gorm"

// VotesChannel is the LISTEN/NOTIFY channel signalled on every ledger mutation
const VotesChannel = "votes_changed"

// migration004Up makes every write to votes, including TRUNCATE, notify
// listeners on VotesChannel with the operation name as payload.
func migration004Up(db *gorm.DB) error {
	statements := []string{
		`CREATE OR REPLACE FUNCTION notify_votes_changed()
        RETURNS TRIGGER AS $$
        BEGIN
            PERFORM pg_notify('` + VotesChannel + `', TG_OP);
            RETURN NULL;
        END;
        $$ LANGUAGE plpgsql`,

		`DROP TRIGGER IF EXISTS votes_notify ON votes`,
		`CREATE TRIGGER votes_notify
            AFTER INSERT OR UPDATE OR DELETE ON votes
            FOR EACH STATEMENT EXECUTE FUNCTION notify_votes_changed()`,

		`DROP TRIGGER IF EXISTS votes_notify_truncate ON votes`,
		`CREATE TRIGGER votes_notify_truncate
            AFTER TRUNCATE ON votes
            FOR EACH STATEMENT EXECUTE FUNCTION notify_votes_changed()`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration004Down removes the triggers and their function
func migration004Down(db *gorm.DB) error {
	statements := []string{
		"DROP TRIGGER IF EXISTS votes_notify_truncate ON votes",
		"DROP TRIGGER IF EXISTS votes_notify ON votes",
		"DROP FUNCTION IF EXISTS notify_votes_changed()",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
