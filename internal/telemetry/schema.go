package telemetry

import (
	"database/sql"

	"github.com/manvi18ux/assistive-har-system/internal/errors"
)

// initSchema initializes the database schema for telemetry data
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS alerts (
            id TEXT PRIMARY KEY,
            kind TEXT,
            message TEXT,
            priority TEXT,
            created_at INTEGER,
            received_at INTEGER
        );
        CREATE TABLE IF NOT EXISTS activity_log (
            timestamp INTEGER,
            activity TEXT
        );
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}
