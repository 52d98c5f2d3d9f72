package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the schema backing the local-storage key/value store.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS local_storage (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrations.Run: %w", err)
		}
	}
	return nil
}
