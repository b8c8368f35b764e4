package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/FilterHub/internal/db"
	"github.com/goran-ethernal/FilterHub/internal/logger"
)

//go:embed 001_chain.sql
var mig001 string

// RunMigrations brings the chain store schema up to date.
func RunMigrations(log *logger.Logger, database *sql.DB) error {
	migrations := []db.Migration{
		{
			ID:  "chainstore_001_chain.sql",
			SQL: mig001,
		},
	}

	return db.RunMigrationsDB(log, database, migrations)
}
