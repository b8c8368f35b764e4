package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/FilterHub/internal/logger"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	UpDownSeparator   = "-- +migrate Up"
	downMarker        = "-- +migrate Down"
	NoLimitMigrations = 0 // indicate that there is no limit on the number of migrations to run
)

// Migration is a schema change written as "-- +migrate Down" followed by "-- +migrate Up".
type Migration struct {
	ID  string
	SQL string
}

// RunMigrationsDB applies every pending migration.
func RunMigrationsDB(log *logger.Logger, db *sql.DB, migrations []Migration) error {
	return RunMigrationsDBExtended(log, db, migrations, migrate.Up, NoLimitMigrations)
}

// RunMigrationsDBExtended applies at most maxMigrations migrations in the given
// direction. Pass NoLimitMigrations to apply all of them.
func RunMigrationsDBExtended(
	log *logger.Logger,
	db *sql.DB,
	migrations []Migration,
	dir migrate.MigrationDirection,
	maxMigrations int,
) error {
	source := &migrate.MemoryMigrationSource{Migrations: make([]*migrate.Migration, 0, len(migrations))}
	ids := make([]string, 0, len(migrations))

	for _, m := range migrations {
		parsed, err := parseMigration(m)
		if err != nil {
			return err
		}
		source.Migrations = append(source.Migrations, parsed)
		ids = append(ids, m.ID)
	}

	list := strings.Join(ids, ", ")
	log.Debugf("running migrations: (max %d/%d) migrations: %s", maxMigrations, len(ids), list)

	n, err := migrate.ExecMax(db, "sqlite3", source, dir, maxMigrations)
	if err != nil {
		return fmt.Errorf("error executing migration (max %d/%d) migrations: %s: %w",
			maxMigrations, len(ids), list, err)
	}

	log.Infof("successfully ran %d migrations from migrations: %s", n, list)

	return nil
}

func parseMigration(m Migration) (*migrate.Migration, error) {
	down, up, found := strings.Cut(m.SQL, UpDownSeparator)
	if !found {
		return nil, fmt.Errorf("migration %s missing '%s' separator", m.ID, UpDownSeparator)
	}

	if _, after, ok := strings.Cut(down, downMarker); ok {
		down = after
	}

	return &migrate.Migration{
		Id:   m.ID,
		Up:   []string{strings.TrimSpace(up)},
		Down: []string{strings.TrimSpace(down)},
	}, nil
}
