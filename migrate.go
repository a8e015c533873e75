package portal

import (
	"context"
	"database/sql"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/pressly/goose/v3"
)

// goose keeps its base FS and dialect in package globals.
var migrateMu sync.Mutex

// Migrate applies the embedded schema with goose. dialect is a goose dialect
// name such as "postgres" or "sqlite3".
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "set migration dialect").
			WithMetadata(map[string]any{"dialect": dialect})
	}

	if err := goose.UpContext(ctx, db, MigrationsDir); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "apply migrations")
	}
	return nil
}
