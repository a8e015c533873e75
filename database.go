package portal

import (
	"context"
	"database/sql"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseOptions selects the row store.
type DatabaseOptions struct {
	Driver  string
	DSN     string
	Migrate bool
}

// OpenDatabase connects to the row store and applies the schema when asked.
// Postgres goes through the pgx stdlib driver, sqlite through sqliteshim.
func OpenDatabase(ctx context.Context, opts DatabaseOptions) (*bun.DB, error) {
	var (
		sqldb   *sql.DB
		db      *bun.DB
		dialect string
		err     error
	)

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverPostgres, "pgx", "postgresql":
		if sqldb, err = sql.Open("pgx", opts.DSN); err != nil {
			return nil, wrapOpenErr(err, opts.Driver)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
		dialect = "postgres"
	case DriverSQLite, "sqlite3", "":
		if sqldb, err = sql.Open(sqliteshim.ShimName, opts.DSN); err != nil {
			return nil, wrapOpenErr(err, opts.Driver)
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
		dialect = "sqlite3"
	default:
		return nil, goerrors.New("unsupported database driver", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"driver": opts.Driver})
	}

	if err := sqldb.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrapOpenErr(err, opts.Driver)
	}

	if opts.Migrate {
		if err := Migrate(ctx, sqldb, dialect); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func wrapOpenErr(err error, driver string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "open database").
		WithMetadata(map[string]any{"driver": driver})
}
