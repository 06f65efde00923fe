// Package sqlcatalog implements catalog.Session on top of an embedded SQL catalog store.
package sqlcatalog

import (
	"context"
	"database/sql"
	"embed"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	gosqlite3 "github.com/mattn/go-sqlite3"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// To check compatibility with catalog.Session interface.
var _ catalog.Session = &Session{}

// executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type executor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type Options struct {
	// Endpoint is the path (or sqlite DSN) of the catalog store.
	Endpoint string
	// Catalog is the name of the catalog inside the store.
	Catalog string
	// EncryptionKey protects sensitive variable values. Sensitive variables cannot be
	// stored without it and read back empty.
	EncryptionKey string

	// Now is used for deployment timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Session is a connection to one catalog of a catalog store.
type Session struct {
	logger log.Logger
	db     *sqlx.DB

	catalogID   int64
	catalogName string
	key         *[keySize]byte
	now         func() time.Time
}

// Open connects to the catalog store at opts.Endpoint, brings its schema up to date
// and resolves the catalog. All failures are catalog.KindConnection errors.
func Open(ctx context.Context, logger log.Logger, opts Options) (*Session, error) {
	if opts.Catalog == "" {
		return nil, catalog.Errorf(catalog.KindConnection, "no catalog name given")
	}

	dsn := opts.Endpoint
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, catalog.Wrapf(err, catalog.KindConnection, "open catalog store %v", opts.Endpoint)
	}
	// Single writer; every statement of a transaction runs on the transaction itself.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, catalog.Wrapf(err, catalog.KindConnection, "ping catalog store %v", opts.Endpoint)
	}
	if err := runMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, catalog.Wrapf(err, catalog.KindConnection, "migrate catalog store %v", opts.Endpoint)
	}

	s := &Session{
		logger:      log.With(logger, "catalog", opts.Catalog),
		db:          db,
		catalogName: opts.Catalog,
		now:         opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.EncryptionKey != "" {
		s.key = deriveKey(opts.EncryptionKey)
	}

	if err := db.GetContext(ctx, &s.catalogID, `SELECT catalog_id FROM catalogs WHERE name = ?`, opts.Catalog); err != nil {
		_ = db.Close()
		if err == sql.ErrNoRows {
			return nil, catalog.Errorf(catalog.KindConnection, "catalog %q does not exist in %v", opts.Catalog, opts.Endpoint)
		}
		return nil, catalog.Wrapf(err, catalog.KindConnection, "look up catalog %q", opts.Catalog)
	}
	level.Debug(s.logger).Log("msg", "connected to catalog", "endpoint", opts.Endpoint)
	return s, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "create migration driver")
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "create migration source")
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return errors.Wrap(err, "create migrator")
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// Close releases the connection to the catalog store.
func (s *Session) Close() error {
	return s.db.Close()
}

func (s *Session) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}

func isUniqueViolation(err error) bool {
	var se gosqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == gosqlite3.ErrConstraintUnique
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	return t, errors.Wrapf(err, "parse time %q", s)
}

type folderRow struct {
	ID          int64  `db:"folder_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

func (s *Session) Folder(ctx context.Context, name string) (*catalog.Folder, error) {
	return s.folder(ctx, s.db, name)
}

func (s *Session) folder(ctx context.Context, ex executor, name string) (*catalog.Folder, error) {
	row := folderRow{}
	err := ex.GetContext(ctx, &row, `SELECT folder_id, name, description FROM folders WHERE catalog_id = ? AND name = ?`, s.catalogID, name)
	if err == sql.ErrNoRows {
		return nil, catalog.Errorf(catalog.KindNotFound, "folder %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get folder %q", name)
	}
	return &catalog.Folder{ID: row.ID, Name: row.Name, Description: row.Description}, nil
}

func (s *Session) CreateFolder(ctx context.Context, name, description string) (*catalog.Folder, error) {
	if name == "" {
		return nil, errors.New("folder name cannot be empty")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (catalog_id, name, description, created_time) VALUES (?, ?, ?, ?)`,
		s.catalogID, name, description, formatTime(s.now()),
	)
	if isUniqueViolation(err) {
		return nil, catalog.Errorf(catalog.KindConflict, "folder %q already exists", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "create folder %q", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "folder id")
	}
	level.Debug(s.logger).Log("msg", "created folder", "folder", name)
	return &catalog.Folder{ID: id, Name: name, Description: description}, nil
}
