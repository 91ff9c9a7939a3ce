package optionsstore

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/core-tools/hsu-deploy/pkg/deployment"
	"github.com/core-tools/hsu-deploy/pkg/descriptor"
	"github.com/core-tools/hsu-deploy/pkg/errors"
	"github.com/core-tools/hsu-deploy/pkg/logging"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// executor abstracts operations shared by *sqlx.DB and *sqlx.Tx
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sqlx.DB
	logger logging.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at dsn and runs migrations
func NewSQLiteStore(dsn string, logger logging.Logger) (*SQLiteStore, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sqlx.Open("sqlite3", dsn+sep+"_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewIOError("failed to open options database", err).WithContext("dsn", dsn)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewIOError("failed to ping options database", err).WithContext("dsn", dsn)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, errors.NewInternalError("failed to migrate options database", err).WithContext("dsn", dsn)
	}

	logger.Debugf("Options store opened, dsn: %s", dsn)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type optionsRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Options   string `db:"options"`
	Hash      string `db:"hash"`
	Revision  int    `db:"revision"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// Put stores options under name. Storing a value equal to the current one leaves the
// revision untouched and returns a record with Changed == false.
func (s *SQLiteStore) Put(ctx context.Context, name string, options *deployment.DeploymentOptions) (*Record, error) {
	if err := descriptor.ValidateDeploymentName(name); err != nil {
		return nil, err
	}
	if options == nil {
		return nil, errors.NewValidationError("options cannot be nil", nil).WithContext("name", name)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewIOError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	record, err := putOptions(ctx, tx, name, options)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewIOError("failed to commit transaction", err).WithContext("name", name)
	}

	if record.Changed {
		s.logger.Infof("Stored deployment options, name: %s, revision: %d", name, record.Revision)
	} else {
		s.logger.Debugf("Deployment options unchanged, name: %s, revision: %d", name, record.Revision)
	}
	return record, nil
}

func putOptions(ctx context.Context, exec executor, name string, options *deployment.DeploymentOptions) (*Record, error) {
	data, err := options.ToJSON()
	if err != nil {
		return nil, errors.NewInternalError("failed to serialize deployment options", err).WithContext("name", name)
	}
	hash := options.Hash()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	existing, err := getRow(ctx, exec, name)
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, err
	}

	if existing == nil {
		row := optionsRow{
			ID:        uuid.New().String(),
			Name:      name,
			Options:   string(data),
			Hash:      formatHash(hash),
			Revision:  1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		query := `
			INSERT INTO deployment_options (id, name, options, hash, revision, created_at, updated_at)
			VALUES (:id, :name, :options, :hash, :revision, :created_at, :updated_at)`
		if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
			return nil, errors.NewIOError("failed to insert deployment options", err).WithContext("name", name)
		}
		return rowToRecord(&row, true)
	}

	if existing.Hash == formatHash(hash) {
		current, err := rowToRecord(existing, false)
		if err != nil {
			return nil, err
		}
		if current.Options.Equal(options) {
			return current, nil
		}
	}

	existing.Options = string(data)
	existing.Hash = formatHash(hash)
	existing.Revision++
	existing.UpdatedAt = now

	query := `
		UPDATE deployment_options
		SET options = :options, hash = :hash, revision = :revision, updated_at = :updated_at
		WHERE id = :id`
	if _, err := exec.NamedExecContext(ctx, query, existing); err != nil {
		return nil, errors.NewIOError("failed to update deployment options", err).WithContext("name", name)
	}
	return rowToRecord(existing, true)
}

// Get returns the options stored under name
func (s *SQLiteStore) Get(ctx context.Context, name string) (*Record, error) {
	row, err := getRow(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	return rowToRecord(row, false)
}

func getRow(ctx context.Context, exec executor, name string) (*optionsRow, error) {
	var row optionsRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM deployment_options WHERE name = ?`, name)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deployment options not found", nil).WithContext("name", name)
		}
		return nil, errors.NewIOError("failed to query deployment options", err).WithContext("name", name)
	}
	return &row, nil
}

// List returns every stored record ordered by name
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	var rows []optionsRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM deployment_options ORDER BY name`); err != nil {
		return nil, errors.NewIOError("failed to list deployment options", err)
	}

	records := make([]Record, 0, len(rows))
	for i := range rows {
		record, err := rowToRecord(&rows[i], false)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// Delete removes the options stored under name
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM deployment_options WHERE name = ?`, name)
	if err != nil {
		return errors.NewIOError("failed to delete deployment options", err).WithContext("name", name)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewIOError("failed to delete deployment options", err).WithContext("name", name)
	}
	if affected == 0 {
		return errors.NewNotFoundError("deployment options not found", nil).WithContext("name", name)
	}

	s.logger.Infof("Deleted deployment options, name: %s", name)
	return nil
}

func rowToRecord(row *optionsRow, changed bool) (*Record, error) {
	options, err := deployment.FromJSON([]byte(row.Options))
	if err != nil {
		return nil, errors.NewInternalError("stored deployment options are corrupt", err).WithContext("name", row.Name)
	}

	hash, err := strconv.ParseUint(row.Hash, 16, 64)
	if err != nil {
		return nil, errors.NewInternalError("stored deployment options hash is corrupt", err).WithContext("name", row.Name)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, errors.NewInternalError("stored created_at is corrupt", err).WithContext("name", row.Name)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row.UpdatedAt)
	if err != nil {
		return nil, errors.NewInternalError("stored updated_at is corrupt", err).WithContext("name", row.Name)
	}

	return &Record{
		ID:        row.ID,
		Name:      row.Name,
		Options:   options,
		Hash:      hash,
		Revision:  row.Revision,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Changed:   changed,
	}, nil
}

func formatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}
