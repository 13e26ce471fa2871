package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maloquacious/mealmax/internal/logger"
	"github.com/maloquacious/mealmax/internal/meal"
	"github.com/maloquacious/mealmax/internal/metrics"
	"github.com/maloquacious/mealmax/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteStore implements the Store and Catalogue interfaces using modernc.org/sqlite.
type SQLiteStore struct {
	dbPath          string
	db              *sql.DB
	conns           store.ConnProvider
	expectedSchema  string
	createTablePath string
	log             logger.Logger
}

// New creates a new SQLiteStore. createTablePath names the script
// ClearMeals runs; a nil log uses logger.Default.
func New(dbPath string, expectedSchema string, createTablePath string, log logger.Logger) *SQLiteStore {
	if log == nil {
		log = logger.Default
	}
	return &SQLiteStore{
		dbPath:          dbPath,
		expectedSchema:  expectedSchema,
		createTablePath: createTablePath,
		log:             log,
	}
}

// Open opens the SQLite database with safe defaults.
func (s *SQLiteStore) Open() error {
	if strings.TrimSpace(s.dbPath) == "" {
		return fmt.Errorf("storage path is required")
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := s.dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	s.conns = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates schema_migrations and the meals table and records version.
func (s *SQLiteStore) InitSchema(version string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(initialSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err = tx.Exec(createMealsTable); err != nil {
		return fmt.Errorf("failed to create meals table: %w", err)
	}

	_, err = tx.Exec(`INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, strftime('%s', 'now'))`, version)
	if err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CheckState returns the current state of the datastore.
func (s *SQLiteStore) CheckState() (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, fmt.Errorf("database not opened")
	}

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('schema_migrations', 'meals')`).Scan(&count)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to check schema tables: %w", err)
	}

	if count < 2 {
		return store.StateUninitialized, nil
	}

	version, err := s.GetSchemaVersion()
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to get schema version: %w", err)
	}

	if version != s.expectedSchema {
		return store.StateVersionMismatch, nil
	}

	return store.StateReady, nil
}

// GetSchemaVersion returns the current schema version from the database.
func (s *SQLiteStore) GetSchemaVersion() (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var version string
	err := s.db.QueryRow(`SELECT version FROM schema_migrations ORDER BY applied_at DESC LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}

	return version, nil
}

// withTx acquires one connection, runs fn in a transaction on it and
// commits. The connection is released on every path; an uncommitted
// transaction is rolled back.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.conns == nil {
		return fmt.Errorf("database not opened")
	}
	conn, err := s.conns.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// fail passes catalogue errors through and turns anything else into a
// logged storage error.
func (s *SQLiteStore) fail(err error) error {
	if meal.CodeOf(err) != meal.CodeUnknown {
		return err
	}
	s.log.Error("database error: %v", err)
	return meal.WrapError(meal.CodeStorage, "database error", err)
}

func (s *SQLiteStore) observe(op string, start time.Time, errp *error) {
	result := "ok"
	if *errp != nil {
		result = meal.CodeOf(*errp).String()
	}
	metrics.CatalogueOpsTotal.WithLabelValues(op, result).Inc()
	metrics.CatalogueOpLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func isMealNameUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "meals.meal")
}

var (
	_ store.Store     = (*SQLiteStore)(nil)
	_ store.Catalogue = (*SQLiteStore)(nil)
)
