package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	regerrors "strreg/internal/errors"
)

// DefaultSQLiteDSN keeps the database in memory, so nothing survives a restart.
const DefaultSQLiteDSN = ":memory:"

const schemaVersion = 1

// SQLiteStore keeps records in a SQLite database through the pure Go driver.
type SQLiteStore struct {
	conn   *sql.DB
	logger *slog.Logger
	dsn    string
}

// OpenSQLite opens (or creates) a SQLite store at dsn and ensures the schema.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{conn: conn, logger: logger, dsn: dsn}
	if err := s.initializeSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("SQLite store ready", "dsn", dsn, "schemaVersion", schemaVersion)
	return s, nil
}

func (s *SQLiteStore) initializeSchema(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		// AUTOINCREMENT guarantees a deleted id is never handed out again.
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS strings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				folded TEXT NOT NULL UNIQUE,
				value TEXT NOT NULL,
				properties_json TEXT NOT NULL
			)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx executes fn within a transaction, rolling back when it fails.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("failed to rollback transaction",
				"error", err.Error(),
				"rollback_error", rbErr.Error(),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Insert stores rec; the UNIQUE index on the folded value rejects duplicates.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	props, err := json.Marshal(rec.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO strings (folded, value, properties_json) VALUES (?, ?, ?)`,
		rec.Key(), rec.Value, string(props),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return regerrors.New(regerrors.Conflict, "String already exists in the system")
		}
		return fmt.Errorf("failed to insert string: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	rec.ID = id
	return nil
}

// Find returns the record stored under key.
func (s *SQLiteStore) Find(ctx context.Context, key string) (*Record, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, value, properties_json FROM strings WHERE folded = ?`, key)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, regerrors.New(regerrors.NotFound, "String does not exist in the system")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load string: %w", err)
	}
	return rec, nil
}

// All returns every record ordered by id, which is insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]*Record, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, value, properties_json FROM strings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list strings: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan string: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the record stored under key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM strings WHERE folded = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete string: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return regerrors.New(regerrors.NotFound, "String does not exist in the system")
	}
	return nil
}

// Count returns the number of records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM strings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count strings: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec   Record
		props string
	)
	if err := row.Scan(&rec.ID, &rec.Value, &props); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(props), &rec.Properties); err != nil {
		return nil, fmt.Errorf("corrupt properties for id %d: %w", rec.ID, err)
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
