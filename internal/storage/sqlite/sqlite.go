// Package sqlite provides SQLite-backed implementations of the storage
// interfaces using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. Each service owns its own file: the students service opens it
// with NewStudents, the exams service with NewExams and the professors
// service with NewProfessors. Each constructor creates only its own tables.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// dateLayout is how every date column is stored and served.
const dateLayout = "2006-01-02"

// db wraps the connection pool shared by every store in this package.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type db struct {
	Db *sql.DB
}

// open opens the SQLite file at path and applies schema.
//
// DSN options:
//   - _foreign_keys=on   enforce REFERENCES / ON DELETE CASCADE
//   - _busy_timeout=5000 wait up to 5s for a competing writer
//   - _txlock=immediate  transactions take the write lock at BEGIN, so a
//     "count then insert" runs without interleaving another writer
func open(path, schema string) (db, error) {
	// The driver creates the file but not its directory.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return db{}, fmt.Errorf("sqlite.open: create dir: %w", err)
	}

	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return db{}, fmt.Errorf("sqlite.open: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup. If the table already exists nothing happens.
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return db{}, fmt.Errorf("sqlite.open: apply schema: %w", err)
	}

	return db{Db: conn}, nil
}

// Ping reports whether the database file is reachable.
func (d db) Ping(ctx context.Context) error {
	return d.Db.PingContext(ctx)
}

// Close releases the connection pool.
func (d db) Close() error {
	return d.Db.Close()
}

// inClause returns "?,?,?" for n placeholders and the ids as arguments.
func inClause(ids []int) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

// withTx runs fn inside a transaction, committing on success.
func (d db) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
