// Package sqlite provides a SQLite-backed implementation of the
// storage.Backend interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// The flat file is lost whenever a free hosting instance restarts. SQLite
// still stores everything in a single file on disk, with no network and no
// separate server process, but a save is a real transaction.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	storage.Register(storage.DriverSQLite, func(path string) (storage.Backend, error) {
		return New(path)
	})
}

// SQLite is the database implementation of storage.Backend.
// position keeps the store's order, which a table does not have on its own.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path and creates the students table if
// it does not already exist.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema mirrors the flat file's columns, plus position.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			position   INTEGER NOT NULL,
			nim        TEXT    PRIMARY KEY,
			name       TEXT    NOT NULL,
			gender     TEXT    NOT NULL,
			department TEXT    NOT NULL,
			term       INTEGER NOT NULL,
			gpa        REAL    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Name implements storage.Backend.
func (s *SQLite) Name() string { return storage.DriverSQLite }

// Load returns all rows ordered by position. Rows that do not convert back
// into a record are counted as dropped.
func (s *SQLite) Load(ctx context.Context) (codec.Result, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT nim, name, gender, department, term, gpa FROM students ORDER BY position",
	)
	if err != nil {
		return codec.Result{}, fmt.Errorf("sqlite.Load: query: %w", err)
	}
	defer rows.Close()

	res := codec.Result{Records: make([]types.Student, 0)}

	for rows.Next() {
		cols := make([]sql.NullString, codec.NumFields)
		dest := make([]any, len(cols))
		for i := range cols {
			dest[i] = &cols[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return codec.Result{}, fmt.Errorf("sqlite.Load: scan row: %w", err)
		}

		fields := make([]string, len(cols))
		for i, c := range cols {
			fields[i] = c.String
		}
		st, err := codec.ParseRow(fields)
		if err != nil {
			res.Dropped++
			continue
		}
		// REAL columns come back as "3.5"; the record keeps two decimals.
		st.GPA = types.RoundGPA(st.GPA)
		res.Records = append(res.Records, st)
	}

	if err := rows.Err(); err != nil {
		return codec.Result{}, fmt.Errorf("sqlite.Load: rows iteration: %w", err)
	}
	return res, nil
}

// Save replaces every row inside one transaction.
func (s *SQLite) Save(ctx context.Context, records []types.Student) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite.Save: begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return fmt.Errorf("sqlite.Save: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, strings.TrimSpace(`
		INSERT INTO students (position, nim, name, gender, department, term, gpa)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("sqlite.Save: prepare: %w", err)
	}
	defer stmt.Close()

	for i, st := range records {
		_, err := stmt.ExecContext(ctx, i, st.ID, st.Name, string(st.Gender), st.Department, st.Term, st.GPA)
		if err != nil {
			return fmt.Errorf("sqlite.Save: insert %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Save: commit: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
