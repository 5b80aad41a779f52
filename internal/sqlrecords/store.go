// Package sqlrecords implements recordstore.Store on SQLite. Every record is
// one row holding its JSON encoding, keyed by URN.
package sqlrecords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/recordstore"
)

// Store is the SQLite implementation of recordstore.Store.
type Store struct {
	db *sqlx.DB
}

var _ recordstore.Store = (*Store)(nil)

// recordRow is the database shape of a record.
type recordRow struct {
	Seq  int64  `db:"seq"`
	URN  string `db:"urn"`
	Type string `db:"type"`
	Body []byte `db:"body"`
}

// New wraps an open database and creates the schema if needed.
func New(db *sqlx.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}
	return s, nil
}

// Open opens the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := configureSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func configureSQLite(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS lineage_record (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		urn TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT '',
		body BLOB NOT NULL,
		update_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_lineage_record_type ON lineage_record(type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts records in a single transaction.
func (s *Store) Put(ctx context.Context, records ...lineage.Record) error {
	if err := recordstore.Validate(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
	INSERT INTO lineage_record (urn, type, body) VALUES (:urn, :type, :body)
	ON CONFLICT(urn) DO UPDATE SET
		type = excluded.type,
		body = excluded.body,
		update_time = CURRENT_TIMESTAMP
	`
	for _, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.URN, err)
		}
		row := recordRow{URN: rec.URN, Type: rec.Type, Body: body}
		if _, err := tx.NamedExecContext(ctx, upsert, row); err != nil {
			return fmt.Errorf("failed to store record %s: %w", rec.URN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Records stored.", "count", len(records))
	return nil
}

// Get retrieves a record by URN.
func (s *Store) Get(ctx context.Context, urn string) (*lineage.Record, bool, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, `SELECT seq, urn, type, body FROM lineage_record WHERE urn = ?`, urn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query record %s: %w", urn, err)
	}

	rec, err := row.decode()
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// All returns every record in first-insertion order.
func (s *Store) All(ctx context.Context) ([]lineage.Record, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT seq, urn, type, body FROM lineage_record ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	out := make([]lineage.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (r recordRow) decode() (*lineage.Record, error) {
	var rec lineage.Record
	if err := json.Unmarshal(r.Body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", r.URN, err)
	}
	return &rec, nil
}
