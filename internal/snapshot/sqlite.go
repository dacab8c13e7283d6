package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLite stores each generation as a JSON blob row.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "contract-ca.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		generation INTEGER PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, generation uint64, rec Record) error {
	rec.Generation = generation
	data, err := encode(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(generation,payload) VALUES(?,?) ON CONFLICT(generation) DO UPDATE SET payload=excluded.payload`,
		int64(generation), data); err != nil {
		return fmt.Errorf("upsert snapshot %d: %w", generation, err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, generation uint64) (Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE generation = ?`, int64(generation)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: generation %d", ErrSnapshotNotFound, generation)
	}
	if err != nil {
		return Record{}, fmt.Errorf("select snapshot %d: %w", generation, err)
	}
	return decode(data)
}

func (s *SQLite) Latest(ctx context.Context) (Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots ORDER BY generation DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("select latest snapshot: %w", err)
	}
	return decode(data)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
