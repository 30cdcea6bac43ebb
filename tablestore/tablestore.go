// Package tablestore saves god's algorithm tables to SQLite.
package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/Carter-Thomas/twsearch/godsalg"
	"github.com/Carter-Thomas/twsearch/puzzle"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS patterns (
	pattern BLOB PRIMARY KEY,
	hash    INTEGER NOT NULL,
	depth   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS patterns_depth ON patterns(depth);
CREATE TABLE IF NOT EXISTS depth_counts (
	depth INTEGER PRIMARY KEY,
	count INTEGER NOT NULL
);`

// Store is a SQLite file holding one table. Writing a table replaces
// whatever the file held before.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating its directory if
// needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WriteTable stores every pattern of the table with its depth, the depth
// counts and the given metadata, in one transaction. encode must give equal
// patterns equal bytes.
func WriteTable[P any](ctx context.Context, s *Store, table *godsalg.Table[P],
	hasher puzzle.PatternHasher[P], encode func(P) []byte, meta map[string]string) (err error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{"DELETE FROM meta", "DELETE FROM patterns", "DELETE FROM depth_counts"} {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	metaStmt, err := tx.PrepareContext(ctx, "INSERT INTO meta(key, value) VALUES(?, ?)")
	if err != nil {
		return err
	}
	defer metaStmt.Close()
	for k, v := range meta {
		if _, err = metaStmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	if _, err = metaStmt.ExecContext(ctx, "completed", fmt.Sprint(table.Completed())); err != nil {
		return fmt.Errorf("insert meta completed: %w", err)
	}

	patternStmt, err := tx.PrepareContext(ctx, "INSERT INTO patterns(pattern, hash, depth) VALUES(?, ?, ?)")
	if err != nil {
		return err
	}
	defer patternStmt.Close()
	n := 0
	for p, depth := range table.All() {
		// uint64 with the high bit set is not a valid driver value.
		hash := int64(hasher.PatternHash(p))
		if _, err = patternStmt.ExecContext(ctx, encode(p), hash, depth); err != nil {
			return fmt.Errorf("insert pattern: %w", err)
		}
		n++
	}

	countStmt, err := tx.PrepareContext(ctx, "INSERT INTO depth_counts(depth, count) VALUES(?, ?)")
	if err != nil {
		return err
	}
	defer countStmt.Close()
	for d, c := range table.DepthCounts() {
		if _, err = countStmt.ExecContext(ctx, d, c); err != nil {
			return fmt.Errorf("insert depth count: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Debug().Int("patterns", n).Msg("table-exported")
	return nil
}

func (s *Store) DepthCounts(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT depth, count FROM depth_counts ORDER BY depth")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []int
	for rows.Next() {
		var d, c int
		if err := rows.Scan(&d, &c); err != nil {
			return nil, err
		}
		if d != len(counts) {
			return nil, fmt.Errorf("depth counts skip from %d to %d", len(counts)-1, d)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *Store) NumPatterns(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM patterns").Scan(&n)
	return n, err
}

// Depth looks up an encoded pattern.
func (s *Store) Depth(ctx context.Context, encoded []byte) (int, bool, error) {
	var d int
	err := s.db.QueryRowContext(ctx, "SELECT depth FROM patterns WHERE pattern = ?", encoded).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return d, true, nil
}

func (s *Store) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	meta := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
