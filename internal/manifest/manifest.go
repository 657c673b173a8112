// Package manifest persists the bookkeeping of one crawl run to a SQLite
// database: which URLs became pages, which failed, and which were skipped.
// The manifest is an output artifact, not resumable crawl state.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docfold/docfold/internal/crawler"
)

// URL outcome values stored in the manifest.
const (
	OutcomePage    = "page"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Store wraps the SQLite connection for one manifest file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the manifest database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open manifest database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, path: path}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create manifest tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		base_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		pages INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		skipped INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS urls (
		run_id TEXT NOT NULL,
		url TEXT NOT NULL,
		outcome TEXT NOT NULL,
		depth INTEGER,
		title TEXT,
		FOREIGN KEY(run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_urls_run ON urls(run_id);
	CREATE INDEX IF NOT EXISTS idx_urls_outcome ON urls(outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun writes the full outcome of one crawl in a single transaction.
func (s *Store) RecordRun(ctx context.Context, runID, baseURL string, started time.Time, res *crawler.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin manifest transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, base_url, started_at, pages, failed, skipped) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, baseURL, started.UTC(), len(res.Pages), len(res.FailedURLs), len(res.SkippedURLs),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO urls (run_id, url, outcome, depth, title) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare url insert: %w", err)
	}
	defer func() { _ = insert.Close() }()

	for _, pg := range res.Pages {
		if _, err := insert.ExecContext(ctx, runID, pg.URL, OutcomePage, pg.Depth, pg.Title); err != nil {
			return fmt.Errorf("insert page row: %w", err)
		}
	}
	for _, u := range res.FailedURLs {
		if _, err := insert.ExecContext(ctx, runID, u, OutcomeFailed, nil, nil); err != nil {
			return fmt.Errorf("insert failed row: %w", err)
		}
	}
	for _, u := range res.SkippedURLs {
		if _, err := insert.ExecContext(ctx, runID, u, OutcomeSkipped, nil, nil); err != nil {
			return fmt.Errorf("insert skipped row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit manifest transaction: %w", err)
	}
	return nil
}
