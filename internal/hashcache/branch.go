package hashcache

import (
	"database/sql"
	"fmt"
	"os/exec"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// CurrentBranch returns the current git branch name for projectPath. For
// a detached HEAD it returns "detached-{short-hash}"; if git itself is
// unavailable it returns "unknown". Grounded on the teacher's
// cache.GetCurrentBranch.
func CurrentBranch(projectPath string) string {
	cmd := exec.Command("git", "branch", "--show-current")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err == nil && strings.TrimSpace(string(out)) != "" {
		return strings.TrimSpace(string(out))
	}

	cmd = exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = projectPath
	out, err = cmd.Output()
	if err != nil {
		return "unknown"
	}
	return "detached-" + strings.TrimSpace(string(out))
}

// BranchStore is the optional SQLite-backed persistence for the hash
// cache, enabled when multi_workspace.independent_indexing is true
// (SPEC_FULL.md §12.4). It keys digests by (branch, file) so a branch
// switch can reuse unchanged fingerprints instead of forcing a full
// reindex. This is strictly an optimization layered on top of Cache;
// every invariant in spec.md §8 is checked against the in-memory Cache
// alone.
type BranchStore struct {
	db *sql.DB
}

// OpenBranchStore opens (creating if needed) the SQLite database at
// dbPath and ensures its schema exists.
func OpenBranchStore(dbPath string) (*BranchStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("hashcache: open branch store: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS file_fingerprints (
	branch   TEXT NOT NULL,
	path     TEXT NOT NULL,
	mtime_ms INTEGER NOT NULL,
	size     INTEGER NOT NULL,
	PRIMARY KEY (branch, path)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("hashcache: create schema: %w", err)
	}
	return &BranchStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BranchStore) Close() error {
	return s.db.Close()
}

// LoadInto populates cache with every fingerprint recorded for branch.
func (s *BranchStore) LoadInto(branch string, cache *Cache) error {
	rows, err := s.db.Query(
		`SELECT path, mtime_ms, size FROM file_fingerprints WHERE branch = ?`, branch)
	if err != nil {
		return fmt.Errorf("hashcache: load branch %s: %w", branch, err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var mtimeMs, size int64
		if err := rows.Scan(&path, &mtimeMs, &size); err != nil {
			return fmt.Errorf("hashcache: scan fingerprint: %w", err)
		}
		cache.Record(path, mtimeMs, size)
	}
	return rows.Err()
}

// Persist writes every fingerprint currently in cache for branch,
// replacing any prior row for the same (branch, path).
func (s *BranchStore) Persist(branch string, cache *Cache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("hashcache: begin persist: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO file_fingerprints (branch, path, mtime_ms, size)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(branch, path) DO UPDATE SET mtime_ms = excluded.mtime_ms, size = excluded.size`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("hashcache: prepare persist: %w", err)
	}
	defer stmt.Close()

	for path, entry := range cache.Snapshot() {
		if _, err := stmt.Exec(branch, path, entry.MtimeMs, entry.Size); err != nil {
			tx.Rollback()
			return fmt.Errorf("hashcache: persist %s: %w", path, err)
		}
	}
	return tx.Commit()
}
