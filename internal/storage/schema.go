package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createUsersTable(db); err != nil {
		return err
	}
	if err := createScrapeCacheTable(db); err != nil {
		return err
	}
	return createChunksTable(db)
}

func createUsersTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		student_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT,
		courses_json TEXT NOT NULL,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_cached_at ON users(cached_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func createScrapeCacheTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS scrape_cache (
		student_id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scrape_cache_cached_at ON scrape_cache(cached_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create scrape_cache table: %w", err)
	}
	return nil
}

func createChunksTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		course TEXT NOT NULL,
		chunk_type TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_owner ON chunks(owner);
	CREATE INDEX IF NOT EXISTS idx_chunks_owner_course ON chunks(owner, course);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create chunks table: %w", err)
	}
	return nil
}
