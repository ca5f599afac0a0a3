package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domerrors "github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/errors"
)

// SaveScrapeSnapshot stores the raw scrape payload for one student,
// replacing any previous snapshot.
func (db *DB) SaveScrapeSnapshot(ctx context.Context, studentID string, payload []byte) error {
	query := `
		INSERT INTO scrape_cache (student_id, payload, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			payload = excluded.payload,
			cached_at = excluded.cached_at
	`
	if _, err := db.conn.ExecContext(ctx, query, studentID, string(payload), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save scrape snapshot: %w", err)
	}
	return nil
}

// GetScrapeSnapshot returns the cached scrape payload for one student.
// Returns ErrNotFound when no snapshot exists and ErrCacheExpired when
// the snapshot is older than the configured TTL.
func (db *DB) GetScrapeSnapshot(ctx context.Context, studentID string) ([]byte, error) {
	var payload string
	var cachedAt int64

	query := `SELECT payload, cached_at FROM scrape_cache WHERE student_id = ?`
	err := db.conn.QueryRowContext(ctx, query, studentID).Scan(&payload, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scrape snapshot: %w", err)
	}

	if cachedAt <= db.ttlTimestamp() {
		return nil, domerrors.ErrCacheExpired
	}
	return []byte(payload), nil
}

// DeleteExpiredSnapshots removes snapshots older than the TTL and
// reports how many were removed. Run periodically by the server.
func (db *DB) DeleteExpiredSnapshots(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM scrape_cache WHERE cached_at <= ?`, db.ttlTimestamp())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
