package storage

import (
	"context"
	"fmt"
	"time"
)

// SaveChunksBatch replaces the registry rows for a batch of chunks in
// one transaction.
func (db *DB) SaveChunksBatch(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, owner, course, chunk_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			course = excluded.course,
			chunk_type = excluded.chunk_type,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Owner, rec.Course, rec.ChunkType, now); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk batch: %w", err)
	}
	return nil
}

// CountChunksByOwner returns the number of registered chunks for one owner.
func (db *DB) CountChunksByOwner(ctx context.Context, owner string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE owner = ?`, owner).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// ChunkIDsByOwner returns every registered chunk id for one owner.
func (db *DB) ChunkIDsByOwner(ctx context.Context, owner string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM chunks WHERE owner = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk ids: %w", err)
	}
	return ids, nil
}

// DistinctCourses returns the unique course names across all owners,
// sorted ascending. Used to build the course-name abbreviation index.
func (db *DB) DistinctCourses(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT course FROM chunks ORDER BY course`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var courses []string
	for rows.Next() {
		var course string
		if err := rows.Scan(&course); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}
	return courses, nil
}

// DeleteChunksByOwner removes every registry row for one owner and
// reports how many were removed.
func (db *DB) DeleteChunksByOwner(ctx context.Context, owner string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM chunks WHERE owner = ?`, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
