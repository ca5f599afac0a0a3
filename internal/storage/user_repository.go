package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domerrors "github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/errors"
)

// SaveUserProfile inserts or updates a student's cached profile.
func (db *DB) SaveUserProfile(ctx context.Context, profile *UserProfile) error {
	query := `
		INSERT INTO users (student_id, name, department, courses_json, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			courses_json = excluded.courses_json,
			cached_at = excluded.cached_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		profile.StudentID, profile.Name, profile.Department, profile.CoursesJSON, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}

// GetUserProfile returns a student's cached profile, or ErrNotFound.
func (db *DB) GetUserProfile(ctx context.Context, studentID string) (*UserProfile, error) {
	var profile UserProfile
	query := `SELECT student_id, name, department, courses_json FROM users WHERE student_id = ?`
	err := db.conn.QueryRowContext(ctx, query, studentID).Scan(
		&profile.StudentID, &profile.Name, &profile.Department, &profile.CoursesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	return &profile, nil
}
