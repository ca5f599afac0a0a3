package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/errors"
)

func newDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestChunkRegistryRoundTrip(t *testing.T) {
	t.Parallel()
	db := newDB(t)
	ctx := context.Background()

	records := []ChunkRecord{
		{ID: "c1", Owner: "owner-a", Course: "운영체제", ChunkType: "course_info"},
		{ID: "c2", Owner: "owner-a", Course: "운영체제", ChunkType: "activity"},
		{ID: "c3", Owner: "owner-b", Course: "자료구조", ChunkType: "course_info"},
	}
	require.NoError(t, db.SaveChunksBatch(ctx, records))

	count, err := db.CountChunksByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ids, err := db.ChunkIDsByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)

	courses, err := db.DistinctCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"운영체제", "자료구조"}, courses)
}

func TestChunkRegistryUpsert(t *testing.T) {
	t.Parallel()
	db := newDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveChunksBatch(ctx, []ChunkRecord{
		{ID: "c1", Owner: "owner-a", Course: "운영체제", ChunkType: "activity"},
	}))
	require.NoError(t, db.SaveChunksBatch(ctx, []ChunkRecord{
		{ID: "c1", Owner: "owner-a", Course: "자료구조", ChunkType: "activity"},
	}))

	count, err := db.CountChunksByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteChunksByOwner(t *testing.T) {
	t.Parallel()
	db := newDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveChunksBatch(ctx, []ChunkRecord{
		{ID: "c1", Owner: "owner-a", Course: "운영체제", ChunkType: "activity"},
		{ID: "c2", Owner: "owner-b", Course: "자료구조", ChunkType: "activity"},
	}))

	deleted, err := db.DeleteChunksByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	count, err := db.CountChunksByOwner(ctx, "owner-b")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "other owners untouched")
}

func TestScrapeSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	db := newDB(t)
	ctx := context.Background()

	_, err := db.GetScrapeSnapshot(ctx, "s2024001")
	require.ErrorIs(t, err, domerrors.ErrNotFound)

	payload := []byte(`{"courses":[]}`)
	require.NoError(t, db.SaveScrapeSnapshot(ctx, "s2024001", payload))

	got, err := db.GetScrapeSnapshot(ctx, "s2024001")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestScrapeSnapshotExpiry(t *testing.T) {
	t.Parallel()

	db, err := New(":memory:", time.Nanosecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	require.NoError(t, db.SaveScrapeSnapshot(ctx, "s2024001", []byte(`{}`)))
	time.Sleep(1100 * time.Millisecond)

	_, err = db.GetScrapeSnapshot(ctx, "s2024001")
	require.ErrorIs(t, err, domerrors.ErrCacheExpired)

	deleted, err := db.DeleteExpiredSnapshots(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestUserProfileRoundTrip(t *testing.T) {
	t.Parallel()
	db := newDB(t)
	ctx := context.Background()

	_, err := db.GetUserProfile(ctx, "s2024001")
	require.ErrorIs(t, err, domerrors.ErrNotFound)

	profile := &UserProfile{
		StudentID:   "s2024001",
		Name:        "김학생",
		Department:  "소프트웨어학부",
		CoursesJSON: `[{"title":"운영체제","professor":"홍길동"}]`,
	}
	require.NoError(t, db.SaveUserProfile(ctx, profile))

	got, err := db.GetUserProfile(ctx, "s2024001")
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}
