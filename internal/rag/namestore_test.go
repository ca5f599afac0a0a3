package rag

import (
	"context"
	"testing"

	chromem "github.com/philippgille/chromem-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNameStore(t *testing.T) *CourseNameStore {
	t.Helper()

	db, err := chromem.NewPersistentDB(t.TempDir(), false)
	require.NoError(t, err)

	store, err := NewCourseNameStore(db, testEmbedding, testLogger())
	require.NoError(t, err)
	return store
}

func TestCourseNameStoreResolvesAbbreviation(t *testing.T) {
	t.Parallel()

	store := newTestNameStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, []string{"데이터베이스실습 [0001] 분반", "운영체제"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Count())

	// The generated short names include 데베실, so the abbreviation
	// query lands on the full title.
	matches, err := store.Search(ctx, "데베실 과제 있어?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "데이터베이스실습 [0001] 분반", matches[0].OriginalName)
	assert.Equal(t, "데이터베이스실습", matches[0].NormalizedName)
	assert.Contains(t, matches[0].ShortNames, "데베실")
}

func TestCourseNameStoreUpsertOverwrites(t *testing.T) {
	t.Parallel()

	store := newTestNameStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []string{"운영체제"}))
	require.NoError(t, store.Upsert(ctx, []string{"운영체제"}))

	assert.Equal(t, 1, store.Count(), "same title must not duplicate")
}

func TestCourseNameStoreEmptyQuery(t *testing.T) {
	t.Parallel()

	store := newTestNameStore(t)

	matches, err := store.Search(context.Background(), "  ", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCourseNameStoreSkipsBlankTitles(t *testing.T) {
	t.Parallel()

	store := newTestNameStore(t)

	require.NoError(t, store.Upsert(context.Background(), []string{"  ", ""}))
	assert.Zero(t, store.Count())
}
