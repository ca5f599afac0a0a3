package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCourseNameStripsSection(t *testing.T) {
	t.Parallel()

	normalized, shortNames := NormalizeCourseName("데이터베이스실습 [00] (화 10:00-11:50)")
	assert.Equal(t, "데이터베이스실습", normalized)
	assert.NotEmpty(t, shortNames)
}

func TestGenerateShortNamesDatabase(t *testing.T) {
	t.Parallel()

	names := GenerateShortNames("데이터베이스실습")

	// The special mapping 데이터베이스 -> 데베 yields the abbreviation
	// students actually use.
	assert.Contains(t, names, "데베실")
}

func TestGenerateShortNamesFirstChars(t *testing.T) {
	t.Parallel()

	names := GenerateShortNames("캡스톤 디자인")
	assert.Contains(t, names, "캡디")
	assert.Contains(t, names, "캡스디자")
}

func TestGenerateShortNamesSortedUnique(t *testing.T) {
	t.Parallel()

	names := GenerateShortNames("인공지능 개론")
	require.NotEmpty(t, names)

	seen := make(map[string]struct{})
	for i, name := range names {
		assert.NotEmpty(t, name)
		if i > 0 {
			assert.Less(t, names[i-1], name)
		}
		_, dup := seen[name]
		assert.False(t, dup)
		seen[name] = struct{}{}
	}
}

func TestGenerateShortNamesSpecialMapping(t *testing.T) {
	t.Parallel()

	assert.Contains(t, GenerateShortNames("인공지능"), "AI")
	assert.Contains(t, GenerateShortNames("데이터베이스실습"), "데이터베이스실")
}
