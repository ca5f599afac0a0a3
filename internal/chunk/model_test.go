package chunk

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOwnerKeyStable(t *testing.T) {
	t.Parallel()

	a := OwnerKey("20230001")
	b := OwnerKey("20230001")
	other := OwnerKey("20230002")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceDNS, []byte("kangnam.student.20230001")), a)
}

func TestNewIDStable(t *testing.T) {
	t.Parallel()

	owner := OwnerKey("20230001")

	a := NewID(owner, "데이터베이스실습", "3주차", TypeAssignment, "ER 다이어그램 제출")
	b := NewID(owner, "데이터베이스실습", "3주차", TypeAssignment, "ER 다이어그램 제출")
	assert.Equal(t, a, b)

	differentContent := NewID(owner, "데이터베이스실습", "3주차", TypeAssignment, "정규화 과제")
	assert.NotEqual(t, a, differentContent)

	differentOwner := NewID(OwnerKey("20230002"), "데이터베이스실습", "3주차", TypeAssignment, "ER 다이어그램 제출")
	assert.NotEqual(t, a, differentOwner)
}

func TestEmbeddingText(t *testing.T) {
	t.Parallel()

	c := Chunk{Content: "과제 내용", Value: "3주차 과제가 있습니다."}
	assert.Equal(t, "과제 내용", c.EmbeddingText())
}

func TestPromptText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		chunk Chunk
		want  string
	}{
		{
			name:  "prefers conversational value",
			chunk: Chunk{Content: "과제 내용", Value: "3주차 과제가 있습니다."},
			want:  "3주차 과제가 있습니다.",
		},
		{
			name:  "falls back to content",
			chunk: Chunk{Content: "과제 내용"},
			want:  "과제 내용",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.chunk.PromptText())
		})
	}
}
