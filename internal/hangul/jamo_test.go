package hangul

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChoseong(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   rune
		want rune
	}{
		{name: "plain syllable", in: '가', want: 'ㄱ'},
		{name: "tense consonant", in: '까', want: 'ㄲ'},
		{name: "data syllable", in: '데', want: 'ㄷ'},
		{name: "last syllable", in: '힣', want: 'ㅎ'},
		{name: "latin passthrough", in: 'A', want: 'A'},
		{name: "digit passthrough", in: '3', want: '3'},
		{name: "bare jamo passthrough", in: 'ㄱ', want: 'ㄱ'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, string(tt.want), string(Choseong(tt.in)))
		})
	}
}

func TestInitials(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "abbreviation", in: "데베실", want: "ㄷㅂㅅ"},
		{name: "full course name", in: "데이터베이스실습", want: "ㄷㅇㅌㅂㅇㅅㅅㅅ"},
		{name: "mixed latin", in: "AI개론", want: "aiㄱㄹ"},
		{name: "spaces preserved", in: "운영 체제", want: "ㅇㅇ ㅊㅈ"},
		{name: "non hangul only", in: "OS2", want: "os2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Initials(tt.in))
		})
	}
}
