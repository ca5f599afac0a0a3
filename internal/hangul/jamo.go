// Package hangul provides Hangul syllable decomposition utilities.
package hangul

const (
	syllableBase = '가'
	syllableEnd  = '힣'

	// Jamo counts per Unicode Hangul syllable composition:
	// syllable = base + (choseong*21 + jungseong)*28 + jongseong
	jungseongCount = 21
	jongseongCount = 28
)

// choseongList is the 19 initial consonants in Unicode order.
var choseongList = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

// IsSyllable reports whether r is a precomposed Hangul syllable.
func IsSyllable(r rune) bool {
	return r >= syllableBase && r <= syllableEnd
}

// Choseong returns the initial consonant of a Hangul syllable.
// Returns the rune unchanged if it is not a Hangul syllable.
func Choseong(r rune) rune {
	if !IsSyllable(r) {
		return r
	}
	idx := (r - syllableBase) / (jungseongCount * jongseongCount)
	return choseongList[idx]
}

// Initials extracts the initial-consonant sequence of text.
// Hangul syllables map to their choseong; every other rune is lowercased
// and passed through, so "데베실" -> "ㄷㅂㅅ" and "AI개론" -> "aiㄱㄹ".
func Initials(text string) string {
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if IsSyllable(r) {
			out = append(out, Choseong(r))
			continue
		}
		out = append(out, toLower(r))
	}
	return string(out)
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
