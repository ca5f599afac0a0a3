package etl

import (
	"regexp"
	"sort"
	"strings"
)

// specialAbbreviations maps common course-name fragments to the
// abbreviations students actually type.
var specialAbbreviations = []struct {
	pattern     string
	replacement string
}{
	{"프로그래밍", "프"},
	{"프레임워크", "프"},
	{"데이터베이스", "데베"},
	{"데이터", "데"},
	{"컴퓨터", "컴"},
	{"소프트웨어", "소웨"},
	{"알고리즘", "알고"},
	{"시스템", "시스"},
	{"네트워크", "네트"},
	{"프로젝트", "프로젝"},
	{"캡스톤", "캡스"},
	{"디자인", "디자"},
	{"실습", "실"},
	{"기계학습", "기학"},
	{"인공지능", "AI"},
	{"딥러닝", "딥"},
}

// leadingConsonants maps a bare consonant to the syllables it commonly
// stands in for when students clip a word, e.g. 데이터 typed as ㄷ이터.
var leadingConsonants = map[rune][]string{
	'ㄱ': {"가", "기", "과"},
	'ㄷ': {"다", "데"},
	'ㅅ': {"소", "시", "수"},
	'ㅈ': {"자", "지"},
	'ㅊ': {"처", "최"},
	'ㅍ': {"프", "파"},
	'ㄹ': {"러", "리", "래"},
}

// sectionSuffix matches the "[00]" section marker and everything after
// it in a raw course title.
var sectionSuffix = regexp.MustCompile(`\[\d+\].*$`)

// NormalizeCourseName strips the section marker and trailing schedule
// info from a raw course title and returns the normalized name with
// its generated abbreviations joined by '/'.
func NormalizeCourseName(courseName string) (normalized, shortNames string) {
	normalized = strings.TrimSpace(sectionSuffix.ReplaceAllString(courseName, ""))
	return normalized, strings.Join(GenerateShortNames(normalized), "/")
}

// GenerateShortNames derives the plausible abbreviations of a
// normalized course name, sorted and deduplicated.
func GenerateShortNames(normalized string) []string {
	set := make(map[string]struct{})
	words := strings.Fields(normalized)

	// First rune of each word.
	set[firstRunes(words, 1)] = struct{}{}

	// First two and three runes of each long-enough word.
	if s := firstRunes(words, 2); len([]rune(s)) >= 2 {
		set[s] = struct{}{}
	}
	if s := firstRunes(words, 3); len([]rune(s)) >= 3 {
		set[s] = struct{}{}
	}

	// First rune of every n-rune slice of the concatenated name.
	full := []rune(strings.Join(words, ""))
	for _, n := range []int{2, 3, 4} {
		if len(full) < n {
			continue
		}
		var sb strings.Builder
		for i := 0; i < len(full); i += n {
			sb.WriteRune(full[i])
		}
		if s := sb.String(); len([]rune(s)) >= 2 {
			set[s] = struct{}{}
		}
	}

	// Known abbreviation fragments, padded with the first rune of the
	// remaining words.
	for _, m := range specialAbbreviations {
		if !strings.Contains(normalized, m.pattern) {
			continue
		}
		modified := strings.ReplaceAll(normalized, m.pattern, m.replacement)
		var others []string
		for _, word := range words {
			if !strings.Contains(word, m.pattern) {
				others = append(others, word)
			}
		}
		if otherChars := firstRunes(others, 1); otherChars != "" {
			modified += otherChars
		}
		set[modified] = struct{}{}
	}

	// Leading syllable collapsed to its consonant.
	for _, word := range words {
		for consonant, syllables := range leadingConsonants {
			for _, syllable := range syllables {
				if strings.HasPrefix(word, syllable) {
					word = strings.Replace(word, syllable, string(consonant), 1)
				}
			}
		}
		if strings.ContainsFunc(word, func(r rune) bool {
			_, ok := leadingConsonants[r]
			return ok
		}) {
			set[word] = struct{}{}
		}
	}

	delete(set, "")
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// firstRunes joins the first n runes of each word at least n runes long.
// With n == 1 every non-empty word contributes its first rune.
func firstRunes(words []string, n int) string {
	var sb strings.Builder
	for _, word := range words {
		runes := []rune(word)
		if len(runes) < n {
			continue
		}
		sb.WriteString(string(runes[:n]))
	}
	return sb.String()
}
