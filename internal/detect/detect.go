// Package detect identifies the language of a piece of text and
// returns its ISO 639-1 code.
//
// Classification is two-stage: script ranges settle the languages with
// a dedicated writing system (CJK, Hangul, Greek, Arabic, Hebrew,
// Thai, Devanagari), and stopword profiles disambiguate within the
// Latin and Cyrillic scripts. The legacy code "iw" is reported for
// Hebrew to stay compatible with the generated code table.
package detect

import (
	"sort"
	"strings"
	"unicode"
)

// Unknown is the code returned when no language can be identified.
const Unknown = "un"

// Result is a single classification outcome. Reliable is false when
// the evidence is thin or two candidates score too close together.
type Result struct {
	Code     string
	Reliable bool
}

// Detector classifies text. The zero value is not usable; construct
// with New.
type Detector struct {
	stripPrefixes []string
}

// New returns a Detector that ignores @-mentions and http(s) links,
// which skew classification toward whatever language the handle or
// URL fragment resembles.
func New() *Detector {
	return &Detector{stripPrefixes: []string{"@", "http"}}
}

// NewWithPrefixes returns a Detector that drops words starting with
// any of the given prefixes before classification.
func NewWithPrefixes(prefixes []string) *Detector {
	return &Detector{stripPrefixes: prefixes}
}

// Strip removes whitespace-separated words starting with one of the
// detector's ignore prefixes.
func (d *Detector) Strip(text string) string {
	var b strings.Builder
	for _, word := range strings.Fields(text) {
		if hasAnyPrefix(word, d.stripPrefixes) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	return b.String()
}

func hasAnyPrefix(word string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(word, p) {
			return true
		}
	}
	return false
}

// scriptCounts tallies letters per writing system.
type scriptCounts struct {
	latin      int
	cyrillic   int
	han        int
	kana       int
	hangul     int
	greek      int
	arabic     int
	hebrew     int
	thai       int
	devanagari int
	total      int
}

func countScripts(text string) scriptCounts {
	var c scriptCounts
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		c.total++
		switch {
		case unicode.Is(unicode.Latin, r):
			c.latin++
		case unicode.Is(unicode.Cyrillic, r):
			c.cyrillic++
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			c.kana++
		case unicode.Is(unicode.Han, r):
			c.han++
		case unicode.Is(unicode.Hangul, r):
			c.hangul++
		case unicode.Is(unicode.Greek, r):
			c.greek++
		case unicode.Is(unicode.Arabic, r):
			c.arabic++
		case unicode.Is(unicode.Hebrew, r):
			c.hebrew++
		case unicode.Is(unicode.Thai, r):
			c.thai++
		case unicode.Is(unicode.Devanagari, r):
			c.devanagari++
		}
	}
	return c
}

// Detect classifies text and returns the best-matching code.
func (d *Detector) Detect(text string) Result {
	stripped := d.Strip(text)
	counts := countScripts(stripped)
	if counts.total == 0 {
		return Result{Code: Unknown}
	}

	// Languages with a dedicated script win on rune evidence alone.
	// Kana beats Han: Japanese text mixes both, Chinese has no kana.
	type scriptLang struct {
		count int
		code  string
	}
	dedicated := []scriptLang{
		{counts.kana, "ja"},
		{counts.hangul, "ko"},
		{counts.greek, "el"},
		{counts.arabic, "ar"},
		{counts.hebrew, "iw"},
		{counts.thai, "th"},
		{counts.devanagari, "hi"},
		{counts.han, "zh"},
	}
	for _, sl := range dedicated {
		if sl.count > 0 && sl.count*2 >= counts.total {
			return Result{Code: sl.code, Reliable: sl.count*4 >= counts.total*3}
		}
	}

	if counts.cyrillic > counts.latin {
		return scoreProfiles(stripped, cyrillicProfiles, "ru")
	}
	if counts.latin > 0 {
		return scoreProfiles(stripped, latinProfiles, Unknown)
	}

	return Result{Code: Unknown}
}

// scoreProfiles picks the profile with the most stopword hits.
// fallback is used when nothing scores at all.
func scoreProfiles(text string, profiles map[string]profile, fallback string) Result {
	scores := make(map[string]int, len(profiles))

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		for code, p := range profiles {
			if _, ok := p.stopwords[word]; ok {
				scores[code] += 2
			}
		}
	}

	// Characters unique to one orthography count as weak evidence.
	for _, r := range strings.ToLower(text) {
		for code, p := range profiles {
			if _, ok := p.chars[r]; ok {
				scores[code]++
			}
		}
	}

	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	best := ""
	bestScore, second := 0, 0
	for _, code := range codes {
		score := scores[code]
		switch {
		case score > bestScore:
			second = bestScore
			best, bestScore = code, score
		case score > second:
			second = score
		}
	}

	if bestScore == 0 {
		return Result{Code: fallback}
	}
	return Result{Code: best, Reliable: bestScore >= 4 && bestScore >= second*2}
}
