package moderation

import (
	"fmt"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// Moderator masks blocked words in submitted wishes. Matching ignores case,
// punctuation and common leet substitutions, so "N.G.U" hits "ngu". Only whole
// words match: "Nguyễn" does not.
//
// Vietnamese diacritics are significant unless foldMarks is set: by default
// "ngu" leaves "ngủ" (sleep) and "ngư" (fish) alone. With foldMarks every
// tone and vowel mark is stripped, which also catches "ngú" and "ngù" but
// masks those innocent words too.
type Moderator struct {
	machine   *goahocorasick.Machine
	mask      rune
	foldMarks bool
}

// New builds the automaton for words. An empty list returns a nil Moderator,
// whose Censor leaves text untouched.
func New(words []string, mask rune, foldMarks bool) (*Moderator, error) {
	folded := lo.FilterMap(words, func(w string, _ int) (string, bool) {
		f := string(fold([]rune(norm.NFC.String(w)), foldMarks))
		return f, f != ""
	})
	folded = lo.Uniq(folded)
	if len(folded) == 0 {
		return nil, nil
	}

	patterns := lo.Map(folded, func(f string, _ int) []rune { return []rune(f) })
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build moderation automaton: %w", err)
	}
	return &Moderator{machine: m, mask: mask, foldMarks: foldMarks}, nil
}

// Censor replaces every matched span of s with the mask rune and reports how
// many matches it masked.
func (m *Moderator) Censor(s string) (string, int) {
	if m == nil || s == "" {
		return s, 0
	}
	// precomposed form so one rune is one visible letter
	orig := []rune(norm.NFC.String(s))
	folded, origIdx := foldIndexed(orig, m.foldMarks)
	if len(folded) == 0 {
		return s, 0
	}

	terms := m.machine.MultiPatternSearch(folded, false)
	if len(terms) == 0 {
		return s, 0
	}
	hits := 0
	for _, t := range terms {
		end := t.Pos + len(t.Word)
		if t.Pos < 0 || end > len(origIdx) || !wholeWord(folded, t.Pos, end) {
			continue
		}
		for i := origIdx[t.Pos]; i <= origIdx[end-1]; i++ {
			orig[i] = m.mask
		}
		hits++
	}
	return string(orig), hits
}

func wholeWord(text []rune, start, end int) bool {
	if start > 0 && isWordRune(text[start-1]) {
		return false
	}
	return end >= len(text) || !isWordRune(text[end])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func fold(rs []rune, foldMarks bool) []rune {
	out, _ := foldIndexed(rs, foldMarks)
	return []rune(strings.TrimSpace(string(out)))
}

// foldIndexed returns the searchable form of rs and, for each kept rune, its
// position in rs. Runs of whitespace fold to a single space.
func foldIndexed(rs []rune, foldMarks bool) ([]rune, []int) {
	out := make([]rune, 0, len(rs))
	idx := make([]int, 0, len(rs))
	for i, r := range rs {
		r = baseRune(r, foldMarks)
		if skip(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if len(out) > 0 && out[len(out)-1] == ' ' {
				continue
			}
			r = ' '
		}
		out = append(out, unicode.ToLower(r))
		idx = append(idx, i)
	}
	return out, idx
}

// baseRune undoes leet spelling and, with foldMarks, strips diacritics.
func baseRune(r rune, foldMarks bool) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	}
	if !foldMarks {
		return r
	}
	switch r {
	case 'đ':
		return 'd'
	case 'Đ':
		return 'D'
	}
	if d := []rune(norm.NFD.String(string(r))); len(d) > 0 {
		return d[0]
	}
	return r
}

// spaces survive folding as ' ' so word boundaries stay visible
func skip(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.Is(unicode.Mn, r)
}
