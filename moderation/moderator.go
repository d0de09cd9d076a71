// Package moderation hides forbidden words in outgoing chat messages.
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator masks dictionary words in message content. Matching ignores case,
// punctuation, spacing and common leet substitutions, so "s.p-4.m" still hits "spam".
type Moderator struct {
	machine *goahocorasick.Machine
	mask    rune
	log     *slog.Logger
}

// folded is content reduced to its significant runes, along with the
// position of each of them in the original content.
type folded struct {
	runes     []rune
	positions []int
}

var leet = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// NewModerator builds the matcher for words. Entries made only of punctuation
// or blanks are ignored; an empty dictionary gives a moderator that censors nothing.
func NewModerator(words []string, mask rune, log *slog.Logger) (Moderator, error) {
	patterns := lo.Uniq(lo.FilterMap(words, func(w string, _ int) (string, bool) {
		f := fold([]rune(w))
		return string(f.runes), len(f.runes) > 0
	}))
	if len(patterns) == 0 {
		return Moderator{mask: mask, log: log}, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(lo.Map(patterns, func(p string, _ int) []rune { return []rune(p) })); err != nil {
		return Moderator{}, err
	}
	return Moderator{machine: machine, mask: mask, log: log}, nil
}

// Censor masks every hit, noise between the letters of a hit included, and
// returns the dictionary words found in order of appearance.
func (m *Moderator) Censor(content string) (string, []string) {
	if m.machine == nil || content == "" {
		return content, nil
	}
	original := []rune(content)
	f := fold(original)
	if len(f.runes) == 0 {
		return content, nil
	}

	var hits []string
	for _, term := range m.machine.MultiPatternSearch(f.runes, false) {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(f.positions) {
			continue
		}
		for i := f.positions[term.Pos]; i <= f.positions[end-1]; i++ {
			original[i] = m.mask
		}
		hits = append(hits, string(term.Word))
	}
	if len(hits) == 0 {
		return content, nil
	}

	m.log.Debug("Message censored", "hits", len(hits))
	return string(original), hits
}

func fold(content []rune) folded {
	f := folded{
		runes:     make([]rune, 0, len(content)),
		positions: make([]int, 0, len(content)),
	}
	for i, r := range content {
		if plain, ok := leet[r]; ok {
			r = plain
		}
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.positions = append(f.positions, i)
	}
	return f
}
