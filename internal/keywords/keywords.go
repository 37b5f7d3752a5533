// Package keywords matches lowercase text against fixed keyword tables in a
// single pass using an Aho-Corasick automaton.
package keywords

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Set is an immutable keyword table. The zero value and a nil *Set match nothing.
// A Set is safe for concurrent use.
type Set struct {
	words   []string
	matcher *ahocorasick.Matcher
}

// NewSet builds a Set. Keywords are trimmed and lowercased; blanks and
// duplicates are dropped while the first-seen order is kept.
func NewSet(words ...string) *Set {
	s := &Set{}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = normalize(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		s.words = append(s.words, w)
	}
	if len(s.words) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(s.words)
	}
	return s
}

// Words returns a copy of the table in declaration order.
func (s *Set) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Len reports the number of keywords.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Match reports the earliest-declared keyword contained in text, compared
// case-insensitively.
func (s *Set) Match(text string) (string, bool) {
	i, ok := s.MatchIndex(text)
	if !ok {
		return "", false
	}
	return s.words[i], true
}

// MatchIndex is Match returning the keyword's position in declaration order.
func (s *Set) MatchIndex(text string) (int, bool) {
	if s == nil || s.matcher == nil || text == "" {
		return -1, false
	}
	hits := s.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return -1, false
	}
	first := hits[0]
	for _, idx := range hits[1:] {
		if idx < first {
			first = idx
		}
	}
	return first, true
}

// Contains reports whether any keyword occurs in text.
func (s *Set) Contains(text string) bool {
	_, ok := s.Match(text)
	return ok
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
