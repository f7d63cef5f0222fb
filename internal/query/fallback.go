package query

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinCandidateLen is the shortest fallback query worth sending to the provider.
const MinCandidateLen = 5

var trailingStreetNumber = regexp.MustCompile(`\s*\d+[a-zA-Z]?\s*$`)

// candidates accumulates fallback queries in priority order, dropping
// duplicates, the failed query itself and degenerate strings.
type candidates struct {
	orig string
	seen map[string]struct{}
	list []string
}

func newCandidates(orig string) *candidates {
	return &candidates{orig: orig, seen: make(map[string]struct{})}
}

func (c *candidates) add(q string) {
	q = strings.TrimSpace(q)
	if q == "" || q == c.orig {
		return
	}
	if utf8.RuneCountInString(q) < MinCandidateLen {
		return
	}
	head, _, _ := strings.Cut(q, ", ")
	if isNumeric(head) {
		return
	}
	if _, dup := c.seen[q]; dup {
		return
	}
	c.seen[q] = struct{}{}
	c.list = append(c.list, q)
}

// isNumeric reports whether s is only digits once commas, dots and spaces
// are removed.
func isNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r == ',' || r == '.' || unicode.IsSpace(r):
		case r >= '0' && r <= '9':
			digits++
		default:
			return false
		}
	}
	return digits > 0
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// Fallbacks derives progressively less specific queries from a canonical
// query that failed to resolve. Earlier entries are tried first. Queries
// without a ", " separator have nothing to degrade and yield nil.
func Fallbacks(q string) []string {
	if !strings.Contains(q, ", ") {
		return nil
	}
	parts := strings.Split(q, ", ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	n := len(parts)
	if n < 2 {
		return nil
	}
	country := parts[n-1]
	c := newCandidates(q)

	// Drop middle detail.
	if n >= 4 {
		c.add(strings.Join([]string{parts[0], parts[1], country}, ", "))
	}
	// Drop leading detail.
	if n >= 3 {
		c.add(strings.Join(parts[n-3:], ", "))
	}
	c.add(strings.Join(parts[n-2:], ", "))

	// "Street 12a" -> "Street".
	if n >= 3 {
		stripped := strings.TrimSpace(trailingStreetNumber.ReplaceAllString(parts[0], ""))
		if stripped != "" && stripped != parts[0] {
			c.add(strings.Join([]string{stripped, parts[1], country}, ", "))
		}
	}

	// "Neki Teren" -> "Teren" for unnumbered place names.
	if words := strings.Fields(parts[0]); len(words) > 1 && !hasDigit(parts[0]) {
		for i := 1; i < len(words); i++ {
			rest := append([]string{strings.Join(words[i:], " ")}, parts[1:]...)
			c.add(strings.Join(rest, ", "))
		}
	}

	return c.list
}
