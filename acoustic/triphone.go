package acoustic

import (
	"fmt"
	"strings"
)

// Triphone names a context-dependent unit as "left-base+right". A missing
// left or right context is written as WordBoundary.
type Triphone string

// WordBoundary is the context symbol for word edges.
const WordBoundary = "#"

// MakeTriphone joins the three parts of a triphone name.
func MakeTriphone(left, base, right string) Triphone {
	return Triphone(left + "-" + base + "+" + right)
}

// Split returns the left, base and right parts. A bare unit name yields
// WordBoundary contexts.
func (t Triphone) Split() (left, base, right string) {
	s := string(t)
	dash := strings.IndexByte(s, '-')
	plus := strings.LastIndexByte(s, '+')
	if dash < 0 || plus <= dash {
		return WordBoundary, s, WordBoundary
	}
	return s[:dash], s[dash+1 : plus], s[plus+1:]
}

// Phonemes returns the parts of t as phonemes.
func (t Triphone) Phonemes() (left, base, right Phoneme) {
	l, b, r := t.Split()
	return Phoneme(l), Phoneme(b), Phoneme(r)
}

// ParseTriphone parses a saved triphone name. All three parts must be
// present.
func ParseTriphone(s string) (Triphone, error) {
	t := Triphone(s)
	l, b, r := t.Split()
	if l == "" || b == "" || r == "" || !strings.Contains(s, "-") {
		return "", fmt.Errorf("malformed triphone %q", s)
	}
	return t, nil
}
