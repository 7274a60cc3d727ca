package language

import "strings"

// WordSequence is an immutable window of recently hypothesized words,
// oldest first. It is both a language-model lookup key and part of search
// state identity.
type WordSequence struct {
	words []string
}

// NewWordSequence returns a sequence holding words, oldest first.
func NewWordSequence(words ...string) WordSequence {
	if len(words) == 0 {
		return WordSequence{}
	}
	return WordSequence{words: append([]string(nil), words...)}
}

// AddWord returns a new sequence with w appended, keeping at most maxSize
// of the most recent words.
func (ws WordSequence) AddWord(w string, maxSize int) WordSequence {
	if maxSize <= 0 {
		return WordSequence{}
	}
	n := len(ws.words) + 1
	if n > maxSize {
		n = maxSize
	}
	words := make([]string, n)
	copy(words, ws.words[len(ws.words)-(n-1):])
	words[n-1] = w
	return WordSequence{words: words}
}

// Trim returns the sequence holding only the maxSize most recent words.
func (ws WordSequence) Trim(maxSize int) WordSequence {
	if maxSize <= 0 {
		return WordSequence{}
	}
	if len(ws.words) <= maxSize {
		return ws
	}
	return WordSequence{words: ws.words[len(ws.words)-maxSize:]}
}

// Size returns the number of words.
func (ws WordSequence) Size() int { return len(ws.words) }

// Word returns the i-th word, oldest first.
func (ws WordSequence) Word(i int) string { return ws.words[i] }

// Oldest returns the oldest word, or "" for an empty sequence.
func (ws WordSequence) Oldest() string {
	if len(ws.words) == 0 {
		return ""
	}
	return ws.words[0]
}

// Newest returns the most recent word, or "" for an empty sequence.
func (ws WordSequence) Newest() string {
	if len(ws.words) == 0 {
		return ""
	}
	return ws.words[len(ws.words)-1]
}

// History returns the sequence without its newest word.
func (ws WordSequence) History() WordSequence {
	if len(ws.words) <= 1 {
		return WordSequence{}
	}
	return WordSequence{words: ws.words[:len(ws.words)-1]}
}

// Words returns a copy of the words, oldest first.
func (ws WordSequence) Words() []string {
	return append([]string(nil), ws.words...)
}

// Equal reports whether both sequences hold the same words in order.
func (ws WordSequence) Equal(other WordSequence) bool {
	if len(ws.words) != len(other.words) {
		return false
	}
	for i := range ws.words {
		if ws.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// Key returns a comparable form of the sequence. Equal sequences have
// equal keys.
func (ws WordSequence) Key() string {
	return strings.Join(ws.words, "\x00")
}

func (ws WordSequence) String() string {
	return "[" + strings.Join(ws.words, ", ") + "]"
}

// Text returns the words separated by spaces.
func (ws WordSequence) Text() string {
	return strings.Join(ws.words, " ")
}
