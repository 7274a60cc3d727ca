package language

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ieee0824/lextree-go/internal/mathutil"
)

// Unknown is the spelling the model falls back to for out-of-vocabulary
// words when it defines it.
const Unknown = "<unk>"

// NGramModel represents a back-off n-gram language model. Probabilities
// are natural-log.
type NGramModel struct {
	Order  int
	ngrams []map[string]ngramEntry // ngrams[n-1] holds n-grams keyed by joined words
}

type ngramEntry struct {
	LogProb    float64
	LogBackoff float64
}

// NewNGramModel creates an empty n-gram model.
func NewNGramModel(order int) *NGramModel {
	if order < 1 {
		order = 1
	}
	m := &NGramModel{Order: order}
	m.grow(order)
	return m
}

func (m *NGramModel) grow(order int) {
	for len(m.ngrams) < order {
		m.ngrams = append(m.ngrams, make(map[string]ngramEntry))
	}
	if order > m.Order {
		m.Order = order
	}
}

func ngramKey(words []string) string {
	return strings.Join(words, " ")
}

// AddNGram adds or replaces the n-gram words with the given natural-log
// probability and back-off weight. The model order grows as needed.
func (m *NGramModel) AddNGram(words []string, logProb, logBackoff float64) error {
	if len(words) == 0 {
		return fmt.Errorf("empty n-gram")
	}
	for _, w := range words {
		if w == "" || strings.ContainsAny(w, " \t") {
			return fmt.Errorf("invalid word %q in n-gram", w)
		}
	}
	m.grow(len(words))
	m.ngrams[len(words)-1][ngramKey(words)] = ngramEntry{LogProb: logProb, LogBackoff: logBackoff}
	return nil
}

// NumNGrams returns the number of n-grams of the given order.
func (m *NGramModel) NumNGrams(order int) int {
	if order < 1 || order > len(m.ngrams) {
		return 0
	}
	return len(m.ngrams[order-1])
}

// MaxDepth returns the model order.
func (m *NGramModel) MaxDepth() int { return m.Order }

// HasWord reports whether word is a unigram of the model.
func (m *NGramModel) HasWord(word string) bool {
	_, ok := m.ngrams[0][word]
	return ok
}

// LogProb returns the log probability of a word given its history, oldest
// word first. Missing n-grams back off to shorter histories.
func (m *NGramModel) LogProb(history []string, word string) float64 {
	if !m.HasWord(word) {
		if !m.HasWord(Unknown) {
			return mathutil.LogZero
		}
		word = Unknown
	}
	if n := m.Order - 1; len(history) > n {
		history = history[len(history)-n:]
	}
	return m.logProb(history, word)
}

func (m *NGramModel) logProb(history []string, word string) float64 {
	if len(history) == 0 {
		return m.ngrams[0][word].LogProb
	}
	words := append(append(make([]string, 0, len(history)+1), history...), word)
	if e, ok := m.ngrams[len(words)-1][ngramKey(words)]; ok {
		return e.LogProb
	}
	backoff := 0.0
	if e, ok := m.ngrams[len(history)-1][ngramKey(history)]; ok {
		backoff = e.LogBackoff
	}
	return backoff + m.logProb(history[1:], word)
}

// Probability returns the log probability of the newest word of ws given
// the words before it.
func (m *NGramModel) Probability(ws WordSequence) float64 {
	if ws.Size() == 0 {
		return mathutil.LogOne
	}
	return m.LogProb(ws.History().words, ws.Newest())
}

// SentenceLogProb returns the total log probability of a sentence (word sequence).
// Automatically adds <s> at the beginning and </s> at the end.
func (m *NGramModel) SentenceLogProb(words []string) float64 {
	total := 0.0
	history := []string{"<s>"}
	for _, w := range words {
		total += m.LogProb(history, w)
		history = append(history, w)
	}
	total += m.LogProb(history, "</s>")
	return total
}

// Vocabulary returns all words in the unigram vocabulary, sorted.
func (m *NGramModel) Vocabulary() []string {
	words := make([]string, 0, len(m.ngrams[0]))
	for w := range m.ngrams[0] {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
