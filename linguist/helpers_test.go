package linguist

import (
	"io"
	"log"
	"testing"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/language"
	"github.com/ieee0824/lextree-go/lexicon"
	"github.com/stretchr/testify/require"
)

type entry struct {
	word  string
	units []acoustic.Phoneme
}

type fixture struct {
	am   *acoustic.Model
	dict *lexicon.Dictionary
	lm   *language.NGramModel
	pool *Pool
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func ph(names ...string) []acoustic.Phoneme {
	out := make([]acoustic.Phoneme, len(names))
	for i, n := range names {
		out[i] = acoustic.Phoneme(n)
	}
	return out
}

// newFixture builds a backoff flat model over phonemes, a dictionary of
// entries and a unigram model over every entry word plus <s> and </s>.
func newFixture(t *testing.T, phonemes []acoustic.Phoneme, entries []entry) *fixture {
	t.Helper()
	am := acoustic.NewFlatModel(phonemes, true)
	dict, err := lexicon.NewDictionary(am)
	require.NoError(t, err)
	lm := language.NewNGramModel(1)
	require.NoError(t, lm.AddNGram([]string{lexicon.SentenceStart}, -99, 0))
	require.NoError(t, lm.AddNGram([]string{lexicon.SentenceEnd}, -1, 0))
	for _, e := range entries {
		_, err := dict.Add(e.word, "", e.units)
		require.NoError(t, err)
		require.NoError(t, lm.AddNGram([]string{e.word}, -1, 0))
	}
	pool, err := NewPool(am)
	require.NoError(t, err)
	return &fixture{am: am, dict: dict, lm: lm, pool: pool}
}

func (f *fixture) compile(t *testing.T, opts ...Option) *Tree {
	t.Helper()
	tree, err := Compile(f.pool, f.dict, f.lm, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return tree
}

func (f *fixture) unit(t *testing.T, name string) *acoustic.Unit {
	t.Helper()
	u, ok := f.am.UnitFor(acoustic.Phoneme(name))
	require.True(t, ok, "unit %s", name)
	return u
}

// scenarioFixture is the two word vocabulary A /ey/, AH /ey ah/.
func scenarioFixture(t *testing.T) *fixture {
	return newFixture(t, ph("sil", "ey", "ah"), []entry{
		{"A", ph("ey")},
		{"AH", ph("ey", "ah")},
	})
}

// kanaFixture has words sharing context-resolved prefixes.
func kanaFixture(t *testing.T) *fixture {
	return newFixture(t, ph("sil", "k", "a", "i", "u", "s"), []entry{
		{"kaki", ph("k", "a", "k", "i")},
		{"kaku", ph("k", "a", "k", "u")},
		{"kasa", ph("k", "a", "s", "a")},
		{"aki", ph("a", "k", "i")},
		{"i", ph("i")},
		{"u", ph("u")},
	})
}

func childWithBase(nodes []*Node, base *acoustic.Unit, right *acoustic.Unit, pos acoustic.Position) *Node {
	for _, n := range nodes {
		if n.IsHMM() && n.BaseUnit() == base && n.Position() == pos && (right == nil || n.HMM().Right == right) {
			return n
		}
	}
	return nil
}

func wordChild(n *Node, p *lexicon.Pronunciation) *Node {
	for _, c := range n.Successors() {
		if c.IsWord() && c.Pronunciation() == p {
			return c
		}
	}
	return nil
}
