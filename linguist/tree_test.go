package linguist

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/language"
	"github.com/ieee0824/lextree-go/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioSingleAndMultiUnitWords(t *testing.T) {
	f := scenarioFixture(t)
	tree := f.compile(t)
	sil, ey, ah := f.unit(t, "sil"), f.unit(t, "ey"), f.unit(t, "ah")

	ep := tree.EntryPoint(ey)
	require.NotNil(t, ep)
	assert.Equal(t, []*acoustic.Unit{ah}, ep.RC())
	assert.ElementsMatch(t, []*acoustic.Unit{sil, ey, ah}, ep.LeftContexts())

	pA := f.dict.Lookup("A")[0]
	pAH := f.dict.Lookup("AH")[0]
	for _, lc := range ep.LeftContexts() {
		entries := tree.EntryPoints(lc, ey)
		var begins, singles []*Node
		for _, n := range entries {
			require.True(t, n.IsHMM())
			assert.Same(t, ey, n.BaseUnit())
			switch n.Position() {
			case acoustic.PosBegin:
				begins = append(begins, n)
			case acoustic.PosSingle:
				singles = append(singles, n)
			}
		}
		// one BEGIN per distinct following unit, one SINGLE per entry unit
		require.Len(t, begins, 1, "lc %s", lc)
		assert.Same(t, ah, begins[0].HMM().Right)
		assert.Len(t, singles, 2, "lc %s", lc)

		// AH continues from the BEGIN node into its END fan-out
		for _, end := range begins[0].Successors() {
			assert.Equal(t, acoustic.PosEnd, end.Position())
			assert.Same(t, ah, end.BaseUnit())
			assert.NotNil(t, wordChild(end, pAH))
		}
		for _, s := range singles {
			require.Len(t, s.RC(), 1)
			assert.Same(t, s.RC()[0], s.HMM().Right)
			assert.NotNil(t, wordChild(s, pA))
		}
	}

	// the END nodes below the base node are shared by every left context
	ends := ep.Node().Successors()
	assert.Len(t, ends, 2)
	for _, lc := range ep.LeftContexts() {
		begin := childWithBase(tree.EntryPoints(lc, ey), ey, ah, acoustic.PosBegin)
		require.NotNil(t, begin)
		assert.ElementsMatch(t, ends, begin.Successors())
	}

	root := tree.InitialNode()
	assert.Equal(t, lexicon.SentenceStart, root.Word().Spelling)
	assert.ElementsMatch(t, []*acoustic.Unit{sil, ey}, root.Parent().RC())
	assert.Same(t, sil, root.Parent().BaseUnit())
}

func TestSharingInvariant(t *testing.T) {
	f := kanaFixture(t)
	tree := f.compile(t)
	k, a := f.unit(t, "k"), f.unit(t, "a")

	ep := tree.EntryPoint(k)
	require.NotNil(t, ep)
	// kaki, kaku and kasa share the a(k,k) chain only where contexts agree
	second := ep.Node().Successors()
	require.Len(t, second, 2)
	akk := childWithBase(second, a, k, acoustic.PosInternal)
	require.NotNil(t, akk)
	assert.Len(t, akk.Successors(), 2, "k(a,i) and k(a,u)")

	var kaki, kaku *Node
	for _, n := range akk.Successors() {
		switch n.HMM().Right.Name {
		case "i":
			kaki = n
		case "u":
			kaku = n
		}
	}
	require.NotNil(t, kaki)
	require.NotNil(t, kaku)
	assert.NotSame(t, kaki, kaku)

	// both words walk through the identical a(k,k) instance
	for _, w := range []string{"kaki", "kaku"} {
		p := f.dict.Lookup(w)[0]
		path := walkPronunciation(t, tree, f.unit(t, "sil"), p)
		assert.Same(t, akk, path[1], w)
	}
}

// walkPronunciation follows p from the context node for lc and returns
// the HMM nodes visited, failing unless the walk ends in p's word node.
func walkPronunciation(t *testing.T, tree *Tree, lc *acoustic.Unit, p *lexicon.Pronunciation) []*Node {
	t.Helper()
	units := p.Units
	entries := tree.EntryPoints(lc, units[0])
	require.NotEmpty(t, entries, "no entry for %s after %s", p, lc)

	if len(units) == 1 {
		for _, n := range entries {
			if n.Position() == acoustic.PosSingle && n.BaseUnit() == units[0] {
				if w := wordChild(n, p); w != nil {
					return []*Node{n}
				}
			}
		}
		t.Fatalf("no word node for %s", p)
	}

	cur := childWithBase(entries, units[0], units[1], acoustic.PosBegin)
	require.NotNil(t, cur, "no BEGIN node for %s", p)
	path := []*Node{cur}
	for i := 1; i < len(units)-1; i++ {
		cur = childWithBase(cur.Successors(), units[i], units[i+1], acoustic.PosInternal)
		require.NotNil(t, cur, "no INTERNAL node %d for %s", i, p)
		path = append(path, cur)
	}
	last := units[len(units)-1]
	var found bool
	for _, end := range cur.Successors() {
		if end.Position() != acoustic.PosEnd || end.BaseUnit() != last {
			continue
		}
		w := wordChild(end, p)
		require.NotNil(t, w, "END node %s lacks word %s", end, p)
		assert.Same(t, p, w.Pronunciation())
		assert.Same(t, end, w.Parent())
		if !found {
			path = append(path, end)
			found = true
		}
	}
	require.True(t, found, "no END node for %s", p)
	return path
}

func TestRoundTripWordRetrieval(t *testing.T) {
	f := kanaFixture(t)
	tree := f.compile(t)

	for _, w := range f.dict.Words() {
		if w == f.dict.SentenceStartWord() {
			continue
		}
		for _, p := range w.Pronunciations {
			for _, lc := range tree.EntryPoint(p.FirstUnit()).LeftContexts() {
				walkPronunciation(t, tree, lc, p)
			}
		}
	}
}

func TestContextCompleteness(t *testing.T) {
	f := kanaFixture(t)
	tree := f.compile(t)

	exits := map[*acoustic.Unit]bool{}
	entries := map[*acoustic.Unit]bool{}
	for _, w := range f.dict.Words() {
		for _, p := range w.Pronunciations {
			exits[p.LastUnit()] = true
			entries[p.FirstUnit()] = true
		}
	}
	assert.Len(t, tree.EntryPointList(), len(entries))
	for base := range entries {
		for lc := range exits {
			assert.NotEmpty(t, tree.EntryPoints(lc, base), "lc %s base %s", lc, base)
		}
	}

	st := tree.Stats()
	assert.Equal(t, len(entries), st.EntryUnits)
	assert.Equal(t, len(exits), st.ExitUnits)
}

func TestEntryPointGroupsPerLeftContext(t *testing.T) {
	f := scenarioFixture(t)
	tree := f.compile(t)
	sil := f.unit(t, "sil")

	ep := tree.EntryPoint(sil)
	require.NotNil(t, ep)
	require.Greater(t, len(ep.LeftContexts()), 1)

	// silence ignores context, so every group holds the same HMM in its
	// own node
	owner := make(map[*Node]*acoustic.Unit)
	hmms := make(map[*acoustic.HMM]bool)
	for _, lc := range ep.LeftContexts() {
		nodes := tree.EntryPoints(lc, sil)
		require.NotEmpty(t, nodes, "lc %s", lc)
		for _, n := range nodes {
			prev, dup := owner[n]
			assert.False(t, dup, "node %s shared by %s and %s", n, prev, lc)
			owner[n] = lc
			hmms[n.HMM()] = true
		}
	}
	assert.Greater(t, len(owner), len(hmms))
}

func TestEntryPointsUnknownContext(t *testing.T) {
	f := kanaFixture(t)
	tree := f.compile(t)
	s := f.unit(t, "s")

	// s never ends a word and never starts one
	assert.Nil(t, tree.EntryPoints(s, f.unit(t, "k")))
	assert.Nil(t, tree.EntryPoints(f.unit(t, "i"), s))
	assert.Nil(t, tree.EntryPoint(s))
	assert.Nil(t, tree.EntryPoint(f.unit(t, "k")).FromLeftContext(nil))
}

func TestSentenceEndNodes(t *testing.T) {
	f := scenarioFixture(t)
	tree := f.compile(t)

	ends := tree.SentenceEndNodes()
	require.NotEmpty(t, ends)
	for _, n := range ends {
		assert.Same(t, f.dict.SentenceEndWord(), n.Word())
	}
	for _, n := range tree.Nodes() {
		if n.IsWord() && n.Word() == f.dict.SentenceStartWord() {
			assert.Same(t, tree.InitialNode(), n, "sentence start appears only as the root")
		}
	}
}

func TestCompileMissingContext(t *testing.T) {
	am := acoustic.NewFlatModel(ph("sil", "a", "k"), false)
	dict, err := lexicon.NewDictionary(am)
	require.NoError(t, err)
	_, err = dict.Add("aka", "", ph("a", "k", "a"))
	require.NoError(t, err)
	lm := language.NewNGramModel(1)
	require.NoError(t, lm.AddNGram([]string{"aka"}, -1, 0))
	pool, err := NewPool(am)
	require.NoError(t, err)

	tree, err := Compile(pool, dict, lm, WithLogger(quietLogger()))
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrMissingContext)
	assert.ErrorIs(t, err, acoustic.ErrMissingHMM)
}

func TestCompileVocabulary(t *testing.T) {
	f := scenarioFixture(t)
	require.NoError(t, f.lm.AddNGram([]string{"ZZZ"}, -1, 0))
	require.NoError(t, f.lm.AddNGram([]string{language.Unknown}, -1, 0))

	var buf bytes.Buffer
	tree, err := Compile(f.pool, f.dict, f.lm, WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Stats().DroppedWords)
	assert.Contains(t, buf.String(), `dropped "ZZZ"`)
	assert.NotContains(t, buf.String(), language.Unknown)
	assert.Contains(t, buf.String(), "compiled tree")

	_, err = Compile(f.pool, f.dict, f.lm, WithLogger(quietLogger()), WithStrictVocabulary(true))
	assert.ErrorIs(t, err, ErrUnknownWord)
}

func TestCompileFillerWords(t *testing.T) {
	f := newFixture(t, ph("sil", "a", "+breath+"), []entry{{"a", ph("a")}})
	require.NoError(t, f.dict.LoadFillers(strings.NewReader("++breath++ +breath+\n")))
	breath := f.dict.WordFor("++breath++")

	hasWord := func(tree *Tree, w *lexicon.Word) bool {
		for _, n := range tree.Nodes() {
			if n.IsWord() && n.Word() == w {
				return true
			}
		}
		return false
	}

	without := f.compile(t)
	assert.False(t, hasWord(without, breath))
	assert.True(t, hasWord(without, f.dict.SilenceWord()))

	with := f.compile(t, WithFillerWords(true))
	assert.True(t, hasWord(with, breath))
	assert.NotNil(t, with.EntryPoint(f.unit(t, "+breath+")))
}

func TestCompileMultiUnitSentenceStart(t *testing.T) {
	am := acoustic.NewFlatModel(ph("sil", "a"), true)
	dict, err := lexicon.NewDictionary(am)
	require.NoError(t, err)
	_, err = dict.Add(lexicon.SentenceStart, "", ph("sil", "a"))
	require.NoError(t, err)
	_, err = dict.Add("a", "", ph("a"))
	require.NoError(t, err)
	lm := language.NewNGramModel(1)
	require.NoError(t, lm.AddNGram([]string{"a"}, -1, 0))
	pool, err := NewPool(am)
	require.NoError(t, err)

	// the single unit pronunciation still provides the root
	tree, err := Compile(pool, dict, lm, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1, len(tree.InitialNode().Pronunciation().Units))
}

func TestDump(t *testing.T) {
	f := scenarioFixture(t)
	tree := f.compile(t)

	var buf bytes.Buffer
	require.NoError(t, tree.Dump(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "root "))
	assert.Contains(t, out, "EntryPoint ey rc=[ah]")
	assert.Contains(t, out, "WordNode AH(ey ah)")
	assert.Contains(t, out, "^", "shared END nodes are printed once")

	counts := map[string]int{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			counts[line[:strings.Index(line, "]")+1]]++
		}
	}
	for _, n := range tree.Nodes() {
		if n == tree.InitialNode() {
			continue
		}
		assert.Equal(t, 1, counts[fmt.Sprintf("[%d]", n.ID())], "node %d printed once", n.ID())
	}
}

func TestStats(t *testing.T) {
	f := scenarioFixture(t)
	tree := f.compile(t)
	st := tree.Stats()

	assert.Equal(t, 5, st.Words, "A, AH, <s>, </s>, <sil>")
	assert.Equal(t, len(tree.Nodes()), st.Nodes)
	assert.Equal(t, st.Nodes, st.HMMNodes+st.WordNodes+st.BranchNodes)
	assert.Equal(t, 2, st.EntryUnits)
	assert.Equal(t, 3, st.ExitUnits)
	assert.Positive(t, st.HMMs)
}
