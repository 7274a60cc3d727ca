package lexicon

import (
	"strings"
	"testing"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDict = `# Japanese pronunciation dictionary
東京	トウキョウ	t o u k y o u
タワー	タワー	t a w a long
食べる	タベル	t a b e r u
食べる	タベル	t a b e r u
食べる	タベル	t a b e r u q
え	e
`

func testModel() *acoustic.Model {
	return acoustic.NewFlatModel(acoustic.AllPhonemes(), false)
}

func TestLoadDict(t *testing.T) {
	d, err := Load(strings.NewReader(testDict), testModel())
	require.NoError(t, err)

	entries := d.Lookup("東京")
	require.Len(t, entries, 1)
	assert.Equal(t, "トウキョウ", entries[0].Reading)
	require.Len(t, entries[0].Units, 7)
	assert.Equal(t, acoustic.PhonT, entries[0].FirstUnit().Name)
	assert.Equal(t, acoustic.PhonU, entries[0].LastUnit().Name)

	// identical unit sequences collapse, distinct ones are kept
	assert.Len(t, d.Lookup("食べる"), 2)

	single := d.Lookup("え")
	require.Len(t, single, 1)
	assert.Empty(t, single[0].Reading)
	assert.Len(t, single[0].Units, 1)
}

func TestSpecialWords(t *testing.T) {
	d, err := NewDictionary(testModel())
	require.NoError(t, err)

	for _, w := range []*Word{d.SentenceStartWord(), d.SentenceEndWord(), d.SilenceWord()} {
		require.Len(t, w.Pronunciations, 1)
		assert.True(t, w.Pronunciations[0].FirstUnit().IsSilence(), w.Spelling)
	}
	assert.False(t, d.SentenceStartWord().IsFiller())
	assert.False(t, d.SentenceEndWord().IsFiller())
	assert.True(t, d.SilenceWord().IsFiller())
	assert.Equal(t, []*Word{d.SilenceWord()}, d.FillerWords())
}

func TestIDsAreDenseAndNonZero(t *testing.T) {
	d, err := Load(strings.NewReader(testDict), testModel())
	require.NoError(t, err)

	seenWords := map[int]bool{}
	seenProns := map[int]bool{}
	for _, w := range d.Words() {
		assert.NotZero(t, w.ID)
		assert.False(t, seenWords[w.ID], "duplicate word id %d", w.ID)
		seenWords[w.ID] = true
		for _, p := range w.Pronunciations {
			assert.NotZero(t, p.ID)
			assert.False(t, seenProns[p.ID], "duplicate pronunciation id %d", p.ID)
			seenProns[p.ID] = true
			assert.Same(t, w, p.Word)
		}
	}
	assert.Len(t, seenProns, d.NumPronunciations())
}

func TestLoadUnknownPhoneme(t *testing.T) {
	_, err := Load(strings.NewReader("犬\tイヌ\ti n xx\n"), testModel())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownUnit)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadMalformedLine(t *testing.T) {
	_, err := Load(strings.NewReader("a\tb\tc\td\n"), testModel())
	assert.Error(t, err)
}

func TestNoSilenceUnit(t *testing.T) {
	am := acoustic.NewFlatModel([]acoustic.Phoneme{acoustic.PhonA}, false)
	_, err := NewDictionary(am)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestLoadFillers(t *testing.T) {
	am := testModel()
	am.AddUnit("+breath+")
	d, err := NewDictionary(am)
	require.NoError(t, err)

	err = d.LoadFillers(strings.NewReader("# fillers\n++breath++ +breath+\n<sil> sp\n"))
	require.NoError(t, err)

	breath := d.WordFor("++breath++")
	require.NotNil(t, breath)
	assert.True(t, breath.IsFiller())
	assert.True(t, breath.Pronunciations[0].FirstUnit().IsFiller())

	// <sil> gains a second pronunciation rather than a second word
	assert.Len(t, d.SilenceWord().Pronunciations, 2)
	assert.Len(t, d.FillerWords(), 2)
}

func TestLookupMissing(t *testing.T) {
	d, err := Load(strings.NewReader(testDict), testModel())
	require.NoError(t, err)
	assert.Nil(t, d.Lookup("存在しない"))
	assert.Nil(t, d.WordFor("存在しない"))
}

func TestPronunciationString(t *testing.T) {
	d, err := Load(strings.NewReader(testDict), testModel())
	require.NoError(t, err)
	assert.Equal(t, "タワー(t a w a long)", d.Lookup("タワー")[0].String())
}
