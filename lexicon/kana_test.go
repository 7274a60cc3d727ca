package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/lextree-go/acoustic"
)

func phonemeStr(ps []acoustic.Phoneme) string {
	ss := make([]string, len(ps))
	for i, p := range ps {
		ss[i] = string(p)
	}
	return strings.Join(ss, " ")
}

func TestReadingToPhonemes(t *testing.T) {
	tests := []struct {
		reading string
		want    string
	}{
		{"アイウエオ", "a i u e o"},
		{"カキクケコ", "k a k i k u k e k o"},
		{"シチツフ", "sh i ch i ts u f u"},
		{"キャ", "k y a"},
		{"ニュ", "n y u"},
		{"ッーン", "q long ng"},
		{"トウキョウ", "t o u k y o u"},
		{"タワー", "t a w a long"},
		{"ガッコウ", "g a q k o u"},
		{"ファイル", "f a i r u"},
		{"ティー", "t i long"},
		// hiragana is converted to katakana first
		{"たべる", "t a b e r u"},
		{"しゃしん", "sh a sh i ng"},
		{"ト ウ", "t o u"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.reading, func(t *testing.T) {
			got, err := ReadingToPhonemes(tt.reading)
			require.NoError(t, err)
			assert.Equal(t, tt.want, phonemeStr(got))
		})
	}
}

func TestReadingToPhonemesUnknown(t *testing.T) {
	_, err := ReadingToPhonemes("タワ漢")
	require.ErrorIs(t, err, ErrUnknownKana)
	assert.Contains(t, err.Error(), "漢")
}

func TestLoadDerivesPhonemesFromReading(t *testing.T) {
	am := acoustic.NewFlatModel(acoustic.AllPhonemes(), true)
	d, err := Load(strings.NewReader("東京\tトーキョー\t\nあした\tアシタ\ta sh i t a\n"), am)
	require.NoError(t, err)

	w := d.WordFor("東京")
	require.NotNil(t, w)
	assert.Equal(t, "東京(t o long k y o long)", w.Pronunciations[0].String())

	_, err = Load(strings.NewReader("漢\t漢\t\n"), am)
	require.ErrorIs(t, err, ErrUnknownKana)
	assert.Contains(t, err.Error(), "line 1")
}
