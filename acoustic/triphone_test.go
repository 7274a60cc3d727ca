package acoustic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriphoneSplit(t *testing.T) {
	tests := []struct {
		tri               Triphone
		left, base, right string
	}{
		{MakeTriphone("i", "k", "u"), "i", "k", "u"},
		{MakeTriphone(WordBoundary, "a", WordBoundary), "#", "a", "#"},
		{"a-sh+i", "a", "sh", "i"},
		{"k-long+#", "k", "long", "#"},
		{"k", "#", "k", "#"},
	}
	for _, tt := range tests {
		t.Run(string(tt.tri), func(t *testing.T) {
			l, b, r := tt.tri.Split()
			assert.Equal(t, tt.left, l)
			assert.Equal(t, tt.base, b)
			assert.Equal(t, tt.right, r)
		})
	}
}

func TestTriphonePhonemes(t *testing.T) {
	l, b, r := MakeTriphone("sil", "ng", "g").Phonemes()
	assert.Equal(t, PhonSil, l)
	assert.Equal(t, PhonNg, b)
	assert.Equal(t, PhonG, r)
}

func TestParseTriphone(t *testing.T) {
	tri, err := ParseTriphone("a-k+i")
	require.NoError(t, err)
	assert.Equal(t, Triphone("a-k+i"), tri)

	for _, bad := range []string{"k", "-k+i", "a-+i", "a-k+"} {
		_, err := ParseTriphone(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePhonemes(t *testing.T) {
	assert.Equal(t, []Phoneme{PhonK, PhonY, PhonO, PhonLong}, ParsePhonemes(" k y\to long "))
	assert.Nil(t, ParsePhonemes("  "))
}

func TestAllPhonemesIsCopy(t *testing.T) {
	ps := AllPhonemes()
	require.Equal(t, PhonSil, ps[0])
	ps[0] = PhonA
	assert.Equal(t, PhonSil, AllPhonemes()[0])
}
