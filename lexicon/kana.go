package lexicon

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ieee0824/lextree-go/acoustic"
)

// ErrUnknownKana is returned when a reading contains a character with no
// phoneme mapping.
var ErrUnknownKana = errors.New("unknown kana")

// kanaTable maps katakana to space separated phonemes. Two-rune entries
// (yōon and loanword combinations) win over their first rune.
var kanaTable = map[string]string{
	"キャ": "k y a", "キュ": "k y u", "キョ": "k y o",
	"ギャ": "g y a", "ギュ": "g y u", "ギョ": "g y o",
	"シャ": "sh a", "シュ": "sh u", "ショ": "sh o", "シェ": "sh e",
	"ジャ": "j a", "ジュ": "j u", "ジョ": "j o", "ジェ": "j e",
	"チャ": "ch a", "チュ": "ch u", "チョ": "ch o", "チェ": "ch e",
	"ニャ": "n y a", "ニュ": "n y u", "ニョ": "n y o",
	"ヒャ": "h y a", "ヒュ": "h y u", "ヒョ": "h y o",
	"ビャ": "b y a", "ビュ": "b y u", "ビョ": "b y o",
	"ピャ": "p y a", "ピュ": "p y u", "ピョ": "p y o",
	"ミャ": "m y a", "ミュ": "m y u", "ミョ": "m y o",
	"リャ": "r y a", "リュ": "r y u", "リョ": "r y o",
	"ティ": "t i", "テュ": "t y u", "トゥ": "t u",
	"ディ": "d i", "デュ": "d y u", "ドゥ": "d u",
	"ファ": "f a", "フィ": "f i", "フェ": "f e", "フォ": "f o", "フュ": "f y u",
	"ウィ": "u i", "ウェ": "u e", "ウォ": "u o", "イェ": "i e",
	"ヴァ": "b a", "ヴィ": "b i", "ヴェ": "b e", "ヴォ": "b o",
	"ツァ": "ts a", "ツィ": "ts i", "ツェ": "ts e", "ツォ": "ts o",
	"クァ": "k w a", "グァ": "g w a",

	"ア": "a", "イ": "i", "ウ": "u", "エ": "e", "オ": "o",
	"カ": "k a", "キ": "k i", "ク": "k u", "ケ": "k e", "コ": "k o",
	"ガ": "g a", "ギ": "g i", "グ": "g u", "ゲ": "g e", "ゴ": "g o",
	"サ": "s a", "シ": "sh i", "ス": "s u", "セ": "s e", "ソ": "s o",
	"ザ": "z a", "ジ": "j i", "ズ": "z u", "ゼ": "z e", "ゾ": "z o",
	"タ": "t a", "チ": "ch i", "ツ": "ts u", "テ": "t e", "ト": "t o",
	"ダ": "d a", "ヂ": "j i", "ヅ": "z u", "デ": "d e", "ド": "d o",
	"ナ": "n a", "ニ": "n i", "ヌ": "n u", "ネ": "n e", "ノ": "n o",
	"ハ": "h a", "ヒ": "h i", "フ": "f u", "ヘ": "h e", "ホ": "h o",
	"バ": "b a", "ビ": "b i", "ブ": "b u", "ベ": "b e", "ボ": "b o",
	"パ": "p a", "ピ": "p i", "プ": "p u", "ペ": "p e", "ポ": "p o",
	"マ": "m a", "ミ": "m i", "ム": "m u", "メ": "m e", "モ": "m o",
	"ヤ": "y a", "ユ": "y u", "ヨ": "y o",
	"ラ": "r a", "リ": "r i", "ル": "r u", "レ": "r e", "ロ": "r o",
	"ワ": "w a", "ヲ": "o", "ヴ": "b u",
	"ァ": "a", "ィ": "i", "ゥ": "u", "ェ": "e", "ォ": "o",
	"ン": "ng", "ッ": "q", "ー": "long",
}

// toKatakana shifts hiragana into the katakana block.
func toKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + ('ァ' - 'ぁ')
		}
		return r
	}, s)
}

// ReadingToPhonemes converts a katakana or hiragana reading to phonemes,
// preferring two-rune matches. Whitespace is ignored.
func ReadingToPhonemes(reading string) ([]acoustic.Phoneme, error) {
	s := toKatakana(strings.Join(strings.Fields(reading), ""))
	var out []acoustic.Phoneme
	for len(s) > 0 {
		_, n1 := utf8.DecodeRuneInString(s)
		n := n1
		ph, ok := "", false
		if len(s) > n1 {
			_, n2 := utf8.DecodeRuneInString(s[n1:])
			if ph, ok = kanaTable[s[:n1+n2]]; ok {
				n = n1 + n2
			}
		}
		if !ok {
			if ph, ok = kanaTable[s[:n1]]; !ok {
				return nil, fmt.Errorf("%w: %q in %q", ErrUnknownKana, s[:n1], reading)
			}
		}
		for _, f := range strings.Fields(ph) {
			out = append(out, acoustic.Phoneme(f))
		}
		s = s[n:]
	}
	return out, nil
}
