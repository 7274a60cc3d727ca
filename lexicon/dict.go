package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ieee0824/lextree-go/acoustic"
)

// Special word spellings shared with the language model.
const (
	SentenceStart = "<s>"
	SentenceEnd   = "</s>"
	Silence       = "<sil>"
)

// ErrUnknownUnit is returned when a pronunciation names a phoneme the
// acoustic model does not know.
var ErrUnknownUnit = errors.New("unknown unit")

// UnitSource resolves phoneme names to acoustic units.
type UnitSource interface {
	UnitFor(name acoustic.Phoneme) (*acoustic.Unit, bool)
	SilenceUnit() *acoustic.Unit
}

// Word is a dictionary word with one or more pronunciations.
type Word struct {
	Spelling       string
	ID             int // dense, starting at 1
	Filler         bool
	Pronunciations []*Pronunciation
}

// IsFiller reports whether the word is non-lexical (silence, noise).
func (w *Word) IsFiller() bool { return w.Filler }

func (w *Word) String() string { return w.Spelling }

// Pronunciation is one unit sequence of a word.
type Pronunciation struct {
	ID      int // dense across the dictionary, starting at 1
	Word    *Word
	Reading string
	Units   []*acoustic.Unit
}

// FirstUnit returns the first unit of the pronunciation.
func (p *Pronunciation) FirstUnit() *acoustic.Unit { return p.Units[0] }

// LastUnit returns the last unit of the pronunciation.
func (p *Pronunciation) LastUnit() *acoustic.Unit { return p.Units[len(p.Units)-1] }

func (p *Pronunciation) String() string {
	var sb strings.Builder
	sb.WriteString(p.Word.Spelling)
	sb.WriteByte('(')
	for i, u := range p.Units {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(string(u.Name))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Dictionary holds word-to-pronunciation mappings bound to the units of
// one acoustic model.
type Dictionary struct {
	units   UnitSource
	words   map[string]*Word
	order   []*Word
	fillers []*Word
	nprons  int

	silence, start, end *Word
}

// NewDictionary creates a dictionary holding only the sentence start,
// sentence end and silence words, each pronounced as the silence unit.
func NewDictionary(units UnitSource) (*Dictionary, error) {
	sil := units.SilenceUnit()
	if sil == nil {
		return nil, fmt.Errorf("acoustic model has no %q unit: %w", acoustic.PhonSil, ErrUnknownUnit)
	}
	d := &Dictionary{
		units: units,
		words: make(map[string]*Word),
	}
	silPron := []acoustic.Phoneme{sil.Name}
	d.start, _ = d.add(SentenceStart, "", silPron, false)
	d.end, _ = d.add(SentenceEnd, "", silPron, false)
	d.silence, _ = d.add(Silence, "", silPron, true)
	return d, nil
}

// Add adds a pronunciation for word. A pronunciation identical to an
// existing one of the same word is not added twice.
func (d *Dictionary) Add(word, reading string, phonemes []acoustic.Phoneme) (*Word, error) {
	return d.add(word, reading, phonemes, false)
}

// AddFiller adds a filler pronunciation for word.
func (d *Dictionary) AddFiller(word string, phonemes []acoustic.Phoneme) (*Word, error) {
	return d.add(word, "", phonemes, true)
}

func (d *Dictionary) add(spelling, reading string, phonemes []acoustic.Phoneme, filler bool) (*Word, error) {
	if len(phonemes) == 0 {
		return nil, fmt.Errorf("word %q: empty pronunciation", spelling)
	}
	units := make([]*acoustic.Unit, len(phonemes))
	for i, p := range phonemes {
		u, ok := d.units.UnitFor(p)
		if !ok {
			return nil, fmt.Errorf("word %q: phoneme %q: %w", spelling, p, ErrUnknownUnit)
		}
		units[i] = u
	}

	w := d.words[spelling]
	if w == nil {
		w = &Word{Spelling: spelling, ID: len(d.order) + 1, Filler: filler}
		d.words[spelling] = w
		d.order = append(d.order, w)
		if filler {
			d.fillers = append(d.fillers, w)
		}
	}
	for _, p := range w.Pronunciations {
		if sameUnits(p.Units, units) {
			return w, nil
		}
	}
	d.nprons++
	w.Pronunciations = append(w.Pronunciations, &Pronunciation{
		ID:      d.nprons,
		Word:    w,
		Reading: reading,
		Units:   units,
	})
	return w, nil
}

func sameUnits(a, b []*acoustic.Unit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Load reads a pronunciation dictionary from a tab-separated file.
// Format: word<TAB>reading<TAB>phoneme1 phoneme2 phoneme3 ...
// The reading column may be omitted: word<TAB>phoneme1 phoneme2 ...
// When the phoneme column is empty or holds kana, phonemes are derived
// from the reading.
func Load(r io.Reader, units UnitSource) (*Dictionary, error) {
	d, err := NewDictionary(units)
	if err != nil {
		return nil, err
	}
	err = scanLines(r, func(lineNum int, line string) error {
		parts := strings.Split(line, "\t")
		var word, reading, phones string
		switch len(parts) {
		case 2:
			word, phones = parts[0], parts[1]
		case 3:
			word, reading, phones = parts[0], parts[1], parts[2]
		default:
			return fmt.Errorf("line %d: expected 2 or 3 tab-separated fields, got %d", lineNum, len(parts))
		}
		phonemes := acoustic.ParsePhonemes(phones)
		if len(phonemes) == 0 || !isASCII(phones) {
			// kana reading in place of the phoneme column
			if len(parts) == 2 {
				reading = phones
			}
			var err error
			if phonemes, err = ReadingToPhonemes(reading); err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
		}
		if _, err := d.Add(strings.TrimSpace(word), reading, phonemes); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFillers reads a filler dictionary: word followed by its phonemes,
// whitespace separated, one word per line.
func (d *Dictionary) LoadFillers(r io.Reader) error {
	return scanLines(r, func(lineNum int, line string) error {
		word := strings.Fields(line)[0]
		phonemes := acoustic.ParsePhonemes(strings.TrimPrefix(line, word))
		if len(phonemes) == 0 {
			return fmt.Errorf("line %d: expected word and at least one phoneme", lineNum)
		}
		if _, err := d.AddFiller(word, phonemes); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		return nil
	})
}

func scanLines(r io.Reader, fn func(lineNum int, line string) error) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineNum, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string, units UnitSource) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, units)
}

// LoadFillerFile opens path and adds its filler words to d.
func (d *Dictionary) LoadFillerFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.LoadFillers(f)
}

// WordFor returns the word with the given spelling, or nil.
func (d *Dictionary) WordFor(spelling string) *Word {
	return d.words[spelling]
}

// Lookup returns all pronunciation variants for a word.
func (d *Dictionary) Lookup(spelling string) []*Pronunciation {
	if w := d.words[spelling]; w != nil {
		return w.Pronunciations
	}
	return nil
}

// Words returns all words in insertion order.
func (d *Dictionary) Words() []*Word { return d.order }

// FillerWords returns the filler words, silence included.
func (d *Dictionary) FillerWords() []*Word { return d.fillers }

// SilenceWord returns the silence word.
func (d *Dictionary) SilenceWord() *Word { return d.silence }

// SentenceStartWord returns the sentence start word.
func (d *Dictionary) SentenceStartWord() *Word { return d.start }

// SentenceEndWord returns the sentence end word.
func (d *Dictionary) SentenceEndWord() *Word { return d.end }

// NumPronunciations returns the number of distinct pronunciations.
func (d *Dictionary) NumPronunciations() int { return d.nprons }
