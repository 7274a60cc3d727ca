package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/language"
	"github.com/ieee0824/lextree-go/lexicon"
)

func main() {
	lmPath := flag.String("lm", "", "keep only words in this ARPA model's vocabulary")
	outPath := flag.String("out", "", "output dictionary (default: stdout)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: dictconv [-lm LM] [-out DICT] <ipadic-csv-files...>")
		fmt.Fprintln(os.Stderr, "  Converts IPAdic CSV files to a lextree dictionary.")
		fmt.Fprintln(os.Stderr, "  Supports glob patterns: dictconv /path/to/ipadic/*.csv")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var keep func(string) bool
	if *lmPath != "" {
		lm, err := language.LoadARPAFile(*lmPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		keep = lm.HasWord
	}

	files, err := expand(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conv := newConverter(keep)
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
			continue
		}
		conv.read(f)
		f.Close()
	}

	w := io.Writer(os.Stdout)
	if *outPath != "" {
		out, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
		w = out
	}
	if err := conv.write(w); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Converted %d entries from %d files (%d unreadable readings)\n",
		len(conv.entries), len(files), conv.unreadable)
}

// expand resolves glob patterns; arguments without matches are kept as
// literal paths.
func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if matches == nil {
			files = append(files, arg)
		} else {
			files = append(files, matches...)
		}
	}
	return files, nil
}

type entry struct {
	word     string
	reading  string
	phonemes string
}

type converter struct {
	keep       func(string) bool
	seen       map[entry]bool
	entries    []entry
	unreadable int
}

func newConverter(keep func(string) bool) *converter {
	return &converter{keep: keep, seen: make(map[entry]bool)}
}

// read adds the entries of one IPAdic CSV file. field[0] is the surface
// form, field[11] the reading and field[12] the pronunciation.
func (c *converter) read(r io.Reader) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return
		}
		if err != nil || len(record) < 13 {
			continue
		}
		word, reading, pron := record[0], record[11], record[12]
		if c.keep != nil && !c.keep(word) {
			continue
		}
		if pron == "" || pron == "*" {
			pron = reading
		}
		if pron == "" || pron == "*" {
			continue
		}

		phonemes, err := lexicon.ReadingToPhonemes(pron)
		if errors.Is(err, lexicon.ErrUnknownKana) || len(phonemes) == 0 {
			c.unreadable++
			continue
		}
		e := entry{word: word, reading: reading, phonemes: phonemeString(phonemes)}
		if c.seen[e] {
			continue
		}
		c.seen[e] = true
		c.entries = append(c.entries, e)
	}
}

// write emits the entries sorted by word and reading.
func (c *converter) write(w io.Writer) error {
	sort.Slice(c.entries, func(i, j int) bool {
		if c.entries[i].word != c.entries[j].word {
			return c.entries[i].word < c.entries[j].word
		}
		return c.entries[i].reading < c.entries[j].reading
	})
	for _, e := range c.entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", e.word, e.reading, e.phonemes); err != nil {
			return err
		}
	}
	return nil
}

func phonemeString(ps []acoustic.Phoneme) string {
	ss := make([]string, len(ps))
	for i, p := range ps {
		ss[i] = string(p)
	}
	return strings.Join(ss, " ")
}
