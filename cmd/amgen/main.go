package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ieee0824/lextree-go/acoustic"
)

func main() {
	dictPath := flag.String("dict", "", "dictionary whose phonemes make up the model (default: full inventory)")
	outPath := flag.String("out", "", "output acoustic model file")
	backoff := flag.Bool("backoff", false, "serve unseen triphones from the base unit instead of expanding every context")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: amgen [-dict DICT] [-backoff] -out MODEL")
		flag.PrintDefaults()
		os.Exit(1)
	}

	phonemes := acoustic.AllPhonemes()
	if *dictPath != "" {
		var err error
		phonemes, err = dictPhonemes(*dictPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	am := acoustic.NewFlatModel(phonemes, *backoff)
	if !*backoff {
		n := am.ExpandContexts()
		fmt.Fprintf(os.Stderr, "expanded %d context-dependent HMMs\n", n)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := am.Save(f); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error: save model: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "wrote %d units to %s\n", len(am.Units()), *outPath)
}

// dictPhonemes collects the phonemes of a dictionary file in order of
// first use, silence first.
func dictPhonemes(path string) ([]acoustic.Phoneme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := map[acoustic.Phoneme]bool{acoustic.PhonSil: true}
	phonemes := []acoustic.Phoneme{acoustic.PhonSil}
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("%s line %d: expected tab-separated fields", path, lineNum)
		}
		for _, p := range strings.Fields(parts[len(parts)-1]) {
			ph := acoustic.Phoneme(p)
			if !seen[ph] {
				seen[ph] = true
				phonemes = append(phonemes, ph)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return phonemes, nil
}
