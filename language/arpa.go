package language

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ieee0824/lextree-go/internal/mathutil"
)

// LoadARPA reads a language model in ARPA format.
// Log probabilities in ARPA files are base-10; they are converted to natural log.
func LoadARPA(r io.Reader) (*NGramModel, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		model    *NGramModel
		declared = map[int]int{}
		order    int // current n-gram section, 0 outside sections
		inData   bool
		ended    bool
		lineNum  int
	)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == `\data\`:
			inData = true
			continue
		case line == `\end\`:
			ended = true
		case !inData:
			// header text before \data\
			continue
		case strings.HasPrefix(line, "ngram "):
			n, count, err := parseCount(line[len("ngram "):])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			declared[n] = count
			continue
		case strings.HasPrefix(line, `\`) && strings.HasSuffix(line, "-grams:"):
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, `\`), "-grams:"))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("line %d: bad section header %q", lineNum, line)
			}
			if model == nil {
				model = NewNGramModel(maxOrder(declared))
			}
			order = n
			continue
		}
		if ended {
			break
		}
		if order == 0 {
			return nil, fmt.Errorf("line %d: unexpected %q outside an n-gram section", lineNum, line)
		}
		if err := parseNGramLine(model, order, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !inData {
		return nil, fmt.Errorf(`missing \data\ section`)
	}
	if model == nil {
		return nil, fmt.Errorf("no n-gram sections")
	}
	if !ended {
		return nil, fmt.Errorf(`missing \end\ marker`)
	}
	if model.NumNGrams(1) == 0 {
		return nil, fmt.Errorf("no unigrams")
	}
	return model, nil
}

// LoadARPAFile is a convenience wrapper that opens a file path.
func LoadARPAFile(path string) (*NGramModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadARPA(f)
}

func parseCount(s string) (order, count int, err error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad n-gram count %q", s)
	}
	order, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || order < 1 {
		return 0, 0, fmt.Errorf("bad n-gram order %q", parts[0])
	}
	count, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad n-gram count %q", parts[1])
	}
	return order, count, nil
}

func maxOrder(declared map[int]int) int {
	n := 1
	for order := range declared {
		if order > n {
			n = order
		}
	}
	return n
}

func parseNGramLine(model *NGramModel, order int, line string) error {
	fields := strings.Fields(line)
	if len(fields) < order+1 {
		return fmt.Errorf("too few fields for %d-gram: %q", order, line)
	}

	logProb, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("parse log prob: %w", err)
	}
	logProb = mathutil.Log10ToLn(logProb)

	var logBackoff float64
	if len(fields) > order+1 {
		bo, err := strconv.ParseFloat(fields[order+1], 64)
		if err != nil {
			return fmt.Errorf("parse backoff: %w", err)
		}
		logBackoff = mathutil.Log10ToLn(bo)
	}

	return model.AddNGram(fields[1:order+1], logProb, logBackoff)
}
