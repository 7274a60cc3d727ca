package decoder

import (
	"sort"
	"strings"
)

// Result holds the outcome of a walk.
type Result struct {
	ID         string       // run identifier, "walk_" prefixed
	Frames     int          // number of frames walked
	Hypotheses []Hypothesis // sentences that reached a final state, best first
	Partial    *Hypothesis  // best active state at the last frame, nil if none survived
	Stats      Stats
}

// Best returns the best complete hypothesis, or nil if none reached a
// final state.
func (r *Result) Best() *Hypothesis {
	if len(r.Hypotheses) == 0 {
		return nil
	}
	return &r.Hypotheses[0]
}

// Stats counts the states a walk visited.
type Stats struct {
	States        int // expanded states plus generated successors
	Emitting      int
	NonEmitting   int
	Final         int
	MaxSuccessors int // largest successor list of a single state
	PeakActive    int // largest merged active list before pruning
	ActiveAtEnd   int
}

// Hypothesis is a word sequence that a walk produced.
type Hypothesis struct {
	Text     string  // words joined by spaces
	Words    []Word  // word-level details
	LogScore float64 // total log probability
	Frame    int     // frame the hypothesis ended in
}

// Word holds per-word timing information.
type Word struct {
	Text       string
	StartFrame int
	EndFrame   int
}

func newHypothesis(history *wordHistoryNode, score float64, frame int) Hypothesis {
	words, ends := history.toSlice()
	h := Hypothesis{
		Text:     strings.Join(words, " "),
		LogScore: score,
		Frame:    frame,
	}
	start := 0
	for i, w := range words {
		h.Words = append(h.Words, Word{Text: w, StartFrame: start, EndFrame: ends[i]})
		start = ends[i] + 1
	}
	return h
}

// nBest keeps the best scoring hypothesis per text, at most n of them.
// n == 0 keeps all.
func nBest(hyps []Hypothesis, n int) []Hypothesis {
	best := make(map[string]int, len(hyps))
	var out []Hypothesis
	for _, h := range hyps {
		if i, ok := best[h.Text]; ok {
			if h.LogScore > out[i].LogScore {
				out[i] = h
			}
			continue
		}
		best[h.Text] = len(out)
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LogScore > out[j].LogScore
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
