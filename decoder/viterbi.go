package decoder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/ieee0824/lextree-go/linguist"
)

// ErrInvalidConfig is returned by Walk for unusable walk parameters.
var ErrInvalidConfig = errors.New("decoder: invalid config")

// Config holds walk parameters.
type Config struct {
	Frames    int     `yaml:"frames"`     // number of frames to walk
	BeamWidth float64 `yaml:"beam_width"` // log-domain beam width
	MaxActive int     `yaml:"max_active"` // maximum number of active states per frame
	Seed      int64   `yaml:"seed"`       // seed of the simulated acoustic scores
	NBest     int     `yaml:"n_best"`     // number of hypotheses kept in the result
}

// DefaultConfig returns reasonable default parameters.
func DefaultConfig() Config {
	return Config{
		Frames:    100,
		BeamWidth: 200.0,
		MaxActive: 1000,
		Seed:      1000,
		NBest:     10,
	}
}

// Validate checks the walk parameters.
func (c Config) Validate() error {
	switch {
	case c.Frames <= 0:
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidConfig, c.Frames)
	case c.BeamWidth < 0:
		return fmt.Errorf("%w: beam width must not be negative, got %g", ErrInvalidConfig, c.BeamWidth)
	case c.MaxActive <= 0:
		return fmt.Errorf("%w: max active must be positive, got %d", ErrInvalidConfig, c.MaxActive)
	case c.NBest < 0:
		return fmt.Errorf("%w: n-best must not be negative, got %d", ErrInvalidConfig, c.NBest)
	}
	return nil
}

// SearchGraph is the view of a search space the walker needs.
// *linguist.Linguist satisfies it.
type SearchGraph interface {
	InitialSearchState() *linguist.State
}

// wordHistoryNode is a linked list node to avoid copying word history slices.
type wordHistoryNode struct {
	word   string
	frame  int // frame the word ended in
	prev   *wordHistoryNode
	length int
}

func (n *wordHistoryNode) push(word string, frame int) *wordHistoryNode {
	next := &wordHistoryNode{word: word, frame: frame, prev: n, length: 1}
	if n != nil {
		next.length = n.length + 1
	}
	return next
}

func (n *wordHistoryNode) toSlice() ([]string, []int) {
	if n == nil {
		return nil, nil
	}
	words := make([]string, n.length)
	frames := make([]int, n.length)
	cur := n
	for i := n.length - 1; i >= 0; i-- {
		words[i] = cur.word
		frames[i] = cur.frame
		cur = cur.prev
	}
	return words, frames
}

// token represents an active search state.
type token struct {
	score   float64
	state   *linguist.State
	history *wordHistoryNode
}

// tokenPool manages pre-allocated token slices to reduce allocations.
type tokenPool struct {
	buf []token
	pos int
}

func newTokenPool(cap int) *tokenPool {
	return &tokenPool{buf: make([]token, cap), pos: 0}
}

func (p *tokenPool) get() *token {
	if p.pos >= len(p.buf) {
		// Grow
		p.buf = append(p.buf, make([]token, len(p.buf))...)
	}
	t := &p.buf[p.pos]
	p.pos++
	return t
}

func (p *tokenPool) reset() {
	p.pos = 0
}

// walker holds the per-walk state of Walk.
type walker struct {
	cfg   Config
	rng   *rand.Rand
	pool  *tokenPool
	frame int

	next     map[linguist.StateKey]*token
	expanded map[linguist.StateKey]float64
	finals   []Hypothesis
	stats    Stats
}

// Walk runs a frame-synchronous beam walk over g. Each frame every active
// state is expanded: emitting successors are scored with a simulated
// acoustic score and become the next frame's active states, non-emitting
// successors are expanded again within the frame, and final states are
// recorded as hypotheses. States with the same identity are merged,
// keeping the best score.
func Walk(ctx context.Context, g SearchGraph, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	initial := g.InitialSearchState()
	if initial == nil {
		return nil, errors.New("decoder: search graph has no initial state")
	}

	estimatedTokens := cfg.MaxActive * 4
	if estimatedTokens < 256 {
		estimatedTokens = 256
	}
	pool1 := newTokenPool(estimatedTokens)
	pool2 := newTokenPool(estimatedTokens)
	currentPool := pool1
	nextPool := pool2

	w := &walker{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}

	start := currentPool.get()
	start.score = initial.Probability()
	start.state = initial
	start.history = nil

	activeTokens := make([]*token, 0, cfg.MaxActive)
	nextTokens := make([]*token, 0, estimatedTokens)

	// The initial state is non-emitting: its expansion seeds frame 0.
	w.pool = nextPool
	w.beginFrame(0)
	w.stats.NonEmitting++
	w.expand(start)
	activeTokens = w.collect(nextTokens[:0], activeTokens[:0])
	currentPool, nextPool = nextPool, currentPool

	for t := 1; t < cfg.Frames && len(activeTokens) > 0; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nextPool.reset()
		w.pool = nextPool
		w.beginFrame(t)
		for _, tok := range activeTokens {
			w.expand(tok)
		}
		activeTokens = w.collect(nextTokens[:0], activeTokens[:0])

		// Swap pools
		currentPool, nextPool = nextPool, currentPool
	}

	res := &Result{
		ID:         "walk_" + uuid.New().String()[:8],
		Frames:     cfg.Frames,
		Hypotheses: nBest(w.finals, cfg.NBest),
		Stats:      w.stats,
	}
	if len(activeTokens) > 0 {
		best := activeTokens[0]
		for _, tok := range activeTokens[1:] {
			if tok.score > best.score {
				best = tok
			}
		}
		partial := newHypothesis(best.history, best.score, cfg.Frames-1)
		res.Partial = &partial
	}
	res.Stats.ActiveAtEnd = len(activeTokens)
	return res, nil
}

func (w *walker) beginFrame(t int) {
	w.frame = t
	w.next = make(map[linguist.StateKey]*token)
	w.expanded = make(map[linguist.StateKey]float64)
}

// expand scores the successors of tok. Non-emitting successors are only
// expanded again when they improve on the best score seen for the same
// state in this frame.
func (w *walker) expand(tok *token) {
	successors := tok.state.Successors()
	w.stats.States++
	if len(successors) > w.stats.MaxSuccessors {
		w.stats.MaxSuccessors = len(successors)
	}

	for _, ns := range successors {
		w.stats.States++
		score := tok.score + ns.Probability()
		history := tok.history
		if ns.Kind() == linguist.WordState {
			if word := ns.Word(); word != nil && !word.IsFiller() && !ns.IsFinal() {
				history = history.push(word.Spelling, w.frame)
			}
		}

		switch {
		case ns.IsEmitting():
			w.stats.Emitting++
			// log of a uniform draw is an exponential draw negated
			w.offer(ns, score-w.rng.ExpFloat64(), history)
		case ns.IsFinal():
			w.stats.Final++
			w.finals = append(w.finals, newHypothesis(history, score, w.frame))
		default:
			w.stats.NonEmitting++
			key := ns.Key()
			if best, ok := w.expanded[key]; ok && best >= score {
				continue
			}
			w.expanded[key] = score
			nt := w.pool.get()
			nt.score = score
			nt.state = ns
			nt.history = history
			w.expand(nt)
		}
	}
}

// offer merges an emitting state into the next active list.
func (w *walker) offer(s *linguist.State, score float64, history *wordHistoryNode) {
	key := s.Key()
	if tok, ok := w.next[key]; ok {
		if score > tok.score {
			tok.score = score
			tok.state = s
			tok.history = history
		}
		return
	}
	nt := w.pool.get()
	nt.score = score
	nt.state = s
	nt.history = history
	w.next[key] = nt
}

// collect prunes the merged next list into dst.
func (w *walker) collect(src, dst []*token) []*token {
	for _, tok := range w.next {
		src = append(src, tok)
	}
	if len(src) > w.stats.PeakActive {
		w.stats.PeakActive = len(src)
	}
	return pruneTokens(src, dst, w.cfg.BeamWidth, w.cfg.MaxActive)
}

func pruneTokens(src []*token, dst []*token, beamWidth float64, maxActive int) []*token {
	if len(src) == 0 {
		return dst
	}

	// Find best score
	bestScore := src[0].score
	for _, tok := range src[1:] {
		if tok.score > bestScore {
			bestScore = tok.score
		}
	}

	// Beam pruning: reuse dst slice
	threshold := bestScore - beamWidth
	for _, tok := range src {
		if tok.score >= threshold {
			dst = append(dst, tok)
		}
	}

	// Sorted so the next frame expands in a reproducible order.
	sort.Slice(dst, func(i, j int) bool {
		if dst[i].score != dst[j].score {
			return dst[i].score > dst[j].score
		}
		return dst[i].state.Hash() < dst[j].state.Hash()
	})

	// Max active pruning
	if len(dst) > maxActive {
		dst = dst[:maxActive]
	}

	return dst
}
