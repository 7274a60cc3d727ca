package linguist

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/language"
	"github.com/ieee0824/lextree-go/lexicon"
)

// Dictionary supplies words and pronunciations.
type Dictionary interface {
	WordFor(spelling string) *lexicon.Word
	FillerWords() []*lexicon.Word
	SilenceWord() *lexicon.Word
	SentenceStartWord() *lexicon.Word
	SentenceEndWord() *lexicon.Word
}

// LanguageModel supplies the vocabulary and log-domain n-gram scores.
type LanguageModel interface {
	Vocabulary() []string
	MaxDepth() int
	Probability(ws language.WordSequence) float64
}

type options struct {
	addFillerWords   bool
	strictVocabulary bool
	logger           *log.Logger
}

// Option configures Compile and Build.
type Option func(*options)

// WithFillerWords includes every filler word of the dictionary instead of
// only the silence word.
func WithFillerWords(enabled bool) Option {
	return func(o *options) {
		o.addFillerWords = enabled
	}
}

// WithStrictVocabulary makes language-model words missing from the
// dictionary an error instead of dropping them.
func WithStrictVocabulary(enabled bool) Option {
	return func(o *options) {
		o.strictVocabulary = enabled
	}
}

// WithLogger sets the logger compilation reports to.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultLogger() *log.Logger {
	return log.New(os.Stderr, "lextree: ", log.LstdFlags)
}

// Stats summarizes a compiled tree.
type Stats struct {
	Words          int
	Pronunciations int
	DroppedWords   int
	EntryUnits     int
	ExitUnits      int
	Nodes          int
	HMMNodes       int
	WordNodes      int
	BranchNodes    int
	Edges          int
	HMMs           int
	Elapsed        time.Duration
}

// Tree is a compiled lexical tree. It is read-only and safe for
// concurrent use.
type Tree struct {
	pool        *Pool
	root        *Node
	nodes       []*Node
	entryPoints map[*acoustic.Unit]*EntryPoint
	entryOrder  []*EntryPoint
	sentenceEnd *lexicon.Word
	stats       Stats
}

// InitialNode returns the word node of the sentence start word.
func (t *Tree) InitialNode() *Node { return t.root }

// EntryPoint returns the entry point for words starting with base, or nil.
func (t *Tree) EntryPoint(base *acoustic.Unit) *EntryPoint { return t.entryPoints[base] }

// EntryPointList returns all entry points in unit id order.
func (t *Tree) EntryPointList() []*EntryPoint { return t.entryOrder }

// EntryPoints returns the first HMM nodes of words starting with base when
// the previous word ended in lc. It returns nil when base starts no word
// or lc ends none.
func (t *Tree) EntryPoints(lc, base *acoustic.Unit) []*Node {
	ep := t.entryPoints[base]
	if ep == nil {
		return nil
	}
	n := ep.FromLeftContext(lc)
	if n == nil {
		return nil
	}
	return n.successors
}

// Nodes returns every node of the tree indexed by ID.
func (t *Tree) Nodes() []*Node { return t.nodes }

// Pool returns the pool the tree was compiled with.
func (t *Tree) Pool() *Pool { return t.pool }

// SentenceEndNodes returns the word nodes of the sentence end word.
func (t *Tree) SentenceEndNodes() []*Node {
	var out []*Node
	for _, n := range t.nodes {
		if n.kind == WordNode && n.Word() == t.sentenceEnd {
			out = append(out, n)
		}
	}
	return out
}

// Stats returns compile statistics.
func (t *Tree) Stats() Stats { return t.stats }

// compiler holds the transient state of one compilation.
type compiler struct {
	pool  *Pool
	dict  Dictionary
	lm    LanguageModel
	opts  options
	nodes *nodeBuilder

	words      []*lexicon.Word
	dropped    int
	entryUnits *unitSet
	exitUnits  *unitSet
	table      *entryPointTable

	rootTail NodeID
	rootLC   *acoustic.Unit
	rootPron *lexicon.Pronunciation
}

// Compile builds the lexical tree for every language-model word the
// dictionary can pronounce, plus the silence (or every filler) word and
// the sentence start and end words.
func Compile(pool *Pool, dict Dictionary, lm LanguageModel, opts ...Option) (*Tree, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	c := &compiler{
		pool:     pool,
		dict:     dict,
		lm:       lm,
		opts:     o,
		nodes:    newNodeBuilder(pool),
		rootTail: noNode,
	}
	return c.compile()
}

func (c *compiler) compile() (*Tree, error) {
	start := time.Now()
	if err := c.collectWords(); err != nil {
		return nil, err
	}
	c.collectEntryAndExitUnits()
	c.table = newEntryPointTable(c, c.entryUnits)
	if err := c.addWords(); err != nil {
		return nil, err
	}
	if err := c.table.createEntryPointMaps(); err != nil {
		return nil, err
	}
	if c.rootPron == nil {
		return nil, fmt.Errorf("%w: sentence start word %q needs a single unit pronunciation",
			ErrMalformedPronunciation, c.dict.SentenceStartWord().Spelling)
	}
	root := c.nodes.newWord(c.rootTail, c.rootPron)

	t := c.freeze(root)
	t.stats.Elapsed = time.Since(start)
	c.opts.logger.Printf("[linguist] compiled tree: %d words, %d entry units, %d exit units, %d nodes, %d HMMs in %s",
		t.stats.Words, t.stats.EntryUnits, t.stats.ExitUnits, t.stats.Nodes, t.stats.HMMs, t.stats.Elapsed)
	return t, nil
}

func (c *compiler) collectWords() error {
	seen := make(map[*lexicon.Word]bool)
	add := func(w *lexicon.Word) error {
		if seen[w] {
			return nil
		}
		if len(w.Pronunciations) == 0 {
			return fmt.Errorf("%w: word %q has no pronunciations", ErrMalformedPronunciation, w.Spelling)
		}
		for _, p := range w.Pronunciations {
			if len(p.Units) == 0 {
				return fmt.Errorf("%w: word %q has an empty pronunciation", ErrMalformedPronunciation, w.Spelling)
			}
		}
		seen[w] = true
		c.words = append(c.words, w)
		return nil
	}

	vocab := append([]string(nil), c.lm.Vocabulary()...)
	sort.Strings(vocab)
	for _, s := range vocab {
		if s == language.Unknown {
			continue
		}
		w := c.dict.WordFor(s)
		if w == nil {
			if c.opts.strictVocabulary {
				return fmt.Errorf("%w: %q is not in the dictionary", ErrUnknownWord, s)
			}
			c.opts.logger.Printf("[linguist] dropped %q: not in the dictionary", s)
			c.dropped++
			continue
		}
		if err := add(w); err != nil {
			return err
		}
	}

	required := []struct {
		name string
		word *lexicon.Word
	}{
		{"sentence start", c.dict.SentenceStartWord()},
		{"sentence end", c.dict.SentenceEndWord()},
		{"silence", c.dict.SilenceWord()},
	}
	for _, r := range required {
		if r.word == nil {
			return fmt.Errorf("%w: dictionary has no %s word", ErrUnknownWord, r.name)
		}
		if err := add(r.word); err != nil {
			return err
		}
	}
	if c.opts.addFillerWords {
		for _, w := range c.dict.FillerWords() {
			if err := add(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) collectEntryAndExitUnits() {
	c.entryUnits = newUnitSet()
	c.exitUnits = newUnitSet()
	for _, w := range c.words {
		for _, p := range w.Pronunciations {
			c.entryUnits.add(p.FirstUnit())
			c.exitUnits.add(p.LastUnit())
		}
	}
	c.entryUnits.sortByID(c.pool)
	c.exitUnits.sortByID(c.pool)
}

func (c *compiler) addWords() error {
	for _, w := range c.words {
		for _, p := range w.Pronunciations {
			if err := c.addPronunciation(p); err != nil {
				return fmt.Errorf("pronunciation %s: %w", p, err)
			}
		}
	}
	return nil
}

// addPronunciation shares the INTERNAL chain of p below its entry point's
// base node and fans its last unit out over every entry unit as right
// context. One unit words are deferred to the entry point.
func (c *compiler) addPronunciation(p *lexicon.Pronunciation) error {
	units := p.Units
	ep := c.table.entryPoint(units[0])
	if ep == nil {
		return fmt.Errorf("%w: %s", ErrNoEntryPoint, units[0])
	}
	if len(units) == 1 {
		ep.singleUnitWords = append(ep.singleUnitWords, p)
		return nil
	}

	cur := ep.baseNode
	lc := units[0]
	for i := 1; i < len(units)-1; i++ {
		h, err := c.hmm(units[i], lc, units[i+1], acoustic.PosInternal)
		if err != nil {
			return err
		}
		cur = c.nodes.addHMM(cur, h)
		lc = units[i]
	}

	last := units[len(units)-1]
	for _, rc := range c.entryUnits.units {
		h, err := c.hmm(last, lc, rc, acoustic.PosEnd)
		if err != nil {
			return err
		}
		tail := c.nodes.addHMM(cur, h)
		c.nodes.addRC(tail, rc)
		c.nodes.addWord(tail, p)
	}
	return nil
}

func (c *compiler) hmm(base, lc, rc *acoustic.Unit, pos acoustic.Position) (*acoustic.HMM, error) {
	return c.pool.HMMFor(base, lc, rc, pos)
}

// offerRoot records a candidate parent for the sentence start node. A
// silence left context wins; otherwise the first candidate is kept.
func (c *compiler) offerRoot(lc *acoustic.Unit, tail NodeID, p *lexicon.Pronunciation) {
	if c.rootPron != nil && (c.rootLC.IsSilence() || !lc.IsSilence()) {
		return
	}
	c.rootTail, c.rootLC, c.rootPron = tail, lc, p
}

// freeze builds the immutable graph and drops the transient sets.
func (c *compiler) freeze(root NodeID) *Tree {
	nodes := c.nodes.build()
	t := &Tree{
		pool:        c.pool,
		root:        nodes[root],
		nodes:       nodes,
		entryPoints: make(map[*acoustic.Unit]*EntryPoint, len(c.table.order)),
		sentenceEnd: c.dict.SentenceEndWord(),
	}
	for _, b := range c.table.order {
		ep := newEntryPoint(b, nodes, c.pool)
		t.entryPoints[b.base] = ep
		t.entryOrder = append(t.entryOrder, ep)
	}

	s := &t.stats
	s.Words = len(c.words)
	for _, w := range c.words {
		s.Pronunciations += len(w.Pronunciations)
	}
	s.DroppedWords = c.dropped
	s.EntryUnits = c.entryUnits.len()
	s.ExitUnits = c.exitUnits.len()
	s.Nodes = len(nodes)
	s.HMMs = c.pool.NumHMMs()
	for _, n := range nodes {
		s.Edges += len(n.successors)
		switch n.kind {
		case HMMNode:
			s.HMMNodes++
		case WordNode:
			s.WordNodes++
		default:
			s.BranchNodes++
		}
	}

	c.nodes = nil
	c.words = nil
	c.entryUnits = nil
	c.exitUnits = nil
	c.table = nil
	return t
}
