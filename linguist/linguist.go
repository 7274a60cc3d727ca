package linguist

import (
	"fmt"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/internal/mathutil"
	"github.com/ieee0824/lextree-go/language"
	"github.com/ieee0824/lextree-go/lexicon"
)

// Linguist exposes a compiled tree as a graph of search states.
type Linguist struct {
	tree *Tree
	dict Dictionary
	lm   LanguageModel

	logOne                      float64
	languageWeight              float64
	logWordInsertionProbability float64
	logSilenceInsertion         float64
	logUnitInsertion            float64
	logFillerInsertion          float64
	fullWordHistories           bool

	maxDepth      int
	silenceWord   *lexicon.Word
	sentenceStart *lexicon.Word
	sentenceEnd   *lexicon.Word
}

// NewLinguist wraps tree. dict and lm must be the ones tree was compiled
// from.
func NewLinguist(tree *Tree, dict Dictionary, lm LanguageModel, cfg Config) *Linguist {
	return &Linguist{
		tree:                        tree,
		dict:                        dict,
		lm:                          lm,
		logOne:                      mathutil.LogOne,
		languageWeight:              cfg.LanguageWeight,
		logWordInsertionProbability: mathutil.LinearToLog(cfg.WordInsertionProbability),
		logSilenceInsertion:         mathutil.LinearToLog(cfg.SilenceInsertionProbability),
		logUnitInsertion:            mathutil.LinearToLog(cfg.UnitInsertionProbability),
		logFillerInsertion:          mathutil.LinearToLog(cfg.FillerInsertionProbability),
		fullWordHistories:           cfg.FullWordHistories,
		maxDepth:                    lm.MaxDepth(),
		silenceWord:                 dict.SilenceWord(),
		sentenceStart:               dict.SentenceStartWord(),
		sentenceEnd:                 dict.SentenceEndWord(),
	}
}

// Build creates the pool, compiles the tree and wraps it. Options given
// after the config's own take precedence.
func Build(am AcousticModel, dict Dictionary, lm LanguageModel, cfg Config, opts ...Option) (*Linguist, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("linguist config: %w", err)
	}
	pool, err := NewPool(am)
	if err != nil {
		return nil, err
	}
	tree, err := Compile(pool, dict, lm, append(cfg.options(), opts...)...)
	if err != nil {
		return nil, err
	}
	return NewLinguist(tree, dict, lm, cfg), nil
}

// Tree returns the compiled tree.
func (l *Linguist) Tree() *Tree { return l.tree }

// InitialSearchState returns the word state of the sentence start word.
func (l *Linguist) InitialSearchState() *State {
	root := l.tree.InitialNode()
	history := language.NewWordSequence(l.sentenceStart.Spelling).Trim(l.maxDepth - 1)
	return &State{
		l:        l,
		kind:     WordState,
		node:     root,
		history:  history,
		lastNode: root.Parent(),
		language: l.logOne,
	}
}

// SearchStateOrder returns the state kinds in the order a search manager
// should expand them within a frame.
func (l *Linguist) SearchStateOrder() []StateKind {
	return []StateKind{NonEmittingHMMState, WordState, UnitState, HMMState}
}

// wordSuccessors enters every word that can follow s: for each right
// context recorded on the node the word ended in, the entry points for
// the word's last unit as left context.
func (l *Linguist) wordSuccessors(s *State) []*State {
	if s.node.Word() == l.sentenceEnd {
		return nil
	}
	left := s.node.LastUnit()
	var out []*State
	for _, rc := range s.lastNode.RC() {
		for _, n := range l.tree.EntryPoints(left, rc) {
			out = append(out, l.newUnitState(n, s.history))
		}
	}
	return out
}

// nodeSuccessors leaves the HMM of node: into the next unit of the word or
// into the words node ends.
func (l *Linguist) nodeSuccessors(node *Node, history language.WordSequence) []*State {
	out := make([]*State, len(node.successors))
	for i, next := range node.successors {
		if next.kind == WordNode {
			out[i] = l.newWordState(next, node, history)
		} else {
			out[i] = l.newUnitState(next, history)
		}
	}
	return out
}

func (l *Linguist) newWordState(wordNode, lastNode *Node, history language.WordSequence) *State {
	logProb := l.logOne
	next := history
	word := wordNode.Word()
	if word.IsFiller() {
		if word != l.silenceWord {
			logProb = l.logFillerInsertion
		}
	} else {
		next = history.AddWord(word.Spelling, l.maxDepth)
		logProb = l.lm.Probability(next) * l.languageWeight
	}
	return &State{
		l:        l,
		kind:     WordState,
		node:     wordNode,
		history:  next.Trim(l.maxDepth - 1),
		lastNode: lastNode,
		language: logProb,
	}
}

func (l *Linguist) newUnitState(node *Node, history language.WordSequence) *State {
	return &State{
		l:         l,
		kind:      UnitState,
		node:      node,
		history:   history,
		language:  l.logOne,
		insertion: l.insertionProbability(node),
	}
}

func (l *Linguist) newHMMState(node *Node, history language.WordSequence, hs *acoustic.HMMState, logProb float64) *State {
	kind := HMMState
	if !hs.IsEmitting() {
		kind = NonEmittingHMMState
	}
	return &State{
		l:         l,
		kind:      kind,
		node:      node,
		history:   history,
		hmmState:  hs,
		language:  l.logOne,
		acoustic:  logProb,
		insertion: l.logOne,
	}
}

// insertionProbability charges the unit insertion probability, replaced
// by the silence insertion probability for silence and increased by the
// word insertion probability at word beginnings.
func (l *Linguist) insertionProbability(node *Node) float64 {
	p := l.logUnitInsertion
	if node.BaseUnit().IsSilence() {
		p = l.logSilenceInsertion
	} else if node.Position().IsWordBeginning() {
		p += l.logWordInsertionProbability
	}
	return p
}
