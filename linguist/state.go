package linguist

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/language"
	"github.com/ieee0824/lextree-go/lexicon"
)

// StateKind is the variant of a search state.
type StateKind uint8

const (
	// WordState follows a completed word.
	WordState StateKind = iota
	// UnitState is about to enter a context-dependent unit.
	UnitState
	// HMMState sits in an emitting state of a unit's HMM.
	HMMState
	// NonEmittingHMMState sits in a non-emitting state of a unit's HMM.
	NonEmittingHMMState
)

func (k StateKind) String() string {
	switch k {
	case WordState:
		return "word"
	case UnitState:
		return "unit"
	case HMMState:
		return "hmm"
	case NonEmittingHMMState:
		return "nehmm"
	}
	return fmt.Sprintf("StateKind(%d)", uint8(k))
}

// State is a search state: a node of the tree, the word history that led
// to it and the log probability of the transition into it. States are
// immutable; Successors allocates new ones.
type State struct {
	l        *Linguist
	kind     StateKind
	node     *Node
	history  language.WordSequence
	lastNode *Node              // WordState: HMM node the word ended in
	hmmState *acoustic.HMMState // HMMState, NonEmittingHMMState

	language  float64
	acoustic  float64
	insertion float64
}

// Kind returns the state variant.
func (s *State) Kind() StateKind { return s.kind }

// Node returns the tree node the state wraps.
func (s *State) Node() *Node { return s.node }

// WordHistory returns the trimmed word history.
func (s *State) WordHistory() language.WordSequence { return s.history }

// LastNode returns the HMM node a word state was reached from.
func (s *State) LastNode() *Node { return s.lastNode }

// HMMState returns the HMM state of an HMM state variant, nil otherwise.
func (s *State) HMMState() *acoustic.HMMState { return s.hmmState }

// Unit returns the base unit of unit and HMM states.
func (s *State) Unit() *acoustic.Unit { return s.node.BaseUnit() }

// Pronunciation returns the pronunciation of a word state.
func (s *State) Pronunciation() *lexicon.Pronunciation { return s.node.Pronunciation() }

// Word returns the word of a word state.
func (s *State) Word() *lexicon.Word { return s.node.Word() }

// IsEmitting reports whether the state consumes an acoustic frame.
func (s *State) IsEmitting() bool {
	return s.kind == HMMState && s.hmmState.IsEmitting()
}

// IsFinal reports whether the state ends a sentence.
func (s *State) IsFinal() bool {
	return s.kind == WordState && s.node.Word() == s.l.sentenceEnd
}

// Probability returns the sum of the language, acoustic and insertion
// log probabilities.
func (s *State) Probability() float64 {
	return s.language + s.acoustic + s.insertion
}

// LanguageProbability returns the language log probability.
func (s *State) LanguageProbability() float64 { return s.language }

// AcousticProbability returns the transition log probability inside an
// HMM.
func (s *State) AcousticProbability() float64 { return s.acoustic }

// InsertionProbability returns the unit, silence or word insertion log
// probability.
func (s *State) InsertionProbability() float64 { return s.insertion }

// Successors returns the states reachable from s.
func (s *State) Successors() []*State {
	switch s.kind {
	case WordState:
		return s.l.wordSuccessors(s)
	case UnitState:
		return []*State{s.l.newHMMState(s.node, s.history, s.node.hmm.InitialState(), s.l.logOne)}
	default:
		if s.hmmState.IsExitState() {
			return s.l.nodeSuccessors(s.node, s.history)
		}
		arcs := s.hmmState.Successors()
		out := make([]*State, len(arcs))
		for i, arc := range arcs {
			out[i] = s.l.newHMMState(s.node, s.history, arc.State, arc.LogProb)
		}
		return out
	}
}

// StateKey is the comparable identity of a state. Two states are equal
// iff their keys are equal.
type StateKey struct {
	Kind     StateKind
	Node     int
	History  string // empty unless full word histories are tracked
	LastNode int    // WordState: LastNode ID + 1
	HMMState int    // HMM variants: state index + 1
}

// Key returns the identity of s: its node, its word history when full
// word histories are tracked, the predecessor node of a word state and
// the HMM state index of an HMM state.
func (s *State) Key() StateKey {
	k := StateKey{Kind: s.kind, Node: s.node.id}
	if s.l.fullWordHistories {
		k.History = s.history.Key()
	}
	if s.lastNode != nil {
		k.LastNode = s.lastNode.id + 1
	}
	if s.hmmState != nil {
		k.HMMState = s.hmmState.Index() + 1
	}
	return k
}

// Equal reports whether s and other are the same search state.
func (s *State) Equal(other *State) bool {
	if s == other {
		return true
	}
	if other == nil {
		return false
	}
	return s.Key() == other.Key()
}

// Hash returns a hash of Key. Equal states hash identically.
func (s *State) Hash() uint64 {
	k := s.Key()
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []int{int(k.Kind), k.Node, k.LastNode, k.HMMState} {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	h.Write([]byte(k.History))
	return h.Sum64()
}

// Signature returns a diagnostic identifier of the state.
func (s *State) Signature() string {
	sig := fmt.Sprintf("lts-%s-%d-ws-%s", s.kind, s.node.id, s.history)
	switch {
	case s.lastNode != nil:
		sig += fmt.Sprintf("-ln-%d", s.lastNode.id)
	case s.hmmState != nil:
		sig += fmt.Sprintf("-HMM-%d", s.hmmState.Index())
	}
	return sig
}

func (s *State) String() string {
	switch s.kind {
	case WordState:
		return fmt.Sprintf("lt-%s %.4f{%s} word", s.node, s.Probability(), s.history)
	case UnitState:
		return fmt.Sprintf("lt-%s %.4f{%s} unit", s.node, s.Probability(), s.history)
	}
	return fmt.Sprintf("lt-%s %.4f{%s} hmm:%s", s.node, s.Probability(), s.history, s.hmmState)
}
