package acoustic

import (
	"fmt"
	"math"

	"github.com/ieee0824/lextree-go/internal/mathutil"
)

// HMM is a context-dependent left-to-right HMM for one unit.
// States: [0]=entry (non-emitting), [1..n-2]=emitting, [n-1]=exit (non-emitting).
// Left and Right are nil when the unit is context independent.
type HMM struct {
	Base     *Unit
	Left     *Unit
	Right    *Unit
	Position Position
	TransLog mathutil.Mat // [n][n] log transition probs

	states []HMMState
}

// HMMState is one state inside an HMM.
type HMMState struct {
	hmm   *HMM
	index int
	arcs  []HMMStateArc
}

// HMMStateArc is a transition to another state of the same HMM.
type HMMStateArc struct {
	State   *HMMState
	LogProb float64
}

// DefaultTransitions returns the flat-start transition table:
// entry -> first emitting state with probability 1, then self-loop (0.5)
// and forward (0.5) on every emitting state.
func DefaultTransitions() mathutil.Mat {
	trans := mathutil.NewMatFill(NumStatesPerPhoneme, NumStatesPerPhoneme, mathutil.LogZero)
	trans[0][1] = mathutil.LogOne
	logHalf := math.Log(0.5)
	for i := 1; i <= NumEmittingStates; i++ {
		trans[i][i] = logHalf
		trans[i][i+1] = logHalf
	}
	return trans
}

func validateTransitions(trans mathutil.Mat) error {
	n, bad := mathutil.SquareOrder(trans)
	if n < 3 {
		return fmt.Errorf("transition table has %d states, need at least 3", n)
	}
	if bad >= 0 {
		return fmt.Errorf("transition row %d has %d columns, want %d", bad, len(trans[bad]), n)
	}
	return nil
}

func newHMM(base, left, right *Unit, pos Position, trans mathutil.Mat) *HMM {
	h := &HMM{
		Base:     base,
		Left:     left,
		Right:    right,
		Position: pos,
		TransLog: trans,
		states:   make([]HMMState, len(trans)),
	}
	for i := range h.states {
		h.states[i] = HMMState{hmm: h, index: i}
	}
	// Arcs out of the entry state are never followed: the search enters
	// through InitialState.
	for i := 1; i < len(h.states)-1; i++ {
		for j := 1; j < len(h.states); j++ {
			if mathutil.IsLogZero(trans[i][j]) {
				continue
			}
			h.states[i].arcs = append(h.states[i].arcs, HMMStateArc{
				State:   &h.states[j],
				LogProb: trans[i][j],
			})
		}
	}
	return h
}

// NumStates returns the number of states including entry and exit.
func (h *HMM) NumStates() int { return len(h.states) }

// State returns state i.
func (h *HMM) State(i int) *HMMState { return &h.states[i] }

// InitialState returns the first emitting state.
func (h *HMM) InitialState() *HMMState { return &h.states[1] }

// ExitState returns the final non-emitting state.
func (h *HMM) ExitState() *HMMState { return &h.states[len(h.states)-1] }

// Triphone returns the "left-base+right" name of the HMM.
func (h *HMM) Triphone() Triphone {
	return MakeTriphone(h.Left.String(), string(h.Base.Name), h.Right.String())
}

func (h *HMM) String() string {
	return fmt.Sprintf("%s@%s", h.Triphone(), h.Position)
}

// HMM returns the HMM owning this state.
func (s *HMMState) HMM() *HMM { return s.hmm }

// Index returns the state's index inside its HMM.
func (s *HMMState) Index() int { return s.index }

// IsEmitting reports whether the state consumes an observation.
func (s *HMMState) IsEmitting() bool {
	return s.index >= 1 && s.index < len(s.hmm.states)-1
}

// IsExitState reports whether this is the HMM's exit state.
func (s *HMMState) IsExitState() bool { return s.index == len(s.hmm.states)-1 }

// Successors returns the outgoing arcs. The exit state has none; the
// caller continues into the next unit instead. The slice is shared and
// must not be modified.
func (s *HMMState) Successors() []HMMStateArc { return s.arcs }

func (s *HMMState) String() string {
	return fmt.Sprintf("%s[%d]", s.hmm, s.index)
}
