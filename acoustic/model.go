package acoustic

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/ieee0824/lextree-go/internal/mathutil"
)

// ErrMissingHMM is returned when the model cannot supply an HMM for a
// requested unit, context and position.
var ErrMissingHMM = errors.New("missing context-dependent HMM")

type cdKey struct {
	base, left, right Phoneme
	pos               Position
}

// Model holds the unit inventory and HMM transition tables.
// Context-dependent tables are optional; with Backoff set, requests for a
// triphone the model does not define are served from the base unit's
// context-independent table.
type Model struct {
	Backoff bool

	units  []*Unit
	byName map[Phoneme]*Unit
	ci     map[Phoneme]mathutil.Mat
	cd     map[cdKey]mathutil.Mat

	mu    sync.Mutex
	cache map[cdKey]*HMM
}

// NewModel creates an empty acoustic model.
func NewModel() *Model {
	return &Model{
		byName: make(map[Phoneme]*Unit),
		ci:     make(map[Phoneme]mathutil.Mat),
		cd:     make(map[cdKey]mathutil.Mat),
		cache:  make(map[cdKey]*HMM),
	}
}

// NewFlatModel creates a model with one flat-start context-independent HMM
// per phoneme. PhonSil is marked as silence.
func NewFlatModel(phonemes []Phoneme, backoff bool) *Model {
	am := NewModel()
	am.Backoff = backoff
	for _, p := range phonemes {
		am.AddUnit(p)
		am.ci[p] = DefaultTransitions()
	}
	return am
}

// AddUnit registers a phoneme and returns its unit. Adding an existing
// phoneme returns the existing unit.
func (am *Model) AddUnit(p Phoneme) *Unit {
	if u, ok := am.byName[p]; ok {
		return u
	}
	u := &Unit{
		Name:    p,
		ID:      len(am.units),
		Silence: p == PhonSil,
		Filler:  IsFillerPhoneme(p),
	}
	am.units = append(am.units, u)
	am.byName[p] = u
	return u
}

// SetTransitions sets the context-independent transition table of p,
// registering the unit if needed.
func (am *Model) SetTransitions(p Phoneme, trans mathutil.Mat) error {
	if err := validateTransitions(trans); err != nil {
		return fmt.Errorf("phoneme %s: %w", p, err)
	}
	am.AddUnit(p)
	am.ci[p] = trans
	return nil
}

// AddContextDependent defines an explicit transition table for base in the
// given context and position. Both context phonemes must be known units.
func (am *Model) AddContextDependent(left, base, right Phoneme, pos Position, trans mathutil.Mat) error {
	if err := validateTransitions(trans); err != nil {
		return fmt.Errorf("triphone %s: %w", MakeTriphone(string(left), string(base), string(right)), err)
	}
	for _, p := range []Phoneme{left, base, right} {
		if _, ok := am.byName[p]; !ok {
			return fmt.Errorf("triphone %s: unknown phoneme %q",
				MakeTriphone(string(left), string(base), string(right)), p)
		}
	}
	am.cd[cdKey{base: base, left: left, right: right, pos: pos}] = trans
	return nil
}

// UnitFor returns the unit with the given name.
func (am *Model) UnitFor(name Phoneme) (*Unit, bool) {
	u, ok := am.byName[name]
	return u, ok
}

// Units returns all units in ID order.
func (am *Model) Units() []*Unit {
	return am.units
}

// SilenceUnit returns the silence unit, or nil if the model has none.
func (am *Model) SilenceUnit() *Unit {
	return am.byName[PhonSil]
}

// NumContextDependent returns the number of explicitly defined triphones.
func (am *Model) NumContextDependent() int {
	return len(am.cd)
}

// ContextDependentHMM returns the HMM for base with left context lc and
// right context rc at position pos. Context-independent units ignore lc and
// rc. Identical requests return the identical *HMM. The error wraps
// ErrMissingHMM when neither an explicit table nor an allowed fallback
// exists.
func (am *Model) ContextDependentHMM(base, lc, rc *Unit, pos Position) (*HMM, error) {
	if base.IsContextIndependent() {
		lc, rc = nil, nil
	}
	key := cdKey{base: base.Name, left: nameOf(lc), right: nameOf(rc), pos: pos}

	am.mu.Lock()
	defer am.mu.Unlock()
	if h, ok := am.cache[key]; ok {
		return h, nil
	}

	trans, ok := am.cd[key]
	if !ok && ((lc == nil && rc == nil) || am.Backoff) {
		trans, ok = am.ci[base.Name]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s",
			ErrMissingHMM, MakeTriphone(lc.String(), string(base.Name), rc.String()), pos)
	}
	h := newHMM(base, lc, rc, pos, trans)
	am.cache[key] = h
	return h, nil
}

func nameOf(u *Unit) Phoneme {
	if u == nil {
		return WordBoundary
	}
	return u.Name
}

// serializable types for gob encoding
type serializedModel struct {
	Backoff bool
	Units   []string
	CI      map[string][][]float64
	CD      []serializedCD
}

type serializedCD struct {
	Triphone string
	Position string
	TransLog [][]float64
}

// Save serializes the model to a writer using gob encoding.
func (am *Model) Save(w io.Writer) error {
	sm := serializedModel{
		Backoff: am.Backoff,
		CI:      make(map[string][][]float64, len(am.ci)),
	}
	for _, u := range am.units {
		sm.Units = append(sm.Units, string(u.Name))
	}
	for p, trans := range am.ci {
		sm.CI[string(p)] = trans
	}
	for key, trans := range am.cd {
		sm.CD = append(sm.CD, serializedCD{
			Triphone: string(MakeTriphone(string(key.left), string(key.base), string(key.right))),
			Position: key.pos.String(),
			TransLog: trans,
		})
	}
	sort.Slice(sm.CD, func(i, j int) bool {
		if sm.CD[i].Triphone != sm.CD[j].Triphone {
			return sm.CD[i].Triphone < sm.CD[j].Triphone
		}
		return sm.CD[i].Position < sm.CD[j].Position
	})
	return gob.NewEncoder(w).Encode(sm)
}

// Load deserializes an acoustic model from a reader.
func Load(r io.Reader) (*Model, error) {
	var sm serializedModel
	if err := gob.NewDecoder(r).Decode(&sm); err != nil {
		return nil, err
	}

	am := NewModel()
	am.Backoff = sm.Backoff
	for _, name := range sm.Units {
		am.AddUnit(Phoneme(name))
	}
	for name, trans := range sm.CI {
		if err := am.SetTransitions(Phoneme(name), trans); err != nil {
			return nil, err
		}
	}
	for _, sc := range sm.CD {
		tri, err := ParseTriphone(sc.Triphone)
		if err != nil {
			return nil, err
		}
		pos, err := ParsePosition(sc.Position)
		if err != nil {
			return nil, fmt.Errorf("triphone %s: %w", tri, err)
		}
		l, c, r := tri.Phonemes()
		if err := am.AddContextDependent(l, c, r, pos, sc.TransLog); err != nil {
			return nil, err
		}
	}
	return am, nil
}

// ExpandContexts defines an explicit table for every context-dependent
// unit in every left context, right context and position, copied from the
// unit's context-independent table. It returns the number of tables added.
func (am *Model) ExpandContexts() int {
	n := 0
	for _, base := range am.units {
		if base.IsContextIndependent() {
			continue
		}
		trans := am.ci[base.Name]
		for _, lc := range am.units {
			for _, rc := range am.units {
				for _, pos := range AllPositions() {
					key := cdKey{base: base.Name, left: lc.Name, right: rc.Name, pos: pos}
					if _, ok := am.cd[key]; ok {
						continue
					}
					am.cd[key] = mathutil.CloneMat(trans)
					n++
				}
			}
		}
	}
	return n
}
