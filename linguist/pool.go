package linguist

import (
	"fmt"

	"github.com/ieee0824/lextree-go/acoustic"
)

// AcousticModel supplies units and context-dependent HMMs.
type AcousticModel interface {
	Units() []*acoustic.Unit
	ContextDependentHMM(base, lc, rc *acoustic.Unit, pos acoustic.Position) (*acoustic.HMM, error)
}

type hmmKey struct {
	id  int
	pos acoustic.Position
}

// Pool assigns dense ids to units and (base, left, right) triples and
// resolves them to HMMs. Unit ids start at 1; 0 means "no context".
// A Pool is not safe for concurrent use while a tree is compiled.
type Pool struct {
	am    AcousticModel
	units []*acoustic.Unit // index is the pool id, [0] is nil
	ids   map[*acoustic.Unit]int
	radix int

	hmms   map[hmmKey]*acoustic.HMM
	hmmIDs map[*acoustic.HMM]int
}

// NewPool creates a pool over every unit of am.
func NewPool(am AcousticModel) (*Pool, error) {
	units := am.Units()
	if len(units) == 0 {
		return nil, fmt.Errorf("acoustic model has no units")
	}
	p := &Pool{
		am:     am,
		units:  make([]*acoustic.Unit, 1, len(units)+1),
		ids:    make(map[*acoustic.Unit]int, len(units)),
		hmms:   make(map[hmmKey]*acoustic.HMM),
		hmmIDs: make(map[*acoustic.HMM]int),
	}
	for _, u := range units {
		if _, dup := p.ids[u]; dup {
			continue
		}
		p.ids[u] = len(p.units)
		p.units = append(p.units, u)
	}
	p.radix = len(p.units)
	return p, nil
}

// ID returns the id of u, or 0 for nil. It panics for a unit that does not
// belong to the pool's acoustic model.
func (p *Pool) ID(u *acoustic.Unit) int {
	if u == nil {
		return 0
	}
	id, ok := p.ids[u]
	if !ok {
		panic(fmt.Sprintf("linguist: unit %s is not in the pool", u))
	}
	return id
}

// Unit returns the unit with the given id, nil for 0.
func (p *Pool) Unit(id int) *acoustic.Unit {
	return p.units[id]
}

// NumUnits returns the number of units, excluding the reserved 0 id.
func (p *Pool) NumUnits() int { return len(p.units) - 1 }

// BuildID packs a base id and its context ids into one composite id.
// Context-independent bases ignore their context.
func (p *Pool) BuildID(base, lc, rc int) int {
	if p.units[base].IsContextIndependent() {
		return base
	}
	return base*p.radix*p.radix + lc*p.radix + rc
}

// split is the inverse of BuildID.
func (p *Pool) split(id int) (base, lc, rc int) {
	if id < p.radix {
		return id, 0, 0
	}
	return id / (p.radix * p.radix), (id / p.radix) % p.radix, id % p.radix
}

// HMM returns the HMM for a composite id at pos. The error wraps
// ErrMissingContext when the acoustic model cannot supply it.
func (p *Pool) HMM(id int, pos acoustic.Position) (*acoustic.HMM, error) {
	key := hmmKey{id: id, pos: pos}
	if h, ok := p.hmms[key]; ok {
		return h, nil
	}
	b, l, r := p.split(id)
	h, err := p.am.ContextDependentHMM(p.units[b], p.units[l], p.units[r], pos)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingContext, err)
	}
	p.hmms[key] = h
	if _, ok := p.hmmIDs[h]; !ok {
		p.hmmIDs[h] = len(p.hmmIDs) + 1
	}
	return h, nil
}

// HMMFor resolves base in the context lc, rc at pos.
func (p *Pool) HMMFor(base, lc, rc *acoustic.Unit, pos acoustic.Position) (*acoustic.HMM, error) {
	return p.HMM(p.BuildID(p.ID(base), p.ID(lc), p.ID(rc)), pos)
}

// HMMID returns the interned id of an HMM previously returned by the pool,
// or 0.
func (p *Pool) HMMID(h *acoustic.HMM) int {
	return p.hmmIDs[h]
}

// NumHMMs returns the number of distinct HMMs resolved so far.
func (p *Pool) NumHMMs() int { return len(p.hmmIDs) }
