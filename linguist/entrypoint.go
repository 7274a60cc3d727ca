package linguist

import (
	"sort"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/lexicon"
)

// unitSet is an insertion-ordered set of units.
type unitSet struct {
	units []*acoustic.Unit
	index map[*acoustic.Unit]struct{}
}

func newUnitSet() *unitSet {
	return &unitSet{index: make(map[*acoustic.Unit]struct{})}
}

func (s *unitSet) add(u *acoustic.Unit) {
	if _, ok := s.index[u]; ok {
		return
	}
	s.index[u] = struct{}{}
	s.units = append(s.units, u)
}

func (s *unitSet) len() int { return len(s.units) }

// sortByID orders the set by pool id so compilation does not depend on
// dictionary order.
func (s *unitSet) sortByID(pool *Pool) {
	sort.Slice(s.units, func(i, j int) bool {
		return pool.ID(s.units[i]) < pool.ID(s.units[j])
	})
}

// entryPointBuilder collects everything needed to attach words that start
// with base while the graph is under construction.
type entryPointBuilder struct {
	base            *acoustic.Unit
	baseNode        NodeID
	singleUnitWords []*lexicon.Pronunciation
	byLC            map[int]NodeID
	lcOrder         []*acoustic.Unit
}

// entryPointTable maps entry units to their entry points.
type entryPointTable struct {
	c      *compiler
	points map[*acoustic.Unit]*entryPointBuilder
	order  []*entryPointBuilder
}

func newEntryPointTable(c *compiler, entryUnits *unitSet) *entryPointTable {
	t := &entryPointTable{
		c:      c,
		points: make(map[*acoustic.Unit]*entryPointBuilder, entryUnits.len()),
	}
	for _, u := range entryUnits.units {
		ep := &entryPointBuilder{
			base:     u,
			baseNode: c.nodes.newBranch(),
			byLC:     make(map[int]NodeID),
		}
		t.points[u] = ep
		t.order = append(t.order, ep)
	}
	return t
}

func (t *entryPointTable) entryPoint(base *acoustic.Unit) *entryPointBuilder {
	return t.points[base]
}

func (t *entryPointTable) createEntryPointMaps() error {
	for _, ep := range t.order {
		if err := t.createEntryPointMap(ep); err != nil {
			return err
		}
	}
	return nil
}

// rc returns the distinct base units of the base node's children: the
// units that follow the first unit in words starting with ep.base.
func (t *entryPointTable) rc(ep *entryPointBuilder) []*acoustic.Unit {
	set := newUnitSet()
	for _, child := range t.c.nodes.successors(ep.baseNode) {
		set.add(t.c.nodes.node(child).hmm.Base)
	}
	return set.units
}

// createEntryPointMap builds one context node per exit unit. Each holds
// the BEGIN HMMs for ep.base in that left context, connected to the
// matching continuations below the base node, and the SINGLE HMMs of one
// unit words.
func (t *entryPointTable) createEntryPointMap(ep *entryPointBuilder) error {
	nodes := t.c.nodes
	rcs := t.rc(ep)
	for _, lc := range t.c.exitUnits.units {
		epNode := nodes.newBranch()
		for _, rc := range rcs {
			h, err := t.c.hmm(ep.base, lc, rc, acoustic.PosBegin)
			if err != nil {
				return err
			}
			added := nodes.addHMM(epNode, h)
			t.connect(ep, added, rc)
		}
		if err := t.connectSingleUnitWords(ep, lc, epNode); err != nil {
			return err
		}
		ep.byLC[t.c.pool.ID(lc)] = epNode
		ep.lcOrder = append(ep.lcOrder, lc)
	}
	return nil
}

// connect links a BEGIN node to every base-node child whose base unit is
// rc.
func (t *entryPointTable) connect(ep *entryPointBuilder, beginNode NodeID, rc *acoustic.Unit) {
	nodes := t.c.nodes
	for _, child := range nodes.successors(ep.baseNode) {
		if nodes.node(child).hmm.Base == rc {
			nodes.link(beginNode, child)
		}
	}
}

// connectSingleUnitWords fans one unit words out over every global entry
// unit as right context. The sentence start word becomes the tree root
// instead of a child.
func (t *entryPointTable) connectSingleUnitWords(ep *entryPointBuilder, lc *acoustic.Unit, epNode NodeID) error {
	if len(ep.singleUnitWords) == 0 {
		return nil
	}
	nodes := t.c.nodes
	for _, rc := range t.c.entryUnits.units {
		h, err := t.c.hmm(ep.base, lc, rc, acoustic.PosSingle)
		if err != nil {
			return err
		}
		tail := nodes.addHMM(epNode, h)
		nodes.addRC(tail, rc)
		for _, p := range ep.singleUnitWords {
			if p.Word == t.c.dict.SentenceStartWord() {
				t.c.offerRoot(lc, tail, p)
				continue
			}
			nodes.addWord(tail, p)
		}
	}
	return nil
}

// EntryPoint is the built attachment point for words starting with one
// base unit.
type EntryPoint struct {
	base     *acoustic.Unit
	baseNode *Node
	byLC     map[int]*Node
	lcs      []*acoustic.Unit
	pool     *Pool
}

func newEntryPoint(b *entryPointBuilder, nodes []*Node, pool *Pool) *EntryPoint {
	ep := &EntryPoint{
		base:     b.base,
		baseNode: nodes[b.baseNode],
		byLC:     make(map[int]*Node, len(b.byLC)),
		lcs:      b.lcOrder,
		pool:     pool,
	}
	for lc, id := range b.byLC {
		ep.byLC[lc] = nodes[id]
	}
	return ep
}

// Base returns the unit words attached here start with.
func (ep *EntryPoint) Base() *acoustic.Unit { return ep.base }

// Node returns the base node, parent of the second units of every multi
// unit word starting with Base.
func (ep *EntryPoint) Node() *Node { return ep.baseNode }

// FromLeftContext returns the context node for lc, or nil when lc is not
// an exit unit of the tree.
func (ep *EntryPoint) FromLeftContext(lc *acoustic.Unit) *Node {
	id, ok := ep.pool.ids[lc]
	if !ok {
		return nil
	}
	return ep.byLC[id]
}

// LeftContexts returns the left contexts with a context node.
func (ep *EntryPoint) LeftContexts() []*acoustic.Unit { return ep.lcs }

// RC returns the distinct units that follow Base in multi unit words.
func (ep *EntryPoint) RC() []*acoustic.Unit {
	set := newUnitSet()
	for _, n := range ep.baseNode.successors {
		set.add(n.BaseUnit())
	}
	return set.units
}
