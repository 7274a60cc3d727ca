package linguist

import (
	"fmt"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/lexicon"
)

// NodeID indexes a node in a nodeBuilder arena.
type NodeID int32

// noNode marks a missing parent.
const noNode NodeID = -1

type builderNode struct {
	kind     NodeKind
	hmm      *acoustic.HMM
	pron     *lexicon.Pronunciation
	parent   NodeID
	rc       []*acoustic.Unit
	children []NodeID
}

// edgeKey identifies a child by its parent and transition key: the
// interned HMM id for HMM children, the pronunciation id for word
// children.
type edgeKey struct {
	parent NodeID
	kind   NodeKind
	id     int
}

// nodeBuilder is the mutable arena the compiler grows the lexical graph
// in. Children with equal transition keys under one parent are shared.
// After build every mutator panics.
type nodeBuilder struct {
	pool  *Pool
	nodes []builderNode
	edges map[edgeKey]NodeID
	built bool
}

func newNodeBuilder(pool *Pool) *nodeBuilder {
	return &nodeBuilder{
		pool:  pool,
		edges: make(map[edgeKey]NodeID),
	}
}

func (b *nodeBuilder) mustBeMutable() {
	if b.built {
		panic("linguist: node graph is frozen")
	}
}

func (b *nodeBuilder) node(id NodeID) *builderNode {
	if id < 0 || int(id) >= len(b.nodes) {
		panic(fmt.Sprintf("linguist: unknown node %d", id))
	}
	return &b.nodes[id]
}

func (b *nodeBuilder) alloc(n builderNode) NodeID {
	b.mustBeMutable()
	b.nodes = append(b.nodes, n)
	return NodeID(len(b.nodes) - 1)
}

// newBranch allocates a detached branch node.
func (b *nodeBuilder) newBranch() NodeID {
	return b.alloc(builderNode{kind: BranchNode, parent: noNode})
}

// addHMM returns the child of parent keyed by h, creating it if needed.
func (b *nodeBuilder) addHMM(parent NodeID, h *acoustic.HMM) NodeID {
	b.mustBeMutable()
	key := edgeKey{parent: parent, kind: HMMNode, id: b.hmmID(h)}
	if child, ok := b.edges[key]; ok {
		return child
	}
	child := b.alloc(builderNode{kind: HMMNode, hmm: h, parent: noNode})
	b.attach(parent, key, child)
	return child
}

// addWord returns the word child of parent for p, creating it if needed.
// A word node's parent is fixed at creation.
func (b *nodeBuilder) addWord(parent NodeID, p *lexicon.Pronunciation) NodeID {
	b.mustBeMutable()
	if b.node(parent).kind != HMMNode {
		panic(fmt.Sprintf("linguist: word %s attached to a %s node", p, b.node(parent).kind))
	}
	key := edgeKey{parent: parent, kind: WordNode, id: p.ID}
	if child, ok := b.edges[key]; ok {
		return child
	}
	child := b.newWord(parent, p)
	b.attach(parent, key, child)
	return child
}

// newWord allocates a word node hanging from parent without making it a
// child of parent.
func (b *nodeBuilder) newWord(parent NodeID, p *lexicon.Pronunciation) NodeID {
	return b.alloc(builderNode{kind: WordNode, pron: p, parent: parent})
}

// link makes the existing HMM node child a successor of parent unless
// parent already has a child with the same HMM, and returns the child
// parent ends up with.
func (b *nodeBuilder) link(parent, child NodeID) NodeID {
	b.mustBeMutable()
	c := b.node(child)
	if c.kind != HMMNode {
		panic(fmt.Sprintf("linguist: cannot link a %s node", c.kind))
	}
	key := edgeKey{parent: parent, kind: HMMNode, id: b.hmmID(c.hmm)}
	if existing, ok := b.edges[key]; ok {
		return existing
	}
	b.attach(parent, key, child)
	return child
}

func (b *nodeBuilder) attach(parent NodeID, key edgeKey, child NodeID) {
	p := b.node(parent)
	p.children = append(p.children, child)
	b.edges[key] = child
}

// addRC records rc as a right context of an HMM node.
func (b *nodeBuilder) addRC(id NodeID, rc *acoustic.Unit) {
	b.mustBeMutable()
	n := b.node(id)
	for _, u := range n.rc {
		if u == rc {
			return
		}
	}
	n.rc = append(n.rc, rc)
}

func (b *nodeBuilder) successors(id NodeID) []NodeID {
	return b.node(id).children
}

func (b *nodeBuilder) hmmID(h *acoustic.HMM) int {
	id := b.pool.HMMID(h)
	if id == 0 {
		panic(fmt.Sprintf("linguist: HMM %s was not resolved by the pool", h))
	}
	return id
}

// build converts the arena into immutable nodes, indexed by NodeID, and
// releases the dedup map. The builder cannot be used afterwards.
func (b *nodeBuilder) build() []*Node {
	b.mustBeMutable()
	b.built = true
	b.edges = nil

	nodes := make([]*Node, len(b.nodes))
	for i := range b.nodes {
		bn := &b.nodes[i]
		nodes[i] = &Node{
			id:   i,
			kind: bn.kind,
			hmm:  bn.hmm,
			pron: bn.pron,
			rc:   bn.rc,
		}
	}
	for i := range b.nodes {
		bn := &b.nodes[i]
		if bn.parent != noNode {
			nodes[i].parent = nodes[bn.parent]
		}
		if len(bn.children) > 0 {
			succ := make([]*Node, len(bn.children))
			for j, c := range bn.children {
				succ[j] = nodes[c]
			}
			nodes[i].successors = succ
		}
	}
	return nodes
}
