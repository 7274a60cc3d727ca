package linguist

import (
	"fmt"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/lexicon"
)

// NodeKind distinguishes the vertices of the lexical graph.
type NodeKind uint8

const (
	// BranchNode is a bare attachment point: an entry point's base node or
	// a per-left-context node.
	BranchNode NodeKind = iota
	// HMMNode holds one context-dependent HMM.
	HMMNode
	// WordNode holds one pronunciation.
	WordNode
)

func (k NodeKind) String() string {
	switch k {
	case BranchNode:
		return "branch"
	case HMMNode:
		return "hmm"
	case WordNode:
		return "word"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is a vertex of the built lexical graph. Nodes have no mutators;
// the graph is read-only and safe to share between goroutines.
type Node struct {
	id         int
	kind       NodeKind
	hmm        *acoustic.HMM
	pron       *lexicon.Pronunciation
	parent     *Node
	rc         []*acoustic.Unit
	successors []*Node
}

// ID returns the node's index in its tree, unique per tree.
func (n *Node) ID() int { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// IsWord reports whether n is a word node.
func (n *Node) IsWord() bool { return n.kind == WordNode }

// IsHMM reports whether n is an HMM node.
func (n *Node) IsHMM() bool { return n.kind == HMMNode }

// HMM returns the HMM of an HMM node, nil otherwise.
func (n *Node) HMM() *acoustic.HMM { return n.hmm }

// BaseUnit returns the base unit of an HMM node, nil otherwise.
func (n *Node) BaseUnit() *acoustic.Unit {
	if n.hmm == nil {
		return nil
	}
	return n.hmm.Base
}

// Position returns the word position of an HMM node.
func (n *Node) Position() acoustic.Position {
	if n.hmm == nil {
		return acoustic.PosInternal
	}
	return n.hmm.Position
}

// RC returns the right contexts recorded on a word-final HMM node. The
// returned slice is shared and must not be modified.
func (n *Node) RC() []*acoustic.Unit { return n.rc }

// Pronunciation returns the pronunciation of a word node, nil otherwise.
func (n *Node) Pronunciation() *lexicon.Pronunciation { return n.pron }

// Word returns the word of a word node, nil otherwise.
func (n *Node) Word() *lexicon.Word {
	if n.pron == nil {
		return nil
	}
	return n.pron.Word
}

// LastUnit returns the last unit of a word node's pronunciation.
func (n *Node) LastUnit() *acoustic.Unit {
	if n.pron == nil {
		return nil
	}
	return n.pron.LastUnit()
}

// Parent returns the HMM node a word node hangs from, nil otherwise.
func (n *Node) Parent() *Node { return n.parent }

// Successors returns the children of n. Every call returns the same
// slice; it must not be modified. Order is deterministic for a given
// input but carries no meaning.
func (n *Node) Successors() []*Node { return n.successors }

func (n *Node) String() string {
	switch n.kind {
	case HMMNode:
		return fmt.Sprintf("HMMNode %s", n.hmm)
	case WordNode:
		return fmt.Sprintf("WordNode %s", n.pron)
	}
	return fmt.Sprintf("Node %d", n.id)
}
