package linguist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ieee0824/lextree-go/acoustic"
)

// Dump writes the tree to w, one node per line, indented by depth. Shared
// nodes are printed once; later visits print a "^id" back reference.
func (t *Tree) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	seen := make([]bool, len(t.nodes))

	fmt.Fprintf(bw, "root %s <- %s\n", nodeLabel(t.root), nodeLabel(t.root.parent))
	for _, ep := range t.entryOrder {
		fmt.Fprintf(bw, "EntryPoint %s rc=%s\n", ep.base, unitList(ep.RC()))
		dumpNode(bw, 1, ep.baseNode, seen)
		for _, lc := range ep.lcs {
			fmt.Fprintf(bw, "%slc %s\n", pad(1), lc)
			dumpNode(bw, 2, ep.FromLeftContext(lc), seen)
		}
	}
	return bw.Flush()
}

func dumpNode(w io.Writer, level int, n *Node, seen []bool) {
	if seen[n.id] {
		fmt.Fprintf(w, "%s^%d\n", pad(level), n.id)
		return
	}
	seen[n.id] = true
	fmt.Fprintf(w, "%s%s", pad(level), nodeLabel(n))
	if len(n.rc) > 0 {
		fmt.Fprintf(w, " rc=%s", unitList(n.rc))
	}
	fmt.Fprintln(w)
	for _, s := range n.successors {
		dumpNode(w, level+1, s, seen)
	}
}

func nodeLabel(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%d] %s", n.id, n)
}

func unitList(units []*acoustic.Unit) string {
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

func pad(level int) string {
	return strings.Repeat("  ", level)
}
