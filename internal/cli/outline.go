package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/petrijr/tasktree/pkg/api"
)

// printTree writes an indented outline of the tree, one node per line.
func printTree(w io.Writer, root api.Node) error {
	var err error
	var visit func(n api.Node, depth int)
	visit = func(n api.Node, depth int) {
		if err != nil {
			return
		}
		indent := strings.Repeat("  ", depth)
		switch g := n.(type) {
		case *api.Queue:
			_, err = fmt.Fprintf(w, "%s%s (queue, %d)\n", indent, g.Name(), g.Len())
			for _, c := range g.Children() {
				visit(c, depth+1)
			}
		case *api.Parallel:
			_, err = fmt.Fprintf(w, "%s%s (parallel, %d)\n", indent, g.Name(), g.Len())
			for _, c := range g.Children() {
				visit(c, depth+1)
			}
		default:
			_, err = fmt.Fprintf(w, "%s%s\n", indent, n.Name())
		}
	}
	visit(root, 0)
	return err
}
