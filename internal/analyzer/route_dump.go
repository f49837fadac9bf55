package analyzer

import (
	"fmt"
	"io"
	"strings"
)

// Dump renders the tree and routes of an analysis as diagnostic text. The
// format is for people; it carries no compatibility guarantee.
func Dump(a *Analysis) string {
	var sb strings.Builder
	_ = DumpTree(&sb, a)
	sb.WriteString("\n")
	_ = DumpRoutes(&sb, a)
	sb.WriteString("\n")
	_ = DumpAccumulation(&sb, a)
	return sb.String()
}

// DumpTree writes the route tree, one node per line
func DumpTree(w io.Writer, a *Analysis) error {
	var err error
	a.Tree.Walk(func(n *RouteTreeNode) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", n.Depth()), describeNode(n))
		return true
	})
	return err
}

// DumpRoutes writes the complete routes with their emitted values
func DumpRoutes(w io.Writer, a *Analysis) error {
	routes := a.Routes()
	if _, err := fmt.Fprintf(w, "routes: %d\n", len(routes)); err != nil {
		return err
	}
	for i, r := range routes {
		values := make([]string, 0)
		for _, emit := range r.Emissions() {
			values = append(values, emit.Text())
		}
		suffix := ""
		if r.HasBreak() {
			suffix = " [break]"
		}
		if _, err := fmt.Fprintf(w, "  %d. %s => (%s)%s\n", i+1, r.Path(), strings.Join(values, ", "), suffix); err != nil {
			return err
		}
	}
	return nil
}

// DumpAccumulation writes every accumulated route in accumulation order,
// marking the ones a longer route superseded
func DumpAccumulation(w io.Writer, a *Analysis) error {
	all := a.AllRoutes()
	if _, err := fmt.Fprintf(w, "accumulated: %d\n", len(all)); err != nil {
		return err
	}
	for i, r := range all {
		var flags []string
		if r.Superseded() {
			flags = append(flags, "superseded")
		}
		if r.HasBreak() {
			flags = append(flags, "break")
		}
		line := fmt.Sprintf("  %d. %s", i+1, r.Path())
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ", ") + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func describeNode(n *RouteTreeNode) string {
	switch n.Kind() {
	case TreeBranch:
		line := fmt.Sprintf("%s: %s (line %d)", n.Key(), n.Label(), n.Line())
		if n.ElseClause() == nil {
			line += " no-else"
		}
		return line
	case TreeLeaf:
		block := n.Block()
		var flags []string
		if block.AllBreak() {
			flags = append(flags, "all-break")
		} else if block.HasBreak() {
			flags = append(flags, "break")
		}
		if block.ConstructionBound() {
			flags = append(flags, "construction-bound")
		}
		line := fmt.Sprintf("%s %s (line %d)", n.Key(), n.Label(), n.Line())
		if len(flags) > 0 {
			line += " " + strings.Join(flags, ",")
		}
		return line
	}
	return "root"
}
