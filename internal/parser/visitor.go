package parser

import (
	"fmt"
	"io"
	"strings"
)

// Visitor defines the interface for visiting lowered nodes
type Visitor interface {
	// Visit is called for each node; return false to skip its children
	Visit(node *Node) bool
}

// Accept implements the visitor pattern for lowered nodes
func (n *Node) Accept(visitor Visitor) {
	if n == nil {
		return
	}

	if !visitor.Visit(n) {
		return
	}

	for _, child := range n.Children {
		child.Accept(visitor)
	}
}

// PrinterVisitor prints the lowered tree, one node per line
type PrinterVisitor struct {
	writer io.Writer
	indent int
	prefix string
}

// NewPrinterVisitor creates a visitor that prints the lowered tree
func NewPrinterVisitor(w io.Writer) *PrinterVisitor {
	return &PrinterVisitor{
		writer: w,
		prefix: "  ",
	}
}

// Visit implements the Visitor interface
func (v *PrinterVisitor) Visit(node *Node) bool {
	fmt.Fprint(v.writer, strings.Repeat(v.prefix, v.indent))

	switch {
	case node.Name != "" && node.Text != "" && node.Name != node.Text:
		fmt.Fprintf(v.writer, "%s #%d %s: %s (line %d)\n", node.Kind, node.ID, node.Name, node.Text, node.Location.StartLine)
	case node.Name != "":
		fmt.Fprintf(v.writer, "%s #%d %s (line %d)\n", node.Kind, node.ID, node.Name, node.Location.StartLine)
	case node.Text != "":
		fmt.Fprintf(v.writer, "%s #%d: %s (line %d)\n", node.Kind, node.ID, node.Text, node.Location.StartLine)
	default:
		fmt.Fprintf(v.writer, "%s #%d (line %d)\n", node.Kind, node.ID, node.Location.StartLine)
	}

	v.indent++
	for _, child := range node.Children {
		child.Accept(v)
	}
	v.indent--

	return false // children handled above to control indentation
}
