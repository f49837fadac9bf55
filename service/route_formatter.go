package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ludo-technologies/yieldscan/domain"
)

// RouteFormatterImpl implements the RouteFormatter interface
type RouteFormatterImpl struct {
	utils *FormatUtils
}

// NewRouteFormatter creates a new route formatter
func NewRouteFormatter() *RouteFormatterImpl {
	return &RouteFormatterImpl{utils: NewFormatUtils()}
}

// Format formats the response according to the specified format
func (f *RouteFormatterImpl) Format(response *domain.RouteResponse, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(response), nil
	case domain.OutputFormatJSON:
		return EncodeJSON(response)
	case domain.OutputFormatYAML:
		return EncodeYAML(response)
	case domain.OutputFormatCSV:
		return f.formatCSV(response)
	case domain.OutputFormatDOT:
		return f.formatDOT(response), nil
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer
func (f *RouteFormatterImpl) Write(response *domain.RouteResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	}

	output, err := f.Format(response, format)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(writer, output); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// formatText formats the response as human-readable text
func (f *RouteFormatterImpl) formatText(response *domain.RouteResponse) string {
	var builder strings.Builder

	builder.WriteString(f.utils.FormatMainHeader("Generator Route Analysis"))

	s := response.Summary
	builder.WriteString(f.utils.FormatSummaryStats([]StatLine{
		{"Files Analyzed", s.FilesAnalyzed},
		{"Generator Functions", s.TotalFunctions},
		{"Analyzed", s.AnalyzedFunctions},
		{"Unsupported", s.UnsupportedFunctions},
		{"Too Complex", s.TooComplexFunctions},
		{"Total Routes", s.TotalRoutes},
		{"Breaking Routes", s.BreakingRoutes},
		{"Max Routes/Function", s.MaxRoutesPerFunction},
	}))

	builder.WriteString(f.utils.FormatSectionHeader("Functions"))
	for _, fn := range response.Functions {
		f.writeFunctionText(&builder, fn)
	}
	builder.WriteString(f.utils.FormatSectionSeparator())

	builder.WriteString(f.utils.FormatListSection("Warnings", response.Warnings))
	builder.WriteString(f.utils.FormatListSection("Errors", response.Errors))
	return builder.String()
}

func (f *RouteFormatterImpl) writeFunctionText(b *strings.Builder, fn domain.FunctionRoutes) {
	fmt.Fprintf(b, "%s:%d %s (%s) %s", fn.FilePath, fn.StartLine, colorHeader.Sprint(fn.Name), fn.Language, f.utils.FormatStatus(fn.Status))
	if !fn.IsAnalyzed() {
		fmt.Fprintf(b, ": %s\n", fn.Reason)
		return
	}
	fmt.Fprintf(b, ", %d routes, %d branches, %d blocks\n", len(fn.Routes), fn.BranchCount, fn.BlockCount)

	indent := strings.Repeat(" ", SectionPadding)
	for _, r := range fn.Routes {
		values := make([]string, 0, len(r.Emissions))
		for _, e := range r.Emissions {
			values = append(values, e.Text)
		}
		fmt.Fprintf(b, "%s%d. %s => (%s)", indent, r.Index, strings.Join(r.Path, " -> "), colorEmitted.Sprint(strings.Join(values, ", ")))
		if r.HasBreak {
			b.WriteString(" " + colorWarn.Sprint("[break]"))
		}
		b.WriteString("\n")
	}

	if fn.Tree != nil {
		b.WriteString(indent + colorMuted.Sprint("tree:") + "\n")
		writeTreeText(b, *fn.Tree, SectionPadding+2)
	}
	if fn.Dump != "" {
		for _, line := range strings.Split(strings.TrimRight(fn.Dump, "\n"), "\n") {
			b.WriteString(strings.Repeat(" ", ItemPadding) + line + "\n")
		}
	}
}

func writeTreeText(b *strings.Builder, n domain.TreeNodeInfo, indent int) {
	line := n.Label
	switch n.Kind {
	case "branch":
		line = n.Key + ": " + n.Label
	case "leaf":
		line = n.Key + " " + n.Label
	}
	if n.Line > 0 {
		line += fmt.Sprintf(" (line %d)", n.Line)
	}
	if len(n.Flags) > 0 {
		line += " " + strings.Join(n.Flags, ",")
	}
	b.WriteString(strings.Repeat(" ", indent+2*n.Depth) + line + "\n")
	for _, child := range n.Children {
		writeTreeText(b, child, indent)
	}
}

// formatCSV writes one row per route; declined functions get one row with
// empty route columns
func (f *RouteFormatterImpl) formatCSV(response *domain.RouteResponse) (string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	header := []string{"file", "function", "language", "start_line", "status", "route", "fingerprint", "has_break", "length", "emissions", "path"}
	if err := writer.Write(header); err != nil {
		return "", domain.NewOutputError("failed to write CSV header", err)
	}

	for _, fn := range response.Functions {
		base := []string{fn.FilePath, fn.Name, fn.Language, strconv.Itoa(fn.StartLine), string(fn.Status)}
		if len(fn.Routes) == 0 {
			if err := writer.Write(append(base, "", "", "", "", "", "")); err != nil {
				return "", domain.NewOutputError("failed to write CSV record", err)
			}
			continue
		}
		for _, r := range fn.Routes {
			values := make([]string, 0, len(r.Emissions))
			for _, e := range r.Emissions {
				values = append(values, e.Text)
			}
			record := append(append([]string(nil), base...),
				strconv.Itoa(r.Index),
				r.Fingerprint,
				strconv.FormatBool(r.HasBreak),
				strconv.Itoa(r.Length),
				strings.Join(values, " | "),
				strings.Join(r.Path, " -> "),
			)
			if err := writer.Write(record); err != nil {
				return "", domain.NewOutputError("failed to write CSV record", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", domain.NewOutputError("failed to flush CSV", err)
	}
	return builder.String(), nil
}

// formatDOT renders one cluster per function. Functions without a tree
// (declined, or the tree was not requested) get a single note node.
func (f *RouteFormatterImpl) formatDOT(response *domain.RouteResponse) string {
	var b strings.Builder
	b.WriteString("digraph routes {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	for i, fn := range response.Functions {
		prefix := fmt.Sprintf("f%d", i)
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&b, "    label=%s;\n", strconv.Quote(fmt.Sprintf("%s:%d %s", fn.FilePath, fn.StartLine, fn.Name)))

		if fn.Tree == nil {
			note := string(fn.Status)
			if fn.Reason != "" {
				note += ": " + fn.Reason
			}
			fmt.Fprintf(&b, "    %s_note [shape=note, label=%s];\n", prefix, strconv.Quote(note))
		} else {
			writeDOTNode(&b, prefix, *fn.Tree)
		}
		b.WriteString("  }\n")
	}

	b.WriteString("}\n")
	return b.String()
}

func writeDOTNode(b *strings.Builder, prefix string, n domain.TreeNodeInfo) {
	id := dotID(prefix, n.Key)
	switch n.Kind {
	case "root":
		fmt.Fprintf(b, "    %s [shape=point, label=\"\"];\n", id)
	case "branch":
		fmt.Fprintf(b, "    %s [shape=diamond, label=%s];\n", id, strconv.Quote(n.Label))
	default:
		label := n.Key + " " + n.Label
		if len(n.Flags) > 0 {
			label += "\n" + strings.Join(n.Flags, ",")
		}
		fmt.Fprintf(b, "    %s [label=%s];\n", id, strconv.Quote(label))
	}
	for _, child := range n.Children {
		writeDOTNode(b, prefix, child)
		fmt.Fprintf(b, "    %s -> %s;\n", id, dotID(prefix, child.Key))
	}
}

// dotID turns a node key into a DOT identifier unique within one function
func dotID(prefix, key string) string {
	return prefix + "_" + strings.NewReplacer("#", "_", "-", "_", ".", "_").Replace(key)
}

var _ domain.RouteFormatter = (*RouteFormatterImpl)(nil)

// FormatDumps renders the diagnostic dump of every function, one section
// per function in response order. Declined functions show their reason.
func FormatDumps(response *domain.RouteResponse) string {
	var b strings.Builder
	for i, fn := range response.Functions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "== %s:%d %s (%s)\n", fn.FilePath, fn.StartLine, fn.Name, fn.Language)
		if fn.Lowered != "" {
			b.WriteString("lowered:\n")
			b.WriteString(strings.TrimRight(fn.Lowered, "\n") + "\n\n")
		}
		if !fn.IsAnalyzed() {
			fmt.Fprintf(&b, "%s: %s\n", fn.Status, fn.Reason)
			continue
		}
		b.WriteString(strings.TrimRight(fn.Dump, "\n") + "\n")
	}
	for _, e := range response.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	return b.String()
}
