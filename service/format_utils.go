package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/yieldscan/domain"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// EncodeYAML returns a YAML string for the given value.
func EncodeYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	LabelWidth     = 25
	SectionPadding = 2
	ItemPadding    = 4
)

// Colors follow color.NoColor, which is set when stdout is not a terminal.
var (
	colorHeader  = color.New(color.Bold)
	colorOK      = color.New(color.FgGreen)
	colorWarn    = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorEmitted = color.New(color.FgCyan)
	colorMuted   = color.New(color.Faint)
)

// StatLine is one label/value pair of a summary section
type StatLine struct {
	Label string
	Value interface{}
}

// FormatUtils provides shared formatting utilities
type FormatUtils struct{}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(colorHeader.Sprint(title) + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(colorHeader.Sprint(strings.ToUpper(title)) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatSectionSeparator creates a section separator
func (f *FormatUtils) FormatSectionSeparator() string {
	return "\n"
}

// FormatLabel creates a consistently formatted label with right alignment
func (f *FormatUtils) FormatLabel(label string, value interface{}) string {
	padding := LabelWidth - len(label)
	if padding < 0 {
		padding = 0
	}
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", padding), label, value)
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatSummaryStats creates a summary section with the lines in order
func (f *FormatUtils) FormatSummaryStats(stats []StatLine) string {
	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader("Summary"))
	for _, s := range stats {
		builder.WriteString(f.FormatLabelWithIndent(SectionPadding, s.Label, s.Value))
	}
	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}

// FormatStatus colors a function status
func (f *FormatUtils) FormatStatus(status domain.RouteStatus) string {
	switch status {
	case domain.RouteStatusAnalyzed:
		return colorOK.Sprint(string(status))
	case domain.RouteStatusUnsupported:
		return colorWarn.Sprint(string(status))
	case domain.RouteStatusTooComplex:
		return colorError.Sprint(string(status))
	}
	return string(status)
}

// FormatListSection creates a titled section with one indented line per item
func (f *FormatUtils) FormatListSection(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader(title))
	for _, item := range items {
		builder.WriteString(strings.Repeat(" ", SectionPadding) + item + "\n")
	}
	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}
