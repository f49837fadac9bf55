package service

import (
	"fmt"

	"github.com/ludo-technologies/yieldscan/domain"
)

// OutputFormatResolver resolves the output format from the format flags.
type OutputFormatResolver struct{}

// NewOutputFormatResolver creates a new resolver
func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine evaluates format flags and returns the selected format.
// At most one of json/yaml/csv/dot may be true; if none are, it returns
// fallback, or text when fallback is empty.
func (r *OutputFormatResolver) Determine(json, yaml, csv, dot bool, fallback string) (domain.OutputFormat, error) {
	var selected []domain.OutputFormat
	if json {
		selected = append(selected, domain.OutputFormatJSON)
	}
	if yaml {
		selected = append(selected, domain.OutputFormatYAML)
	}
	if csv {
		selected = append(selected, domain.OutputFormatCSV)
	}
	if dot {
		selected = append(selected, domain.OutputFormatDOT)
	}

	switch len(selected) {
	case 0:
		if fallback == "" {
			return domain.OutputFormatText, nil
		}
		format, ok := domain.ParseOutputFormat(fallback)
		if !ok {
			return "", domain.NewUnsupportedFormatError(fallback)
		}
		return format, nil
	case 1:
		return selected[0], nil
	}
	return "", domain.NewInvalidInputError(fmt.Sprintf("only one output format flag can be specified, got %d", len(selected)), nil)
}
