package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/yieldscan/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() *ErrorCategorizerImpl {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// codeCategories maps domain error codes to categories
var codeCategories = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
	domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
	domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
	domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
	domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
	domain.ErrCodeTimeout:           domain.ErrorCategoryTimeout,
}

// initializeErrorPatterns returns the message patterns checked in order for
// errors that carry no domain code
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"timed out",
			"deadline",
			"context canceled",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"toml",
			"yaml",
			"invalid settings",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no files found",
			"file not found",
			"no such file",
			"cannot access",
			"permission denied",
			"path",
			"directory",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"format",
			"cannot create",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"parse",
			"syntax",
			"analysis",
			"failed to analyze",
			"generator",
		}},
	}
}

// Categorize determines the category of an error. A domain error code wins;
// otherwise the message is matched against the patterns in a fixed order.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ec.categorized(domain.ErrorCategoryTimeout, err)
	}
	if category, ok := codeCategories[domain.ErrorCode(err)]; ok {
		return ec.categorized(category, err)
	}

	errMsg := strings.ToLower(err.Error())
	for _, cp := range ec.patterns {
		if containsAnyPattern(errMsg, cp.patterns) {
			return ec.categorized(cp.category, err)
		}
	}

	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categorized(category domain.ErrorCategory, err error) *domain.CategorizedError {
	return &domain.CategorizedError{
		Category: category,
		Message:  ec.getCategoryMessage(category),
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the paths exist and contain .py, .pyi, .cs or .go files",
			"Check --include, --exclude and --languages, which may filter every file out",
			"Ensure you have read permissions for the target files",
		},
		domain.ErrorCategoryConfig: {
			"Verify the configuration file format and values",
			"Try: yieldscan init to generate a valid .yieldscan.toml",
			"Check the [tool.yieldscan] table of pyproject.toml",
		},
		domain.ErrorCategoryTimeout: {
			"Analyze fewer files or raise performance.timeout_seconds",
			"Lower --max-routes or --max-tree-nodes to decline huge functions sooner",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output path",
			"Use one of the formats text, json, yaml, csv or dot",
		},
		domain.ErrorCategoryProcessing: {
			"Some files may have syntax errors",
			"Use --function to narrow the analysis to one generator",
			"Run with --verbose for per-file details",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to process input files or directories",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Analysis timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error during route analysis",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}

var _ domain.ErrorCategorizer = (*ErrorCategorizerImpl)(nil)
