package domain

import (
	"context"
	"io"
	"time"
)

// RouteStatus is the outcome of analyzing one generator function
type RouteStatus string

const (
	// RouteStatusAnalyzed means the route set is complete
	RouteStatusAnalyzed RouteStatus = "analyzed"
	// RouteStatusUnsupported means analysis was declined because an emit or
	// stop sits under switch-style branching. It never means zero routes.
	RouteStatusUnsupported RouteStatus = "unsupported"
	// RouteStatusTooComplex means the tree or route cap was exceeded
	RouteStatusTooComplex RouteStatus = "too_complex"
)

// RouteRequest represents a request for generator route analysis
type RouteRequest struct {
	// Input files or directories to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	ShowTree     bool
	ShowDump     bool
	ShowLowered  bool

	// Filtering
	FunctionPatterns []string
	Languages        []string

	// Analysis options
	MaxRoutes    int
	MaxTreeNodes int
	ImplicitElse bool

	// Configuration
	ConfigPath string

	// File collection
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Performance
	MaxGoroutines int
	Timeout       time.Duration

	// MetricsPath receives Prometheus text metrics after the run when set
	MetricsPath string
}

// Emission is one emitted value along a route
type Emission struct {
	Text string `json:"text" yaml:"text"`
	Line int    `json:"line" yaml:"line"`
}

// RouteInfo describes one complete route through a function's route tree
type RouteInfo struct {
	Index       int        `json:"index" yaml:"index"`
	Fingerprint string     `json:"fingerprint" yaml:"fingerprint"`
	HasBreak    bool       `json:"has_break" yaml:"has_break"`
	Length      int        `json:"length" yaml:"length"`
	Emissions   []Emission `json:"emissions" yaml:"emissions"`
	Path        []string   `json:"path" yaml:"path"`
}

// TreeNodeInfo is a serializable route tree node
type TreeNodeInfo struct {
	Kind     string         `json:"kind" yaml:"kind"`
	Key      string         `json:"key" yaml:"key"`
	Label    string         `json:"label" yaml:"label"`
	Line     int            `json:"line,omitempty" yaml:"line,omitempty"`
	Depth    int            `json:"depth" yaml:"depth"`
	Flags    []string       `json:"flags,omitempty" yaml:"flags,omitempty"`
	Children []TreeNodeInfo `json:"children,omitempty" yaml:"children,omitempty"`
}

// FunctionRoutes is the analysis result for a single generator function
type FunctionRoutes struct {
	// Function identification
	Name      string `json:"name" yaml:"name"`
	FilePath  string `json:"file_path" yaml:"file_path"`
	Language  string `json:"language" yaml:"language"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`

	Status RouteStatus `json:"status" yaml:"status"`
	Reason string      `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Structure
	BlockCount      int `json:"block_count" yaml:"block_count"`
	BranchCount     int `json:"branch_count" yaml:"branch_count"`
	LeafCount       int `json:"leaf_count" yaml:"leaf_count"`
	MaxNestingDepth int `json:"max_nesting_depth" yaml:"max_nesting_depth"`

	Routes []RouteInfo   `json:"routes" yaml:"routes"`
	Tree   *TreeNodeInfo `json:"tree,omitempty" yaml:"tree,omitempty"`
	Dump   string        `json:"dump,omitempty" yaml:"dump,omitempty"`
	// Lowered is the language-neutral statement tree the analysis ran on
	Lowered string `json:"lowered,omitempty" yaml:"lowered,omitempty"`
}

// IsAnalyzed reports whether the function has a complete route set
func (f FunctionRoutes) IsAnalyzed() bool {
	return f.Status == RouteStatusAnalyzed
}

// RouteSummary aggregates statistics over all analyzed functions
type RouteSummary struct {
	FilesAnalyzed        int            `json:"files_analyzed" yaml:"files_analyzed"`
	TotalFunctions       int            `json:"total_functions" yaml:"total_functions"`
	AnalyzedFunctions    int            `json:"analyzed_functions" yaml:"analyzed_functions"`
	UnsupportedFunctions int            `json:"unsupported_functions" yaml:"unsupported_functions"`
	TooComplexFunctions  int            `json:"too_complex_functions" yaml:"too_complex_functions"`
	TotalRoutes          int            `json:"total_routes" yaml:"total_routes"`
	BreakingRoutes       int            `json:"breaking_routes" yaml:"breaking_routes"`
	MaxRoutesPerFunction int            `json:"max_routes_per_function" yaml:"max_routes_per_function"`
	FunctionsByLanguage  map[string]int `json:"functions_by_language" yaml:"functions_by_language"`
}

// RouteResponse represents the complete route analysis result
type RouteResponse struct {
	Functions []FunctionRoutes `json:"functions" yaml:"functions"`
	Summary   RouteSummary     `json:"summary" yaml:"summary"`

	Warnings []string `json:"warnings" yaml:"warnings"`
	Errors   []string `json:"errors" yaml:"errors"`

	GeneratedAt string      `json:"generated_at" yaml:"generated_at"`
	Version     string      `json:"version" yaml:"version"`
	Config      interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// RouteService defines the core business logic for route analysis
type RouteService interface {
	// Analyze runs route analysis over the files named in the request
	Analyze(ctx context.Context, req RouteRequest) (*RouteResponse, error)

	// AnalyzeFile analyzes a single source file
	AnalyzeFile(ctx context.Context, filePath string, req RouteRequest) (*RouteResponse, error)
}

// FileReader collects and reads source files of the supported languages
type FileReader interface {
	// CollectSourceFiles finds source files of the given languages (all
	// supported languages when empty) in paths
	CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns, languages []string) ([]string, error)

	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// IsSupportedFile reports whether the file extension maps to a language
	IsSupportedFile(path string) bool

	// FileExists checks if a file exists and returns an error if not
	FileExists(path string) (bool, error)
}

// RouteFormatter formats route analysis results
type RouteFormatter interface {
	// Format renders the response in the given format
	Format(response *RouteResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *RouteResponse, format OutputFormat, writer io.Writer) error
}

// RouteConfigurationLoader loads configuration into route requests
type RouteConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*RouteRequest, error)

	// LoadDefaultConfig discovers configuration near the analyzed paths or
	// returns the defaults
	LoadDefaultConfig() *RouteRequest

	// MergeConfig merges CLI flags into the loaded configuration
	MergeConfig(base *RouteRequest, override *RouteRequest) *RouteRequest
}
